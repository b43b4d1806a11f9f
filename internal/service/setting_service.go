package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/cache"
	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"

	"github.com/shopspring/decimal"
)

// StoreSettings 店铺运行参数（默认值来自配置，后台可覆盖）
type StoreSettings struct {
	ComboPrice     models.Money `json:"combo_price"`
	DeliveryWindow string       `json:"delivery_window"`
	PickupEnabled  bool         `json:"pickup_enabled"`
	PickupAddress  string       `json:"pickup_address"`
	Currency       string       `json:"currency"`
}

// StoreSettingsReader 店铺设置读取接口，注入到结账与组合服务
type StoreSettingsReader interface {
	GetStoreSettings(ctx context.Context) (StoreSettings, error)
}

// StoreSettingsInput 后台更新输入，nil 字段保持不变
type StoreSettingsInput struct {
	ComboPrice     *string `json:"combo_price"`
	DeliveryWindow *string `json:"delivery_window"`
	PickupEnabled  *bool   `json:"pickup_enabled"`
	PickupAddress  *string `json:"pickup_address"`
	Currency       *string `json:"currency"`
}

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	cache    *cache.Store
	defaults config.StoreConfig
	ttl      time.Duration
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, store *cache.Store, defaults config.StoreConfig, ttl time.Duration) *SettingService {
	return &SettingService{repo: repo, cache: store, defaults: defaults, ttl: ttl}
}

// GetStoreSettings 读取店铺设置：缓存 -> 数据库合并默认值
func (s *SettingService) GetStoreSettings(ctx context.Context) (StoreSettings, error) {
	var cached StoreSettings
	hit, err := s.cache.GetJSON(ctx, constants.CacheKeyStoreSettings, &cached)
	if err != nil {
		logger.Warnw("store_settings_cache_read_failed", "error", err)
	}
	if hit {
		return cached, nil
	}

	setting, err := s.repo.GetByKey(constants.SettingKeyStoreConfig)
	if err != nil {
		return StoreSettings{}, fmt.Errorf("%w: load store settings: %v", ErrPersistence, err)
	}
	settings := s.defaultSettings()
	if setting != nil {
		settings = mergeStoreSettings(settings, setting.ValueJSON)
	}
	if err := s.cache.SetJSON(ctx, constants.CacheKeyStoreSettings, settings, s.ttl); err != nil {
		logger.Warnw("store_settings_cache_write_failed", "error", err)
	}
	return settings, nil
}

// UpdateStoreSettings 校验并保存店铺设置，同时失效缓存
func (s *SettingService) UpdateStoreSettings(ctx context.Context, input StoreSettingsInput) (StoreSettings, error) {
	current, err := s.GetStoreSettings(ctx)
	if err != nil {
		return StoreSettings{}, err
	}
	if input.ComboPrice != nil {
		price, err := models.NewMoneyFromString(*input.ComboPrice)
		if err != nil || !price.IsPositive() {
			return StoreSettings{}, fmt.Errorf("%w: combo_price must be a positive amount", ErrSettingInvalid)
		}
		current.ComboPrice = price
	}
	if input.DeliveryWindow != nil {
		current.DeliveryWindow = strings.TrimSpace(*input.DeliveryWindow)
	}
	if input.PickupEnabled != nil {
		current.PickupEnabled = *input.PickupEnabled
	}
	if input.PickupAddress != nil {
		current.PickupAddress = strings.TrimSpace(*input.PickupAddress)
	}
	if input.Currency != nil {
		currency := strings.ToLower(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			return StoreSettings{}, fmt.Errorf("%w: currency must be an ISO 4217 code", ErrSettingInvalid)
		}
		current.Currency = currency
	}
	if current.PickupEnabled && current.PickupAddress == "" {
		return StoreSettings{}, fmt.Errorf("%w: pickup_address is required when pickup is enabled", ErrSettingInvalid)
	}

	value := models.JSON{
		constants.SettingFieldComboPrice:     current.ComboPrice.String(),
		constants.SettingFieldDeliveryWindow: current.DeliveryWindow,
		constants.SettingFieldPickupEnabled:  current.PickupEnabled,
		constants.SettingFieldPickupAddress:  current.PickupAddress,
		constants.SettingFieldCurrency:       current.Currency,
	}
	if _, err := s.repo.Upsert(constants.SettingKeyStoreConfig, value); err != nil {
		return StoreSettings{}, fmt.Errorf("%w: save store settings: %v", ErrPersistence, err)
	}
	if err := s.cache.Del(ctx, constants.CacheKeyStoreSettings); err != nil {
		logger.Warnw("store_settings_cache_invalidate_failed", "error", err)
	}
	logger.Infow("store_settings_updated", "combo_price", current.ComboPrice.String(), "pickup_enabled", current.PickupEnabled)
	return current, nil
}

func (s *SettingService) defaultSettings() StoreSettings {
	price, err := models.NewMoneyFromString(s.defaults.ComboPrice)
	if err != nil || !price.IsPositive() {
		price = models.NewMoneyFromDecimal(decimal.NewFromInt(99))
	}
	currency := strings.ToLower(strings.TrimSpace(s.defaults.Currency))
	if currency == "" {
		currency = "usd"
	}
	return StoreSettings{
		ComboPrice:     price,
		DeliveryWindow: strings.TrimSpace(s.defaults.DeliveryWindow),
		PickupEnabled:  s.defaults.PickupEnabled,
		PickupAddress:  strings.TrimSpace(s.defaults.PickupAddress),
		Currency:       currency,
	}
}

// mergeStoreSettings 存储值覆盖默认值，无法解析的字段保留默认
func mergeStoreSettings(base StoreSettings, stored models.JSON) StoreSettings {
	if raw, ok := stored[constants.SettingFieldComboPrice]; ok {
		if price, err := parseSettingMoney(raw); err == nil && price.IsPositive() {
			base.ComboPrice = price
		}
	}
	if raw, ok := stored[constants.SettingFieldDeliveryWindow].(string); ok {
		base.DeliveryWindow = strings.TrimSpace(raw)
	}
	if raw, ok := stored[constants.SettingFieldPickupEnabled]; ok {
		if enabled, err := parseSettingBool(raw); err == nil {
			base.PickupEnabled = enabled
		}
	}
	if raw, ok := stored[constants.SettingFieldPickupAddress].(string); ok {
		base.PickupAddress = strings.TrimSpace(raw)
	}
	if raw, ok := stored[constants.SettingFieldCurrency].(string); ok && len(strings.TrimSpace(raw)) == 3 {
		base.Currency = strings.ToLower(strings.TrimSpace(raw))
	}
	return base
}

func parseSettingMoney(value interface{}) (models.Money, error) {
	switch v := value.(type) {
	case string:
		return models.NewMoneyFromString(v)
	case float64:
		return models.NewMoneyFromDecimal(decimal.NewFromFloat(v)), nil
	case json.Number:
		return models.NewMoneyFromString(v.String())
	default:
		return models.Money{}, fmt.Errorf("unsupported value type %T", value)
	}
}

func parseSettingBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("unsupported value type %T", value)
	}
}
