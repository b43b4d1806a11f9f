package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrInputInvalid     = errors.New("stripe input invalid")
	ErrRequestFailed    = errors.New("stripe request failed")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

const (
	defaultAPIBaseURL        = "https://api.stripe.com"
	defaultTimeout           = 12 * time.Second
	defaultWebhookToleranceS = 300
	defaultShippingLabel     = "Shipping"
	defaultDiscountLabel     = "Discount"
)

var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// Config Stripe Checkout 配置。
type Config struct {
	SecretKey               string
	WebhookSecret           string
	SuccessURL              string
	CancelURL               string
	APIBaseURL              string
	WebhookToleranceSeconds int
	PaymentMethodTypes      []string
	Timeout                 time.Duration
}

// LineItem 会话中的单个商品行，金额为主币种单位。
type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount decimal.Decimal
	Quantity   int
	// Metadata 写入 product_data.metadata
	Metadata map[string]string
}

// SessionInput 创建 Checkout Session 输入。
type SessionInput struct {
	Currency      string
	LineItems     []LineItem
	Discount      decimal.Decimal
	DiscountLabel string
	ShippingCost  decimal.Decimal
	ShippingLabel string
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// Session 创建结果。
type Session struct {
	ID       string
	URL      string
	CouponID string
}

// Gateway Stripe REST 客户端。
type Gateway struct {
	cfg        Config
	httpClient *http.Client
}

// New 创建网关，配置会被规范化。
func New(cfg Config) *Gateway {
	cfg.normalize()
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient 替换底层 HTTP 客户端（测试用）。
func (g *Gateway) WithHTTPClient(client *http.Client) *Gateway {
	if client != nil {
		g.httpClient = client
	}
	return g
}

// Config 返回规范化后的配置。
func (g *Gateway) Config() Config {
	return g.cfg
}

// ValidateConfig 校验创建会话所需配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" {
		return fmt.Errorf("%w: success_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.CancelURL) == "" {
		return fmt.Errorf("%w: cancel_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(sanitizeURLForValidation(cfg.SuccessURL)); err != nil {
		return fmt.Errorf("%w: success_url is invalid", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(sanitizeURLForValidation(cfg.CancelURL)); err != nil {
		return fmt.Errorf("%w: cancel_url is invalid", ErrConfigInvalid)
	}
	if len(cfg.PaymentMethodTypes) == 0 {
		return fmt.Errorf("%w: payment_method_types is empty", ErrConfigInvalid)
	}
	return nil
}

// CreateCheckoutSession 创建多行商品的 Checkout Session。
// 折扣以一次性 amount_off 优惠券下发，运费以 shipping_rate_data 下发。
func (g *Gateway) CreateCheckoutSession(ctx context.Context, input SessionInput) (*Session, error) {
	if err := ValidateConfig(&g.cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	form, err := g.buildSessionForm(input)
	if err != nil {
		return nil, err
	}

	couponID := ""
	if input.Discount.GreaterThan(decimal.Zero) {
		couponID, err = g.createOneOffCoupon(ctx, input)
		if err != nil {
			return nil, err
		}
		form.Set("discounts[0][coupon]", couponID)
	}

	respBody, statusCode, err := g.doFormRequest(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create checkout session status %d: %s", ErrResponseInvalid, statusCode, readErrorMessage(respBody))
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	session := &Session{
		ID:       strings.TrimSpace(readString(raw, "id")),
		URL:      strings.TrimSpace(readString(raw, "url")),
		CouponID: couponID,
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}
	return session, nil
}

func (g *Gateway) buildSessionForm(input SessionInput) (url.Values, error) {
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInputInvalid)
	}
	if len(input.LineItems) == 0 {
		return nil, fmt.Errorf("%w: line items are required", ErrInputInvalid)
	}
	if input.ShippingCost.IsNegative() || input.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount", ErrInputInvalid)
	}

	successURL := strings.TrimSpace(input.SuccessURL)
	if successURL == "" {
		successURL = g.cfg.SuccessURL
	}
	cancelURL := strings.TrimSpace(input.CancelURL)
	if cancelURL == "" {
		cancelURL = g.cfg.CancelURL
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		form.Set("customer_email", email)
	}
	for _, pmType := range g.cfg.PaymentMethodTypes {
		form.Add("payment_method_types[]", pmType)
	}

	for i, item := range input.LineItems {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line item %d is invalid", ErrInputInvalid, i)
		}
		unit, err := toMinorUnits(item.UnitAmount, currency)
		if err != nil {
			return nil, err
		}
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(unit, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if image := strings.TrimSpace(item.ImageURL); image != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", image)
		}
		for _, key := range sortedKeys(item.Metadata) {
			form.Set(prefix+"[price_data][product_data][metadata]["+key+"]", item.Metadata[key])
		}
	}

	shipping, err := toMinorUnits(input.ShippingCost, currency)
	if err != nil {
		return nil, err
	}
	shippingLabel := strings.TrimSpace(input.ShippingLabel)
	if shippingLabel == "" {
		shippingLabel = defaultShippingLabel
	}
	form.Set("shipping_options[0][shipping_rate_data][type]", "fixed_amount")
	form.Set("shipping_options[0][shipping_rate_data][display_name]", shippingLabel)
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][amount]", strconv.FormatInt(shipping, 10))
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][currency]", currency)

	for _, key := range sortedKeys(input.Metadata) {
		form.Set("metadata["+key+"]", input.Metadata[key])
	}
	return form, nil
}

func (g *Gateway) createOneOffCoupon(ctx context.Context, input SessionInput) (string, error) {
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	amountOff, err := toMinorUnits(input.Discount, currency)
	if err != nil {
		return "", err
	}
	label := strings.TrimSpace(input.DiscountLabel)
	if label == "" {
		label = defaultDiscountLabel
	}
	form := url.Values{}
	form.Set("amount_off", strconv.FormatInt(amountOff, 10))
	form.Set("currency", currency)
	form.Set("duration", "once")
	form.Set("max_redemptions", "1")
	form.Set("name", label)

	respBody, statusCode, err := g.doFormRequest(ctx, http.MethodPost, "/v1/coupons", form)
	if err != nil {
		return "", err
	}
	if statusCode < 200 || statusCode >= 300 {
		return "", fmt.Errorf("%w: create coupon status %d: %s", ErrResponseInvalid, statusCode, readErrorMessage(respBody))
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(readString(raw, "id"))
	if id == "" {
		return "", fmt.Errorf("%w: missing coupon id", ErrResponseInvalid)
	}
	return id, nil
}

func (g *Gateway) doFormRequest(ctx context.Context, method, path string, form url.Values) ([]byte, int, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(g.cfg.APIBaseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func sanitizeURLForValidation(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return trimmed
	}
	return strings.ReplaceAll(trimmed, "{CHECKOUT_SESSION_ID}", "cs_test_placeholder")
}

func (c *Config) normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.SuccessURL = strings.TrimSpace(c.SuccessURL)
	c.CancelURL = strings.TrimSpace(c.CancelURL)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.WebhookToleranceSeconds <= 0 {
		c.WebhookToleranceSeconds = defaultWebhookToleranceS
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	normalized := make([]string, 0, len(c.PaymentMethodTypes))
	for _, item := range c.PaymentMethodTypes {
		trimmed := strings.ToLower(strings.TrimSpace(item))
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	if len(normalized) == 0 {
		normalized = []string{"card"}
	}
	sort.Strings(normalized)
	c.PaymentMethodTypes = normalized
}

// toMinorUnits 转换为最小货币单位，精度超出时报错
func toMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInputInvalid)
	}
	minor := amount.Shift(int32(currencyScale(currency)))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount precision is invalid", ErrInputInvalid)
	}
	return minor.IntPart(), nil
}

func fromMinorAmount(minor int64, currency string) string {
	scale := currencyScale(currency)
	return decimal.NewFromInt(minor).Shift(int32(-scale)).StringFixed(int32(scale))
}

func currencyScale(currency string) int {
	upper := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readErrorMessage(body []byte) string {
	raw, err := decodeRawMap(body)
	if err != nil {
		return ""
	}
	return readString(readMap(raw, "error"), "message")
}

func readPaymentIntentID(raw map[string]interface{}) string {
	if raw == nil {
		return ""
	}
	value, ok := raw["payment_intent"]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		return strings.TrimSpace(readString(typed, "id"))
	default:
		return ""
	}
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil {
		return nil
	}
	mapped, _ := raw[key].(map[string]interface{})
	return mapped
}

// readStringMap 读取 metadata 这类字符串字典，字符串值原样保留不做 trim
func readStringMap(raw map[string]interface{}, key string) map[string]string {
	source := readMap(raw, key)
	out := make(map[string]string, len(source))
	for k, v := range source {
		if str, ok := v.(string); ok {
			out[k] = str
			continue
		}
		out[k] = readString(source, k)
	}
	return out
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil {
		return 0
	}
	switch typed := raw[key].(type) {
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
