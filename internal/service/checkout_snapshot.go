package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aurelia-jewelry/internal/cart"

	"github.com/shopspring/decimal"
)

// Stripe metadata 限制：每个值最多 500 字符，最多 50 个键
const (
	metadataValueLimit = 500
	maxItemChunks      = 30
)

// metadata 键
const (
	metaCustomerName   = "customer_name"
	metaCustomerEmail  = "customer_email"
	metaCustomerPhone  = "customer_phone"
	metaAddressLine1   = "address_line1"
	metaAddressLine2   = "address_line2"
	metaCity           = "city"
	metaState          = "state"
	metaPostalCode     = "postal_code"
	metaCountry        = "country"
	metaPickup         = "is_pickup"
	metaPickupLocation = "pickup_location"
	metaCouponCode     = "coupon_code"
	metaCurrency       = "currency"
	metaSubtotal       = "subtotal"
	metaDiscount       = "discount"
	metaShippingCost   = "shipping_cost"
	metaTotal          = "total"
	metaItemChunks     = "items_chunks"
	metaItemPrefix     = "items_"
)

// OrderSnapshot 结账时写入会话 metadata、由 webhook 还原的订单快照
type OrderSnapshot struct {
	Contact        Contact
	IsPickup       bool
	PickupLocation string
	CouponCode     string
	Currency       string
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
	Items          []SnapshotItem
}

// SnapshotItem 紧凑的订单项快照
type SnapshotItem struct {
	ProductID         uint   `json:"p"`
	OriginalProductID uint   `json:"o,omitempty"`
	ComboGroupID      string `json:"g,omitempty"`
	Name              string `json:"n"`
	Color             string `json:"c,omitempty"`
	Size              string `json:"s,omitempty"`
	Quantity          int    `json:"q"`
	UnitPrice         string `json:"u"`
}

func snapshotItems(items []cart.Item) []SnapshotItem {
	out := make([]SnapshotItem, 0, len(items))
	for _, item := range items {
		out = append(out, SnapshotItem{
			ProductID:         item.ProductID,
			OriginalProductID: item.OriginalProductID,
			ComboGroupID:      item.ComboGroupID,
			Name:              item.Name,
			Color:             item.Color,
			Size:              item.Size,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice.StringFixed(2),
		})
	}
	return out
}

// EncodeMetadata 序列化为 Stripe metadata，订单项按 500 字符分片
func (s OrderSnapshot) EncodeMetadata() (map[string]string, error) {
	raw, err := json.Marshal(s.Items)
	if err != nil {
		return nil, err
	}
	chunks := chunkRunes(string(raw), metadataValueLimit)
	if len(chunks) > maxItemChunks {
		return nil, ErrCartTooLarge
	}

	meta := map[string]string{
		metaCustomerName:  s.Contact.Name,
		metaCustomerEmail: s.Contact.Email,
		metaPickup:        strconv.FormatBool(s.IsPickup),
		metaCurrency:      s.Currency,
		metaSubtotal:      s.Subtotal.StringFixed(2),
		metaDiscount:      s.Discount.StringFixed(2),
		metaShippingCost:  s.ShippingCost.StringFixed(2),
		metaTotal:         s.Total.StringFixed(2),
		metaItemChunks:    strconv.Itoa(len(chunks)),
	}
	optional := map[string]string{
		metaCustomerPhone:  s.Contact.Phone,
		metaAddressLine1:   s.Contact.AddressLine1,
		metaAddressLine2:   s.Contact.AddressLine2,
		metaCity:           s.Contact.City,
		metaState:          s.Contact.State,
		metaPostalCode:     s.Contact.PostalCode,
		metaCountry:        s.Contact.Country,
		metaPickupLocation: s.PickupLocation,
		metaCouponCode:     s.CouponCode,
	}
	for k, v := range optional {
		if v != "" {
			meta[k] = truncateRunes(v, metadataValueLimit)
		}
	}
	for i, chunk := range chunks {
		meta[metaItemPrefix+strconv.Itoa(i)] = chunk
	}
	return meta, nil
}

// DecodeOrderSnapshot 从会话 metadata 还原快照
func DecodeOrderSnapshot(meta map[string]string) (*OrderSnapshot, error) {
	n, err := strconv.Atoi(strings.TrimSpace(meta[metaItemChunks]))
	if err != nil || n <= 0 || n > maxItemChunks {
		return nil, fmt.Errorf("%w: items_chunks missing", ErrSnapshotInvalid)
	}
	var buf strings.Builder
	for i := 0; i < n; i++ {
		chunk, ok := meta[metaItemPrefix+strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("%w: items chunk %d missing", ErrSnapshotInvalid, i)
		}
		buf.WriteString(chunk)
	}
	var items []SnapshotItem
	if err := json.Unmarshal([]byte(buf.String()), &items); err != nil {
		return nil, fmt.Errorf("%w: decode items: %v", ErrSnapshotInvalid, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrSnapshotInvalid)
	}

	snapshot := &OrderSnapshot{
		Contact: Contact{
			Name:         meta[metaCustomerName],
			Email:        meta[metaCustomerEmail],
			Phone:        meta[metaCustomerPhone],
			AddressLine1: meta[metaAddressLine1],
			AddressLine2: meta[metaAddressLine2],
			City:         meta[metaCity],
			State:        meta[metaState],
			PostalCode:   meta[metaPostalCode],
			Country:      meta[metaCountry],
		},
		PickupLocation: meta[metaPickupLocation],
		CouponCode:     meta[metaCouponCode],
		Currency:       meta[metaCurrency],
		Items:          items,
	}
	snapshot.IsPickup, _ = strconv.ParseBool(strings.TrimSpace(meta[metaPickup]))
	amounts := []struct {
		key  string
		dest *decimal.Decimal
	}{
		{metaSubtotal, &snapshot.Subtotal},
		{metaDiscount, &snapshot.Discount},
		{metaShippingCost, &snapshot.ShippingCost},
		{metaTotal, &snapshot.Total},
	}
	for _, a := range amounts {
		value, err := decimal.NewFromString(strings.TrimSpace(meta[a.key]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s invalid", ErrSnapshotInvalid, a.key)
		}
		*a.dest = value
	}
	return snapshot, nil
}

func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
