package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WebhookEvent 已验签的 webhook 事件。
type WebhookEvent struct {
	EventID         string
	EventType       string
	ObjectType      string
	SessionID       string
	PaymentIntentID string
	PaymentStatus   string
	CustomerEmail   string
	Currency        string
	// AmountTotal 主币种金额字符串，缺失时为空
	AmountTotal string
	Metadata    map[string]string
	Raw         map[string]interface{}
}

// VerifyAndParseWebhook 校验 Stripe-Signature 并解析事件。
func VerifyAndParseWebhook(cfg *Config, headers map[string]string, body []byte, now time.Time) (*WebhookEvent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrSignatureInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}

	signatureHeader := getHeaderValue(headers, "Stripe-Signature")
	if signatureHeader == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	if cfg.WebhookToleranceSeconds > 0 {
		delta := math.Abs(float64(now.Unix() - timestamp))
		if delta > float64(cfg.WebhookToleranceSeconds) {
			return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
		}
	}

	expected := computeSignature(cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	eventRaw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	eventType := strings.TrimSpace(readString(eventRaw, "type"))
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	objectRaw := readMap(readMap(eventRaw, "data"), "object")
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}

	event := &WebhookEvent{
		EventID:    readString(eventRaw, "id"),
		EventType:  eventType,
		ObjectType: readString(objectRaw, "object"),
		Metadata:   readStringMap(objectRaw, "metadata"),
		Raw:        eventRaw,
	}
	if event.ObjectType == "checkout.session" {
		event.SessionID = readString(objectRaw, "id")
		event.PaymentIntentID = readPaymentIntentID(objectRaw)
		event.PaymentStatus = readString(objectRaw, "payment_status")
		event.Currency = strings.ToLower(readString(objectRaw, "currency"))
		event.CustomerEmail = readString(readMap(objectRaw, "customer_details"), "email")
		if _, ok := objectRaw["amount_total"]; ok && event.Currency != "" {
			event.AmountTotal = fromMinorAmount(readInt64(objectRaw, "amount_total"), event.Currency)
		}
	}
	return event, nil
}

// VerifyWebhook 使用网关配置的密钥校验并解析事件
func (g *Gateway) VerifyWebhook(headers map[string]string, body []byte, now time.Time) (*WebhookEvent, error) {
	return VerifyAndParseWebhook(&g.cfg, headers, body, now)
}

// SignPayload 生成 Stripe-Signature 头，用于本地联调与测试。
func SignPayload(secret string, timestamp time.Time, body []byte) string {
	ts := timestamp.Unix()
	return "t=" + strconv.FormatInt(ts, 10) + ",v1=" + computeSignature(secret, ts, body)
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		value := strings.TrimSpace(kv[1])
		switch strings.TrimSpace(kv[0]) {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func getHeaderValue(headers map[string]string, key string) string {
	for h, value := range headers {
		if strings.EqualFold(strings.TrimSpace(h), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
