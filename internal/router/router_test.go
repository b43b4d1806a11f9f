package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/payment/stripe"
	"github.com/aurelia-jewelry/internal/provider"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_router_test"

type fakeStripe struct {
	mu       sync.Mutex
	sessions []url.Values
	server   *httptest.Server
}

func newFakeStripe(t *testing.T) *fakeStripe {
	t.Helper()
	fs := &fakeStripe{}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch r.URL.Path {
		case "/v1/coupons":
			_, _ = w.Write([]byte(`{"id":"co_router_1"}`))
		case "/v1/checkout/sessions":
			fs.mu.Lock()
			fs.sessions = append(fs.sessions, r.PostForm)
			id := fmt.Sprintf("cs_router_%d", len(fs.sessions))
			fs.mu.Unlock()
			_, _ = fmt.Fprintf(w, `{"id":%q,"url":"https://checkout.stripe.com/c/pay/%s"}`, id, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeStripe) lastMetadata() map[string]string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.sessions) == 0 {
		return nil
	}
	meta := map[string]string{}
	for key, values := range fs.sessions[len(fs.sessions)-1] {
		if strings.HasPrefix(key, "metadata[") && strings.HasSuffix(key, "]") && len(values) > 0 {
			meta[strings.TrimSuffix(strings.TrimPrefix(key, "metadata["), "]")] = values[0]
		}
	}
	return meta
}

type storefrontFixture struct {
	engine    *gin.Engine
	container *provider.Container
	db        *gorm.DB
	stripe    *fakeStripe
	ring      models.Product
	comboIDs  []uint
}

func newStorefrontFixture(t *testing.T) *storefrontFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := models.InitDefaultAdmin(db, "owner", "owner-pass"); err != nil {
		t.Fatalf("init default admin failed: %v", err)
	}
	staffHash, err := service.HashPassword("staff-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Create(&models.Admin{Username: "clerk", PasswordHash: staffHash, Role: constants.RoleStaff}).Error; err != nil {
		t.Fatalf("create staff failed: %v", err)
	}

	fs := newFakeStripe(t)
	cfg := &config.Config{
		App:     config.AppConfig{Name: "Aurelia"},
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "router-test-secret", ExpireHours: 1},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Stripe: config.StripeConfig{
			SecretKey:               "sk_test_router",
			WebhookSecret:           testWebhookSecret,
			APIBaseURL:              fs.server.URL,
			SuccessURL:              "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:               "https://shop.example.com/cart",
			WebhookToleranceSeconds: 300,
		},
		Store: config.StoreConfig{
			Currency:       "usd",
			ComboPrice:     "100",
			DeliveryWindow: "3-5 business days",
			PickupEnabled:  true,
			PickupAddress:  "12 Main St",
		},
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	category := models.Category{Slug: "rings", Name: "Rings", IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	ring := models.Product{CategoryID: category.ID, Slug: "signet-ring", Name: "Signet Ring", PriceAmount: models.MustMoney("50"), IsActive: true}
	if err := db.Create(&ring).Error; err != nil {
		t.Fatalf("create ring failed: %v", err)
	}
	comboIDs := make([]uint, 0, 3)
	for i, price := range []string{"40", "45", "60"} {
		p := models.Product{
			CategoryID:      category.ID,
			Slug:            fmt.Sprintf("stack-band-%d", i),
			Name:            fmt.Sprintf("Stack Band %d", i),
			PriceAmount:     models.MustMoney(price),
			IsActive:        true,
			IsComboEligible: true,
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("create combo product failed: %v", err)
		}
		comboIDs = append(comboIDs, p.ID)
	}
	coupon := models.Coupon{
		Code:          "SAVE10",
		DiscountType:  constants.DiscountTypePercentage,
		DiscountValue: models.MustMoney("10"),
		IsActive:      true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	rules := []models.ShippingRule{
		{Name: "small", MinAmount: models.MustMoney("0"), MaxAmount: models.MoneyPtr("99.99"), Price: models.MustMoney("9.99")},
		{Name: "free", MinAmount: models.MustMoney("100"), Price: models.MustMoney("0"), SortOrder: 1},
	}
	for i := range rules {
		if err := db.Create(&rules[i]).Error; err != nil {
			t.Fatalf("create shipping rule failed: %v", err)
		}
	}

	return &storefrontFixture{
		engine:    SetupRouter(cfg, container),
		container: container,
		db:        db,
		stripe:    fs,
		ring:      ring,
		comboIDs:  comboIDs,
	}
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func (f *storefrontFixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope failed: %v body=%s", err, w.Body.String())
	}
	return env
}

func (f *storefrontFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": username, "password": password}, ""))
	if env.StatusCode != 0 {
		t.Fatalf("login %s failed: %+v", username, env)
	}
	var data struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if data.Token == "" {
		t.Fatalf("login %s returned empty token", username)
	}
	return data.Token
}

func (f *storefrontFixture) signedWebhook(t *testing.T, eventID, sessionID, amountTotal string, metadata map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":           "checkout.session",
				"id":               sessionID,
				"payment_intent":   "pi_" + sessionID,
				"payment_status":   "paid",
				"currency":         "usd",
				"amount_total":     json.Number(amountTotal),
				"customer_details": map[string]interface{}{"email": "ana@example.com"},
				"metadata":         metadata,
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal webhook failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(testWebhookSecret, time.Now(), body))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	f := newStorefrontFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil, "")
	if env := decodeEnvelope(t, w); env.StatusCode != 0 {
		t.Fatalf("health failed: %+v", env)
	}

	f.do(t, http.MethodGet, "/api/v1/public/products", nil, "")
	metricsResp := f.do(t, http.MethodGet, "/metrics", nil, "")
	if metricsResp.Code != http.StatusOK {
		t.Fatalf("metrics status want 200 got %d", metricsResp.Code)
	}
	if !strings.Contains(metricsResp.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output missing http counters: %s", metricsResp.Body.String())
	}

	if w := f.do(t, http.MethodGet, "/api/v1/unknown", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route want 404 got %d", w.Code)
	}
}

func TestPublicPricingQuote(t *testing.T) {
	f := newStorefrontFixture(t)

	cases := []struct {
		name     string
		body     map[string]interface{}
		shipping string
		discount string
		total    string
	}{
		{name: "coupon and free shipping", body: map[string]interface{}{"subtotal": "150.00", "coupon_code": "save10"}, shipping: "0.00", discount: "15.00", total: "135.00"},
		{name: "small order pays shipping", body: map[string]interface{}{"subtotal": "50"}, shipping: "9.99", discount: "0.00", total: "59.99"},
		{name: "pickup skips shipping", body: map[string]interface{}{"subtotal": "50", "is_pickup": true}, shipping: "0.00", discount: "0.00", total: "50.00"},
	}
	for _, tc := range cases {
		env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/pricing/quote", tc.body, ""))
		if env.StatusCode != 0 {
			t.Fatalf("%s: quote failed: %+v", tc.name, env)
		}
		var quote struct {
			Discount     string `json:"discount"`
			ShippingCost string `json:"shipping_cost"`
			Total        string `json:"total"`
		}
		if err := json.Unmarshal(env.Data, &quote); err != nil {
			t.Fatalf("%s: decode quote failed: %v", tc.name, err)
		}
		if quote.ShippingCost != tc.shipping || quote.Discount != tc.discount || quote.Total != tc.total {
			t.Fatalf("%s: unexpected quote %+v", tc.name, quote)
		}
	}

	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/pricing/quote", map[string]interface{}{"subtotal": "150", "coupon_code": "NOPE"}, ""))
	if env.StatusCode != 400 {
		t.Fatalf("unknown coupon want 400 got %+v", env)
	}
}

func TestCheckoutThenWebhookCreatesSingleOrder(t *testing.T) {
	f := newStorefrontFixture(t)

	checkout := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": f.ring.ID, "quantity": 3, "color": "Gold"},
		},
		"contact": map[string]interface{}{
			"name":          "Ana Ruiz",
			"email":         "ana@example.com",
			"address_line1": "1 Ocean Ave",
			"city":          "Lisbon",
			"postal_code":   "1000-001",
			"country":       "PT",
		},
		"coupon_code": "SAVE10",
	}
	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/checkout", checkout, ""))
	if env.StatusCode != 0 {
		t.Fatalf("checkout failed: %+v", env)
	}
	var session service.CheckoutSession
	_ = json.Unmarshal(env.Data, &session)
	if session.SessionID != "cs_router_1" || session.URL == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("checkout must not persist orders, got %d", count)
	}

	meta := f.stripe.lastMetadata()
	if len(meta) == 0 {
		t.Fatalf("checkout session carried no metadata")
	}

	bad := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/stripe", strings.NewReader(`{"id":"evt_bad","type":"checkout.session.completed"}`))
	bad.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	badResp := httptest.NewRecorder()
	f.engine.ServeHTTP(badResp, bad)
	if badResp.Code != http.StatusBadRequest {
		t.Fatalf("bad signature want 400 got %d", badResp.Code)
	}
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("bad signature must not create orders, got %d", count)
	}

	first := f.signedWebhook(t, "evt_1", session.SessionID, "13500", meta)
	if first.Code != http.StatusOK {
		t.Fatalf("webhook want 200 got %d body=%s", first.Code, first.Body.String())
	}
	replay := f.signedWebhook(t, "evt_2", session.SessionID, "13500", meta)
	if replay.Code != http.StatusOK {
		t.Fatalf("replayed webhook want 200 got %d", replay.Code)
	}
	var replayBody struct {
		Created bool   `json:"created"`
		OrderNo string `json:"order_no"`
	}
	_ = json.Unmarshal(replay.Body.Bytes(), &replayBody)
	if replayBody.Created || replayBody.OrderNo == "" {
		t.Fatalf("replay should reference the existing order: %s", replay.Body.String())
	}

	var orders []models.Order
	if err := f.db.Preload("Items").Find(&orders).Error; err != nil {
		t.Fatalf("load orders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("want exactly one order, got %d", len(orders))
	}
	order := orders[0]
	if order.Status != constants.OrderStatusPending || order.CustomerEmail != "ana@example.com" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.TotalAmount.StringFixed(2) != "135.00" || order.DiscountAmount.StringFixed(2) != "15.00" || order.ShippingCost.StringFixed(2) != "0.00" {
		t.Fatalf("unexpected order amounts: total=%s discount=%s shipping=%s", order.TotalAmount, order.DiscountAmount, order.ShippingCost)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
}

func TestCheckoutValidationErrors(t *testing.T) {
	f := newStorefrontFixture(t)

	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/checkout", map[string]interface{}{
		"items":   []map[string]interface{}{{"product_id": f.ring.ID, "quantity": 1}},
		"contact": map[string]interface{}{"name": "Ana"},
	}, ""))
	if env.StatusCode != 400 {
		t.Fatalf("missing contact fields want 400 got %+v", env)
	}
	var data struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if data.Fields["email"] == "" {
		t.Fatalf("expected field error for email, got %s", string(env.Data))
	}

	env = decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/checkout", map[string]interface{}{
		"items": []map[string]interface{}{},
		"contact": map[string]interface{}{
			"name": "Ana", "email": "ana@example.com",
		},
		"is_pickup": true,
	}, ""))
	if env.StatusCode != 400 {
		t.Fatalf("empty cart want 400 got %+v", env)
	}
}

func TestComboCartSummary(t *testing.T) {
	f := newStorefrontFixture(t)

	env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/cart/combo", map[string]interface{}{"product_ids": f.comboIDs}, ""))
	if env.StatusCode != 0 {
		t.Fatalf("build combo failed: %+v", env)
	}
	var combo struct {
		Items []service.CartLineInput `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &combo); err != nil {
		t.Fatalf("decode combo failed: %v", err)
	}
	if len(combo.Items) != 3 {
		t.Fatalf("combo should expand to 3 lines, got %d", len(combo.Items))
	}

	bad := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/public/cart/combo", map[string]interface{}{"product_ids": f.comboIDs[:2]}, ""))
	if bad.StatusCode != 400 {
		t.Fatalf("two-item combo want 400 got %+v", bad)
	}
}

func TestAdminAuthAndRoles(t *testing.T) {
	f := newStorefrontFixture(t)

	if env := decodeEnvelope(t, f.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "owner", "password": "wrong"}, "")); env.StatusCode != 401 {
		t.Fatalf("wrong password want 401 got %+v", env)
	}
	if env := decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/admin/orders", nil, "")); env.StatusCode != 401 {
		t.Fatalf("missing token want 401 got %+v", env)
	}

	ownerToken := f.login(t, "owner", "owner-pass")
	me := decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/admin/me", nil, ownerToken))
	if me.StatusCode != 0 || !strings.Contains(string(me.Data), `"owner"`) {
		t.Fatalf("unexpected me response: %+v", me)
	}
	settings := map[string]interface{}{
		"combo_price":     "90",
		"delivery_window": "2-4 business days",
		"pickup_enabled":  true,
		"pickup_address":  "12 Main St",
	}
	if env := decodeEnvelope(t, f.do(t, http.MethodPut, "/api/v1/admin/settings/store", settings, ownerToken)); env.StatusCode != 0 {
		t.Fatalf("admin settings update failed: %+v", env)
	}

	staffToken := f.login(t, "clerk", "staff-pass")
	if env := decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/admin/orders", nil, staffToken)); env.StatusCode != 0 {
		t.Fatalf("staff should list orders: %+v", env)
	}
	if env := decodeEnvelope(t, f.do(t, http.MethodPut, "/api/v1/admin/settings/store", settings, staffToken)); env.StatusCode != 403 {
		t.Fatalf("staff settings update want 403 got %+v", env)
	}
	if env := decodeEnvelope(t, f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/coupons/%d", 1), nil, staffToken)); env.StatusCode != 403 {
		t.Fatalf("staff coupon delete want 403 got %+v", env)
	}
}

func TestAdminOrderStatusTransition(t *testing.T) {
	f := newStorefrontFixture(t)

	order := models.Order{
		OrderNo:         "AU-TEST-0001",
		StripeSessionID: "cs_seeded",
		Status:          constants.OrderStatusPending,
		CustomerName:    "Ana Ruiz",
		CustomerEmail:   "ana@example.com",
		Currency:        "usd",
		TotalAmount:     models.MustMoney("50"),
	}
	if err := f.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	token := f.login(t, "clerk", "staff-pass")
	path := fmt.Sprintf("/api/v1/admin/orders/%d/status", order.ID)
	if env := decodeEnvelope(t, f.do(t, http.MethodPatch, path, map[string]string{"status": "completed"}, token)); env.StatusCode != 0 {
		t.Fatalf("complete order failed: %+v", env)
	}
	if env := decodeEnvelope(t, f.do(t, http.MethodPatch, path, map[string]string{"status": "pending"}, token)); env.StatusCode != 400 {
		t.Fatalf("reopening a completed order want 400 got %+v", env)
	}

	var stored models.Order
	f.db.First(&stored, order.ID)
	if stored.Status != constants.OrderStatusCompleted {
		t.Fatalf("order status want completed got %s", stored.Status)
	}
}

func TestStripeWebhookMalformedSignedEventIsBadRequest(t *testing.T) {
	f := newStorefrontFixture(t)
	body := []byte(`{"id":"evt_no_type","data":{"object":{"object":"checkout.session","id":"cs_no_type"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(testWebhookSecret, time.Now(), body))
	resp := httptest.NewRecorder()
	f.engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("malformed signed event want 400 got %d body=%s", resp.Code, resp.Body.String())
	}
}
