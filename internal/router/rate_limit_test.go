package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aurelia-jewelry/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newKeyContext(t *testing.T, path, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"
	return c
}

func TestKeyByIPAndJSONFieldReadsCheckoutContactEmail(t *testing.T) {
	c := newKeyContext(t, "/api/v1/public/checkout", `{"items":[{"product_id":1,"quantity":1}],"contact":{"name":"Ana","email":" Ana@Example.com "}}`)

	key := KeyByIPAndJSONField("contact.email")(c)
	if key != "ana@example.com|1.2.3.4" {
		t.Fatalf("key want ana@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Ana@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestKeyByIPAndJSONFieldAdminUsername(t *testing.T) {
	c := newKeyContext(t, "/api/v1/admin/login", `{"username":" Owner ","password":"x"}`)
	if key := KeyByIPAndJSONField("username")(c); key != "owner|1.2.3.4" {
		t.Fatalf("key want owner|1.2.3.4 got %s", key)
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	cases := map[string]string{
		"missing nested":  `{"contact":{"name":"Ana"}}`,
		"not an object":   `{"contact":"ana@example.com"}`,
		"non string leaf": `{"contact":{"email":42}}`,
		"invalid json":    `{"contact":`,
	}
	for name, body := range cases {
		c := newKeyContext(t, "/api/v1/public/checkout", body)
		if key := KeyByIPAndJSONField("contact.email")(c); key != "1.2.3.4" {
			t.Fatalf("%s: key want 1.2.3.4 got %s", name, key)
		}
	}
}

func newPingEngine(client *redis.Client, rule RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(client, rule, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	r := newPingEngine(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass through, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRateLimitMiddlewareFailsOpenWhenRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	r := newPingEngine(client, RateLimitRule{Prefix: "rl:checkout", WindowSeconds: 60, MaxRequests: 1, BlockSeconds: 300})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should fail open, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := []struct {
		name string
		ttl  int64
		rule RateLimitRule
		want int
	}{
		{name: "ttl wins", ttl: 42, rule: RateLimitRule{WindowSeconds: 60, BlockSeconds: 300}, want: 42},
		{name: "block when ttl missing", ttl: -1, rule: RateLimitRule{WindowSeconds: 60, BlockSeconds: 300}, want: 300},
		{name: "window without block", ttl: 0, rule: RateLimitRule{WindowSeconds: 60}, want: 60},
		{name: "at least one second", ttl: -2, rule: RateLimitRule{}, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryAfterSeconds(tc.ttl, tc.rule); got != tc.want {
				t.Fatalf("retry after want %d got %d", tc.want, got)
			}
		})
	}
}

func TestAbortTooManyRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/checkout", func(c *gin.Context) {
		abortTooManyRequests(c, retryAfterSeconds(-1, RateLimitRule{WindowSeconds: 60, BlockSeconds: 900}))
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	if reached {
		t.Fatalf("handler chain should be aborted")
	}
	if got := w.Header().Get("Retry-After"); got != "900" {
		t.Fatalf("Retry-After want 900 got %q", got)
	}
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if env.StatusCode != response.CodeTooManyRequests || !strings.Contains(env.Msg, "retry in 900 seconds") {
		t.Fatalf("unexpected response: %+v", env)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
