package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/api/controllers"
	"github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/storefront"
	pkgauth "github.com/shoplane/storefront-backend/pkg/auth"
	"github.com/shoplane/storefront-backend/pkg/config"
	"github.com/shoplane/storefront-backend/pkg/kv"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// platformStub plays the commerce platform behind the upstream client.
func platformStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/promos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"promos":[{"code":"SAVE10","kind":"percentage","offer_percent":"10","active":true}]}`)
	})
	mux.HandleFunc("/v1/promos/validate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Code == "SAVE10" {
			fmt.Fprint(w, `{"is_valid":true,"code":"SAVE10"}`)
			return
		}
		fmt.Fprintf(w, `{"is_valid":false,"code":%q,"reason":"unknown code"}`, req.Code)
	})
	mux.HandleFunc("/v1/shipping/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fee_cents":799,"currency":"USD"}`)
	})
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"platform-token","customer_id":"cust-login"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Session = config.SessionConfig{Secret: "test-secret", Issuer: "shoplane-test", ExpirationMinutes: 60}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	platform := platformStub(t)

	client, err := upstream.New(config.UpstreamConfig{BaseURL: platform.URL}, logg, nil)
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}

	catalog := promo.NewCatalog(logg)
	if err := catalog.Refresh(context.Background(), client); err != nil {
		t.Fatalf("refresh catalog: %v", err)
	}

	registry, err := storefront.NewRegistry(storefront.Deps{
		KV:       kv.NewMemoryStore(),
		Platform: client,
		Catalog:  catalog,
		Currency: "USD",
		TaxRate:  decimal.Zero,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	t.Cleanup(registry.Close)

	return NewRouter(testConfig(), logg, registry, client, catalog, nil,
		controllers.NamedPinger{Name: "kv", Pinger: stubPinger{}},
	)
}

func customerToken(t *testing.T) string {
	t.Helper()
	token, err := pkgauth.IssueSessionToken(testConfig().Session, "cust-1", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestGuestGetsSessionToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart/", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-SL-Session") == "" {
		t.Fatal("expected a guest session token header")
	}
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	token := customerToken(t)
	productID := uuid.New()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id":       productID,
		"name":             "tea",
		"unit_price_cents": 1000,
		"qty":              2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := dataField(t, rec)["subtotal_cents"].(float64); got != 2000 {
		t.Fatalf("expected subtotal 2000, got %v", got)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/"+productID.String(), token, map[string]any{"qty": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := dataField(t, rec)["subtotal_cents"].(float64); got != 5000 {
		t.Fatalf("expected subtotal 5000, got %v", got)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/"+productID.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	if got := dataField(t, rec)["subtotal_cents"].(float64); got != 0 {
		t.Fatalf("expected empty subtotal, got %v", got)
	}
}

func TestPromoApplyOverHTTP(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	token := customerToken(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id":       uuid.New(),
		"name":             "tea",
		"unit_price_cents": 10000,
		"qty":              1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/promos/apply", token, map[string]any{"code": "SAVE10"})
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := dataField(t, rec)
	summary := data["summary"].(map[string]any)
	if got := summary["discount_cents"].(float64); got != 1000 {
		t.Fatalf("expected discount 1000, got %v", got)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/promos/apply", token, map[string]any{"code": "NOPE"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rejected code: expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/promos/applied", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	summary = dataField(t, rec)["summary"].(map[string]any)
	if got := summary["discount_cents"].(float64); got != 0 {
		t.Fatalf("expected cleared discount, got %v", got)
	}
}

func TestSummaryAddressTriggersShippingQuote(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	token := customerToken(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id":       uuid.New(),
		"name":             "tea",
		"unit_price_cents": 10000,
		"qty":              1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/summary/address", token, map[string]any{
		"address": map[string]any{
			"line1":       "1 Main St",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62701",
			"country":     "US",
		},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("address: expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	// The quote lands asynchronously.
	deadline := time.After(2 * time.Second)
	for {
		rec = doJSON(t, router, http.MethodGet, "/api/v1/summary/", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("summary: expected 200, got %d", rec.Code)
		}
		if got := dataField(t, rec)["shipping_cents"].(float64); got == 799 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("shipping fee never landed: %s", rec.Body.String())
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestAccountSurfaceRejectsGuests(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	guestToken, err := pkgauth.IssueSessionToken(testConfig().Session, "guest-x", true)
	if err != nil {
		t.Fatalf("issue guest token: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", guestToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest checkout, got %d", rec.Code)
	}
}

func TestLoginMintsStorefrontToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "shopper@example.com",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataField(t, rec)
	claims, err := pkgauth.ParseSessionToken(testConfig().Session, data["token"].(string))
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.CustomerID != "cust-login" || claims.Guest {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestPromoListIsPublicToSessions(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/promos/", customerToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	promos := dataField(t, rec)["promos"].([]any)
	if len(promos) != 1 {
		t.Fatalf("expected 1 promo, got %d", len(promos))
	}
}
