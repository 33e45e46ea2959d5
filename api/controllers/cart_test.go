package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskerway/dawat-storefront/api/middleware"
	cartsvc "github.com/taskerway/dawat-storefront/internal/cart"
	"github.com/taskerway/dawat-storefront/pkg/config"
	pkgredis "github.com/taskerway/dawat-storefront/pkg/redis"
)

type noopStore struct{}

func (noopStore) Get(ctx context.Context, key string) (string, error) {
	return "", pkgredis.ErrNotFound
}

func (noopStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (noopStore) Del(ctx context.Context, keys ...string) error { return nil }

func newCartService(t *testing.T) cartsvc.Service {
	t.Helper()
	svc, err := cartsvc.NewService(noopStore{}, config.CartConfig{
		FreeDeliveryThreshold: decimal.RequireFromString("169.00"),
		DeliveryFee:           decimal.RequireFromString("15.00"),
		SessionTTL:            time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func withSession(req *http.Request, sessionID string) *http.Request {
	req.Header.Set("X-Session-Id", sessionID)
	return req
}

func TestCartAddItemHandler(t *testing.T) {
	t.Parallel()

	svc := newCartService(t)
	handler := middleware.Session(nil)(CartAddItem(svc, nil))

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId": 2}`)), "sess-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Count != 1 || len(resp.Data.Lines) != 1 {
		t.Fatalf("view = %+v", resp.Data)
	}
	if resp.Data.Lines[0].ProductID != 2 {
		t.Fatalf("line = %+v", resp.Data.Lines[0])
	}
}

func TestCartRequiresSessionHeader(t *testing.T) {
	t.Parallel()

	svc := newCartService(t)
	handler := middleware.Session(nil)(CartGet(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newCartService(t)
	handler := middleware.Session(nil)(CartAddItem(svc, nil))

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId": 99}`)), "sess-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
