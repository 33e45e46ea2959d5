package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskerway/dawat-storefront/pkg/config"
	pkgredis "github.com/taskerway/dawat-storefront/pkg/redis"
)

const familyPackID = 5 // 169.00
const raitaID = 3      // 15.00
const cakeID = 4       // 55.00

func TestAddItemIncrementsQuantity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.AddItem(ctx, "s1", cakeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(view.Lines))
	}
	if view.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", view.Lines[0].Quantity)
	}
	if view.Count != 2 {
		t.Fatalf("expected count 2, got %d", view.Count)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	if _, err := svc.AddItem(context.Background(), "s1", 999); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestTotalsFreeDeliveryAtThreshold(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "s1", familyPackID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertDecimal(t, view.Totals.Subtotal, "169")
	assertDecimal(t, view.Totals.DeliveryFee, "0")
	assertDecimal(t, view.Totals.Total, "169")
}

func TestTotalsFlatFeeBelowThreshold(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	// 15 + 55 = 70, below the 169 threshold.
	if _, err := svc.AddItem(ctx, "s1", raitaID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.AddItem(ctx, "s1", cakeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertDecimal(t, view.Totals.Subtotal, "70")
	assertDecimal(t, view.Totals.DeliveryFee, "15")
	assertDecimal(t, view.Totals.Total, "85")
	if !view.Totals.Total.Equal(view.Totals.Subtotal.Add(view.Totals.DeliveryFee)) {
		t.Fatal("total must equal subtotal plus delivery fee")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.SetQuantity(ctx, "s1", cakeID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(view.Lines))
	}

	view, err = svc.SetQuantity(ctx, "s1", cakeID, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatal("negative quantity must also remove the line")
	}
}

func TestSetQuantityOverwrites(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.SetQuantity(ctx, "s1", cakeID, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Lines[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", view.Lines[0].Quantity)
	}
	assertDecimal(t, view.Totals.Subtotal, "220")
	assertDecimal(t, view.Totals.DeliveryFee, "0")
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart after clear, got %d lines", len(view.Lines))
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.setErr = errors.New("storage quota exceeded")
	svc := newTestService(t, store)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "s1", cakeID)
	if err != nil {
		t.Fatalf("mutation must succeed despite persistence failure: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatal("cart must stay correct in memory")
	}
}

func TestColdLoadFromSessionStore(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fresh service sharing the store simulates a process restart.
	fresh := newTestService(t, store)
	view, err := fresh.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ProductID != cakeID {
		t.Fatalf("expected cart reconstructed from store, got %+v", view.Lines)
	}
}

func TestMemoryFallbackDrainsAfterPersist(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(t, store)
	impl := svc.(*service)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "s1", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cachedSessions(impl); got != 0 {
		t.Fatalf("persisted sessions must not linger in memory, got %d", got)
	}

	store.setErr = errors.New("store unavailable")
	if _, err := svc.AddItem(ctx, "s2", cakeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cachedSessions(impl); got != 1 {
		t.Fatalf("unpersisted session must stay in memory, got %d", got)
	}

	store.setErr = nil
	view, err := svc.AddItem(ctx, "s2", cakeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Lines[0].Quantity != 2 {
		t.Fatalf("fallback copy lost a mutation, quantity = %d", view.Lines[0].Quantity)
	}
	if got := cachedSessions(impl); got != 0 {
		t.Fatalf("memory copy must drain once persistence recovers, got %d", got)
	}
}

func cachedSessions(s *service) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

func TestSessionIDRequired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore())
	if _, err := svc.AddItem(context.Background(), "", cakeID); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func newTestService(t *testing.T, store sessionStore) Service {
	t.Helper()

	svc, err := NewService(store, config.CartConfig{
		FreeDeliveryThreshold: decimal.RequireFromString("169.00"),
		DeliveryFee:           decimal.RequireFromString("15.00"),
		SessionTTL:            time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertDecimal(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

type fakeStore struct {
	values map[string]string
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	val, ok := f.values[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return val, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}
