package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskerway/dawat-storefront/internal/catalog"
	"github.com/taskerway/dawat-storefront/pkg/config"
	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/redis"
)

// Line is a cart entry. Quantity is always >= 1; a line dropped to zero is
// removed, never stored.
type Line struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image_ref"`
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are derived on every read; the delivery fee is a pure function of
// the subtotal and is never cached.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// View is a value snapshot of a session's cart.
type View struct {
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
	Count  int    `json:"count"`
}

type sessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service exposes the per-session cart operations.
type Service interface {
	AddItem(ctx context.Context, sessionID string, productID int) (View, error)
	SetQuantity(ctx context.Context, sessionID string, productID, qty int) (View, error)
	RemoveItem(ctx context.Context, sessionID string, productID int) (View, error)
	Clear(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (View, error)
}

type service struct {
	mu sync.RWMutex
	// carts holds only sessions whose last persist failed. The session
	// store is the record of truth; this map is the fallback that keeps a
	// mutated cart correct until a later persist drains it.
	carts map[string][]Line

	store     sessionStore
	ttl       time.Duration
	threshold decimal.Decimal
	fee       decimal.Decimal
	find      func(id int) (catalog.Product, error)
	logg      *logger.Logger
}

// NewService builds a cart service persisting best-effort to the session store.
func NewService(store sessionStore, cfg config.CartConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store required")
	}
	if cfg.DeliveryFee.IsNegative() || cfg.FreeDeliveryThreshold.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "delivery pricing must be non-negative")
	}
	return &service{
		carts:     map[string][]Line{},
		store:     store,
		ttl:       cfg.SessionTTL,
		threshold: cfg.FreeDeliveryThreshold,
		fee:       cfg.DeliveryFee,
		find:      catalog.Find,
		logg:      logg,
	}, nil
}

// AddItem inserts the product or increments its quantity by one.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int) (View, error) {
	if sessionID == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	product, err := s.find(productID)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  1,
			ImageRef:  product.ImageRef,
		})
	}

	s.carts[sessionID] = lines
	s.persistLocked(ctx, sessionID, lines)
	return s.viewOf(lines), nil
}

// SetQuantity overwrites the quantity; zero or below removes the line.
func (s *service) SetQuantity(ctx context.Context, sessionID string, productID, qty int) (View, error) {
	if sessionID == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	out := lines[:0]
	for _, line := range lines {
		if line.ProductID == productID {
			if qty <= 0 {
				continue
			}
			line.Quantity = qty
		}
		out = append(out, line)
	}

	s.carts[sessionID] = out
	s.persistLocked(ctx, sessionID, out)
	return s.viewOf(out), nil
}

// RemoveItem deletes the line for the product if present.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.SetQuantity(ctx, sessionID, productID, 0)
}

// Clear drops the session's cart from memory and the session store.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	if err := s.store.Del(ctx, redis.CartKey(sessionID)); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart clear persistence failed")
	}
	return nil
}

// Get returns the current cart snapshot with freshly computed totals.
func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	if sessionID == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewOf(s.loadLocked(ctx, sessionID)), nil
}

// loadLocked returns the session's lines, preferring the unpersisted
// fallback copy and otherwise reading the session store. Loads never fill
// the in-memory map, so abandoned sessions expire with their store entry.
func (s *service) loadLocked(ctx context.Context, sessionID string) []Line {
	if lines, ok := s.carts[sessionID]; ok {
		return lines
	}

	raw, err := s.store.Get(ctx, redis.CartKey(sessionID))
	if err != nil {
		if !redis.IsNotFound(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart reload failed, starting empty")
		}
		return nil
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "persisted cart is corrupt, starting empty")
		}
		return nil
	}
	return lines
}

// persistLocked is a side effect of every mutation. Failures are swallowed:
// the cart stays correct in memory and only loses restart durability. A
// successful persist drops the memory copy so the map stays bounded.
func (s *service) persistLocked(ctx context.Context, sessionID string, lines []Line) {
	payload, err := json.Marshal(lines)
	if err == nil {
		err = s.store.Set(ctx, redis.CartKey(sessionID), payload, s.ttl)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart persistence failed, continuing in memory")
		}
		return
	}
	delete(s.carts, sessionID)
}

func (s *service) viewOf(lines []Line) View {
	view := View{
		Lines: make([]Line, len(lines)),
	}
	copy(view.Lines, lines)

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
		view.Count += line.Quantity
	}

	fee := s.fee
	if subtotal.GreaterThanOrEqual(s.threshold) {
		fee = decimal.Zero
	}

	view.Totals = Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
	return view
}
