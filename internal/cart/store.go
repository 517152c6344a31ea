// Package cart implements the session-backed cart store. The mapping itself
// lives in the external session store; this package loads it, applies
// normalized mutations, persists it back, and enriches it against the
// catalog for display and checkout.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ganbaru/storefront/internal/domain"
	"github.com/ganbaru/storefront/internal/session"
)

const sessionKeyPrefix = "cart:"

// ProductFinder is the read-only catalog lookup the cart needs for
// enrichment.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

type Store struct {
	sessions session.Store
	products ProductFinder
}

func NewStore(sessions session.Store, products ProductFinder) *Store {
	return &Store{
		sessions: sessions,
		products: products,
	}
}

// Item is a cart entry enriched with its product record. Subtotal is
// UnitPrice times Quantity rounded to two decimals.
type Item struct {
	Product   domain.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func cartKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Load reads the cart for a session. An absent key is an empty cart, never
// an error.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := s.sessions.Get(ctx, cartKey(sessionID))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return domain.Cart{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := domain.Cart{}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func (s *Store) save(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.sessions.Set(ctx, cartKey(sessionID), string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Add adjusts the stored quantity for a product by delta and persists the
// result. No stock validation happens here; checkout revalidates under lock.
func (s *Store) Add(ctx context.Context, sessionID, productID string, delta int) (domain.Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Add(productID, delta)
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Set stores an absolute quantity, dropping the entry at zero or below.
func (s *Store) Set(ctx context.Context, sessionID, productID string, qty int) (domain.Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Set(productID, qty)
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Store) Remove(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, cartKey(sessionID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Items enriches the stored cart against the catalog, in ascending product
// id order. Entries whose product no longer exists or is unavailable are
// skipped, not purged: the stored mapping is left alone so the line comes
// back if the product does.
func (s *Store) Items(ctx context.Context, sessionID string) ([]Item, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, cart)
}

// Enrich builds display items for an already-loaded cart. Checkout uses it
// with the same cart it later validates under lock.
func (s *Store) Enrich(ctx context.Context, cart domain.Cart) ([]Item, error) {
	items := []Item{}
	if cart.IsEmpty() {
		return items, nil
	}

	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("enrich cart: %w", err)
	}

	for _, id := range cart.ProductIDs() {
		product, ok := products[id]
		if !ok || !product.Available {
			continue
		}
		qty := cart[id]
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		items = append(items, Item{
			Product:   product,
			Quantity:  qty,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
	}

	return items, nil
}

// Total sums the enriched subtotals. An empty cart totals zero.
func (s *Store) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumItems(items), nil
}

func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
