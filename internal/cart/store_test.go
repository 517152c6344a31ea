package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ganbaru/storefront/internal/domain"
	"github.com/ganbaru/storefront/internal/session"
)

type fakeCatalog struct {
	products map[string]domain.Product
}

func (f *fakeCatalog) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	found := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestStore(products ...domain.Product) *Store {
	catalog := &fakeCatalog{products: make(map[string]domain.Product)}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	return NewStore(session.NewMemoryStore(), catalog)
}

const sid = "session-1"

func TestStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("persists across loads", func(t *testing.T) {
		store := newTestStore()

		if _, err := store.Add(ctx, sid, "p1", 2); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if _, err := store.Add(ctx, sid, "p1", 1); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		cart, err := store.Load(ctx, sid)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cart["p1"] != 3 {
			t.Errorf("expected quantity 3, got %d", cart["p1"])
		}
	})

	t.Run("negative delta drops the line", func(t *testing.T) {
		store := newTestStore()

		if _, err := store.Add(ctx, sid, "p1", 2); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		cart, err := store.Add(ctx, sid, "p1", -2)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !cart.IsEmpty() {
			t.Errorf("expected empty cart, got %v", cart)
		}
	})
}

func TestStore_Set(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Set(ctx, sid, "p1", 5); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	cart, err := store.Set(ctx, sid, "p1", 0)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart after set to zero, got %v", cart)
	}

	// setting to zero twice behaves the same as once
	cart, err = store.Set(ctx, sid, "p1", 0)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %v", cart)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Add(ctx, sid, "p1", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Clear(ctx, sid); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	cart, err := store.Load(ctx, sid)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %v", cart)
	}
}

func TestStore_Items(t *testing.T) {
	ctx := context.Background()

	available := domain.Product{ID: "p1", Name: "Notebook", Price: dec("19.99"), Stock: 10, Available: true}
	offSale := domain.Product{ID: "p2", Name: "Pen", Price: dec("2.50"), Stock: 5, Available: false}

	t.Run("enriches with product and subtotal", func(t *testing.T) {
		store := newTestStore(available)
		if _, err := store.Add(ctx, sid, "p1", 3); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		items, err := store.Items(ctx, sid)
		if err != nil {
			t.Fatalf("items failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Product.ID != "p1" || items[0].Quantity != 3 {
			t.Errorf("unexpected item: %+v", items[0])
		}
		if !items[0].UnitPrice.Equal(dec("19.99")) {
			t.Errorf("expected unit price 19.99, got %s", items[0].UnitPrice)
		}
		if !items[0].Subtotal.Equal(dec("59.97")) {
			t.Errorf("expected subtotal 59.97, got %s", items[0].Subtotal)
		}
	})

	t.Run("skips unavailable and missing products without purging", func(t *testing.T) {
		store := newTestStore(available, offSale)
		for _, id := range []string{"p1", "p2", "ghost"} {
			if _, err := store.Add(ctx, sid, id, 1); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}

		items, err := store.Items(ctx, sid)
		if err != nil {
			t.Fatalf("items failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Product.ID != "p1" {
			t.Errorf("expected p1, got %s", items[0].Product.ID)
		}

		// the stored mapping keeps the skipped lines
		cart, err := store.Load(ctx, sid)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(cart) != 3 {
			t.Errorf("expected 3 stored lines, got %d", len(cart))
		}
	})
}

func TestStore_Total(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart totals zero", func(t *testing.T) {
		store := newTestStore()
		total, err := store.Total(ctx, sid)
		if err != nil {
			t.Fatalf("total failed: %v", err)
		}
		if !total.Equal(decimal.Zero) {
			t.Errorf("expected 0, got %s", total)
		}
	})

	t.Run("sums subtotals", func(t *testing.T) {
		store := newTestStore(
			domain.Product{ID: "p1", Name: "Notebook", Price: dec("19.99"), Stock: 10, Available: true},
			domain.Product{ID: "p2", Name: "Pen", Price: dec("2.50"), Stock: 5, Available: true},
		)
		if _, err := store.Add(ctx, sid, "p1", 2); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if _, err := store.Add(ctx, sid, "p2", 4); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		total, err := store.Total(ctx, sid)
		if err != nil {
			t.Fatalf("total failed: %v", err)
		}
		if !total.Equal(dec("49.98")) {
			t.Errorf("expected 49.98, got %s", total)
		}
	})
}
