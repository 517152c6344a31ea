package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ganbaru/storefront/internal/domain"
)

// UnitOfWork opens the transactional boundary the atomic checkout section
// runs in. It abstracts the storage engine so the orchestrator can be tested
// against fakes; the Postgres implementation lives in this package.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one checkout transaction. LockProducts must take exclusive row locks
// in ascending product id order, and every write below stays invisible to
// other transactions until Commit. Rollback after Commit is a no-op, which
// lets callers keep it in a defer.
type Tx interface {
	LockProducts(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertOrderLine(ctx context.Context, orderID string, line *domain.OrderLine) error
	UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error
	Commit() error
	Rollback() error
}
