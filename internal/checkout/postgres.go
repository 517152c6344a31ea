package checkout

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ganbaru/storefront/internal/domain"
)

// PostgresUnitOfWork implements UnitOfWork on database/sql. Read-committed
// isolation plus SELECT ... FOR UPDATE row locks is all the serialization
// checkout needs: two transactions touching the same product queue up on the
// row, and the ORDER BY id lock order rules out deadlock cycles between
// carts sharing products.
type PostgresUnitOfWork struct {
	db *sql.DB
}

func NewPostgresUnitOfWork(db *sql.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) Begin(ctx context.Context) (Tx, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LockProducts(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, description, price, stock, available, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := make(map[string]*domain.Product, len(ids))
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (t *postgresTx) UpdateProduct(ctx context.Context, product *domain.Product) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = $1, available = $2, updated_at = NOW()
		WHERE id = $3
	`, product.Stock, product.Available, product.ID)
	return err
}

func (t *postgresTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, discount_id, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, order.Status, order.DiscountID, order.Total, order.CreatedAt)
	return err
}

func (t *postgresTx) InsertOrderLine(ctx context.Context, orderID string, line *domain.OrderLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`, line.ID, orderID, line.ProductID, line.Quantity, line.UnitPrice)
	return err
}

func (t *postgresTx) UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET total = $1
		WHERE id = $2
	`, total, orderID)
	return err
}

func (t *postgresTx) Commit() error {
	return t.tx.Commit()
}

func (t *postgresTx) Rollback() error {
	return t.tx.Rollback()
}
