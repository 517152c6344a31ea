package discounts

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ganbaru/storefront/internal/domain"
)

type DiscountRepository struct {
	db *sql.DB
}

func NewDiscountRepository(db *sql.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// FindActiveByCode resolves a coupon code to its active discount. An unknown
// or deactivated code returns (nil, nil): checkout proceeds undiscounted.
func (r *DiscountRepository) FindActiveByCode(ctx context.Context, code string) (*domain.Discount, error) {
	discount := &domain.Discount{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, percent, active, created_at
		FROM discounts
		WHERE code = $1 AND active
	`, code).Scan(&discount.ID, &discount.Code, &discount.Percent, &discount.Active, &discount.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return discount, nil
}

func (r *DiscountRepository) List(ctx context.Context) ([]domain.Discount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, percent, active, created_at
		FROM discounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	discounts := []domain.Discount{}
	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(&d.ID, &d.Code, &d.Percent, &d.Active, &d.CreatedAt); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return discounts, nil
}

func (r *DiscountRepository) Create(ctx context.Context, discount *domain.Discount) error {
	discount.ID = uuid.New().String()
	discount.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discounts (id, code, percent, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, discount.ID, discount.Code, discount.Percent, discount.Active, discount.CreatedAt)
	return err
}

// SetActive toggles a discount without touching orders that already
// reference it; their stored totals stay as computed at checkout time.
func (r *DiscountRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Discount, error) {
	discount := &domain.Discount{}

	err := r.db.QueryRowContext(ctx, `
		UPDATE discounts SET active = $1
		WHERE id = $2
		RETURNING id, code, percent, active, created_at
	`, active, id).Scan(&discount.ID, &discount.Code, &discount.Percent, &discount.Active, &discount.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return discount, nil
}
