package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine references one product per order. UnitPrice is the price
// captured under lock at checkout time and never tracks later product
// price changes.
type OrderLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	DiscountID *string         `json:"discount_id,omitempty"`
	Lines      []OrderLine     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderTotal derives an order's total from its lines and optional discount.
// The stored total column is always recomputed through this function, never
// edited directly. Rounding is shopspring's default half-away-from-zero,
// applied per line subtotal and once more after the discount.
func OrderTotal(lines []OrderLine, discount *Discount) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	if discount != nil && discount.Active {
		factor := decimal.NewFromInt(int64(100 - discount.Percent)).Div(decimal.NewFromInt(100))
		total = total.Mul(factor)
	}
	return total.Round(2)
}
