// Package checkout implements the order-placement sequence: idempotency
// token handling, locked stock validation, order creation with price
// snapshots, stock decrement, and total computation, all inside one
// transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ganbaru/storefront/internal/cart"
	"github.com/ganbaru/storefront/internal/domain"
	"github.com/ganbaru/storefront/internal/session"
)

var tracer = otel.Tracer("checkout")

// DiscountFinder resolves coupon codes to active discounts.
type DiscountFinder interface {
	FindActiveByCode(ctx context.Context, code string) (*domain.Discount, error)
}

type Service struct {
	uow       UnitOfWork
	carts     *cart.Store
	sessions  session.Store
	discounts DiscountFinder
	logger    *slog.Logger

	ordersPlaced metric.Int64Counter
	failures     metric.Int64Counter
}

func NewService(uow UnitOfWork, carts *cart.Store, sessions session.Store, discounts DiscountFinder, logger *slog.Logger) *Service {
	meter := otel.Meter("checkout")
	ordersPlaced, _ := meter.Int64Counter("checkout.orders_placed",
		metric.WithDescription("Orders successfully created at checkout"))
	failures, _ := meter.Int64Counter("checkout.failures",
		metric.WithDescription("Checkout attempts rejected, by reason"))

	return &Service{
		uow:          uow,
		carts:        carts,
		sessions:     sessions,
		discounts:    discounts,
		logger:       logger,
		ordersPlaced: ordersPlaced,
		failures:     failures,
	}
}

// Summary is what the checkout page shows before submission, together with
// the token the form must echo back.
type Summary struct {
	Items []cart.Item
	Total string
	Token string
}

// Begin prepares a checkout: it enriches the cart for display and issues a
// fresh idempotency token, replacing any previously issued one for this
// session.
func (s *Service) Begin(ctx context.Context, sessionID string) (*Summary, error) {
	loaded, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if loaded.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items, err := s.carts.Enrich(ctx, loaded)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		// every stored line points at a vanished or unavailable product
		return nil, ErrEmptyCart
	}

	token := NewToken()
	if err := s.sessions.Set(ctx, tokenKey(sessionID), token); err != nil {
		return nil, fmt.Errorf("store checkout token: %w", err)
	}

	return &Summary{
		Items: items,
		Total: cart.SumItems(items).StringFixed(2),
		Token: token,
	}, nil
}

// Checkout places an order for the session's cart. The token must be the one
// issued by the preceding Begin; it is consumed only after a successful
// commit, so a failed attempt can be resubmitted with the same form.
func (s *Service) Checkout(ctx context.Context, userID, sessionID, couponCode, token string) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout",
		trace.WithAttributes(attribute.String("checkout.user_id", userID)),
	)
	defer span.End()

	order, err := s.checkout(ctx, userID, sessionID, couponCode, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", failureReason(err))))
		return nil, err
	}

	span.SetAttributes(attribute.String("checkout.order_id", order.ID))
	s.ordersPlaced.Add(ctx, 1)
	return order, nil
}

func (s *Service) checkout(ctx context.Context, userID, sessionID, couponCode, token string) (*domain.Order, error) {
	loaded, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if loaded.IsEmpty() {
		return nil, ErrEmptyCart
	}

	stored, err := s.sessions.Get(ctx, tokenKey(sessionID))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrStaleSubmission
		}
		return nil, fmt.Errorf("read checkout token: %w", err)
	}
	if token == "" || token != stored {
		return nil, ErrStaleSubmission
	}

	var discount *domain.Discount
	if couponCode != "" {
		// an unknown or inactive code is not an error, the order simply
		// proceeds undiscounted
		discount, err = s.discounts.FindActiveByCode(ctx, couponCode)
		if err != nil {
			return nil, fmt.Errorf("resolve coupon: %w", err)
		}
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := loaded.ProductIDs()
	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	for _, id := range ids {
		product, ok := locked[id]
		if !ok || !product.Available {
			return nil, &ProductUnavailableError{ProductID: id}
		}
		if product.Stock < loaded[id] {
			return nil, &InsufficientStockError{
				ProductID:   id,
				ProductName: product.Name,
				Available:   product.Stock,
			}
		}
	}

	order := &domain.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if discount != nil {
		order.DiscountID = &discount.ID
	}

	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, id := range ids {
		product := locked[id]
		qty := loaded[id]

		product.Stock -= qty
		product.Normalize()
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return nil, fmt.Errorf("update product %s: %w", id, err)
		}

		line := &domain.OrderLine{
			ID:        uuid.New().String(),
			ProductID: id,
			Quantity:  qty,
			UnitPrice: product.Price,
		}
		if err := tx.InsertOrderLine(ctx, order.ID, line); err != nil {
			return nil, fmt.Errorf("insert order line for %s: %w", id, err)
		}
		order.Lines = append(order.Lines, *line)
	}

	order.Total = domain.OrderTotal(order.Lines, discount)
	if err := tx.UpdateOrderTotal(ctx, order.ID, order.Total); err != nil {
		return nil, fmt.Errorf("update order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	// Post-commit cleanup. The order exists either way; a failure here only
	// means the session keeps a cart the user already bought.
	if err := s.sessions.Delete(ctx, tokenKey(sessionID)); err != nil {
		s.logger.Error("failed to consume checkout token", "error", err, "order_id", order.ID)
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Error("failed to clear cart after checkout", "error", err, "order_id", order.ID)
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"lines", len(order.Lines),
		"total", order.Total.StringFixed(2),
	)

	return order, nil
}

func failureReason(err error) string {
	var stockErr *InsufficientStockError
	var unavailableErr *ProductUnavailableError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrStaleSubmission):
		return "stale_submission"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &unavailableErr):
		return "product_unavailable"
	default:
		return "internal"
	}
}
