package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects a checkout with nothing to order. No transaction
	// is started.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrStaleSubmission means the submitted idempotency token is missing or
	// does not match the one issued for this session: either a replayed form
	// or an expired session. The user has to restart checkout.
	ErrStaleSubmission = errors.New("checkout already processed or session expired")
)

// InsufficientStockError aborts the whole transaction on the first cart line
// the locked stock cannot cover. It carries what the user needs to adjust
// their cart.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.ProductName, e.Available)
}

// ProductUnavailableError surfaces a cart line whose product disappeared or
// was taken off sale between enrichment and the locked revalidation. Display
// merely skips such lines; checkout must not, or it would silently order
// different contents than the user saw.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductID)
}
