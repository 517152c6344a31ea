package domain

import "time"

// Discount is a percentage coupon. Percent is restricted to 1..90 by the
// schema. Orders keep their stored total even if the referenced discount is
// deactivated later.
type Discount struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Percent   int       `json:"percent"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
