package domain

import "sort"

// Cart maps product id to requested quantity. It lives entirely in the
// session store; every mutation must be persisted back by the caller.
// Quantities are always positive: any operation that would drop a quantity
// to zero or below removes the entry instead.
type Cart map[string]int

// Add adjusts the quantity for a product by delta, which may be negative.
func (c Cart) Add(productID string, delta int) {
	qty := c[productID] + delta
	if qty <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = qty
}

// Set stores an absolute quantity, removing the entry at zero or below.
func (c Cart) Set(productID string, qty int) {
	if qty <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = qty
}

func (c Cart) Remove(productID string) {
	delete(c, productID)
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// ProductIDs returns the referenced product ids in ascending order. Checkout
// relies on this ordering to take row locks deterministically.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
