package domain

import "time"

// CartItem is a cart membership row: the durable fact that a product belongs
// to a user's cart. It carries no price; pricing is always resolved live
// against the catalog service.
type CartItem struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Product is a snapshot of a catalog product, owned entirely by the catalog
// service. It is fetched fresh on every cart read and never persisted or
// cached by this service.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
}

// WarningReason classifies why a cart item could not be resolved against the
// catalog on a read.
type WarningReason string

const (
	// ReasonNotFound means the catalog definitively answered that the
	// product no longer exists. The membership row becomes orphaned but is
	// not deleted by the read path.
	ReasonNotFound WarningReason = "not_found"

	// ReasonUnavailable means the catalog could not be reached or answered
	// with a server error; the product may still exist.
	ReasonUnavailable WarningReason = "unavailable"
)

// ItemWarning records a cart item that was omitted from a view because its
// catalog lookup failed.
type ItemWarning struct {
	ProductID string        `json:"product_id"`
	Reason    WarningReason `json:"reason"`
}

// CartView is the enriched, ephemeral representation of a user's cart,
// computed on every read. Total sums the prices of resolved items only;
// unresolved memberships appear in Warnings instead of Items.
type CartView struct {
	Items    []Product     `json:"items"`
	Total    float64       `json:"total"`
	Warnings []ItemWarning `json:"warnings,omitempty"`
}

// EmptyCartView returns the view of a cart with no memberships.
func EmptyCartView() *CartView {
	return &CartView{Items: []Product{}, Total: 0}
}

// ItemCount returns the number of resolved items in the view.
func (v *CartView) ItemCount() int {
	return len(v.Items)
}
