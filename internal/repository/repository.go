package repository

import (
	"context"

	"github.com/bharat2468/cloud-project/internal/domain"
)

// MembershipRepository defines the interface for cart membership persistence.
// It is the single source of truth for "is this product in this user's cart".
type MembershipRepository interface {
	// ListByUser returns all membership rows for the user in the order they
	// were added. An empty cart yields an empty slice, not an error.
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)

	// Exists reports whether a membership row exists for the pair.
	Exists(ctx context.Context, userID, productID string) (bool, error)

	// Create inserts a membership row for the pair. The returned bool is true
	// when the row was newly created and false when it already existed.
	// Safe under concurrent identical calls: the storage-level uniqueness
	// constraint guarantees at most one row survives.
	Create(ctx context.Context, userID, productID string) (domain.CartItem, bool, error)

	// Delete removes the membership row for the pair and returns it. A nil
	// row (with nil error) means nothing was present; that is not an error.
	Delete(ctx context.Context, userID, productID string) (*domain.CartItem, error)

	// DeleteAllForUser removes every membership row for the user atomically
	// and returns the removed rows. Rows of other users are untouched.
	DeleteAllForUser(ctx context.Context, userID string) ([]domain.CartItem, error)
}
