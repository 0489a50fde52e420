package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bharat2468/cloud-project/internal/domain"
	"github.com/bharat2468/cloud-project/pkg/database"
)

// MembershipRepository implements repository.MembershipRepository using
// PostgreSQL. The cart_items table carries a primary key on
// (user_id, product_id), so uniqueness of a membership pair is enforced by
// the store itself rather than by read-then-write logic.
type MembershipRepository struct {
	pool database.DBTX
}

// NewMembershipRepository creates a new PostgreSQL-backed membership repository.
func NewMembershipRepository(pool database.DBTX) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// ListByUser returns all cart membership rows for the user, oldest first.
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `
		SELECT user_id, product_id, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return items, nil
}

// Exists checks whether a product is in the user's cart.
func (r *MembershipRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cart_items WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cart item exists: %w", err)
	}

	return exists, nil
}

// Create inserts a membership row for the pair. ON CONFLICT DO NOTHING makes
// the insert idempotent under concurrent identical calls; when the insert is
// a no-op the pre-existing row is read back and reported as not-created.
func (r *MembershipRepository) Create(ctx context.Context, userID, productID string) (domain.CartItem, bool, error) {
	insert := `
		INSERT INTO cart_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING user_id, product_id, added_at`

	var item domain.CartItem
	err := r.pool.QueryRow(ctx, insert, userID, productID).
		Scan(&item.UserID, &item.ProductID, &item.AddedAt)
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.CartItem{}, false, fmt.Errorf("create cart item: %w", err)
	}

	// Conflict path: the row already exists, read it back.
	selectExisting := `
		SELECT user_id, product_id, added_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2`

	err = r.pool.QueryRow(ctx, selectExisting, userID, productID).
		Scan(&item.UserID, &item.ProductID, &item.AddedAt)
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("read existing cart item: %w", err)
	}

	return item, false, nil
}

// Delete removes the membership row for the pair, returning the removed row
// or nil when nothing was present.
func (r *MembershipRepository) Delete(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2
		RETURNING user_id, product_id, added_at`

	var item domain.CartItem
	err := r.pool.QueryRow(ctx, query, userID, productID).
		Scan(&item.UserID, &item.ProductID, &item.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}

	return &item, nil
}

// DeleteAllForUser clears the user's cart in a single statement, so the clear
// is atomic with respect to concurrent mutations for the same user.
func (r *MembershipRepository) DeleteAllForUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `
		DELETE FROM cart_items
		WHERE user_id = $1
		RETURNING user_id, product_id, added_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cleared cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cleared cart items: %w", err)
	}

	return items, nil
}
