package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/bharat2468/cloud-project/internal/catalog"
	"github.com/bharat2468/cloud-project/internal/domain"
	"github.com/bharat2468/cloud-project/internal/event"
	"github.com/bharat2468/cloud-project/internal/repository"
	apperrors "github.com/bharat2468/cloud-project/pkg/errors"
)

const (
	// DefaultFetchConcurrency bounds the catalog fan-out on a cart read.
	DefaultFetchConcurrency = 4

	// MaxProductIDLength is the longest product id accepted on a mutation.
	MaxProductIDLength = 64
)

var cartItemsOmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_view_items_omitted_total",
		Help: "Cart items omitted from views because the catalog lookup failed",
	},
	[]string{"reason"},
)

// CatalogClient is the read-side contract with the product catalog service.
type CatalogClient interface {
	Fetch(ctx context.Context, productID string) (*domain.Product, error)
}

// AddResult is the outcome of an add mutation. AlreadyInCart distinguishes an
// idempotent repeat from a first add; neither is an error.
type AddResult struct {
	Item          domain.CartItem `json:"item"`
	AlreadyInCart bool            `json:"already_in_cart"`
}

// CartService implements cart aggregation and mutation on top of the
// membership repository and the catalog client.
type CartService struct {
	repo             repository.MembershipRepository
	catalog          CatalogClient
	producer         *event.Producer
	logger           *slog.Logger
	fetchConcurrency int
	viewTimeout      time.Duration
}

// NewCartService creates a new cart service. fetchConcurrency bounds the
// per-request catalog fan-out; viewTimeout is the overall deadline for
// assembling one cart view.
func NewCartService(
	repo repository.MembershipRepository,
	catalogClient CatalogClient,
	producer *event.Producer,
	logger *slog.Logger,
	fetchConcurrency int,
	viewTimeout time.Duration,
) *CartService {
	if fetchConcurrency <= 0 {
		fetchConcurrency = DefaultFetchConcurrency
	}
	return &CartService{
		repo:             repo,
		catalog:          catalogClient,
		producer:         producer,
		logger:           logger,
		fetchConcurrency: fetchConcurrency,
		viewTimeout:      viewTimeout,
	}
}

// GetCartView assembles the user's cart by enriching each membership row with
// live catalog data. Lookups run concurrently with bounded parallelism and
// join before returning; no lookup outlives this call.
//
// Per-item failures never fail the view: a row whose lookup answered 404 or
// could not be resolved is omitted from Items and Total and surfaced in
// Warnings instead. Only a membership store failure is fatal.
func (s *CartService) GetCartView(ctx context.Context, userID string) (*domain.CartView, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart memberships: %w", err)
	}

	if len(rows) == 0 {
		return domain.EmptyCartView(), nil
	}

	if s.viewTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.viewTimeout)
		defer cancel()
	}

	// Resolve each row into a slot so the view preserves membership order
	// regardless of which lookup finishes first.
	type resolution struct {
		product *domain.Product
		reason  domain.WarningReason
	}
	resolved := make([]resolution, len(rows))

	g, fetchCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)

	for i := range rows {
		g.Go(func() error {
			row := rows[i]
			product, err := s.catalog.Fetch(fetchCtx, row.ProductID)
			switch {
			case err == nil:
				resolved[i] = resolution{product: product}
			case errors.Is(err, catalog.ErrProductNotFound):
				resolved[i] = resolution{reason: domain.ReasonNotFound}
			default:
				resolved[i] = resolution{reason: domain.ReasonUnavailable}
			}
			// Lookup failures degrade to omission; only cancellation of the
			// whole view aborts the group.
			return nil
		})
	}

	// Goroutines never return errors, so Wait only reflects ctx cancellation
	// through fetchCtx inside Fetch itself.
	_ = g.Wait()

	view := domain.EmptyCartView()
	for i, res := range resolved {
		if res.product != nil {
			view.Items = append(view.Items, *res.product)
			view.Total += res.product.Price
			continue
		}

		view.Warnings = append(view.Warnings, domain.ItemWarning{
			ProductID: rows[i].ProductID,
			Reason:    res.reason,
		})
		cartItemsOmitted.WithLabelValues(string(res.reason)).Inc()
		s.logger.WarnContext(ctx, "cart item omitted from view",
			slog.String("user_id", userID),
			slog.String("product_id", rows[i].ProductID),
			slog.String("reason", string(res.reason)),
		)
	}

	return view, nil
}

// AddProduct puts a product into the user's cart. The catalog must affirm the
// product exists before a membership row is created: a definitive 404 fails
// with a not-found error, and an unreachable catalog fails with an
// upstream-unavailable error. Repeating an add for a pair already in the cart
// is not an error; the existing row is returned with AlreadyInCart set.
func (s *CartService) AddProduct(ctx context.Context, userID, productID string) (*AddResult, error) {
	if err := validateMutation(userID, productID); err != nil {
		return nil, err
	}

	if _, err := s.catalog.Fetch(ctx, productID); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			return nil, apperrors.NotFound("product", productID)
		default:
			return nil, apperrors.UpstreamUnavailable("catalog service", err)
		}
	}

	item, created, err := s.repo.Create(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("create cart membership: %w", err)
	}

	if created {
		if err := s.producer.PublishItemAdded(ctx, item); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.item_added event",
				slog.String("user_id", userID),
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Bool("already_in_cart", !created),
	)

	return &AddResult{Item: item, AlreadyInCart: !created}, nil
}

// RemoveProduct takes a product out of the user's cart. Removing a product
// that is not in the cart is not an error; the result is simply nil.
func (s *CartService) RemoveProduct(ctx context.Context, userID, productID string) (*domain.CartItem, error) {
	if err := validateMutation(userID, productID); err != nil {
		return nil, err
	}

	item, err := s.repo.Delete(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("delete cart membership: %w", err)
	}

	if item != nil {
		if err := s.producer.PublishItemRemoved(ctx, *item); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.item_removed event",
				slog.String("user_id", userID),
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Bool("was_present", item != nil),
	)

	return item, nil
}

// Checkout clears the user's cart and returns the cleared rows. It is a pure
// cart-clearing primitive: no catalog interaction, no price verification, no
// order creation. Downstream consumers of the cart.checked_out event must
// re-price the cleared product ids themselves.
func (s *CartService) Checkout(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("user id is required")
	}

	items, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := s.producer.PublishCheckedOut(ctx, userID, items); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.checked_out event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart checked out",
		slog.String("user_id", userID),
		slog.Int("cleared_items", len(items)),
	)

	return items, nil
}

// validateMutation checks the identifiers common to add and remove.
func validateMutation(userID, productID string) error {
	if userID == "" {
		return apperrors.Unauthorized("user id is required")
	}
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if len(productID) > MaxProductIDLength {
		return apperrors.InvalidInput(fmt.Sprintf("product id must not exceed %d characters", MaxProductIDLength))
	}
	return nil
}
