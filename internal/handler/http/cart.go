package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bharat2468/cloud-project/internal/domain"
	"github.com/bharat2468/cloud-project/internal/service"
	"github.com/bharat2468/cloud-project/pkg/httputil"
	"github.com/bharat2468/cloud-project/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// productIDParam validates the {productId} path parameter. Product ids are
// opaque catalog identifiers, not UUIDs, so validation stays structural.
type productIDParam struct {
	ProductID string `validate:"required,max=64,printascii,excludesall= "`
}

// --- Response DTOs ---

// RemoveResponse is the JSON response for a remove mutation. Removed is null
// when the product was not in the cart.
type RemoveResponse struct {
	Removed *domain.CartItem `json:"removed"`
}

// CheckoutResponse is the JSON response for a checkout.
type CheckoutResponse struct {
	ClearedItems []domain.CartItem `json:"cleared_items"`
	ItemCount    int               `json:"item_count"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetCartView(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AddProduct handles POST /api/v1/cart/{productId}
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if err := validator.Validate(productIDParam{ProductID: productID}); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.AddProduct(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if result.AlreadyInCart {
		status = http.StatusOK
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: result})
}

// RemoveProduct handles DELETE /api/v1/cart/{productId}
func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if err := validator.Validate(productIDParam{ProductID: productID}); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.service.RemoveProduct(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: RemoveResponse{Removed: item}})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CheckoutResponse{
		ClearedItems: items,
		ItemCount:    len(items),
	}})
}

// --- Helpers ---

// requireUserID pulls the authenticated user ID placed in the context by
// UserIDFromHeader. Returns false if it wrote a 401 response, which only
// happens when a route is registered without the middleware.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return "", false
	}
	return userID, true
}
