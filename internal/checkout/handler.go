package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ganbaru/storefront/internal/cart"
	"github.com/ganbaru/storefront/internal/session"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type summaryResponse struct {
	Items []cart.Item `json:"items"`
	Total string      `json:"total"`
	Token string      `json:"token"`
}

// HandleBegin is the GET step: it returns the order summary and issues the
// idempotency token the POST must echo back.
func (h *Handler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	summary, err := h.service.Begin(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			h.writeError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		h.logger.Error("failed to begin checkout", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, summaryResponse{
		Items: summary.Items,
		Total: summary.Total,
		Token: summary.Token,
	})
}

type checkoutRequest struct {
	Token      string `json:"token"`
	CouponCode string `json:"coupon_code"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	userID := session.UserID(r)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user id")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Checkout(r.Context(), userID, sessionID, req.CouponCode, req.Token)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) respondCheckoutError(w http.ResponseWriter, err error) {
	var stockErr *InsufficientStockError
	var unavailableErr *ProductUnavailableError

	switch {
	case errors.Is(err, ErrEmptyCart):
		h.writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, ErrStaleSubmission):
		h.writeError(w, http.StatusConflict, ErrStaleSubmission.Error())
	case errors.As(err, &stockErr):
		h.writeError(w, http.StatusConflict,
			fmt.Sprintf("insufficient stock for %q: %d available", stockErr.ProductName, stockErr.Available))
	case errors.As(err, &unavailableErr):
		h.writeError(w, http.StatusConflict,
			fmt.Sprintf("product %s is no longer available", unavailableErr.ProductID))
	default:
		h.logger.Error("checkout failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
