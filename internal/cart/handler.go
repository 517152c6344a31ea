package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ganbaru/storefront/internal/session"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

type cartResponse struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	items, err := h.store.Items(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, cartResponse{Items: items, Total: SumItems(items)})
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	if _, err := h.store.Add(r.Context(), sessionID, req.ProductID, qty); err != nil {
		h.logger.Error("failed to add cart item", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart item added", "product_id", req.ProductID, "quantity", qty)
	h.HandleGet(w, r)
}

type setItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleSetItem(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req setItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.store.Set(r.Context(), sessionID, productID, req.Quantity); err != nil {
		h.logger.Error("failed to set cart item", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart item set", "product_id", productID, "quantity", req.Quantity)
	h.HandleGet(w, r)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	if _, err := h.store.Remove(r.Context(), sessionID, productID); err != nil {
		h.logger.Error("failed to remove cart item", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart item removed", "product_id", productID)
	h.HandleGet(w, r)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := session.ID(r)
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	if err := h.store.Clear(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to clear cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart cleared")
	w.WriteHeader(http.StatusNoContent)
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
