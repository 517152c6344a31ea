package discounts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ganbaru/storefront/internal/domain"
)

type Handler struct {
	repo   *DiscountRepository
	logger *slog.Logger
}

func NewHandler(repo *DiscountRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list discounts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, discounts)
}

type createDiscountRequest struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
	Active  *bool  `json:"active"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" {
		h.writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Percent < 1 || req.Percent > 90 {
		h.writeError(w, http.StatusBadRequest, "percent must be between 1 and 90")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	discount := &domain.Discount{
		Code:    req.Code,
		Percent: req.Percent,
		Active:  active,
	}

	if err := h.repo.Create(r.Context(), discount); err != nil {
		h.logger.Error("failed to create discount", "error", err, "code", req.Code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("discount created", "discount_id", discount.ID, "code", discount.Code, "percent", discount.Percent)
	h.writeJSON(w, http.StatusCreated, discount)
}

type updateDiscountRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing discount id")
		return
	}

	var req updateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	discount, err := h.repo.SetActive(r.Context(), id, req.Active)
	if err != nil {
		h.logger.Error("failed to update discount", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if discount == nil {
		h.writeError(w, http.StatusNotFound, "discount not found")
		return
	}

	h.logger.Info("discount updated", "discount_id", id, "active", discount.Active)
	h.writeJSON(w, http.StatusOK, discount)
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
