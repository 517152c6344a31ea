package cart

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ganbaru/storefront/internal/domain"
	"github.com/ganbaru/storefront/internal/session"
)

func newTestHandler(products ...domain.Product) *Handler {
	return NewHandler(newTestStore(products...), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleGet(t *testing.T) {
	t.Run("requires session id", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("empty cart serves zero total", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(session.HeaderSessionID, sid)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			Items []Item `json:"items"`
			Total string `json:"total"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Items) != 0 {
			t.Errorf("expected no items, got %d", len(resp.Items))
		}
		if resp.Total != "0" {
			t.Errorf("expected total 0, got %s", resp.Total)
		}
	})
}

func TestHandler_HandleAddItem(t *testing.T) {
	handler := newTestHandler(domain.Product{ID: "p1", Name: "Notebook", Price: dec("19.99"), Stock: 10, Available: true})

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"p1","quantity":2}`))
	req.Header.Set(session.HeaderSessionID, sid)
	rec := httptest.NewRecorder()

	handler.HandleAddItem(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []Item `json:"items"`
		Total string `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if resp.Total != "39.98" {
		t.Errorf("expected total 39.98, got %s", resp.Total)
	}
}

func TestHandler_HandleSetItem(t *testing.T) {
	handler := newTestHandler(domain.Product{ID: "p1", Name: "Notebook", Price: dec("19.99"), Stock: 10, Available: true})

	add := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"p1"}`))
	add.Header.Set(session.HeaderSessionID, sid)
	handler.HandleAddItem(httptest.NewRecorder(), add)

	set := httptest.NewRequest(http.MethodPut, "/cart/items/p1", strings.NewReader(`{"quantity":0}`))
	set.SetPathValue("productId", "p1")
	set.Header.Set(session.HeaderSessionID, sid)
	rec := httptest.NewRecorder()

	handler.HandleSetItem(rec, set)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected line removed at quantity 0, got %+v", resp.Items)
	}
}
