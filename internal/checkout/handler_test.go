package checkout

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

func newTestHandler(env *testEnv) *Handler {
	return NewHandler(env.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleBegin(t *testing.T) {
	t.Run("requires session id", func(t *testing.T) {
		handler := newTestHandler(newTestEnv())

		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		rec := httptest.NewRecorder()

		handler.HandleBegin(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		handler := newTestHandler(newTestEnv())

		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		req.Header.Set(session.HeaderSessionID, testSession)
		rec := httptest.NewRecorder()

		handler.HandleBegin(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("returns summary with token", func(t *testing.T) {
		env := newTestEnv(domain.Product{ID: "p1", Name: "Notebook", Price: dec("10.00"), Stock: 5, Available: true})
		env.addToCart(t, "p1", 2)
		handler := newTestHandler(env)

		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		req.Header.Set(session.HeaderSessionID, testSession)
		rec := httptest.NewRecorder()

		handler.HandleBegin(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Total string `json:"total"`
			Token string `json:"token"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != "20.00" {
			t.Errorf("expected total 20.00, got %s", resp.Total)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})
}

func TestHandler_HandleSubmit(t *testing.T) {
	t.Run("requires user id", func(t *testing.T) {
		handler := newTestHandler(newTestEnv())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
		req.Header.Set(session.HeaderSessionID, testSession)
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("maps stale token to conflict", func(t *testing.T) {
		env := newTestEnv(domain.Product{ID: "p1", Name: "Notebook", Price: dec("10.00"), Stock: 5, Available: true})
		env.addToCart(t, "p1", 1)
		handler := newTestHandler(env)

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"token":"bogus"}`))
		req.Header.Set(session.HeaderSessionID, testSession)
		req.Header.Set(session.HeaderUserID, testUser)
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("maps insufficient stock to conflict with details", func(t *testing.T) {
		env := newTestEnv(domain.Product{ID: "p1", Name: "Notebook", Price: dec("10.00"), Stock: 1, Available: true})
		env.addToCart(t, "p1", 2)
		token := env.beginToken(t)
		handler := newTestHandler(env)

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"token":"`+token+`"}`))
		req.Header.Set(session.HeaderSessionID, testSession)
		req.Header.Set(session.HeaderUserID, testUser)
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !strings.Contains(resp["error"], "Notebook") || !strings.Contains(resp["error"], "1 available") {
			t.Errorf("expected stock details in error, got %q", resp["error"])
		}
	})

	t.Run("creates order", func(t *testing.T) {
		env := newTestEnv(domain.Product{ID: "p1", Name: "Notebook", Price: dec("10.00"), Stock: 5, Available: true})
		env.addToCart(t, "p1", 2)
		token := env.beginToken(t)
		handler := newTestHandler(env)

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"token":"`+token+`"}`))
		req.Header.Set(session.HeaderSessionID, testSession)
		req.Header.Set(session.HeaderUserID, testUser)
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var order domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
			t.Fatalf("failed to decode order: %v", err)
		}
		if order.ID == "" {
			t.Error("expected order id")
		}
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected PENDING, got %s", order.Status)
		}
		if !order.Total.Equal(dec("20.00")) {
			t.Errorf("expected total 20.00, got %s", order.Total)
		}
	})
}
