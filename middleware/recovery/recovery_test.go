package recovery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"employee-directory/internal/apperr"
)

func TestMiddleware_PanicBecomes500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Middleware(apperr.Responder{Log: zap.New(core)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom: secret detail")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/employees", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Fatalf("panic detail leaked: %s", w.Body.String())
	}
	if logs.FilterMessage("panic in handler").Len() == 0 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestMiddleware_PassesThrough(t *testing.T) {
	h := Middleware(apperr.Responder{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
