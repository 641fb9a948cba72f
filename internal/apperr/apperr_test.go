package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"employee-directory/middleware/requestid"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidTenant:      http.StatusBadRequest,
		KindInvalidArgument:    http.StatusBadRequest,
		KindRateLimited:        http.StatusTooManyRequests,
		KindBackendUnavailable: http.StatusInternalServerError,
		KindInternal:           http.StatusInternalServerError,
		KindOverloaded:         http.StatusServiceUnavailable,
	}
	for k, want := range cases {
		require.Equal(t, want, k.HTTPStatus(), k.String())
	}
}

func TestAsClassifiesWrappedAndForeignErrors(t *testing.T) {
	wrapped := fmt.Errorf("search: %w", InvalidArgument("limit must be between 1 and 100"))
	require.Equal(t, KindInvalidArgument, KindOf(wrapped))

	foreign := errors.New("boom")
	e := As(foreign)
	require.Equal(t, KindInternal, e.Kind)
	require.ErrorIs(t, e, foreign)

	require.Nil(t, As(nil))
}

func TestRespondRateLimitedSetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/search/employees", nil)
	r = r.WithContext(requestid.With(r.Context(), "req-1"))

	Responder{}.Respond(w, r, RateLimited(20, 60*time.Second))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))

	var env Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	require.Equal(t, "RATE_LIMITED", env.Error.Code)
	require.Equal(t, "req-1", env.Error.RequestID)
	require.Contains(t, env.Error.Message, "Maximum 20 requests per 60 seconds")
}

func TestRespondInternalHidesCauseAndLogs(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rs := Responder{Log: zap.New(core)}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/search/employees", nil)
	rs.Respond(w, r, errors.New("secret connection string leaked"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "secret")
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "INTERNAL_UNEXPECTED", logs.All()[0].ContextMap()["error_code"])
}
