package apperr

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"employee-directory/middleware/requestid"
)

type Detail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type Envelope struct {
	Error Detail `json:"error"`
}

// Responder escreve erros no formato de envelope JSON e registra no log os
// erros 5xx com a causa original.
type Responder struct {
	Log *zap.Logger
}

func (rs Responder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	e := As(err)
	if e == nil {
		e = Internal("unexpected nil error", nil)
	}

	reqID := ""
	if r != nil {
		reqID = requestid.From(r.Context())
	}

	status := e.Kind.HTTPStatus()
	msg := e.Message
	if status >= http.StatusInternalServerError {
		rs.logFailure(r, e, reqID, status)
		if e.Kind == KindInternal {
			// não expõe detalhe interno
			msg = "An unexpected error occurred"
		}
	}

	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(e.RetryAfter.Seconds())))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: Detail{
		Code:      e.Kind.String(),
		Message:   msg,
		RequestID: reqID,
	}})
}

func (rs Responder) logFailure(r *http.Request, e *Error, reqID string, status int) {
	if rs.Log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("error_code", e.Kind.String()),
		zap.Int("http_status", status),
		zap.String("request_id", reqID),
	}
	if r != nil {
		fields = append(fields, zap.String("method", r.Method), zap.String("path", r.URL.Path))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	rs.Log.Error(e.Message, fields...)
}
