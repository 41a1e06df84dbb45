// internal/app/features/errors/errlog.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error
// responses so handlers can report a failure in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// LogServerError logs the underlying error with request context and
// renders the server-error page with a user-safe message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	RenderServerError(w, r, userMsg, backURL)
}

// jsonError is the error envelope for API endpoints.
type jsonError struct {
	Error string `json:"error"`
}

// LogJSONError logs the underlying error and writes a JSON error
// response with the given status and user-safe message.
func (e *ErrorLogger) LogJSONError(w http.ResponseWriter, r *http.Request, status int, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Int("status", status),
		zap.Error(err))
	WriteJSONError(w, status, userMsg)
}

// WriteJSONError writes a bare JSON error response.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: msg})
}
