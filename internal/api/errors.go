package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/store"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records the underlying error message
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	var ctx map[string]interface{}
	if len(eb.context) > 0 {
		ctx = eb.context
	}
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger  *slog.Logger
	metrics *Metrics
}

func NewErrorHandler(logger *slog.Logger, metrics *Metrics) *ErrorHandler {
	return &ErrorHandler{logger: logger, metrics: metrics}
}

// HandleError maps err onto a status code and error type and writes it.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr EngineError
	if errors.As(err, &engineErr) {
		eh.write(w, r, statusFor(engineErr.Type), engineErr)
		return
	}

	errType, status := classify(err)
	engineErr = NewError(errType, err.Error()).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()
	eh.write(w, r, status, engineErr)
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		Build()
	eh.write(w, r, http.StatusBadRequest, engineErr)
}

func (eh *ErrorHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	engineErr := NewError(ErrTypeUnauthorized, "missing or invalid API token").
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		Build()
	eh.write(w, r, http.StatusUnauthorized, engineErr)
}

// classify maps domain errors to an error type and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, engine.ErrInsufficientRange):
		return ErrTypeInsufficientRange, http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidRange),
		errors.Is(err, engine.ErrInvalidCount),
		errors.Is(err, store.ErrInvalidCombination),
		errors.Is(err, store.ErrInvalidImport),
		errors.Is(err, analysis.ErrNoNumbers):
		return ErrTypeValidation, http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeNotFound, http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTypeTimeout, http.StatusRequestTimeout
	default:
		return ErrTypeInternal, http.StatusInternalServerError
	}
}

func statusFor(errType string) int {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeInsufficientRange:
		return http.StatusUnprocessableEntity
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	case ErrTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (eh *ErrorHandler) write(w http.ResponseWriter, r *http.Request, status int, engineErr EngineError) {
	if engineErr.RequestID == "" {
		engineErr.RequestID = middleware.GetReqID(r.Context())
	}
	eh.logError(r, engineErr, status)
	if eh.metrics != nil {
		eh.metrics.errors.WithLabelValues(engineErr.Type).Inc()
	}
	writeErrorResponse(w, status, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	eh.logger.LogAttrs(r.Context(), level, "error_occurred",
		slog.String("type", engineErr.Type),
		slog.String("category", string(category)),
		slog.Int("status", status),
		slog.String("request_id", engineErr.RequestID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("message", engineErr.Message),
	)
}

// writeErrorResponse writes the error response as JSON
func writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Error("panic_recovered",
					"request_id", requestID,
					"path", r.URL.Path,
					"method", r.Method,
					"panic", fmt.Sprintf("%v", rvr),
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					Build()
				writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
