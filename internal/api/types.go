package api

import (
	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/entropy"
	"github.com/MJE43/powerball-superposition/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidParams     = "invalid_params"
	ErrTypeValidation        = "validation_error"
	ErrTypeInsufficientRange = "insufficient_range"

	// Storage errors
	ErrTypeNotFound = "not_found"

	// Access errors
	ErrTypeUnauthorized = "unauthorized"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryStorage    ErrorCategory = "storage"
	CategoryAuth       ErrorCategory = "auth"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeValidation, ErrTypeInsufficientRange:
		return CategoryValidation
	case ErrTypeNotFound:
		return CategoryStorage
	case ErrTypeUnauthorized:
		return CategoryAuth
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// GenerateRequest asks for one number set. Omitted ranges fall back to the
// server defaults.
type GenerateRequest struct {
	Main    *engine.Pick    `json:"main,omitempty"`
	Special *engine.Range   `json:"special,omitempty"`
	Ambient entropy.Ambient `json:"ambient"`
	// Save stores the result as a combination.
	Save bool `json:"save,omitempty"`
}

// GenerateResponse carries the generated set and, when requested, the saved
// combination.
type GenerateResponse struct {
	Result        engine.Result      `json:"result"`
	Saved         *store.Combination `json:"saved,omitempty"`
	EngineVersion string             `json:"engine_version"`
}

// StatusResponse reports engine, analyzer and storage state.
type StatusResponse struct {
	Engine        engine.Status  `json:"engine"`
	Analysis      analysis.Stats `json:"analysis"`
	SavedCount    int            `json:"saved_count"`
	EngineVersion string         `json:"engine_version"`
}

// RecentResponse lists the engine history, newest first.
type RecentResponse struct {
	Results []engine.Result `json:"results"`
	Count   int             `json:"count"`
}

// AnalyzeRequest scores a set against the historical draws.
type AnalyzeRequest struct {
	Main    []int `json:"main"`
	Special int   `json:"special"`
	Top     int   `json:"top,omitempty"`
}

// CompareRequest compares two arbitrary sets.
type CompareRequest struct {
	Left  []int `json:"left"`
	Right []int `json:"right"`
}

// DrawsResponse lists the loaded historical draws.
type DrawsResponse struct {
	Draws []analysis.Draw `json:"draws"`
	Total int             `json:"total"`
}

// SaveRequest stores a combination supplied by the caller.
type SaveRequest struct {
	Main      []int  `json:"main"`
	Powerball int    `json:"powerball"`
	Entropy   string `json:"entropy,omitempty"`
}

// CombinationsResponse lists saved combinations.
type CombinationsResponse struct {
	Combinations []store.Combination `json:"combinations"`
	Total        int                 `json:"total"`
}

// ImportResponse reports how many combinations an import added.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id,omitempty"`
}
