package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that no portfolio matched the given token.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrSettingsNotFound indicates that no model-settings document exists for the key.
	ErrSettingsNotFound = errors.New("model settings not found")

	// ErrSettingNotFound indicates that a singleton setting (e.g. the default portfolio) is unset.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrImportFileNotFound indicates that the configured import file does not exist.
	ErrImportFileNotFound = errors.New("import file not found")
)

// Business logic errors represent validation failures or rule violations.
var (
	// ErrInvalidArgument indicates that a required input is missing or empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReservedPortfolio indicates an operation that is not allowed on the reserved import portfolio.
	ErrReservedPortfolio = errors.New("operation not allowed on reserved portfolio")

	// ErrAllocationExhausted indicates that no free unique_id was found within the retry budget.
	ErrAllocationExhausted = errors.New("failed to generate unique portfolio ID after multiple attempts")
)

// Infrastructure errors represent failures of the document store or the modeling backend.
var (
	// ErrStoreUnavailable indicates a document store connection or query failure.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrUpstreamUnavailable indicates the modeling backend could not be reached
	// or answered with a body that is not JSON.
	ErrUpstreamUnavailable = errors.New("modeling backend unavailable")

	// ErrUpstreamRejected indicates the modeling backend answered with a non-success status.
	ErrUpstreamRejected = errors.New("modeling backend rejected the request")
)

// ArgumentError carries a user-facing message for a missing or invalid input.
type ArgumentError struct {
	Message string
}

// InvalidArgument returns an ArgumentError with the given message.
func InvalidArgument(message string) error {
	return &ArgumentError{Message: message}
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NotFoundError echoes the token a lookup was attempted with.
// Key names the input the token came from ("portfolio", "unique_id").
type NotFoundError struct {
	Key   string
	Token string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("portfolio not found for %s %q", e.Key, e.Token)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrPortfolioNotFound
}

// UpstreamError is a non-success answer from the modeling backend.
// Status and Message are relayed to the caller unchanged.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRejected
}
