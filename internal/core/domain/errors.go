package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source, provider or storage type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRunInProgress indicates a pipeline run is already executing.
	ErrRunInProgress = errors.New("run in progress")

	// ErrNoSources indicates no entity source could be ingested.
	// A run without any source would publish "no documented connection"
	// for every candidate without having searched anything.
	ErrNoSources = errors.New("no entity sources available")

	// ErrThresholdBelowFloor indicates a configuration tried to loosen a safety floor.
	ErrThresholdBelowFloor = errors.New("threshold below enforced floor")

	// Data-quality faults. Fatal to the affected record only.

	// ErrMissingDocumentRef indicates an entity without any primary-source reference.
	ErrMissingDocumentRef = errors.New("entity has no document reference")

	// ErrUncitedConnection indicates a connection whose citations are missing
	// or lack a resolvable document URL.
	ErrUncitedConnection = errors.New("connection has no resolvable citation")

	// External-collaborator faults. These fail closed.

	// ErrLLMUnavailable indicates the reasoning service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrOracleUnavailable indicates the reasoning service could not be reached
	// or returned a server-side failure. Transient.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrRateLimited indicates the reasoning service rate limit was exceeded. Transient.
	ErrRateLimited = errors.New("rate limited")

	// ErrBudgetExhausted indicates the per-run oracle request budget is spent.
	ErrBudgetExhausted = errors.New("oracle request budget exhausted")

	// ErrUnparseableResponse indicates the oracle answered with something that
	// does not map onto the expected vocabulary.
	ErrUnparseableResponse = errors.New("unparseable oracle response")

	// ErrSourceUnavailable indicates an entity source could not be ingested.
	ErrSourceUnavailable = errors.New("entity source unavailable")

	// Programming errors.

	// ErrInvariantViolation indicates the corroboration gate was bypassed.
	// Records that hit this are aborted loudly.
	ErrInvariantViolation = errors.New("invariant violation")
)

// IsTransient reports whether err is worth retrying with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOracleUnavailable) || errors.Is(err, ErrRateLimited)
}
