/*
errors.go - Centralized error types for the SMA engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calling layers (api, store) wrap these errors with transport or
  persistence context.

ERROR CATEGORIES:
  1. Validation errors - bad input data, collected as a LIST (never
     fail-fast) so callers can report every problem at once
  2. Configuration errors - an inconsistent ParameterSet; fatal, the
     calculation cannot proceed
  3. Sentinel errors - lookup and invariant failures usable with errors.Is()

NOT ERRORS:
  Arithmetic edge cases (zero BIC, insufficient loss-data years) are NOT
  errors. They are explicit ILM gating branches with a recorded reason;
  see ilm.go.

USAGE:
  result, err := calc.Calculate(input)
  var verrs sma.ValidationErrors
  if errors.As(err, &verrs) {
      for _, ve := range verrs {
          // ve.Code, ve.Field, ve.Message
      }
  }
*/
package sma

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrResultNotFound is returned when a referenced calculation run doesn't exist.
	ErrResultNotFound = errors.New("calculation result not found")

	// ErrLossEventNotFound is returned when a referenced loss event doesn't exist.
	ErrLossEventNotFound = errors.New("loss event not found")

	// ErrParameterVersionNotFound is returned when no parameter version is
	// effective for the requested calculation date.
	ErrParameterVersionNotFound = errors.New("no effective parameter version")

	// ErrDuplicateRunID is returned when a result with the same run_id already
	// exists. Results are created exactly once per run.
	ErrDuplicateRunID = errors.New("duplicate run id")

	// ErrRecoveryExceedsGross is returned when adding a recovery would push the
	// recovery total above the event's gross amount.
	ErrRecoveryExceedsGross = errors.New("recoveries exceed gross amount")

	// ErrAlreadyExcluded is returned when excluding a loss event twice.
	// Exclusion is a one-way transition.
	ErrAlreadyExcluded = errors.New("loss event already excluded")

	// ErrApprovalReferenceRequired is returned when an exclusion is attempted
	// without a regulatory approval reference.
	ErrApprovalReferenceRequired = errors.New("exclusion requires approval reference")
)

// =============================================================================
// VALIDATION ERRORS - Collected, field-level, never fail-fast
// =============================================================================

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// ValidationErrors is the full list of problems found in one validation pass.
// The calculation does not proceed if any are present, and ALL of them are
// surfaced to the caller.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// =============================================================================
// CONFIGURATION ERRORS - Fatal parameter inconsistencies
// =============================================================================

// ConfigurationError indicates an internally inconsistent ParameterSet
// (e.g. threshold_1 >= threshold_2, negative coefficients). There is no
// meaningful partial result, so it propagates immediately.
type ConfigurationError struct {
	Parameter string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("parameter configuration invalid: %s: %s", e.Parameter, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}
	return errors.Is(err, ErrDuplicateRunID) ||
		errors.Is(err, ErrRecoveryExceedsGross) ||
		errors.Is(err, ErrAlreadyExcluded) ||
		errors.Is(err, ErrApprovalReferenceRequired)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrLossEventNotFound) ||
		errors.Is(err, ErrParameterVersionNotFound)
}

// IsConfiguration returns true for fatal ParameterSet inconsistencies.
func IsConfiguration(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}
