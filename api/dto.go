/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  Every monetary amount travels as a JSON string ("80000000000"), never as
  a float. The decimal semantics of the engine would be lost the moment a
  value round-trips through float64.

TYPES:
  Business indicators:
    BusinessIndicatorDTO, SubmitIndicatorRequest

  Loss data:
    LossEventDTO, CreateLossEventRequest, RecoveryRequest, ExclusionRequest

  Calculations:
    CalculationRequest, CalculationResultDTO, OverrideRequest

  Lineage:
    AuditRecordDTO, VerificationDTO

  Parameters:
    factory.ParameterJSON is used directly (it already IS the wire format)

SEE ALSO:
  - handlers.go: Uses these types
  - factory/parameters.go: ParameterJSON type
*/
package api

import (
	"time"

	"github.com/warp/capital-engine/lineage"
	"github.com/warp/capital-engine/sma"
)

// =============================================================================
// BUSINESS INDICATOR TYPES
// =============================================================================

// BusinessIndicatorDTO represents one period of BI data in API responses.
type BusinessIndicatorDTO struct {
	EntityID string `json:"entity_id"`
	Period   string `json:"period"`
	ILDC     string `json:"ildc"`
	SC       string `json:"sc"`
	FC       string `json:"fc"`
	BITotal  string `json:"bi_total"`
}

// SubmitIndicatorRequest is the request to submit BI data for a period.
type SubmitIndicatorRequest struct {
	Period string `json:"period"`
	ILDC   string `json:"ildc"`
	SC     string `json:"sc"`
	FC     string `json:"fc"`
}

// =============================================================================
// LOSS DATA TYPES
// =============================================================================

// LossEventDTO represents a loss event in API responses.
type LossEventDTO struct {
	EventID           string `json:"event_id"`
	EntityID          string `json:"entity_id"`
	OccurrenceDate    string `json:"occurrence_date"`
	DiscoveryDate     string `json:"discovery_date"`
	AccountingDate    string `json:"accounting_date"`
	GrossAmount       string `json:"gross_amount"`
	NetAmount         string `json:"net_amount"`
	IsExcluded        bool   `json:"is_excluded"`
	ExclusionReason   string `json:"exclusion_reason,omitempty"`
	ApprovalReference string `json:"approval_reference,omitempty"`
}

// CreateLossEventRequest is the request to record a loss event.
// EventID is optional; one is generated when absent.
type CreateLossEventRequest struct {
	EventID        string `json:"event_id,omitempty"`
	EntityID       string `json:"entity_id"`
	OccurrenceDate string `json:"occurrence_date"`
	DiscoveryDate  string `json:"discovery_date"`
	AccountingDate string `json:"accounting_date"`
	GrossAmount    string `json:"gross_amount"`
}

// RecoveryRequest is the request to apply a recovery to a loss event.
type RecoveryRequest struct {
	Amount      string `json:"amount"`
	ReceiptDate string `json:"receipt_date"`
}

// ExclusionRequest is the request to exclude a loss event.
type ExclusionRequest struct {
	Reason            string `json:"reason"`
	ApprovalReference string `json:"approval_reference"`
}

// =============================================================================
// CALCULATION TYPES
// =============================================================================

// CalculationRequest is the request to run an SMA calculation.
// RunID is optional; one is generated when absent. ParameterVersion pins a
// specific version; when absent, the version effective at CalculationDate
// is resolved.
type CalculationRequest struct {
	EntityID         string `json:"entity_id"`
	CalculationDate  string `json:"calculation_date"`
	RunID            string `json:"run_id,omitempty"`
	ParameterVersion string `json:"parameter_version,omitempty"`
}

// CalculationResultDTO is the full result of one run.
type CalculationResultDTO struct {
	RunID           string `json:"run_id"`
	EntityID        string `json:"entity_id"`
	CalculationDate string `json:"calculation_date"`

	BICurrent string `json:"bi_current"`
	BIAverage string `json:"bi_average"`
	Bucket    string `json:"bucket"`

	BIC          string            `json:"bic"`
	BICBreakdown map[string]string `json:"bic_breakdown"`
	LC           string            `json:"lc"`

	AverageAnnualLoss string `json:"average_annual_loss"`
	LossDataYears     int    `json:"loss_data_years"`

	ILM           string `json:"ilm"`
	ILMGated      bool   `json:"ilm_gated"`
	ILMGateReason string `json:"ilm_gate_reason,omitempty"`

	ORC string `json:"orc"`
	RWA string `json:"rwa"`

	ParameterVersion string `json:"parameter_version"`
	ModelVersion     string `json:"model_version"`
	Timestamp        string `json:"timestamp"`

	Override *OverrideProvenanceDTO `json:"override,omitempty"`
}

// OverrideProvenanceDTO explains how a derived result diverges from its
// original calculation.
type OverrideProvenanceDTO struct {
	Type          string `json:"type"`
	OriginalRunID string `json:"original_run_id"`
	Approver      string `json:"approver"`
	Reason        string `json:"reason"`
	AppliedAt     string `json:"applied_at"`
}

// OverrideRequest is the request to derive a corrected result.
// Exactly one of CapitalAdjustment or ILMOverride must be set, matching Type.
type OverrideRequest struct {
	Type              string `json:"type"` // "capital_adjustment" or "ilm_override"
	CapitalAdjustment string `json:"capital_adjustment,omitempty"`
	ILMOverride       string `json:"ilm_override,omitempty"`
	NewRunID          string `json:"new_run_id,omitempty"`
	Approver          string `json:"approver"`
	Reason            string `json:"reason"`
}

// =============================================================================
// LINEAGE TYPES
// =============================================================================

// AuditRecordDTO is the sealed lineage record for a run.
type AuditRecordDTO struct {
	RunID            string `json:"run_id"`
	Operation        string `json:"operation"`
	InputSnapshot    any    `json:"input_snapshot"`
	ParameterVersion string `json:"parameter_version"`
	ModelVersion     string `json:"model_version"`
	Outputs          any    `json:"outputs"`
	Intermediates    any    `json:"intermediates"`
	EnvironmentID    string `json:"environment_id"`
	ImmutableHash    string `json:"immutable_hash"`
	CreatedAt        string `json:"created_at"`
}

// VerificationDTO is the outcome of an integrity check on a run.
type VerificationDTO struct {
	RunID         string `json:"run_id"`
	Verified      bool   `json:"verified"`
	ImmutableHash string `json:"immutable_hash"`
}

// =============================================================================
// MISC TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects which scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLossEventDTO(e sma.LossEventRecord) LossEventDTO {
	return LossEventDTO{
		EventID:           string(e.EventID),
		EntityID:          string(e.EntityID),
		OccurrenceDate:    e.OccurrenceDate.String(),
		DiscoveryDate:     e.DiscoveryDate.String(),
		AccountingDate:    e.AccountingDate.String(),
		GrossAmount:       e.GrossAmount.String(),
		NetAmount:         e.NetAmount.String(),
		IsExcluded:        e.IsExcluded,
		ExclusionReason:   e.ExclusionReason,
		ApprovalReference: e.RBIApprovalReference,
	}
}

func toCalculationDTO(r *sma.CalculationResult) CalculationResultDTO {
	breakdown := make(map[string]string, len(r.BICBreakdown))
	for bucket, slice := range r.BICBreakdown {
		breakdown[bucket.String()] = slice.String()
	}

	dto := CalculationResultDTO{
		RunID:             string(r.RunID),
		EntityID:          string(r.EntityID),
		CalculationDate:   r.CalculationDate.String(),
		BICurrent:         r.BICurrent.String(),
		BIAverage:         r.BIAverage.String(),
		Bucket:            r.Bucket.String(),
		BIC:               r.BIC.String(),
		BICBreakdown:      breakdown,
		LC:                r.LC.String(),
		AverageAnnualLoss: r.AverageAnnualLoss.String(),
		LossDataYears:     r.LossDataYears,
		ILM:               r.ILM.String(),
		ILMGated:          r.ILMGated,
		ILMGateReason:     r.ILMGateReason,
		ORC:               r.ORC.String(),
		RWA:               r.RWA.String(),
		ParameterVersion:  string(r.ParameterVersion),
		ModelVersion:      r.ModelVersion,
		Timestamp:         r.Timestamp.Format(time.RFC3339),
	}

	if r.Override != nil {
		dto.Override = &OverrideProvenanceDTO{
			Type:          string(r.Override.Type),
			OriginalRunID: string(r.Override.OriginalRunID),
			Approver:      r.Override.Approver,
			Reason:        r.Override.Reason,
			AppliedAt:     r.Override.AppliedAt.Format(time.RFC3339),
		}
	}
	return dto
}

func toAuditRecordDTO(record *lineage.AuditRecord) AuditRecordDTO {
	return AuditRecordDTO{
		RunID:            string(record.RunID),
		Operation:        record.Operation,
		InputSnapshot:    record.InputSnapshot,
		ParameterVersion: record.ParameterVersion,
		ModelVersion:     record.ModelVersion,
		Outputs:          record.Outputs,
		Intermediates:    record.Intermediates,
		EnvironmentID:    record.EnvironmentID,
		ImmutableHash:    record.ImmutableHash,
		CreatedAt:        record.CreatedAt.Format(time.RFC3339),
	}
}
