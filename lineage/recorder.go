/*
Package lineage builds the tamper-evident audit trail of SMA calculations.

PURPOSE:
  For every calculation run, captures a canonical snapshot of the inputs,
  the pinned parameter version, every intermediate value and the final
  outputs, and seals it with a SHA-256 hash.

THE REPRODUCIBILITY CONTRACT:
  Identical inputs, parameters and outputs MUST yield an identical hash;
  any change to any field MUST change the hash. Two properties make this
  hold:

    1. The snapshot is canonical: maps serialize with sorted keys
       (encoding/json guarantees this) and every decimal is rendered with
       its exact String() form.
    2. Nothing time-dependent enters the hashed payload. The record's
       CreatedAt timestamp lives OUTSIDE the hash.

VERIFICATION:
  Verify(record) recomputes the hash from the record's fields and compares.
  A mismatch signals corruption or tampering - the record can no longer be
  trusted as evidence of what the engine computed.

SEE ALSO:
  - reproducibility.go: Completeness scoring for run certification
  - ../sma/calculator.go: Producer of the values recorded here
*/
package lineage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/capital-engine/sma"
)

// =============================================================================
// AUDIT RECORD - One sealed snapshot per operation
// =============================================================================

// AuditRecord is the logical audit entry for one calculation operation.
// Append-only: records are written once and never edited.
type AuditRecord struct {
	RunID            sma.RunID        `json:"run_id"`
	Operation        string           `json:"operation"`
	InputSnapshot    json.RawMessage  `json:"input_snapshot"`
	ParameterVersion string           `json:"parameter_version"`
	ModelVersion     string           `json:"model_version"`
	Outputs          json.RawMessage  `json:"outputs"`
	Intermediates    json.RawMessage  `json:"intermediates"`
	EnvironmentID    string           `json:"environment_id"`
	ImmutableHash    string           `json:"immutable_hash"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Recorder seals calculation snapshots into audit records.
// EnvironmentID identifies the computing environment (build tag, host class)
// so a run can be re-executed in a matching setup.
type Recorder struct {
	EnvironmentID string
}

func NewRecorder(environmentID string) *Recorder {
	return &Recorder{EnvironmentID: environmentID}
}

// Record builds the sealed audit record for a completed calculation.
// gateChecks carries the ILM gating metadata (every check and its outcome).
func (r *Recorder) Record(input sma.CalculationInput, result *sma.CalculationResult, gateChecks []sma.GateCheck) (*AuditRecord, error) {
	inputSnap, err := canonicalJSON(snapshotInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot inputs: %w", err)
	}
	outputs, err := canonicalJSON(snapshotOutputs(result))
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot outputs: %w", err)
	}
	intermediates, err := canonicalJSON(snapshotIntermediates(result, gateChecks))
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot intermediates: %w", err)
	}

	record := &AuditRecord{
		RunID:            result.RunID,
		Operation:        "sma_calculation",
		InputSnapshot:    inputSnap,
		ParameterVersion: string(result.ParameterVersion),
		ModelVersion:     result.ModelVersion,
		Outputs:          outputs,
		Intermediates:    intermediates,
		EnvironmentID:    r.EnvironmentID,
		CreatedAt:        time.Now().UTC(),
	}
	record.ImmutableHash = hashRecord(record)
	return record, nil
}

// Verify recomputes the hash over the record's fields and compares it with
// the stored one. False means the record was altered after sealing.
func Verify(record *AuditRecord) bool {
	return hashRecord(record) == record.ImmutableHash
}

// =============================================================================
// CANONICAL HASHING
// =============================================================================

// hashRecord computes SHA-256 over every field except the hash itself and
// the CreatedAt timestamp. Field order is fixed and length-prefixed so no
// two distinct field sequences can collide by concatenation.
func hashRecord(record *AuditRecord) string {
	h := sha256.New()
	fields := [][]byte{
		[]byte(record.RunID),
		[]byte(record.Operation),
		record.InputSnapshot,
		[]byte(record.ParameterVersion),
		[]byte(record.ModelVersion),
		record.Outputs,
		record.Intermediates,
		[]byte(record.EnvironmentID),
	}
	for _, f := range fields {
		fmt.Fprintf(h, "%d:", len(f))
		h.Write(f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON marshals with encoding/json, whose map ordering is sorted
// by key - the property the hash determinism relies on.
func canonicalJSON(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// =============================================================================
// SNAPSHOT SHAPES - Everything rendered as exact decimal strings
// =============================================================================

func snapshotInput(input sma.CalculationInput) map[string]any {
	biRecords := make([]map[string]string, len(input.BIData))
	for i, r := range input.BIData {
		biRecords[i] = map[string]string{
			"entity_id": string(r.EntityID),
			"period":    r.Period,
			"ildc":      r.ILDC.String(),
			"sc":        r.SC.String(),
			"fc":        r.FC.String(),
		}
	}

	lossRecords := make([]map[string]string, len(input.LossData))
	for i, e := range input.LossData {
		lossRecords[i] = map[string]string{
			"event_id":        string(e.EventID),
			"entity_id":       string(e.EntityID),
			"accounting_date": e.AccountingDate.String(),
			"gross_amount":    e.GrossAmount.String(),
			"net_amount":      e.NetAmount.String(),
			"is_excluded":     fmt.Sprintf("%t", e.IsExcluded),
		}
	}

	return map[string]any{
		"entity_id":        string(input.EntityID),
		"calculation_date": input.CalculationDate.String(),
		"bi_records":       biRecords,
		"loss_records":     lossRecords,
	}
}

func snapshotOutputs(result *sma.CalculationResult) map[string]string {
	return map[string]string{
		"orc": result.ORC.String(),
		"rwa": result.RWA.String(),
	}
}

func snapshotIntermediates(result *sma.CalculationResult, gateChecks []sma.GateCheck) map[string]any {
	breakdown := make(map[string]string, len(result.BICBreakdown))
	for bucket, slice := range result.BICBreakdown {
		breakdown[bucket.String()] = slice.String()
	}

	return map[string]any{
		"bi_current":          result.BICurrent.String(),
		"bi_average":          result.BIAverage.String(),
		"bucket":              result.Bucket.String(),
		"bic":                 result.BIC.String(),
		"bic_breakdown":       breakdown,
		"lc":                  result.LC.String(),
		"average_annual_loss": result.AverageAnnualLoss.String(),
		"loss_data_years":     result.LossDataYears,
		"ilm":                 result.ILM.String(),
		"ilm_gated":           result.ILMGated,
		"ilm_gate_reason":     result.ILMGateReason,
		"gating_checks":       gateChecks,
	}
}
