/*
handlers.go - HTTP API handlers for the capital engine

PURPOSE:
  Exposes the SMA calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Business indicators:
    GET    /api/entities/{id}/indicators       List BI data for an entity
    POST   /api/entities/{id}/indicators       Submit BI data for a period

  Loss data:
    POST   /api/loss-events                    Record a loss event
    GET    /api/loss-events/{id}               Get a loss event
    GET    /api/entities/{id}/loss-events      List an entity's loss events
    POST   /api/loss-events/{id}/recoveries    Apply a recovery
    GET    /api/loss-events/{id}/recoveries    List recoveries
    POST   /api/loss-events/{id}/exclude       Exclude an event (approved)

  Calculations:
    POST   /api/calculations                   Run an SMA calculation
    GET    /api/calculations/{runID}           Get a result by run id
    GET    /api/entities/{id}/calculations     List an entity's results
    POST   /api/calculations/{runID}/override  Derive a corrected result

  Lineage:
    GET    /api/lineage/{runID}                Get the audit record
    GET    /api/lineage/{runID}/verify         Verify record integrity
    GET    /api/lineage/{runID}/reproducibility Completeness score

  Parameters:
    GET    /api/parameters                     List parameter versions
    POST   /api/parameters                     Store a parameter version
    GET    /api/parameters/{version}           Get one version

  Scenarios:
    GET    /api/scenarios                      List demo scenarios
    POST   /api/scenarios/load                 Load a demo scenario

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (calculator, lineage, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (full list in details)
  - 404: Resource not found
  - 409: Conflict (run_id reuse)
  - 422: Inconsistent parameter configuration
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/capital-engine/factory"
	"github.com/warp/capital-engine/lineage"
	"github.com/warp/capital-engine/sma"
	"github.com/warp/capital-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	ParamFactory *factory.ParameterFactory
	Recorder     *lineage.Recorder

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
// environmentID identifies the computing environment in lineage records.
func NewHandler(store *sqlite.Store, environmentID string) *Handler {
	return &Handler{
		Store:        store,
		ParamFactory: factory.NewParameterFactory(),
		Recorder:     lineage.NewRecorder(environmentID),
	}
}

// SeedDefaultParameters stores the built-in regulatory parameter set when no
// version exists yet, so a fresh database can calculate immediately.
func (h *Handler) SeedDefaultParameters(ctx context.Context) error {
	versions, err := h.Store.ListParameterVersions(ctx)
	if err != nil {
		return err
	}
	if len(versions) > 0 {
		return nil
	}

	definition := factory.DefaultParameterJSON()
	record, err := h.ParamFactory.ParseParameters(definition)
	if err != nil {
		return err
	}
	return h.Store.SaveParameterVersion(ctx, *record, definition)
}

// =============================================================================
// BUSINESS INDICATOR HANDLERS
// =============================================================================

// ListBusinessIndicators returns all BI data for an entity, newest first.
func (h *Handler) ListBusinessIndicators(w http.ResponseWriter, r *http.Request) {
	entityID := sma.EntityID(chi.URLParam(r, "id"))

	records, err := h.Store.GetBusinessIndicators(r.Context(), entityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list business indicators", err)
		return
	}

	dtos := make([]BusinessIndicatorDTO, len(records))
	for i, rec := range records {
		dtos[i] = BusinessIndicatorDTO{
			EntityID: string(rec.EntityID),
			Period:   rec.Period,
			ILDC:     rec.ILDC.String(),
			SC:       rec.SC.String(),
			FC:       rec.FC.String(),
			BITotal:  sma.BITotal(rec).String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitBusinessIndicator records BI data for one period.
// Re-submitting the same period replaces it.
func (h *Handler) SubmitBusinessIndicator(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	var req SubmitIndicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Period == "" {
		writeError(w, http.StatusBadRequest, "period is required", nil)
		return
	}

	ildc, err := decimal.NewFromString(req.ILDC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ildc amount", err)
		return
	}
	sc, err := decimal.NewFromString(req.SC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sc amount", err)
		return
	}
	fc, err := decimal.NewFromString(req.FC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fc amount", err)
		return
	}

	record := sma.BusinessIndicatorRecord{
		EntityID: sma.EntityID(entityID),
		Period:   req.Period,
		ILDC:     sma.MoneyFromDecimal(ildc),
		SC:       sma.MoneyFromDecimal(sc),
		FC:       sma.MoneyFromDecimal(fc),
	}

	if err := h.Store.SaveBusinessIndicator(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save business indicator", err)
		return
	}

	writeJSON(w, http.StatusCreated, BusinessIndicatorDTO{
		EntityID: entityID,
		Period:   record.Period,
		ILDC:     record.ILDC.String(),
		SC:       record.SC.String(),
		FC:       record.FC.String(),
		BITotal:  sma.BITotal(record).String(),
	})
}

// =============================================================================
// LOSS DATA HANDLERS
// =============================================================================

// CreateLossEvent records a new operational loss event.
// Net amount starts equal to gross.
func (h *Handler) CreateLossEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateLossEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "entity_id is required", nil)
		return
	}

	occurrence, err := parseDateParam(req.OccurrenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid occurrence_date (use YYYY-MM-DD)", err)
		return
	}
	discovery, err := parseDateParam(req.DiscoveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid discovery_date (use YYYY-MM-DD)", err)
		return
	}
	accounting, err := parseDateParam(req.AccountingDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid accounting_date (use YYYY-MM-DD)", err)
		return
	}

	gross, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross_amount", err)
		return
	}
	if gross.IsNegative() {
		writeError(w, http.StatusBadRequest, "gross_amount cannot be negative", nil)
		return
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.New().String()
	}

	event := sma.LossEventRecord{
		EventID:        sma.EventID(eventID),
		EntityID:       sma.EntityID(req.EntityID),
		OccurrenceDate: occurrence,
		DiscoveryDate:  discovery,
		AccountingDate: accounting,
		GrossAmount:    sma.MoneyFromDecimal(gross),
		NetAmount:      sma.MoneyFromDecimal(gross),
	}

	if err := h.Store.SaveLossEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save loss event", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLossEventDTO(event))
}

// GetLossEvent returns a single loss event.
func (h *Handler) GetLossEvent(w http.ResponseWriter, r *http.Request) {
	eventID := sma.EventID(chi.URLParam(r, "id"))

	event, err := h.Store.GetLossEvent(r.Context(), eventID)
	if err != nil {
		h.handleDomainError(w, "Failed to get loss event", err)
		return
	}
	writeJSON(w, http.StatusOK, toLossEventDTO(*event))
}

// ListLossEvents returns an entity's loss events in accounting-date order.
func (h *Handler) ListLossEvents(w http.ResponseWriter, r *http.Request) {
	entityID := sma.EntityID(chi.URLParam(r, "id"))

	events, err := h.Store.GetLossEvents(r.Context(), entityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list loss events", err)
		return
	}

	dtos := make([]LossEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toLossEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddRecovery applies a recovery against a loss event. The recovery is
// rejected when it would push the net amount below zero.
func (h *Handler) AddRecovery(w http.ResponseWriter, r *http.Request) {
	eventID := sma.EventID(chi.URLParam(r, "id"))

	var req RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	if amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount cannot be negative", nil)
		return
	}
	receipt, err := parseDateParam(req.ReceiptDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid receipt_date (use YYYY-MM-DD)", err)
		return
	}

	recovery := sma.RecoveryRecord{
		LossEventID: eventID,
		Amount:      sma.MoneyFromDecimal(amount),
		ReceiptDate: receipt,
	}

	updated, err := h.Store.AddRecovery(r.Context(), uuid.New().String(), recovery)
	if err != nil {
		h.handleDomainError(w, "Failed to apply recovery", err)
		return
	}
	writeJSON(w, http.StatusOK, toLossEventDTO(*updated))
}

// ListRecoveries returns all recoveries for a loss event.
func (h *Handler) ListRecoveries(w http.ResponseWriter, r *http.Request) {
	eventID := sma.EventID(chi.URLParam(r, "id"))

	recoveries, err := h.Store.GetRecoveries(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recoveries", err)
		return
	}

	type recoveryDTO struct {
		LossEventID string `json:"loss_event_id"`
		Amount      string `json:"amount"`
		ReceiptDate string `json:"receipt_date"`
	}
	dtos := make([]recoveryDTO, len(recoveries))
	for i, rec := range recoveries {
		dtos[i] = recoveryDTO{
			LossEventID: string(rec.LossEventID),
			Amount:      rec.Amount.String(),
			ReceiptDate: rec.ReceiptDate.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExcludeLossEvent marks a loss event excluded from future calculations.
// One-way; requires a regulatory approval reference.
func (h *Handler) ExcludeLossEvent(w http.ResponseWriter, r *http.Request) {
	eventID := sma.EventID(chi.URLParam(r, "id"))

	var req ExclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Store.ExcludeLossEvent(r.Context(), eventID, req.Reason, req.ApprovalReference)
	if err != nil {
		h.handleDomainError(w, "Failed to exclude loss event", err)
		return
	}
	writeJSON(w, http.StatusOK, toLossEventDTO(*updated))
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// RunCalculation executes a full SMA calculation for one entity and persists
// the result together with its sealed lineage record.
func (h *Handler) RunCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calcDate, err := parseDateParam(req.CalculationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculation_date (use YYYY-MM-DD)", err)
		return
	}

	runID := sma.RunID(req.RunID)
	if runID == "" {
		runID = sma.RunID(uuid.New().String())
	}

	result, err := h.ExecuteCalculation(r.Context(),
		sma.EntityID(req.EntityID), calcDate, runID,
		sma.ParameterVersion(req.ParameterVersion))
	if err != nil {
		h.handleDomainError(w, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCalculationDTO(result))
}

// ExecuteCalculation is the full run pipeline: resolve parameters, load
// data, calculate, persist the result, seal and persist the audit record.
// Shared by the HTTP handler and the batch scheduler.
func (h *Handler) ExecuteCalculation(ctx context.Context, entityID sma.EntityID, calcDate sma.Date, runID sma.RunID, version sma.ParameterVersion) (*sma.CalculationResult, error) {
	params, err := h.resolveParameters(ctx, version, calcDate)
	if err != nil {
		return nil, err
	}

	calc, err := sma.NewCalculator(*params)
	if err != nil {
		return nil, err
	}

	biData, err := h.Store.GetBusinessIndicators(ctx, entityID)
	if err != nil {
		return nil, err
	}
	lossData, err := h.Store.GetLossEvents(ctx, entityID)
	if err != nil {
		return nil, err
	}

	input := sma.CalculationInput{
		EntityID:        entityID,
		CalculationDate: calcDate,
		RunID:           runID,
		BIData:          biData,
		LossData:        lossData,
	}

	result, err := calc.Calculate(input)
	if err != nil {
		return nil, err
	}

	if err := h.Store.SaveCalculation(ctx, result); err != nil {
		return nil, err
	}

	record, err := h.Recorder.Record(input, result, calc.ILMChecks(result))
	if err != nil {
		return nil, err
	}
	if err := h.Store.SaveAuditRecord(ctx, record); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveParameters picks the parameter set for a run: the named version
// when one is pinned, otherwise the version effective at the calculation
// date.
func (h *Handler) resolveParameters(ctx context.Context, version sma.ParameterVersion, calcDate sma.Date) (*sma.ParameterSet, error) {
	if version != "" {
		record, err := h.Store.GetParameterVersion(ctx, version)
		if err != nil {
			return nil, err
		}
		return &record.Params, nil
	}

	versions, err := h.Store.ListParameterVersions(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := factory.ResolveEffective(versions, calcDate)
	if err != nil {
		return nil, err
	}
	return &resolved.Params, nil
}

// GetCalculation returns a stored result by run id.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	runID := sma.RunID(chi.URLParam(r, "runID"))

	result, err := h.Store.GetCalculation(r.Context(), runID)
	if err != nil {
		h.handleDomainError(w, "Failed to get calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(result))
}

// ListCalculations returns an entity's results, most recent first.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	entityID := sma.EntityID(chi.URLParam(r, "id"))

	results, err := h.Store.GetCalculationsByEntity(r.Context(), entityID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationResultDTO, len(results))
	for i := range results {
		dtos[i] = toCalculationDTO(&results[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyOverride derives a corrected result from an existing run. The
// original stays untouched; the derived result gets its own run id and
// carries full provenance.
func (h *Handler) ApplyOverride(w http.ResponseWriter, r *http.Request) {
	runID := sma.RunID(chi.URLParam(r, "runID"))

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	original, err := h.Store.GetCalculation(r.Context(), runID)
	if err != nil {
		h.handleDomainError(w, "Failed to get calculation", err)
		return
	}

	spec := sma.OverrideSpec{
		Type:     sma.OverrideType(req.Type),
		NewRunID: sma.RunID(req.NewRunID),
		Approver: req.Approver,
		Reason:   req.Reason,
	}
	if spec.NewRunID == "" {
		spec.NewRunID = sma.RunID(uuid.New().String())
	}

	if req.CapitalAdjustment != "" {
		d, err := decimal.NewFromString(req.CapitalAdjustment)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid capital_adjustment", err)
			return
		}
		m := sma.MoneyFromDecimal(d)
		spec.CapitalAdjustment = &m
	}
	if req.ILMOverride != "" {
		d, err := decimal.NewFromString(req.ILMOverride)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid ilm_override", err)
			return
		}
		spec.ILMOverride = &d
	}

	params, err := h.resolveParameters(r.Context(), original.ParameterVersion, original.CalculationDate)
	if err != nil {
		h.handleDomainError(w, "Failed to resolve parameters", err)
		return
	}

	derived, err := sma.ApplyOverride(original, spec, params.RWAMultiplier)
	if err != nil {
		h.handleDomainError(w, "Override rejected", err)
		return
	}

	if err := h.Store.SaveCalculation(r.Context(), derived); err != nil {
		h.handleDomainError(w, "Failed to save derived result", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCalculationDTO(derived))
}

// =============================================================================
// LINEAGE HANDLERS
// =============================================================================

// GetLineage returns the sealed audit record for a run.
func (h *Handler) GetLineage(w http.ResponseWriter, r *http.Request) {
	runID := sma.RunID(chi.URLParam(r, "runID"))

	record, err := h.Store.GetAuditRecord(r.Context(), runID)
	if err != nil {
		h.handleDomainError(w, "Failed to get audit record", err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditRecordDTO(record))
}

// VerifyLineage recomputes the audit record's hash and reports whether it
// still matches. A mismatch means the record was altered after sealing.
func (h *Handler) VerifyLineage(w http.ResponseWriter, r *http.Request) {
	runID := sma.RunID(chi.URLParam(r, "runID"))

	record, err := h.Store.GetAuditRecord(r.Context(), runID)
	if err != nil {
		h.handleDomainError(w, "Failed to get audit record", err)
		return
	}
	writeJSON(w, http.StatusOK, VerificationDTO{
		RunID:         string(record.RunID),
		Verified:      lineage.Verify(record),
		ImmutableHash: record.ImmutableHash,
	})
}

// GetReproducibility scores how completely a run could be re-executed.
func (h *Handler) GetReproducibility(w http.ResponseWriter, r *http.Request) {
	runID := sma.RunID(chi.URLParam(r, "runID"))

	record, err := h.Store.GetAuditRecord(r.Context(), runID)
	if err != nil {
		h.handleDomainError(w, "Failed to get audit record", err)
		return
	}
	writeJSON(w, http.StatusOK, lineage.CheckReproducibility(record))
}

// =============================================================================
// PARAMETER HANDLERS
// =============================================================================

// ListParameters returns every stored parameter version.
func (h *Handler) ListParameters(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Store.ListParameterVersions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parameter versions", err)
		return
	}

	dtos := make([]factory.ParameterJSON, len(versions))
	for i, v := range versions {
		dtos[i] = factory.ToJSON(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetParameterVersion returns one parameter version.
func (h *Handler) GetParameterVersion(w http.ResponseWriter, r *http.Request) {
	version := sma.ParameterVersion(chi.URLParam(r, "version"))

	record, err := h.Store.GetParameterVersion(r.Context(), version)
	if err != nil {
		h.handleDomainError(w, "Failed to get parameter version", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(*record))
}

// CreateParameterVersion stores an approved parameter definition.
func (h *Handler) CreateParameterVersion(w http.ResponseWriter, r *http.Request) {
	var pj factory.ParameterJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.ParamFactory.FromJSON(pj)
	if err != nil {
		h.handleDomainError(w, "Invalid parameter definition", err)
		return
	}

	definition, err := json.Marshal(pj)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize definition", err)
		return
	}

	if err := h.Store.SaveParameterVersion(r.Context(), *record, string(definition)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save parameter version", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.ToJSON(*record))
}

// =============================================================================
// MISC HANDLERS
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"model_version": sma.ModelVersion,
		"time":          time.Now().UTC().Format(time.RFC3339),
	})
}

// ResetDatabase clears all data (dev/demo only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := h.SeedDefaultParameters(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed parameters", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// ERROR MAPPING AND RESPONSE HELPERS
// =============================================================================

// handleDomainError maps domain errors to HTTP statuses. Validation failures
// return the complete problem list so a client can fix everything at once.
func (h *Handler) handleDomainError(w http.ResponseWriter, message string, err error) {
	var verrs sma.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   message,
			Code:    "validation_failed",
			Details: verrs,
		})
		return
	}

	var cerr *sma.ConfigurationError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   message,
			Code:    "configuration_error",
			Details: cerr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, sma.ErrDuplicateRunID):
		writeError(w, http.StatusConflict, "run_id already used", err)
	case sma.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, sma.ErrRecoveryExceedsGross),
		errors.Is(err, sma.ErrAlreadyExcluded),
		errors.Is(err, sma.ErrApprovalReferenceRequired):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseDateParam(s string) (sma.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sma.Date{}, err
	}
	return sma.DateFromTime(t), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
