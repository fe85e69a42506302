/*
Package sqlite provides the SQLite-backed persistence layer for the capital
engine.

PURPOSE:
  Stores everything one SMA run consumes and produces. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  business_indicators: ILDC/SC/FC per entity and period (upsert per period)
  loss_events:         Operational loss history (net amount maintained here)
  recoveries:          Recoveries applied against loss events
  parameter_versions:  Approved parameter sets with effective dates
  capital_calculations: Immutable results, one row per run_id (append-only)
  audit_records:       Sealed lineage records, one per run (append-only)

APPEND-ONLY ENFORCEMENT:
  capital_calculations and audit_records accept INSERTs only; run_id is the
  primary key, so re-running a run_id surfaces sma.ErrDuplicateRunID instead
  of silently overwriting evidence. Corrections happen through override runs
  that get their own run_id.

LOSS INVARIANTS ENFORCED HERE:
  - A recovery is rejected when it would push net below zero
    (sma.ErrRecoveryExceedsGross), and the event row is untouched.
  - Exclusion is one-way and requires an approval reference; both rules are
    checked before the UPDATE.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL so readers
  do not block each other.

USAGE:
  store, err := sqlite.New("./data/capital.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ../../sma: Domain types persisted here
  - ../../lineage: Audit record construction and verification
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/capital-engine/factory"
	"github.com/warp/capital-engine/lineage"
	"github.com/warp/capital-engine/sma"
)

// Store implements all persistence for the engine using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Business Indicator data (one row per entity and reporting period)
	CREATE TABLE IF NOT EXISTS business_indicators (
		entity_id TEXT NOT NULL,
		period TEXT NOT NULL,
		ildc TEXT NOT NULL,
		sc TEXT NOT NULL,
		fc TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (entity_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_bi_entity
		ON business_indicators(entity_id, period DESC);

	-- Loss events; net_amount = gross_amount - sum(recoveries)
	CREATE TABLE IF NOT EXISTS loss_events (
		event_id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL,
		occurrence_date TEXT NOT NULL,
		discovery_date TEXT NOT NULL,
		accounting_date TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		is_excluded BOOLEAN NOT NULL DEFAULT FALSE,
		exclusion_reason TEXT,
		approval_reference TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loss_events_entity_accounting
		ON loss_events(entity_id, accounting_date);

	-- Recoveries applied against loss events (append-only)
	CREATE TABLE IF NOT EXISTS recoveries (
		id TEXT PRIMARY KEY,
		loss_event_id TEXT NOT NULL REFERENCES loss_events(event_id),
		amount TEXT NOT NULL,
		receipt_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recoveries_event
		ON recoveries(loss_event_id);

	-- Approved parameter versions with effective dates
	CREATE TABLE IF NOT EXISTS parameter_versions (
		version TEXT PRIMARY KEY,
		effective_date TEXT NOT NULL,
		definition_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parameter_versions_effective
		ON parameter_versions(effective_date DESC);

	-- Calculation results (append-only; run_id never reused)
	CREATE TABLE IF NOT EXISTS capital_calculations (
		run_id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL,
		calculation_date TEXT NOT NULL,
		bi_current TEXT NOT NULL,
		bi_average TEXT NOT NULL,
		bucket INTEGER NOT NULL,
		bic TEXT NOT NULL,
		bic_tier1 TEXT NOT NULL,
		bic_tier2 TEXT NOT NULL,
		bic_tier3 TEXT NOT NULL,
		lc TEXT NOT NULL,
		average_annual_loss TEXT NOT NULL,
		loss_data_years INTEGER NOT NULL,
		ilm TEXT NOT NULL,
		ilm_gated BOOLEAN NOT NULL,
		ilm_gate_reason TEXT,
		orc TEXT NOT NULL,
		rwa TEXT NOT NULL,
		parameter_version TEXT NOT NULL,
		model_version TEXT NOT NULL,
		override_type TEXT,
		override_original_run_id TEXT,
		override_approver TEXT,
		override_reason TEXT,
		override_applied_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_entity_date
		ON capital_calculations(entity_id, calculation_date DESC);

	-- Sealed audit records (append-only; hashed fields never change)
	CREATE TABLE IF NOT EXISTS audit_records (
		run_id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		input_snapshot TEXT NOT NULL,
		parameter_version TEXT NOT NULL,
		model_version TEXT NOT NULL,
		outputs TEXT NOT NULL,
		intermediates TEXT NOT NULL,
		environment_id TEXT NOT NULL,
		immutable_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BUSINESS INDICATOR STORE
// =============================================================================

// SaveBusinessIndicator upserts one period of BI data for an entity.
// Re-submission for the same entity/period replaces the component values.
func (s *Store) SaveBusinessIndicator(ctx context.Context, r sma.BusinessIndicatorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO business_indicators (entity_id, period, ildc, sc, fc, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id, period) DO UPDATE SET
			ildc = excluded.ildc,
			sc = excluded.sc,
			fc = excluded.fc
	`

	_, err := s.db.ExecContext(ctx, query,
		string(r.EntityID), r.Period,
		r.ILDC.String(), r.SC.String(), r.FC.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetBusinessIndicators returns all BI records for an entity, most recent
// period first. Period strings sort lexicographically ("2023" > "2022",
// "2023-Q4" > "2023-Q1"), which is the ordering the aggregator expects.
func (s *Store) GetBusinessIndicators(ctx context.Context, entityID sma.EntityID) ([]sma.BusinessIndicatorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT entity_id, period, ildc, sc, fc
		FROM business_indicators
		WHERE entity_id = ?
		ORDER BY period DESC
	`

	rows, err := s.db.QueryContext(ctx, query, string(entityID))
	if err != nil {
		return nil, fmt.Errorf("failed to query business indicators: %w", err)
	}
	defer rows.Close()

	var records []sma.BusinessIndicatorRecord
	for rows.Next() {
		var r sma.BusinessIndicatorRecord
		var entity, ildc, sc, fc string
		if err := rows.Scan(&entity, &r.Period, &ildc, &sc, &fc); err != nil {
			return nil, fmt.Errorf("failed to scan business indicator: %w", err)
		}
		r.EntityID = sma.EntityID(entity)
		r.ILDC = sma.MustParseMoney(ildc)
		r.SC = sma.MustParseMoney(sc)
		r.FC = sma.MustParseMoney(fc)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// LOSS EVENT STORE
// =============================================================================

// SaveLossEvent inserts a new loss event. Net amount starts equal to gross.
func (s *Store) SaveLossEvent(ctx context.Context, e sma.LossEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO loss_events
		(event_id, entity_id, occurrence_date, discovery_date, accounting_date,
		 gross_amount, net_amount, is_excluded, exclusion_reason, approval_reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(e.EventID), string(e.EntityID),
		e.OccurrenceDate.String(), e.DiscoveryDate.String(), e.AccountingDate.String(),
		e.GrossAmount.String(), e.NetAmount.String(),
		e.IsExcluded, e.ExclusionReason, e.RBIApprovalReference,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil && isUniqueConstraintError(err) {
		return fmt.Errorf("loss event %s already exists", e.EventID)
	}
	return err
}

// GetLossEvent retrieves one loss event by ID.
func (s *Store) GetLossEvent(ctx context.Context, eventID sma.EventID) (*sma.LossEventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLossEvent(ctx, s.db, eventID)
}

func (s *Store) getLossEvent(ctx context.Context, db interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, eventID sma.EventID) (*sma.LossEventRecord, error) {
	query := `
		SELECT event_id, entity_id, occurrence_date, discovery_date, accounting_date,
		       gross_amount, net_amount, is_excluded, exclusion_reason, approval_reference
		FROM loss_events WHERE event_id = ?
	`

	var e sma.LossEventRecord
	var event, entity, occurrence, discovery, accounting, gross, net string
	var exclusionReason, approvalRef sql.NullString

	err := db.QueryRowContext(ctx, query, string(eventID)).Scan(
		&event, &entity, &occurrence, &discovery, &accounting,
		&gross, &net, &e.IsExcluded, &exclusionReason, &approvalRef,
	)
	if err == sql.ErrNoRows {
		return nil, sma.ErrLossEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loss event: %w", err)
	}

	e.EventID = sma.EventID(event)
	e.EntityID = sma.EntityID(entity)
	e.OccurrenceDate = parseDate(occurrence)
	e.DiscoveryDate = parseDate(discovery)
	e.AccountingDate = parseDate(accounting)
	e.GrossAmount = sma.MustParseMoney(gross)
	e.NetAmount = sma.MustParseMoney(net)
	e.ExclusionReason = exclusionReason.String
	e.RBIApprovalReference = approvalRef.String
	return &e, nil
}

// GetLossEvents returns all loss events for an entity, accounting date order.
func (s *Store) GetLossEvents(ctx context.Context, entityID sma.EntityID) ([]sma.LossEventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT event_id, entity_id, occurrence_date, discovery_date, accounting_date,
		       gross_amount, net_amount, is_excluded, exclusion_reason, approval_reference
		FROM loss_events
		WHERE entity_id = ?
		ORDER BY accounting_date ASC, event_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(entityID))
	if err != nil {
		return nil, fmt.Errorf("failed to query loss events: %w", err)
	}
	defer rows.Close()

	var events []sma.LossEventRecord
	for rows.Next() {
		var e sma.LossEventRecord
		var event, entity, occurrence, discovery, accounting, gross, net string
		var exclusionReason, approvalRef sql.NullString

		if err := rows.Scan(&event, &entity, &occurrence, &discovery, &accounting,
			&gross, &net, &e.IsExcluded, &exclusionReason, &approvalRef); err != nil {
			return nil, fmt.Errorf("failed to scan loss event: %w", err)
		}

		e.EventID = sma.EventID(event)
		e.EntityID = sma.EntityID(entity)
		e.OccurrenceDate = parseDate(occurrence)
		e.DiscoveryDate = parseDate(discovery)
		e.AccountingDate = parseDate(accounting)
		e.GrossAmount = sma.MustParseMoney(gross)
		e.NetAmount = sma.MustParseMoney(net)
		e.ExclusionReason = exclusionReason.String
		e.RBIApprovalReference = approvalRef.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// AddRecovery records a recovery and nets it against the loss event inside
// one database transaction. Rejects recoveries that would push net below
// zero; the event row is untouched in that case.
func (s *Store) AddRecovery(ctx context.Context, recoveryID string, r sma.RecoveryRecord) (*sma.LossEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	event, err := s.getLossEvent(ctx, sqlTx, r.LossEventID)
	if err != nil {
		return nil, err
	}

	updated, err := sma.ApplyRecovery(*event, r)
	if err != nil {
		return nil, err
	}

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO recoveries (id, loss_event_id, amount, receipt_date, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		recoveryID, string(r.LossEventID), r.Amount.String(), r.ReceiptDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recovery: %w", err)
	}

	_, err = sqlTx.ExecContext(ctx,
		`UPDATE loss_events SET net_amount = ? WHERE event_id = ?`,
		updated.NetAmount.String(), string(updated.EventID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update net amount: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetRecoveries returns all recoveries for a loss event, receipt order.
func (s *Store) GetRecoveries(ctx context.Context, eventID sma.EventID) ([]sma.RecoveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT loss_event_id, amount, receipt_date
		FROM recoveries
		WHERE loss_event_id = ?
		ORDER BY receipt_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to query recoveries: %w", err)
	}
	defer rows.Close()

	var recoveries []sma.RecoveryRecord
	for rows.Next() {
		var r sma.RecoveryRecord
		var event, amount, receipt string
		if err := rows.Scan(&event, &amount, &receipt); err != nil {
			return nil, fmt.Errorf("failed to scan recovery: %w", err)
		}
		r.LossEventID = sma.EventID(event)
		r.Amount = sma.MustParseMoney(amount)
		r.ReceiptDate = parseDate(receipt)
		recoveries = append(recoveries, r)
	}
	return recoveries, rows.Err()
}

// ExcludeLossEvent marks a loss event excluded. One-way; requires an
// approval reference. Returns the updated event.
func (s *Store) ExcludeLossEvent(ctx context.Context, eventID sma.EventID, reason, approvalReference string) (*sma.LossEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.getLossEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}

	excluded, err := sma.Exclude(*event, reason, approvalReference)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE loss_events
		 SET is_excluded = TRUE, exclusion_reason = ?, approval_reference = ?
		 WHERE event_id = ?`,
		excluded.ExclusionReason, excluded.RBIApprovalReference, string(eventID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exclude loss event: %w", err)
	}
	return &excluded, nil
}

// =============================================================================
// PARAMETER VERSION STORE
// =============================================================================

// SaveParameterVersion stores an approved parameter definition. The raw JSON
// is kept verbatim so the exact approved form can always be reproduced.
func (s *Store) SaveParameterVersion(ctx context.Context, record factory.ParameterVersionRecord, definitionJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO parameter_versions (version, effective_date, definition_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(version) DO UPDATE SET
			effective_date = excluded.effective_date,
			definition_json = excluded.definition_json
	`

	_, err := s.db.ExecContext(ctx, query,
		string(record.Params.Version),
		record.EffectiveDate.String(),
		definitionJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetParameterVersion retrieves one parameter version by name.
func (s *Store) GetParameterVersion(ctx context.Context, version sma.ParameterVersion) (*factory.ParameterVersionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var definitionJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT definition_json FROM parameter_versions WHERE version = ?",
		string(version),
	).Scan(&definitionJSON)

	if err == sql.ErrNoRows {
		return nil, sma.ErrParameterVersionNotFound
	}
	if err != nil {
		return nil, err
	}

	return factory.NewParameterFactory().ParseParameters(definitionJSON)
}

// ListParameterVersions returns every stored version, newest effective first.
func (s *Store) ListParameterVersions(ctx context.Context) ([]factory.ParameterVersionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT definition_json FROM parameter_versions ORDER BY effective_date DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	f := factory.NewParameterFactory()
	var records []factory.ParameterVersionRecord
	for rows.Next() {
		var definitionJSON string
		if err := rows.Scan(&definitionJSON); err != nil {
			return nil, err
		}
		record, err := f.ParseParameters(definitionJSON)
		if err != nil {
			return nil, fmt.Errorf("stored parameter version is invalid: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// =============================================================================
// CALCULATION RESULT STORE (append-only)
// =============================================================================

// SaveCalculation appends one result. Re-using a run_id is an error.
func (s *Store) SaveCalculation(ctx context.Context, result *sma.CalculationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO capital_calculations
		(run_id, entity_id, calculation_date, bi_current, bi_average, bucket,
		 bic, bic_tier1, bic_tier2, bic_tier3, lc, average_annual_loss,
		 loss_data_years, ilm, ilm_gated, ilm_gate_reason, orc, rwa,
		 parameter_version, model_version,
		 override_type, override_original_run_id, override_approver,
		 override_reason, override_applied_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var overrideType, overrideOriginal, overrideApprover, overrideReason, overrideAppliedAt sql.NullString
	if result.Override != nil {
		overrideType = nullString(string(result.Override.Type))
		overrideOriginal = nullString(string(result.Override.OriginalRunID))
		overrideApprover = nullString(result.Override.Approver)
		overrideReason = nullString(result.Override.Reason)
		overrideAppliedAt = nullString(result.Override.AppliedAt.UTC().Format(time.RFC3339))
	}

	_, err := s.db.ExecContext(ctx, query,
		string(result.RunID), string(result.EntityID), result.CalculationDate.String(),
		result.BICurrent.String(), result.BIAverage.String(), int(result.Bucket),
		result.BIC.String(),
		breakdownSlice(result.BICBreakdown, sma.Bucket1),
		breakdownSlice(result.BICBreakdown, sma.Bucket2),
		breakdownSlice(result.BICBreakdown, sma.Bucket3),
		result.LC.String(), result.AverageAnnualLoss.String(), result.LossDataYears,
		result.ILM.String(), result.ILMGated, result.ILMGateReason,
		result.ORC.String(), result.RWA.String(),
		string(result.ParameterVersion), result.ModelVersion,
		overrideType, overrideOriginal, overrideApprover, overrideReason, overrideAppliedAt,
		result.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return sma.ErrDuplicateRunID
		}
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// GetCalculation retrieves a result by run_id.
func (s *Store) GetCalculation(ctx context.Context, runID sma.RunID) (*sma.CalculationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, err := s.queryCalculations(ctx,
		calculationColumns+" FROM capital_calculations WHERE run_id = ?",
		string(runID))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sma.ErrResultNotFound
	}
	return &results[0], nil
}

// GetCalculationsByEntity returns an entity's results, most recent first.
func (s *Store) GetCalculationsByEntity(ctx context.Context, entityID sma.EntityID, limit int) ([]sma.CalculationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCalculations(ctx,
		calculationColumns+` FROM capital_calculations
		 WHERE entity_id = ?
		 ORDER BY calculation_date DESC, created_at DESC
		 LIMIT ?`,
		string(entityID), limit)
}

const calculationColumns = `
	SELECT run_id, entity_id, calculation_date, bi_current, bi_average, bucket,
	       bic, bic_tier1, bic_tier2, bic_tier3, lc, average_annual_loss,
	       loss_data_years, ilm, ilm_gated, ilm_gate_reason, orc, rwa,
	       parameter_version, model_version,
	       override_type, override_original_run_id, override_approver,
	       override_reason, override_applied_at, created_at`

func (s *Store) queryCalculations(ctx context.Context, query string, args ...any) ([]sma.CalculationResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var results []sma.CalculationResult
	for rows.Next() {
		r, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanCalculation(rows *sql.Rows) (sma.CalculationResult, error) {
	var (
		r                                                 sma.CalculationResult
		runID, entityID, calcDate                         string
		biCurrent, biAverage                              string
		bucket                                            int
		bic, tier1, tier2, tier3                          string
		lc, avgAnnualLoss, ilm                            string
		gateReason                                        sql.NullString
		orc, rwa, paramVersion, createdAt                 string
		ovType, ovOriginal, ovApprover, ovReason, ovAppliedAt sql.NullString
	)

	err := rows.Scan(
		&runID, &entityID, &calcDate, &biCurrent, &biAverage, &bucket,
		&bic, &tier1, &tier2, &tier3, &lc, &avgAnnualLoss,
		&r.LossDataYears, &ilm, &r.ILMGated, &gateReason, &orc, &rwa,
		&paramVersion, &r.ModelVersion,
		&ovType, &ovOriginal, &ovApprover, &ovReason, &ovAppliedAt, &createdAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan calculation: %w", err)
	}

	r.RunID = sma.RunID(runID)
	r.EntityID = sma.EntityID(entityID)
	r.CalculationDate = parseDate(calcDate)
	r.BICurrent = sma.MustParseMoney(biCurrent)
	r.BIAverage = sma.MustParseMoney(biAverage)
	r.Bucket = sma.Bucket(bucket)
	r.BIC = sma.MustParseMoney(bic)
	r.BICBreakdown = sma.BICBreakdown{
		sma.Bucket1: sma.MustParseMoney(tier1),
		sma.Bucket2: sma.MustParseMoney(tier2),
		sma.Bucket3: sma.MustParseMoney(tier3),
	}
	r.LC = sma.MustParseMoney(lc)
	r.AverageAnnualLoss = sma.MustParseMoney(avgAnnualLoss)
	r.ILM = sma.MustParseMoney(ilm).Value
	r.ILMGateReason = gateReason.String
	r.ORC = sma.MustParseMoney(orc)
	r.RWA = sma.MustParseMoney(rwa)
	r.ParameterVersion = sma.ParameterVersion(paramVersion)
	r.Timestamp, _ = time.Parse(time.RFC3339, createdAt)

	if ovType.Valid {
		appliedAt, _ := time.Parse(time.RFC3339, ovAppliedAt.String)
		r.Override = &sma.OverrideProvenance{
			Type:          sma.OverrideType(ovType.String),
			OriginalRunID: sma.RunID(ovOriginal.String),
			Approver:      ovApprover.String,
			Reason:        ovReason.String,
			AppliedAt:     appliedAt,
		}
	}

	return r, nil
}

// =============================================================================
// AUDIT RECORD STORE (append-only)
// =============================================================================

// SaveAuditRecord appends one sealed lineage record.
func (s *Store) SaveAuditRecord(ctx context.Context, record *lineage.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO audit_records
		(run_id, operation, input_snapshot, parameter_version, model_version,
		 outputs, intermediates, environment_id, immutable_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(record.RunID), record.Operation, string(record.InputSnapshot),
		record.ParameterVersion, record.ModelVersion,
		string(record.Outputs), string(record.Intermediates),
		record.EnvironmentID, record.ImmutableHash,
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return sma.ErrDuplicateRunID
		}
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// GetAuditRecord retrieves the lineage record for a run.
func (s *Store) GetAuditRecord(ctx context.Context, runID sma.RunID) (*lineage.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT run_id, operation, input_snapshot, parameter_version, model_version,
		       outputs, intermediates, environment_id, immutable_hash, created_at
		FROM audit_records WHERE run_id = ?
	`

	var record lineage.AuditRecord
	var run, inputSnapshot, outputs, intermediates, createdAt string

	err := s.db.QueryRowContext(ctx, query, string(runID)).Scan(
		&run, &record.Operation, &inputSnapshot,
		&record.ParameterVersion, &record.ModelVersion,
		&outputs, &intermediates, &record.EnvironmentID,
		&record.ImmutableHash, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, sma.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit record: %w", err)
	}

	record.RunID = sma.RunID(run)
	record.InputSnapshot = []byte(inputSnapshot)
	record.Outputs = []byte(outputs)
	record.Intermediates = []byte(intermediates)
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &record, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// ListEntities returns every entity that has BI data, for batch runs.
func (s *Store) ListEntities(ctx context.Context) ([]sma.EntityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT entity_id FROM business_indicators ORDER BY entity_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []sma.EntityID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		entities = append(entities, sma.EntityID(id))
	}
	return entities, rows.Err()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"audit_records", "capital_calculations", "recoveries",
		"loss_events", "business_indicators", "parameter_versions",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func breakdownSlice(b sma.BICBreakdown, bucket sma.Bucket) string {
	if slice, ok := b[bucket]; ok {
		return slice.String()
	}
	return "0"
}

func parseDate(s string) sma.Date {
	t, _ := time.Parse("2006-01-02", s)
	return sma.DateFromTime(t)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint"))
}
