/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the database with realistic bank profiles so the engine can be
  demonstrated and exercised without real supervisory data. Each scenario
  clears the database, seeds the default parameter version, and loads BI
  and loss data for one or more entities.

AVAILABLE SCENARIOS:
  regional-bank:       Bucket 1 entity; ILM gated, ORC equals BIC
  international-bank:  Bucket 2 entity with a deep loss history; ILM active
  global-bank:         Bucket 3 entity; all three BIC tiers populated
  sparse-loss-history: Bucket 2 entity with only 3 years of loss data;
                       ILM gated by the data-quality check

AMOUNTS:
  All amounts are plain currency units (no implied millions). The
  regional-bank profile averages a 78bn Business Indicator against an 80bn
  bucket threshold, so its BIC is 9.36bn and its RWA 117bn.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "international-bank"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/parameters.go: Default parameter definition
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/capital-engine/sma"
)

// scenarioDef couples a scenario's metadata with its loader.
type scenarioDef struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

var scenarios = []scenarioDef{
	{
		ID:          "regional-bank",
		Name:        "Regional Bank (Bucket 1)",
		Description: "78bn average BI, below the first threshold. ILM is gated and capital uses BIC directly.",
		Load:        loadRegionalBank,
	},
	{
		ID:          "international-bank",
		Name:        "International Bank (Bucket 2)",
		Description: "500bn average BI with seven years of loss history. The ILM reflects internal losses.",
		Load:        loadInternationalBank,
	},
	{
		ID:          "global-bank",
		Name:        "Global Bank (Bucket 3)",
		Description: "3tn average BI. All three marginal tiers contribute to the BIC.",
		Load:        loadGlobalBank,
	},
	{
		ID:          "sparse-loss-history",
		Name:        "Sparse Loss History",
		Description: "Bucket 2 entity with only three years of loss data. The data-quality gate forces ILM to 1.",
		Load:        loadSparseLossHistory,
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario clears the database and loads the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var selected *scenarioDef
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			selected = &scenarios[i]
			break
		}
	}
	if selected == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.SeedDefaultParameters(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed parameters", err)
		return
	}
	if err := selected.Load(ctx, h); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = selected.ID
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          selected.ID,
		Name:        selected.Name,
		Description: selected.Description,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadRegionalBank(ctx context.Context, h *Handler) error {
	const entity = "REGIONAL001"

	// Three periods averaging exactly 78bn
	if err := seedIndicators(ctx, h, entity, []indicatorSeed{
		{"2021", "50000000000", "20000000000", "6000000000"}, // 76bn
		{"2022", "52000000000", "20000000000", "6000000000"}, // 78bn
		{"2023", "54000000000", "20000000000", "6000000000"}, // 80bn
	}); err != nil {
		return err
	}

	// Modest losses; irrelevant to capital because bucket 1 gates the ILM
	return seedLosses(ctx, h, entity, []lossSeed{
		{"REG-L1", 2021, "15000000"},
		{"REG-L2", 2022, "22000000"},
		{"REG-L3", 2023, "18000000"},
	})
}

func loadInternationalBank(ctx context.Context, h *Handler) error {
	const entity = "INTL001"

	if err := seedIndicators(ctx, h, entity, []indicatorSeed{
		{"2021", "300000000000", "120000000000", "60000000000"}, // 480bn
		{"2022", "310000000000", "125000000000", "65000000000"}, // 500bn
		{"2023", "320000000000", "130000000000", "70000000000"}, // 520bn
	}); err != nil {
		return err
	}

	// Seven distinct years of qualifying losses
	var seeds []lossSeed
	for i, year := range []int{2017, 2018, 2019, 2020, 2021, 2022, 2023} {
		seeds = append(seeds, lossSeed{
			EventID: fmt.Sprintf("INTL-L%d", i+1),
			Year:    year,
			Amount:  "250000000",
		})
	}
	return seedLosses(ctx, h, entity, seeds)
}

func loadGlobalBank(ctx context.Context, h *Handler) error {
	const entity = "GLOBAL001"

	if err := seedIndicators(ctx, h, entity, []indicatorSeed{
		{"2021", "1800000000000", "800000000000", "300000000000"}, // 2.9tn
		{"2022", "1850000000000", "820000000000", "330000000000"}, // 3.0tn
		{"2023", "1900000000000", "840000000000", "360000000000"}, // 3.1tn
	}); err != nil {
		return err
	}

	var seeds []lossSeed
	for i, year := range []int{2016, 2017, 2018, 2019, 2020, 2021, 2022, 2023} {
		seeds = append(seeds, lossSeed{
			EventID: fmt.Sprintf("GLB-L%d", i+1),
			Year:    year,
			Amount:  "1200000000",
		})
	}
	return seedLosses(ctx, h, entity, seeds)
}

func loadSparseLossHistory(ctx context.Context, h *Handler) error {
	const entity = "SPARSE001"

	if err := seedIndicators(ctx, h, entity, []indicatorSeed{
		{"2021", "200000000000", "80000000000", "40000000000"}, // 320bn
		{"2022", "205000000000", "82000000000", "43000000000"}, // 330bn
		{"2023", "210000000000", "84000000000", "46000000000"}, // 340bn
	}); err != nil {
		return err
	}

	return seedLosses(ctx, h, entity, []lossSeed{
		{"SPR-L1", 2021, "180000000"},
		{"SPR-L2", 2022, "95000000"},
		{"SPR-L3", 2023, "140000000"},
	})
}

// =============================================================================
// SEED HELPERS
// =============================================================================

type indicatorSeed struct {
	Period string
	ILDC   string
	SC     string
	FC     string
}

type lossSeed struct {
	EventID string
	Year    int
	Amount  string
}

func seedIndicators(ctx context.Context, h *Handler, entity string, seeds []indicatorSeed) error {
	for _, s := range seeds {
		record := sma.BusinessIndicatorRecord{
			EntityID: sma.EntityID(entity),
			Period:   s.Period,
			ILDC:     sma.MustParseMoney(s.ILDC),
			SC:       sma.MustParseMoney(s.SC),
			FC:       sma.MustParseMoney(s.FC),
		}
		if err := h.Store.SaveBusinessIndicator(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func seedLosses(ctx context.Context, h *Handler, entity string, seeds []lossSeed) error {
	for _, s := range seeds {
		amount := sma.MustParseMoney(s.Amount)
		event := sma.LossEventRecord{
			EventID:        sma.EventID(s.EventID),
			EntityID:       sma.EntityID(entity),
			OccurrenceDate: sma.NewDate(s.Year, time.March, 15),
			DiscoveryDate:  sma.NewDate(s.Year, time.April, 1),
			AccountingDate: sma.NewDate(s.Year, time.June, 30),
			GrossAmount:    amount,
			NetAmount:      amount,
		}
		if err := h.Store.SaveLossEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
