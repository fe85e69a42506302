/*
scheduler.go - Automated batch calculation scheduler

PURPOSE:
  Periodically runs the SMA calculation for every entity that has Business
  Indicator data, so results stay current without manual triggering.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Uses today's date as the calculation date for each batch
  - Skips entities that already have a result for today's date
  - Each run gets a generated run id; results and lineage records are
    persisted through the same pipeline the HTTP handler uses

CONFIGURATION:
  - CheckInterval: How often to check (default: 24 hours)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCalculationScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ExecuteCalculation (the shared run pipeline)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/capital-engine/sma"
	"github.com/warp/capital-engine/store/sqlite"
)

// CalculationScheduler handles automated batch calculation runs.
type CalculationScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCalculationScheduler creates a new scheduler.
func NewCalculationScheduler(store *sqlite.Store, handler *Handler) *CalculationScheduler {
	return &CalculationScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 24 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (cs *CalculationScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Scheduler] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the scheduler.
func (cs *CalculationScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (cs *CalculationScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.checkAndProcess()

	for {
		select {
		case <-cs.ticker.C:
			cs.checkAndProcess()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CalculationScheduler) checkAndProcess() {
	ctx := context.Background()
	calcDate := sma.Today()

	log.Printf("[Scheduler] Checking for calculations at %s", calcDate)

	entities, err := cs.Store.ListEntities(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing entities: %v", err)
		return
	}

	processedCount := 0
	skippedCount := 0

	for _, entityID := range entities {
		done, err := cs.alreadyCalculated(ctx, entityID, calcDate)
		if err != nil {
			log.Printf("[Scheduler] Error checking results for %s: %v", entityID, err)
			continue
		}
		if done {
			skippedCount++
			continue
		}

		runID := sma.RunID(uuid.New().String())
		result, err := cs.Handler.ExecuteCalculation(ctx, entityID, calcDate, runID, "")
		if err != nil {
			log.Printf("[Scheduler] Error calculating %s: %v", entityID, err)
			continue
		}

		log.Printf("[Scheduler] Calculated %s: bucket=%s orc=%s rwa=%s",
			entityID, result.Bucket, result.ORC, result.RWA)
		processedCount++
	}

	if processedCount > 0 || skippedCount > 0 {
		log.Printf("[Scheduler] Completed: %d processed, %d skipped (already done)", processedCount, skippedCount)
	}
}

// alreadyCalculated reports whether a primary result exists for the entity
// at the given calculation date. Override runs don't count; only results
// without provenance suppress a scheduled run.
func (cs *CalculationScheduler) alreadyCalculated(ctx context.Context, entityID sma.EntityID, calcDate sma.Date) (bool, error) {
	results, err := cs.Store.GetCalculationsByEntity(ctx, entityID, 10)
	if err != nil {
		return false, err
	}
	for _, r := range results {
		if r.Override == nil && r.CalculationDate.Equal(calcDate) {
			return true, nil
		}
	}
	return false, nil
}

// RunNow triggers an immediate check (for testing/admin).
func (cs *CalculationScheduler) RunNow() {
	cs.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (cs *CalculationScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(cs.CheckInterval)
}
