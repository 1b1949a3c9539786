package orchestrator

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/config"
	"github.com/quantumsuite/marketfetch/src/models"
	"github.com/quantumsuite/marketfetch/src/scraper"
)

// SeriesResult pairs one required series with either its record set or the
// error that prevented it.
type SeriesResult struct {
	Series models.SeriesType
	Set    *models.RawRecordSet
	Err    error
}

// Orchestrator runs the acquisition state machine once per required series
// for a single instrument, strictly sequentially. Concurrency within one
// instrument would break the anti-detection pacing contract.
type Orchestrator struct {
	cfg config.Config

	runSeries func(ctx context.Context, req models.FetchRequest, series models.SeriesType) (*models.RawRecordSet, error)
}

func New(cfg config.Config) *Orchestrator {
	return &Orchestrator{
		cfg: cfg,
		runSeries: func(ctx context.Context, req models.FetchRequest, series models.SeriesType) (*models.RawRecordSet, error) {
			machine := scraper.New(cfg, scraper.ProfileFor(req.Exchange))
			return machine.Run(ctx, req, series)
		},
	}
}

// FetchInstrument acquires every series the request calls for. A failure to
// identify the instrument short-circuits its remaining series; a
// deterministic strike/option unavailability lets the sibling series proceed
// when the configured policy allows it.
func (o *Orchestrator) FetchInstrument(ctx context.Context, req models.FetchRequest) []SeriesResult {
	series := req.Series()
	results := make([]SeriesResult, 0, len(series))

	var shortCircuit error
	for _, s := range series {
		if shortCircuit != nil {
			results = append(results, SeriesResult{Series: s, Err: shortCircuit})
			continue
		}

		set, err := o.runSeries(ctx, req, s)
		results = append(results, SeriesResult{Series: s, Set: set, Err: err})

		if err == nil {
			continue
		}

		log.WithFields(log.Fields{
			"symbol": req.Symbol,
			"series": s,
		}).Warnf("series fetch failed: %v", err)

		if models.IsInstrumentFatal(err) {
			shortCircuit = err
			continue
		}

		if !models.IsTransient(err) && !o.cfg.ContinueOnDeterministic {
			shortCircuit = err
		}
	}

	return results
}

// Sets extracts the successfully fetched record sets.
func Sets(results []SeriesResult) []*models.RawRecordSet {
	var sets []*models.RawRecordSet
	for _, r := range results {
		if r.Err == nil && r.Set != nil {
			sets = append(sets, r.Set)
		}
	}
	return sets
}

// FirstError returns the first recorded failure, if any.
func FirstError(results []SeriesResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
