package bulk

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/config"
	"github.com/quantumsuite/marketfetch/src/eventpubsub"
	"github.com/quantumsuite/marketfetch/src/history"
	"github.com/quantumsuite/marketfetch/src/merge"
	"github.com/quantumsuite/marketfetch/src/models"
	"github.com/quantumsuite/marketfetch/src/orchestrator"
)

// ProgressSink receives one call per completed instrument.
type ProgressSink func(index, total int, symbol models.StockSymbol)

// Fetcher is the per-instrument acquisition boundary.
type Fetcher interface {
	FetchInstrument(ctx context.Context, req models.FetchRequest) []orchestrator.SeriesResult
}

// Processor iterates a batch of instruments strictly in order, isolating
// every per-instrument failure so one bad symbol never aborts the rest.
type Processor struct {
	cfg     config.Config
	fetcher Fetcher
	engine  *merge.Engine
	history *history.Store
}

func NewProcessor(cfg config.Config) *Processor {
	return &Processor{
		cfg:     cfg,
		fetcher: orchestrator.New(cfg),
		engine:  merge.NewEngine(),
		history: history.NewStore(cfg.HistoryPath, cfg.HistoryCap),
	}
}

// RunBatch processes every request and returns an outcome for each: the
// result's key set always equals the requested instrument list.
// Cancellation is honored at instrument boundaries.
func (p *Processor) RunBatch(ctx context.Context, requests []models.FetchRequest, sink ProgressSink) models.BatchResult {
	start := time.Now()

	result := models.BatchResult{
		Outcomes: make(map[models.StockSymbol]models.InstrumentOutcome, len(requests)),
		Order:    make([]models.StockSymbol, 0, len(requests)),
	}

	total := len(requests)
	for i, req := range requests {
		result.Order = append(result.Order, req.Symbol)

		var outcome models.InstrumentOutcome
		if err := ctx.Err(); err != nil {
			outcome = models.InstrumentOutcome{Err: err}
		} else {
			outcome = p.processInstrument(ctx, req)
		}

		result.Outcomes[req.Symbol] = outcome

		if outcome.Failed() {
			log.WithField("symbol", req.Symbol).Errorf("instrument failed: %v", outcome.Err)
		} else {
			log.WithFields(log.Fields{
				"symbol": req.Symbol,
				"rows":   outcome.Result.RowCount,
			}).Info("instrument completed")
		}

		p.recordHistory(req, outcome)

		if sink != nil {
			sink(i+1, total, req.Symbol)
		}
		eventpubsub.Publish(eventpubsub.BatchProgressEvent, eventpubsub.BatchProgress{
			Index:  i + 1,
			Total:  total,
			Symbol: req.Symbol,
		})
		eventpubsub.Publish(eventpubsub.InstrumentCompletedEvent, eventpubsub.InstrumentCompleted{
			Symbol:  req.Symbol,
			Success: !outcome.Failed(),
			Err:     errString(outcome.Err),
		})
	}

	result.Elapsed = time.Since(start)
	return result
}

// processInstrument never lets an error or panic escape: whatever goes wrong
// becomes this instrument's recorded outcome.
func (p *Processor) processInstrument(ctx context.Context, req models.FetchRequest) (outcome models.InstrumentOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.InstrumentOutcome{Err: fmt.Errorf("processInstrument: panic: %v", r)}
		}
	}()

	// Validation rejects before any remote interaction occurs.
	if err := req.Validate(); err != nil {
		return models.InstrumentOutcome{Err: err}
	}

	results := p.fetcher.FetchInstrument(ctx, req)

	sets := orchestrator.Sets(results)
	if len(sets) == 0 {
		err := orchestrator.FirstError(results)
		if err == nil {
			err = fmt.Errorf("processInstrument: no data acquired for %s", req.Symbol)
		}
		return models.InstrumentOutcome{Err: err}
	}

	merged, err := p.engine.Merge(req, sets)
	if err != nil {
		return models.InstrumentOutcome{Err: err}
	}

	return models.InstrumentOutcome{Result: merged}
}

func (p *Processor) recordHistory(req models.FetchRequest, outcome models.InstrumentOutcome) {
	if p.history == nil {
		return
	}

	status := "success"
	if outcome.Failed() {
		status = "failed"
	}

	event := models.FetchEvent{
		Symbol:      req.Symbol,
		Exchange:    req.Exchange,
		StartDate:   req.StartDate.Format("2006-01-02"),
		EndDate:     req.EndDate.Format("2006-01-02"),
		SeriesKinds: req.Series(),
		Timestamp:   time.Now(),
		Status:      status,
	}

	if err := p.history.Append(event); err != nil {
		log.Warnf("failed to record fetch history: %v", err)
	}
	eventpubsub.Publish(eventpubsub.FetchRecordedEvent, event)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
