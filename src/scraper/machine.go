package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/browser"
	"github.com/quantumsuite/marketfetch/src/config"
	"github.com/quantumsuite/marketfetch/src/models"
)

// Machine drives one acquisition run: the dependent-field form workflow for
// a single series of a single instrument. Transient failures retry the whole
// run with the configured backoff schedule; deterministic-input failures
// surface immediately.
type Machine struct {
	cfg     config.Config
	profile Profile

	openDriver func(ctx context.Context) (browser.Driver, error)
	sleep      func(d time.Duration)
}

func New(cfg config.Config, profile Profile) *Machine {
	return &Machine{
		cfg:     cfg,
		profile: profile,
		openDriver: func(ctx context.Context) (browser.Driver, error) {
			return browser.OpenSession(ctx, cfg)
		},
		sleep: time.Sleep,
	}
}

// Run executes the state machine for one series, retrying the entire run on
// transient failures. Three attempts total; the backoff schedule comes from
// config, not constants.
func (m *Machine) Run(ctx context.Context, req models.FetchRequest, series models.SeriesType) (*models.RawRecordSet, error) {
	backoffs := m.cfg.Backoffs()
	attempts := len(backoffs)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := m.runOnce(ctx, req, series)
		if err == nil {
			return set, nil
		}

		lastErr = err
		if !models.IsTransient(err) {
			return nil, err
		}

		if attempt < attempts-1 {
			log.WithFields(log.Fields{
				"symbol":  req.Symbol,
				"series":  series,
				"attempt": attempt + 1,
				"backoff": backoffs[attempt],
			}).Warnf("transient failure, retrying: %v", err)
			m.sleep(backoffs[attempt])
		}
	}

	return nil, &models.SeriesError{Symbol: req.Symbol, Series: series, Err: lastErr}
}

func (m *Machine) runOnce(ctx context.Context, req models.FetchRequest, series models.SeriesType) (set *models.RawRecordSet, err error) {
	runID := uuid.New()
	logger := log.WithFields(log.Fields{
		"runID":    runID,
		"symbol":   req.Symbol,
		"series":   series,
		"exchange": m.profile.Exchange,
	})

	state := StateIdle
	defer func() {
		if err != nil {
			logger.WithField("state", state).Debugf("run failed: %v", err)
		}
	}()

	driver, err := m.openDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("Machine.runOnce: failed to open session: %w", err)
	}
	defer driver.Close()
	state = StateSessionOpen

	if err = driver.Navigate(ctx, m.profile.FormURL); err != nil {
		return nil, err
	}
	if err = m.checkBlocked(ctx, driver); err != nil {
		return nil, err
	}

	if err = m.searchInstrument(ctx, driver, req.Symbol); err != nil {
		return nil, err
	}
	state = StateInstrumentSearched

	kindText, ok := m.profile.KindText[req.Kind]
	if !ok {
		return nil, fmt.Errorf("Machine.runOnce: no %s display text for kind %q", m.profile.Exchange, req.Kind)
	}
	if err = driver.SelectOption(ctx, m.profile.KindLocator, kindText); err != nil {
		return nil, err
	}
	state = StateKindSelected

	if err = driver.Fill(ctx, m.profile.FromDateLocator, m.profile.FormatDate(req.StartDate)); err != nil {
		return nil, err
	}
	if err = driver.Fill(ctx, m.profile.ToDateLocator, m.profile.FormatDate(req.EndDate)); err != nil {
		return nil, err
	}

	if req.Kind.IsDerivative() {
		if err = driver.SelectOption(ctx, m.profile.ExpiryLocator, m.profile.FormatExpiry(*req.ExpiryDate)); err != nil {
			return nil, err
		}
		state = StateExpirySelected

		// The strike dropdown's valid values are a function of the chosen
		// expiry; it must finish repopulating before it is read.
		state = StateStrikeWaiting
		choices, werr := m.waitForStrikeChoices(ctx, driver, req.Symbol)
		if werr != nil {
			return nil, werr
		}

		strikeText, found := matchStrike(choices, *req.StrikePrice)
		if !found {
			return nil, &models.StrikePriceNotAvailableError{
				Symbol:    req.Symbol,
				Series:    series,
				Requested: *req.StrikePrice,
				Choices:   choices,
			}
		}
		if err = driver.SelectOption(ctx, m.profile.StrikeLocator, strikeText); err != nil {
			return nil, err
		}
		state = StateStrikeSelected

		sideText := m.profile.SideText[series]
		if err = driver.SelectOption(ctx, m.profile.SideLocator, sideText); err != nil {
			return nil, err
		}
		state = StateSideSelected
	}

	if err = driver.Click(ctx, m.profile.SubmitLocator); err != nil {
		return nil, err
	}
	if err = m.checkBlocked(ctx, driver); err != nil {
		return nil, err
	}
	state = StateSubmitted

	rows, err := driver.ExtractTable(ctx, m.profile.TableLocator)
	if err != nil {
		return nil, err
	}
	state = StateExtracted

	logger.WithField("rows", len(rows)).Info("extracted result table")

	set = &models.RawRecordSet{
		Symbol:      req.Symbol,
		Series:      series,
		StrikePrice: req.StrikePrice,
		ExpiryDate:  req.ExpiryDate,
		Rows:        rows,
	}
	state = StateDone

	return set, nil
}

func (m *Machine) checkBlocked(ctx context.Context, driver browser.Driver) error {
	blocked, err := driver.Blocked(ctx)
	if err != nil {
		return err
	}
	if blocked {
		return &models.BlockedError{Marker: "challenge page"}
	}
	return nil
}

// searchInstrument types the symbol and picks the first autocomplete
// suggestion. A suggestion list that never renders means the site has no
// match for the symbol, which is deterministic, not transient.
func (m *Machine) searchInstrument(ctx context.Context, driver browser.Driver, symbol models.StockSymbol) error {
	if err := driver.Fill(ctx, m.profile.SearchLocator, string(symbol)); err != nil {
		return err
	}

	if err := driver.AwaitElement(ctx, m.profile.SuggestionLocator, 10*time.Second); err != nil {
		var timeout *models.ElementTimeoutError
		if errors.As(err, &timeout) {
			return &models.InstrumentNotFoundError{Symbol: symbol}
		}
		return err
	}

	return driver.Click(ctx, m.profile.SuggestionLocator)
}

// waitForStrikeChoices polls the strike dropdown until it repopulates or the
// bound expires.
func (m *Machine) waitForStrikeChoices(ctx context.Context, driver browser.Driver, symbol models.StockSymbol) ([]string, error) {
	deadline := time.Now().Add(m.cfg.StrikeWait())

	for {
		choices, err := driver.ListOptions(ctx, m.profile.StrikeLocator)
		if err == nil {
			if real := realChoices(choices); len(real) > 0 {
				return real, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, &models.StrikeDropdownTimeoutError{Symbol: symbol, Timeout: m.cfg.StrikeWait()}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// realChoices drops the placeholder entries dropdowns render while loading.
func realChoices(choices []string) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		t := strings.ToLower(strings.TrimSpace(c))
		if t == "" || t == "select" || t == "--" || t == "all" || strings.HasPrefix(t, "select ") {
			continue
		}
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

// matchStrike finds the rendered choice whose numeric value equals the
// requested strike exactly. Display text wins: the returned string is the
// choice as rendered, ready for SelectOption.
func matchStrike(choices []string, requested float64) (string, bool) {
	for _, c := range choices {
		v, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", ""), 64)
		if err != nil {
			continue
		}
		if v == requested {
			return c, true
		}
	}
	return "", false
}
