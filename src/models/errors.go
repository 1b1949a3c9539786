package models

import (
	"errors"
	"fmt"
	"time"
)

// UnreachableError indicates the remote site did not respond within the
// navigation timeout. Transient.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("site unreachable: %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// ElementTimeoutError indicates an awaited element never became present or
// interactable within its bound. Transient.
type ElementTimeoutError struct {
	Locator string
	Timeout time.Duration
}

func (e *ElementTimeoutError) Error() string {
	return fmt.Sprintf("element %q not ready after %s", e.Locator, e.Timeout)
}

// BlockedError indicates the remote site served a challenge or blocking
// response (captcha, rate limit page). Transient: retried after backoff with
// a fresh session identity.
type BlockedError struct {
	Marker string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by remote site (matched %q)", e.Marker)
}

// InstrumentNotFoundError indicates the site reported no match for the
// requested symbol. Deterministic: never retried, and fatal to the whole
// instrument.
type InstrumentNotFoundError struct {
	Symbol StockSymbol
}

func (e *InstrumentNotFoundError) Error() string {
	return fmt.Sprintf("instrument %q not found on exchange", e.Symbol)
}

// OptionNotAvailableError indicates a requested visible text was not among a
// dropdown's rendered choices. Deterministic.
type OptionNotAvailableError struct {
	Locator   string
	Requested string
	Choices   []string
}

func (e *OptionNotAvailableError) Error() string {
	return fmt.Sprintf("option %q not available in %q (choices: %v)", e.Requested, e.Locator, e.Choices)
}

// StrikePriceNotAvailableError indicates the requested strike is not among
// the choices rendered for the chosen expiry. Deterministic and non-fatal to
// sibling series.
type StrikePriceNotAvailableError struct {
	Symbol    StockSymbol
	Series    SeriesType
	Requested float64
	Choices   []string
}

func (e *StrikePriceNotAvailableError) Error() string {
	return fmt.Sprintf("strike price %v not available for %s %s (choices: %v)", e.Requested, e.Symbol, e.Series, e.Choices)
}

// StrikeDropdownTimeoutError indicates the strike dropdown did not repopulate
// within its bound after expiry selection. Deterministic-input per the
// acquisition contract: surfaced immediately, not retried.
type StrikeDropdownTimeoutError struct {
	Symbol  StockSymbol
	Timeout time.Duration
}

func (e *StrikeDropdownTimeoutError) Error() string {
	return fmt.Sprintf("strike dropdown for %s did not repopulate within %s", e.Symbol, e.Timeout)
}

// SeriesError wraps a failure with the series context needed to reconstruct
// a retry without re-prompting for known values.
type SeriesError struct {
	Symbol StockSymbol
	Series SeriesType
	Err    error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Symbol, e.Series, e.Err)
}

func (e *SeriesError) Unwrap() error { return e.Err }

// IsTransient reports whether err is expected to resolve on retry. Anything
// deterministic in the request parameters is not.
func IsTransient(err error) bool {
	var unreachable *UnreachableError
	var elementTimeout *ElementTimeoutError
	var blocked *BlockedError

	return errors.As(err, &unreachable) || errors.As(err, &elementTimeout) || errors.As(err, &blocked)
}

// IsInstrumentFatal reports whether err should short-circuit the remaining
// series for the same instrument.
func IsInstrumentFatal(err error) bool {
	var notFound *InstrumentNotFoundError
	return errors.As(err, &notFound)
}
