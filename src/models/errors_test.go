package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	transient := []error{
		&UnreachableError{URL: "https://example.com", Err: errors.New("timeout")},
		&ElementTimeoutError{Locator: "#symbol", Timeout: 20 * time.Second},
		&BlockedError{Marker: "captcha"},
	}
	for _, err := range transient {
		assert.True(t, IsTransient(err), "expected %T to be transient", err)
	}

	deterministic := []error{
		&InstrumentNotFoundError{Symbol: "BOGUS"},
		&OptionNotAvailableError{Locator: "#optionType", Requested: "CE"},
		&StrikePriceNotAvailableError{Symbol: "RELIANCE", Series: SeriesCall, Requested: 2475},
		&StrikeDropdownTimeoutError{Symbol: "RELIANCE", Timeout: 15 * time.Second},
		errors.New("anything else"),
	}
	for _, err := range deterministic {
		assert.False(t, IsTransient(err), "expected %T not to be transient", err)
	}
}

func TestIsTransientThroughWrapping(t *testing.T) {
	inner := &BlockedError{Marker: "rate limit"}
	wrapped := fmt.Errorf("runOnce: %w", inner)
	assert.True(t, IsTransient(wrapped))

	seriesErr := &SeriesError{Symbol: "TCS", Series: SeriesPut, Err: inner}
	assert.True(t, IsTransient(seriesErr))
}

func TestIsInstrumentFatal(t *testing.T) {
	assert.True(t, IsInstrumentFatal(&InstrumentNotFoundError{Symbol: "BOGUS"}))
	assert.True(t, IsInstrumentFatal(fmt.Errorf("search: %w", &InstrumentNotFoundError{Symbol: "BOGUS"})))

	assert.False(t, IsInstrumentFatal(&StrikePriceNotAvailableError{Symbol: "TCS", Series: SeriesCall, Requested: 2475}))
	assert.False(t, IsInstrumentFatal(&BlockedError{Marker: "captcha"}))
	assert.False(t, IsInstrumentFatal(nil))
}

func TestSeriesErrorUnwrap(t *testing.T) {
	inner := &StrikePriceNotAvailableError{Symbol: "INFY", Series: SeriesCall, Requested: 1500, Choices: []string{"1400", "1600"}}
	err := &SeriesError{Symbol: "INFY", Series: SeriesCall, Err: inner}

	var target *StrikePriceNotAvailableError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 1500.0, target.Requested)
	assert.Contains(t, err.Error(), "INFY")
}
