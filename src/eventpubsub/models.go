package eventpubsub

import "github.com/quantumsuite/marketfetch/src/models"

// BatchProgress is published after each completed instrument.
type BatchProgress struct {
	Index  int
	Total  int
	Symbol models.StockSymbol
}

// InstrumentCompleted is published with the instrument's outcome.
type InstrumentCompleted struct {
	Symbol  models.StockSymbol
	Success bool
	Err     string
}
