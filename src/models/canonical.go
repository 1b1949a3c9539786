package models

import "time"

// Canonical column order is a hard external contract for exporters.
var CanonicalColumns = []string{"Date", "Series", "Open", "High", "Low", "Close", "Volume", "Open Interest"}

// CanonicalColumnsWithStrike is the column order when the merge key includes
// the strike price.
var CanonicalColumnsWithStrike = []string{"Date", "Series", "Open", "High", "Low", "Close", "Volume", "Open Interest", "Strike Price"}

// Numeric is a numeric cell that may be absent. Absent cells render as the
// configured placeholder on export; they are never zero-filled.
type Numeric struct {
	Value float64
	Valid bool
}

func Num(v float64) Numeric {
	return Numeric{Value: v, Valid: true}
}

// CanonicalRow is the unified output unit after merge, independent of the
// source table layout.
type CanonicalRow struct {
	Date         time.Time
	Series       SeriesType
	Open         Numeric
	High         Numeric
	Low          Numeric
	Close        Numeric
	Volume       Numeric
	OpenInterest Numeric
	StrikePrice  Numeric
}

// MergeResult is the canonical table for one instrument plus audit metadata.
type MergeResult struct {
	Symbol       StockSymbol
	Rows         []CanonicalRow
	HasStrikeKey bool

	RowCount     int
	SourceCounts map[SeriesType]int
	FilledCells  int
	DroppedRows  int

	// StrikeMatch reports whether every option row's realized strike equals
	// the requested strike. A false value is a data-contract violation, not
	// a pipeline error.
	StrikeMatch bool
}

// InstrumentOutcome records either a merged table or the failure that
// prevented one, never both.
type InstrumentOutcome struct {
	Result *MergeResult
	Err    error
}

func (o InstrumentOutcome) Failed() bool {
	return o.Err != nil
}

// BatchResult maps every requested symbol to its outcome. The key set always
// equals the requested instrument list.
type BatchResult struct {
	Outcomes map[StockSymbol]InstrumentOutcome
	Order    []StockSymbol
	Elapsed  time.Duration
}

func (b BatchResult) SuccessCount() int {
	n := 0
	for _, o := range b.Outcomes {
		if !o.Failed() {
			n++
		}
	}
	return n
}

func (b BatchResult) FailureCount() int {
	return len(b.Outcomes) - b.SuccessCount()
}

// FetchEvent is offered to the history collaborator after each completed
// instrument.
type FetchEvent struct {
	Symbol      StockSymbol  `json:"symbol"`
	Exchange    Exchange     `json:"exchange"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	SeriesKinds []SeriesType `json:"series_kinds"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      string       `json:"status"`
}
