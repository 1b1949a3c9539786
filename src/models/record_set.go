package models

import "time"

// SeriesType discriminates which acquisition run produced a record set.
type SeriesType string

const (
	SeriesEquity SeriesType = "EQ"
	SeriesCall   SeriesType = "OPT-CALL"
	SeriesPut    SeriesType = "OPT-PUT"
)

func (s SeriesType) IsOption() bool {
	return s == SeriesCall || s == SeriesPut
}

// RawRow is one table row as rendered by the exchange site, keyed by the
// source column header text.
type RawRow map[string]string

// RawRecordSet holds the rows returned by a single acquisition run, tagged
// with the exact parameters that produced them. It is immutable once
// returned by the state machine and consumed exactly once by the merge
// engine.
type RawRecordSet struct {
	Symbol      StockSymbol
	Series      SeriesType
	StrikePrice *float64
	ExpiryDate  *time.Time
	Rows        []RawRow
}

func (s *RawRecordSet) IsEmpty() bool {
	return s == nil || len(s.Rows) == 0
}
