package merge

import (
	"sort"
	"time"

	"github.com/quantumsuite/marketfetch/src/models"
)

// CallPutRow is the wide derivative layout: one row per (Date, Strike Price)
// with the call and put sides aligned. Whichever side has no data for a key
// exports as placeholders.
type CallPutRow struct {
	Date        time.Time
	StrikePrice models.Numeric
	CallLTP     models.Numeric
	CallOI      models.Numeric
	PutLTP      models.Numeric
	PutOI       models.Numeric
}

// PivotCallPut performs the full outer join of the call and put series on
// (Date, Strike Price): every key present in either series appears exactly
// once in the output.
func PivotCallPut(result *models.MergeResult) []CallPutRow {
	type pivotKey struct {
		date   int64
		strike float64
	}

	index := make(map[pivotKey]*CallPutRow)
	var order []pivotKey

	for _, row := range result.Rows {
		if !row.Series.IsOption() {
			continue
		}

		key := pivotKey{date: row.Date.Unix(), strike: row.StrikePrice.Value}
		wide, ok := index[key]
		if !ok {
			wide = &CallPutRow{Date: row.Date, StrikePrice: row.StrikePrice}
			index[key] = wide
			order = append(order, key)
		}

		switch row.Series {
		case models.SeriesCall:
			wide.CallLTP = row.Close
			wide.CallOI = row.OpenInterest
		case models.SeriesPut:
			wide.PutLTP = row.Close
			wide.PutOI = row.OpenInterest
		}
	}

	rows := make([]CallPutRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *index[key])
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].StrikePrice.Value < rows[j].StrikePrice.Value
	})

	return rows
}
