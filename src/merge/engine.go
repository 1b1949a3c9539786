package merge

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Engine combines independently fetched record sets for one instrument into
// the canonical table. The merge never raises on malformed cells; bad rows
// are dropped and counted, never silently merged.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

type rowKey struct {
	date   int64
	strike float64
	series models.SeriesType
}

// Merge normalizes, tags, joins, fills, checks and sorts the given record
// sets. The join key is Date alone for equity-style merges and (Date, Strike
// Price) when call and put option series are combined; within one series
// every key appears exactly once.
func (e *Engine) Merge(req models.FetchRequest, sets []*models.RawRecordSet) (*models.MergeResult, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("Engine.Merge: no record sets to merge for %s", req.Symbol)
	}

	hasStrikeKey := false
	for _, set := range sets {
		if set != nil && set.Series.IsOption() {
			hasStrikeKey = true
		}
	}

	result := &models.MergeResult{
		Symbol:       req.Symbol,
		HasStrikeKey: hasStrikeKey,
		SourceCounts: make(map[models.SeriesType]int),
		StrikeMatch:  true,
	}

	seen := make(map[rowKey]bool)
	var rows []models.CanonicalRow

	for _, set := range sets {
		if set == nil {
			continue
		}

		result.SourceCounts[set.Series] += len(set.Rows)

		for _, raw := range set.Rows {
			row := normalize(raw, set)

			// Integrity: a row without a date, or without a strike when the
			// key includes one, never reaches the output.
			if row.Date.IsZero() {
				result.DroppedRows++
				continue
			}
			if hasStrikeKey && set.Series.IsOption() && !row.StrikePrice.Valid {
				result.DroppedRows++
				continue
			}

			key := rowKey{date: row.Date.Unix(), series: row.Series}
			if hasStrikeKey {
				key.strike = row.StrikePrice.Value
			}
			if seen[key] {
				result.DroppedRows++
				continue
			}
			seen[key] = true

			result.FilledCells += missingCells(row, set.Series, hasStrikeKey)

			// Realized-value check: the strike actually present on every
			// option row must equal the one the user asked for.
			if set.Series.IsOption() && req.StrikePrice != nil && row.StrikePrice.Valid && row.StrikePrice.Value != *req.StrikePrice {
				result.StrikeMatch = false
			}

			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].Series != rows[j].Series {
			return rows[i].Series < rows[j].Series
		}
		return rows[i].StrikePrice.Value < rows[j].StrikePrice.Value
	})

	result.Rows = rows
	result.RowCount = len(rows)

	if !result.StrikeMatch {
		log.WithFields(log.Fields{
			"symbol": req.Symbol,
			"strike": req.StrikePrice,
		}).Warn("realized strike price differs from requested strike")
	}

	return result, nil
}

// missingCells counts the placeholder fills a row will need on export. The
// equity Open Interest cell is always a placeholder by contract, so it does
// not count as a fill.
func missingCells(row models.CanonicalRow, series models.SeriesType, hasStrikeKey bool) int {
	n := 0
	for _, cell := range []models.Numeric{row.Open, row.High, row.Low, row.Close, row.Volume} {
		if !cell.Valid {
			n++
		}
	}
	if series.IsOption() && !row.OpenInterest.Valid {
		n++
	}
	if hasStrikeKey && !series.IsOption() && !row.StrikePrice.Valid {
		n++
	}
	return n
}
