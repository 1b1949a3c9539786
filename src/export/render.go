package export

import (
	"strconv"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Options controls how absent cells render. The equity Open Interest column
// carries its own placeholder because the unified equity-and-derivative
// format uses a dash there while everything else uses "N/A".
type Options struct {
	Placeholder         string
	EquityOIPlaceholder string
}

func DefaultOptions() Options {
	return Options{Placeholder: "N/A", EquityOIPlaceholder: "N/A"}
}

func (o Options) cell(n models.Numeric) string {
	if !n.Valid {
		return o.Placeholder
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (o Options) openInterestCell(row models.CanonicalRow) string {
	if row.Series == models.SeriesEquity {
		return o.EquityOIPlaceholder
	}
	return o.cell(row.OpenInterest)
}

// renderRow produces the row's cells in the canonical column order.
func (o Options) renderRow(row models.CanonicalRow, withStrike bool) []string {
	cells := []string{
		row.Date.Format("2006-01-02"),
		string(row.Series),
		o.cell(row.Open),
		o.cell(row.High),
		o.cell(row.Low),
		o.cell(row.Close),
		o.cell(row.Volume),
		o.openInterestCell(row),
	}
	if withStrike {
		cells = append(cells, o.cell(row.StrikePrice))
	}
	return cells
}

func columns(withStrike bool) []string {
	if withStrike {
		return models.CanonicalColumnsWithStrike
	}
	return models.CanonicalColumns
}
