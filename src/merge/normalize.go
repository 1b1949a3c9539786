package merge

import (
	"strconv"
	"strings"
	"time"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Source column headers vary per exchange and per report; matching is
// case-insensitive and substring-based, the way both exchanges' layouts
// overlap.
func canonicalColumn(source string) string {
	col := strings.ToLower(strings.TrimSpace(source))

	switch {
	case strings.Contains(col, "date"):
		return "Date"
	case strings.Contains(col, "strike"):
		return "Strike Price"
	case strings.Contains(col, "open interest") || col == "oi":
		return "Open Interest"
	case col == "open" || (strings.Contains(col, "open") && !strings.Contains(col, "interest")):
		return "Open"
	case strings.Contains(col, "high"):
		return "High"
	case strings.Contains(col, "low"):
		return "Low"
	case col == "close" || strings.Contains(col, "ltp") || strings.Contains(col, "last"):
		return "Close"
	case strings.Contains(col, "volume") || strings.Contains(col, "qty"):
		return "Volume"
	default:
		return ""
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
}

func parseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric coerces numeric-looking text. Anything malformed becomes the
// missing sentinel, never zero.
func parseNumeric(text string) models.Numeric {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" || cleaned == "-" || strings.EqualFold(cleaned, "n/a") || strings.EqualFold(cleaned, "nan") {
		return models.Numeric{}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return models.Numeric{}
	}

	return models.Num(v)
}

// normalize maps one raw row onto the canonical field set. Rows without a
// parseable date keep a zero Date and are dropped by the integrity check.
func normalize(raw models.RawRow, set *models.RawRecordSet) models.CanonicalRow {
	row := models.CanonicalRow{Series: set.Series}

	for source, value := range raw {
		switch canonicalColumn(source) {
		case "Date":
			if d, ok := parseDate(value); ok {
				row.Date = d
			}
		case "Strike Price":
			row.StrikePrice = parseNumeric(value)
		case "Open":
			row.Open = parseNumeric(value)
		case "High":
			row.High = parseNumeric(value)
		case "Low":
			row.Low = parseNumeric(value)
		case "Close":
			row.Close = parseNumeric(value)
		case "Volume":
			row.Volume = parseNumeric(value)
		case "Open Interest":
			row.OpenInterest = parseNumeric(value)
		}
	}

	// Option rows without a rendered strike column carry the strike the set
	// was fetched with.
	if set.Series.IsOption() && !row.StrikePrice.Valid && set.StrikePrice != nil {
		row.StrikePrice = models.Num(*set.StrikePrice)
	}

	return row
}
