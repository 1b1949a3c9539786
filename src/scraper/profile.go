package scraper

import (
	"strconv"
	"time"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Profile captures everything exchange-specific about the historical-data
// form: the page URL, element locators, and the display formats the site
// expects in each field. The state machine itself is exchange-agnostic.
type Profile struct {
	Exchange models.Exchange
	FormURL  string

	SearchLocator     string
	SuggestionLocator string

	KindLocator string
	KindText    map[models.InstrumentKind]string

	ExpiryLocator string
	StrikeLocator string
	SideLocator   string
	SideText      map[models.SeriesType]string

	FromDateLocator string
	ToDateLocator   string
	SubmitLocator   string
	TableLocator    string

	// Field display formats.
	DateFormat   string
	ExpiryFormat string
}

func (p Profile) FormatDate(t time.Time) string {
	return t.Format(p.DateFormat)
}

func (p Profile) FormatExpiry(t time.Time) string {
	return t.Format(p.ExpiryFormat)
}

// FormatStrike renders a strike the way the dropdowns display it: no
// exponent, no trailing zeros.
func (p Profile) FormatStrike(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProfileFor returns the form profile for an exchange.
func ProfileFor(exchange models.Exchange) Profile {
	switch exchange {
	case models.ExchangeBSE:
		return Profile{
			Exchange:          models.ExchangeBSE,
			FormURL:           "https://www.bseindia.com/markets/Derivatives/DeriReports/HistoricalData.aspx",
			SearchLocator:     "#ContentPlaceHolder1_txtUnderlying",
			SuggestionLocator: "ul.ui-autocomplete li",
			KindLocator:       "#ContentPlaceHolder1_ddlInstrument",
			KindText: map[models.InstrumentKind]string{
				models.KindEquity:       "Equity",
				models.KindEquityOption: "Stock Options",
				models.KindIndexOption:  "Index Options",
			},
			ExpiryLocator: "#ContentPlaceHolder1_ddlExpiry",
			StrikeLocator: "#ContentPlaceHolder1_ddlStrikePrice",
			SideLocator:   "#ContentPlaceHolder1_ddlOptType",
			SideText: map[models.SeriesType]string{
				models.SeriesCall: "CE",
				models.SeriesPut:  "PE",
			},
			FromDateLocator: "#ContentPlaceHolder1_txtFromDt",
			ToDateLocator:   "#ContentPlaceHolder1_txtToDt",
			SubmitLocator:   "#ContentPlaceHolder1_btnSubmit",
			TableLocator:    "#ContentPlaceHolder1_gvReport",
			DateFormat:      "02/01/2006",
			ExpiryFormat:    "02-Jan-2006",
		}
	default:
		return Profile{
			Exchange:          models.ExchangeNSE,
			FormURL:           "https://www.nseindia.com/report-detail/fo_eq_hist_contract_wise",
			SearchLocator:     "#symbol",
			SuggestionLocator: "ul.ui-autocomplete li",
			KindLocator:       "#instrumentType",
			KindText: map[models.InstrumentKind]string{
				models.KindEquity:       "Equity",
				models.KindEquityOption: "Stock Options",
				models.KindIndexOption:  "Index Options",
			},
			ExpiryLocator: "#expiryDate",
			StrikeLocator: "#strikePrice",
			SideLocator:   "#optionType",
			SideText: map[models.SeriesType]string{
				models.SeriesCall: "CE",
				models.SeriesPut:  "PE",
			},
			FromDateLocator: "#fromDate",
			ToDateLocator:   "#toDate",
			SubmitLocator:   "#submitBtn",
			TableLocator:    "table",
			DateFormat:      "02-01-2006",
			ExpiryFormat:    "02-Jan-2006",
		}
	}
}
