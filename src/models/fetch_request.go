package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type StockSymbol string

type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

type InstrumentKind string

const (
	KindEquity       InstrumentKind = "equity"
	KindIndexOption  InstrumentKind = "index-option"
	KindEquityOption InstrumentKind = "equity-option"
)

func (k InstrumentKind) IsDerivative() bool {
	return k == KindIndexOption || k == KindEquityOption
}

type OptionSide string

const (
	SideCall OptionSide = "call"
	SidePut  OptionSide = "put"
	SideBoth OptionSide = "both"
)

// FetchRequest describes one instrument's acquisition parameters. It is built
// and validated by the caller before any remote interaction occurs.
type FetchRequest struct {
	Symbol      StockSymbol
	Exchange    Exchange
	Kind        InstrumentKind
	ExpiryDate  *time.Time
	StrikePrice *float64
	Side        OptionSide
	StartDate   time.Time
	EndDate     time.Time
}

func (r FetchRequest) Validate() error {
	if strings.TrimSpace(string(r.Symbol)) == "" {
		return fmt.Errorf("FetchRequest.Validate: symbol cannot be empty")
	}

	switch r.Exchange {
	case ExchangeNSE, ExchangeBSE:
	default:
		return fmt.Errorf("FetchRequest.Validate: invalid exchange %q", r.Exchange)
	}

	switch r.Kind {
	case KindEquity, KindIndexOption, KindEquityOption:
	default:
		return fmt.Errorf("FetchRequest.Validate: invalid instrument kind %q", r.Kind)
	}

	if r.StartDate.After(r.EndDate) {
		return fmt.Errorf("FetchRequest.Validate: start date %s is after end date %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	}

	if r.Kind.IsDerivative() {
		if r.ExpiryDate == nil {
			return fmt.Errorf("FetchRequest.Validate: expiry date is required for %s", r.Kind)
		}

		if r.StrikePrice == nil {
			return fmt.Errorf("FetchRequest.Validate: strike price is required for %s", r.Kind)
		}

		if *r.StrikePrice <= 0 || math.IsInf(*r.StrikePrice, 0) || math.IsNaN(*r.StrikePrice) {
			return fmt.Errorf("FetchRequest.Validate: strike price must be a finite positive number, got %v", *r.StrikePrice)
		}

		switch r.Side {
		case SideCall, SidePut, SideBoth:
		default:
			return fmt.Errorf("FetchRequest.Validate: invalid option side %q", r.Side)
		}
	}

	return nil
}

// Series returns the series runs this request requires, in fetch order.
func (r FetchRequest) Series() []SeriesType {
	if !r.Kind.IsDerivative() {
		return []SeriesType{SeriesEquity}
	}

	switch r.Side {
	case SideCall:
		return []SeriesType{SeriesCall}
	case SidePut:
		return []SeriesType{SeriesPut}
	default:
		return []SeriesType{SeriesCall, SeriesPut}
	}
}
