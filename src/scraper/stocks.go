package scraper

import "github.com/quantumsuite/marketfetch/src/models"

var nseStocks = []models.StockSymbol{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"HINDUNILVR", "SBIN", "BHARTIARTL", "KOTAKBANK", "ITC",
	"LT", "AXISBANK", "ASIANPAINT", "MARUTI", "TITAN",
	"SUNPHARMA", "ULTRACEMCO", "NESTLEIND", "WIPRO", "BAJFINANCE",
	"HCLTECH", "POWERGRID", "NTPC", "ONGC", "TATAMOTORS",
	"JSWSTEEL", "TATASTEEL", "ADANIENT", "ADANIPORTS", "COALINDIA",
	"TECHM", "INDUSINDBK", "DRREDDY", "CIPLA", "GRASIM",
}

// BSE identifies listings by scrip code rather than symbol.
var bseScripCodes = map[models.StockSymbol]string{
	"RELIANCE":   "500325",
	"TCS":        "532540",
	"HDFCBANK":   "500180",
	"INFY":       "500209",
	"ICICIBANK":  "532174",
	"HINDUNILVR": "500696",
	"SBIN":       "500112",
	"BHARTIARTL": "532454",
	"KOTAKBANK":  "500247",
	"ITC":        "500875",
	"LT":         "500510",
	"AXISBANK":   "532215",
	"ASIANPAINT": "500820",
	"MARUTI":     "532500",
	"TITAN":      "500114",
	"SUNPHARMA":  "524715",
	"ULTRACEMCO": "532538",
	"NESTLEIND":  "500790",
	"WIPRO":      "507685",
	"BAJFINANCE": "500034",
}

// KnownSymbols lists the exchange's popular instruments for the
// presentation layer's pickers.
func KnownSymbols(exchange models.Exchange) []models.StockSymbol {
	if exchange == models.ExchangeBSE {
		out := make([]models.StockSymbol, 0, len(bseScripCodes))
		for s := range bseScripCodes {
			out = append(out, s)
		}
		return out
	}

	out := make([]models.StockSymbol, len(nseStocks))
	copy(out, nseStocks)
	return out
}

// ScripCode resolves a BSE symbol to its scrip code; unknown symbols are
// assumed to already be codes.
func ScripCode(symbol models.StockSymbol) string {
	if code, ok := bseScripCodes[symbol]; ok {
		return code
	}
	return string(symbol)
}
