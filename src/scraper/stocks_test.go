package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantumsuite/marketfetch/src/models"
)

func TestKnownSymbols(t *testing.T) {
	nse := KnownSymbols(models.ExchangeNSE)
	assert.NotEmpty(t, nse)
	assert.Contains(t, nse, models.StockSymbol("RELIANCE"))

	bse := KnownSymbols(models.ExchangeBSE)
	assert.NotEmpty(t, bse)
	assert.Contains(t, bse, models.StockSymbol("TCS"))
}

func TestScripCode(t *testing.T) {
	assert.Equal(t, "500325", ScripCode("RELIANCE"))
	assert.Equal(t, "543210", ScripCode("543210"), "unknown symbols pass through as codes")
}
