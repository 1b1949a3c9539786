package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumsuite/marketfetch/src/models"
)

func equityRequest() models.FetchRequest {
	return models.FetchRequest{
		Symbol:    "RELIANCE",
		Exchange:  models.ExchangeNSE,
		Kind:      models.KindEquity,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func optionRequest(strike float64) models.FetchRequest {
	expiry := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	req := equityRequest()
	req.Kind = models.KindEquityOption
	req.ExpiryDate = &expiry
	req.StrikePrice = &strike
	req.Side = models.SideBoth
	return req
}

func equitySet(rows ...models.RawRow) *models.RawRecordSet {
	return &models.RawRecordSet{Symbol: "RELIANCE", Series: models.SeriesEquity, Rows: rows}
}

func optionSet(series models.SeriesType, strike float64, rows ...models.RawRow) *models.RawRecordSet {
	return &models.RawRecordSet{Symbol: "RELIANCE", Series: series, StrikePrice: &strike, Rows: rows}
}

func TestMergeEquity(t *testing.T) {
	set := equitySet(
		models.RawRow{"Date": "02-01-2024", "Open": "2,410.00", "High": "2,455.50", "Low": "2,400.10", "Close": "2,450.00", "Volume": "1,234,567", "Open Interest": "-"},
		models.RawRow{"Date": "01-01-2024", "Open": "2,400.00", "High": "2,420.00", "Low": "2,390.00", "Close": "2,410.00", "Volume": "987,654", "Open Interest": "-"},
	)

	result, err := NewEngine().Merge(equityRequest(), []*models.RawRecordSet{set})
	require.NoError(t, err)

	assert.False(t, result.HasStrikeKey)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, 2, result.SourceCounts[models.SeriesEquity])
	assert.Zero(t, result.DroppedRows)
	assert.True(t, result.StrikeMatch)

	// Rows come back in ascending date order regardless of source order.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Rows[0].Date)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Rows[1].Date)

	// The dash OI variant parses as absent, never as zero.
	assert.False(t, result.Rows[0].OpenInterest.Valid)
	assert.Equal(t, 2410.0, result.Rows[0].Open.Value)
	assert.Equal(t, 987654.0, result.Rows[0].Volume.Value)
}

func TestMergeCallPutOuterJoin(t *testing.T) {
	call := optionSet(models.SeriesCall, 2500,
		models.RawRow{"Date": "01-01-2024", "Strike Price": "2,500.00", "LTP": "55.10", "Open Interest": "10,000"},
	)
	put := optionSet(models.SeriesPut, 2500,
		models.RawRow{"Date": "01-01-2024", "Strike Price": "2,500.00", "LTP": "42.25", "Open Interest": "8,000"},
		models.RawRow{"Date": "02-01-2024", "Strike Price": "2,500.00", "LTP": "44.00", "Open Interest": "8,500"},
	)

	result, err := NewEngine().Merge(optionRequest(2500), []*models.RawRecordSet{call, put})
	require.NoError(t, err)

	assert.True(t, result.HasStrikeKey)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 1, result.SourceCounts[models.SeriesCall])
	assert.Equal(t, 2, result.SourceCounts[models.SeriesPut])
	assert.True(t, result.StrikeMatch)

	// Same date sorts call before put; the put-only date follows.
	assert.Equal(t, models.SeriesCall, result.Rows[0].Series)
	assert.Equal(t, models.SeriesPut, result.Rows[1].Series)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Rows[2].Date)

	wide := PivotCallPut(result)
	require.Len(t, wide, 2)

	// Day one has both sides aligned on the shared key.
	assert.Equal(t, 55.10, wide[0].CallLTP.Value)
	assert.Equal(t, 42.25, wide[0].PutLTP.Value)
	assert.Equal(t, 2500.0, wide[0].StrikePrice.Value)

	// Day two exists only on the put side; the call cells stay absent.
	assert.False(t, wide[1].CallLTP.Valid)
	assert.False(t, wide[1].CallOI.Valid)
	assert.Equal(t, 44.0, wide[1].PutLTP.Value)
	assert.Equal(t, 8500.0, wide[1].PutOI.Value)
}

func TestMergeTagsStrikeFromSetWhenColumnMissing(t *testing.T) {
	// The rendered report sometimes omits the strike column entirely; the
	// value the set was fetched with fills the key.
	call := optionSet(models.SeriesCall, 2500,
		models.RawRow{"Date": "01-01-2024", "LTP": "55.10", "Open Interest": "10,000"},
	)

	result, err := NewEngine().Merge(optionRequest(2500), []*models.RawRecordSet{call})
	require.NoError(t, err)
	require.Equal(t, 1, result.RowCount)
	assert.Equal(t, 2500.0, result.Rows[0].StrikePrice.Value)
	assert.True(t, result.StrikeMatch)
}

func TestMergeRealizedStrikeMismatch(t *testing.T) {
	call := optionSet(models.SeriesCall, 2500,
		models.RawRow{"Date": "01-01-2024", "Strike Price": "2,550.00", "LTP": "31.00", "Open Interest": "5,000"},
	)

	result, err := NewEngine().Merge(optionRequest(2500), []*models.RawRecordSet{call})
	require.NoError(t, err)
	assert.False(t, result.StrikeMatch)
	assert.Equal(t, 1, result.RowCount, "a mismatch is flagged, not dropped")
}

func TestMergeIntegrityDrops(t *testing.T) {
	t.Run("row without a parseable date is dropped", func(t *testing.T) {
		set := equitySet(
			models.RawRow{"Date": "not a date", "Close": "2,450.00"},
			models.RawRow{"Date": "01-01-2024", "Close": "2,410.00"},
		)
		result, err := NewEngine().Merge(equityRequest(), []*models.RawRecordSet{set})
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
		assert.Equal(t, 1, result.DroppedRows)
	})

	t.Run("duplicate key within one series is dropped", func(t *testing.T) {
		set := equitySet(
			models.RawRow{"Date": "01-01-2024", "Close": "2,410.00"},
			models.RawRow{"Date": "01-01-2024", "Close": "2,411.00"},
		)
		result, err := NewEngine().Merge(equityRequest(), []*models.RawRecordSet{set})
		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
		assert.Equal(t, 1, result.DroppedRows)
		assert.Equal(t, 2410.0, result.Rows[0].Close.Value, "first occurrence wins")
	})

	t.Run("option row without a strike is dropped under a strike key", func(t *testing.T) {
		call := &models.RawRecordSet{
			Symbol: "RELIANCE",
			Series: models.SeriesCall,
			Rows: []models.RawRow{
				{"Date": "01-01-2024", "LTP": "55.10"},
			},
		}
		result, err := NewEngine().Merge(optionRequest(2500), []*models.RawRecordSet{call})
		require.NoError(t, err)
		assert.Zero(t, result.RowCount)
		assert.Equal(t, 1, result.DroppedRows)
	})
}

func TestMergeCountsFilledCells(t *testing.T) {
	set := equitySet(
		// Volume missing, OI dash: the equity OI cell is a placeholder by
		// contract and never counts as a fill.
		models.RawRow{"Date": "01-01-2024", "Open": "2,400.00", "High": "2,420.00", "Low": "2,390.00", "Close": "2,410.00", "Volume": "", "Open Interest": "-"},
	)
	result, err := NewEngine().Merge(equityRequest(), []*models.RawRecordSet{set})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilledCells)
}

func TestMergeRejectsEmptyInput(t *testing.T) {
	_, err := NewEngine().Merge(equityRequest(), nil)
	assert.Error(t, err)
}
