package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumsuite/marketfetch/src/models"
)

func tempStore(t *testing.T, cap int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"), cap)
}

func event(symbol models.StockSymbol) models.FetchEvent {
	return models.FetchEvent{
		Symbol:      symbol,
		Exchange:    models.ExchangeNSE,
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
		SeriesKinds: []models.SeriesType{models.SeriesEquity},
		Timestamp:   time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		Status:      "success",
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	events, err := tempStore(t, 5).Load()
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestStoreAppendAndLoad(t *testing.T) {
	s := tempStore(t, 5)

	require.NoError(t, s.Append(event("RELIANCE")))
	require.NoError(t, s.Append(event("TCS")))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.StockSymbol("RELIANCE"), events[0].Symbol)
	assert.Equal(t, models.StockSymbol("TCS"), events[1].Symbol)
}

func TestStoreTrimsToCap(t *testing.T) {
	s := tempStore(t, 5)

	for i := 0; i < 8; i++ {
		require.NoError(t, s.Append(event(models.StockSymbol(fmt.Sprintf("SYM%d", i)))))
	}

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, models.StockSymbol("SYM3"), events[0].Symbol, "oldest entries are dropped first")
	assert.Equal(t, models.StockSymbol("SYM7"), events[4].Symbol)
}

func TestStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewStore(path, 5)
	events, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, events)

	// An append over a corrupt file replaces it rather than failing.
	require.NoError(t, s.Append(event("RELIANCE")))
	events, err = s.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStoreClear(t *testing.T) {
	s := tempStore(t, 5)
	require.NoError(t, s.Append(event("RELIANCE")))
	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing an already-missing file is fine")

	events, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, events)
}
