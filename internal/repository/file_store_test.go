package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
)

func TestParquetBarStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t0 := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Timestamp: t0.Add(2 * time.Minute), Open: 3, High: 3, Low: 3, Close: 3},
		{Timestamp: t0, Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: t0.Add(time.Minute), Open: 2, High: 2, Low: 2, Close: 2},
	}
	require.NoError(t, WriteBars(filepath.Join(dir, BarFile("ZN", models.Interval1m, domrepo.DatasetAll)), bars))

	store := NewParquetBarStore(dir, time.UTC)
	got, err := store.GetBars(context.Background(), domrepo.BarQuery{Symbol: "ZN", Interval: models.Interval1m})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Timestamp.Equal(t0))
	assert.Equal(t, 3.0, got[2].Close)

	got, err = store.GetBars(context.Background(), domrepo.BarQuery{
		Symbol: "ZN", Interval: models.Interval1m, From: t0.Add(time.Minute), To: t0.Add(2 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Close)
}

func TestParquetBarStoreMissingFile(t *testing.T) {
	store := NewParquetBarStore(t.TempDir(), time.UTC)
	_, err := store.GetBars(context.Background(), domrepo.BarQuery{Symbol: "ZN", Interval: models.Interval1h, Dataset: domrepo.DatasetNonEvents})
	assert.ErrorIs(t, err, domrepo.ErrSourceNotFound)
}

const calendar = `datetime,events,tier,actual,consensus,forecast
2022-11-10 13:30:00,CPI MoM,Tier 1,0.4%,0.6%,
2023-01-12 13:30:00,CPI MoM,Tier 1,-0.1%,0.0%,
2023-01-12 13:30:00,Core CPI MoM,1,0.3%,0.3%,0.2%
2023-01-12 13:30:00,Core CPI MoM,1,0.3%,0.3%,0.4%
2023-01-13 15:00:00,Michigan Consumer Sentiment,2,64.6,60.5,
not-a-date,Broken,1,1,1,1
2023-02-03 13:30:00,Non Farm Payrolls,1,517K,185K,
`

func TestCSVEventStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(calendar), 0o644))

	since := time.Date(2022, 12, 20, 0, 0, 0, 0, time.UTC)
	store := NewCSVEventStore(path, time.UTC, since, []string{"CPI MoM", "Core CPI MoM"})
	evts, err := store.GetEvents(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, evts, 4)

	assert.Equal(t, "CPI MoM", evts[0].Name)
	assert.InDelta(t, -0.1, *evts[0].Actual, 1e-9)
	assert.Equal(t, 1, evts[0].Tier)

	assert.Equal(t, "Core CPI MoM", evts[1].Name)
	assert.InDelta(t, 0.4, *evts[1].Forecast, 1e-9)

	assert.Equal(t, 2, evts[2].Tier)
	assert.Nil(t, evts[2].Forecast)

	assert.InDelta(t, 517000, *evts[3].Actual, 1e-6)

	evts, err = store.GetEvents(context.Background(), time.Time{}, time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, evts, 2)
}

func TestCSVEventStoreMissing(t *testing.T) {
	store := NewCSVEventStore(filepath.Join(t.TempDir(), "none.csv"), nil, time.Time{}, nil)
	_, err := store.GetEvents(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domrepo.ErrSourceNotFound)
}
