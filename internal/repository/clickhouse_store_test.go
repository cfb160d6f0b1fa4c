package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	pkgch "DistroDash/pkg/clickhouse"
	applogger "DistroDash/pkg/logger"
)

func TestCHBarStoreGetBars(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	mock.ExpectQuery(`SELECT ts, open, high, low, close FROM distro.bars_1m WHERE symbol = \? AND dataset = \? AND ts >= \? AND ts < \? ORDER BY ts ASC`).
		WithArgs("ZN", "nonevents", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"ts", "open", "high", "low", "close"}).
			AddRow(from, 110.0, 110.2, 109.9, 110.1).
			AddRow(from.Add(time.Minute), 110.1, 110.3, 110.0, 110.25))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	store := NewCHBarStore(pkgch.FromDB(db), ny)
	store.SetLogger(applogger.Nop())
	bars, err := store.GetBars(context.Background(), domrepo.BarQuery{
		Symbol: "ZN", Interval: models.Interval1m, Dataset: domrepo.DatasetNonEvents, From: from, To: to,
	})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 110.25, bars[1].Close)
	assert.Equal(t, ny, bars[0].Timestamp.Location())
	assert.True(t, bars[0].Timestamp.Equal(from))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHBarStoreQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectQuery(`FROM distro.bars_1h`).WillReturnError(boom)

	store := NewCHBarStore(pkgch.FromDB(db), time.UTC)
	_, err = store.GetBars(context.Background(), domrepo.BarQuery{Symbol: "ZN", Interval: models.Interval1h})
	assert.ErrorIs(t, err, boom)
}

func TestCHStoresReportMissingTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM distro.bars_5m`).
		WillReturnError(&clickhouse.Exception{Code: 60, Name: "DB::Exception", Message: "Table distro.bars_5m does not exist"})
	mock.ExpectQuery(`FROM distro.economic_events`).
		WillReturnError(errors.New("Code: 60. DB::Exception: Table distro.economic_events does not exist. (UNKNOWN_TABLE)"))

	_, err = NewCHBarStore(pkgch.FromDB(db), time.UTC).
		GetBars(context.Background(), domrepo.BarQuery{Symbol: "ZN", Interval: models.Interval5m})
	assert.ErrorIs(t, err, domrepo.ErrSourceNotFound)

	_, err = NewCHEventStore(pkgch.FromDB(db), time.UTC, nil).GetEvents(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domrepo.ErrSourceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHBarStoreRejectsInterval(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewCHBarStore(pkgch.FromDB(db), time.UTC)
	_, err = store.GetBars(context.Background(), domrepo.BarQuery{Symbol: "ZN", Interval: "15m"})
	assert.Error(t, err)
}

func TestCHEventStoreGetEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 3, 12, 12, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT ts, name, tier, actual, consensus, forecast FROM distro.economic_events ORDER BY ts ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"ts", "name", "tier", "actual", "consensus", "forecast"}).
			AddRow(ts, "CPI  MoM", int64(1), 0.004, 0.003, nil).
			AddRow(ts, "Core CPI MoM", int64(1), nil, nil, 0.003))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	store := NewCHEventStore(pkgch.FromDB(db), ny, []string{"CPI MoM"})
	evts, err := store.GetEvents(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, evts, 2)

	assert.Equal(t, "CPI MoM", evts[0].Name)
	require.NotNil(t, evts[0].Actual)
	assert.InDelta(t, 0.4, *evts[0].Actual, 1e-9)
	assert.Nil(t, evts[0].Forecast)

	assert.Equal(t, "Core CPI MoM", evts[1].Name)
	assert.Nil(t, evts[1].Actual)
	require.NotNil(t, evts[1].Forecast)
	assert.Equal(t, ny, evts[1].Timestamp.Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}
