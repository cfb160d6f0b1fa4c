package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/services/events"
	pkgch "DistroDash/pkg/clickhouse"
	applogger "DistroDash/pkg/logger"
)

var EventSchema = []string{
	`CREATE TABLE IF NOT EXISTS distro.economic_events (
        ts DateTime64(3, 'UTC'),
        name String,
        tier UInt8,
        actual Nullable(Float64),
        consensus Nullable(Float64),
        forecast Nullable(Float64)
    ) ENGINE = MergeTree
    ORDER BY (ts, name)`,
}

// CHEventStore implements EventSource backed by ClickHouse. Rows are cleaned
// the same way as the CSV loader before they are returned.
type CHEventStore struct {
	db         *sql.DB
	l          *applogger.Logger
	loc        *time.Location
	percentage []string
}

func NewCHEventStore(ch *pkgch.Client, loc *time.Location, percentageEvents []string) *CHEventStore {
	return &CHEventStore{db: ch.DB(), loc: loc, percentage: percentageEvents}
}

func (s *CHEventStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHEventStore) GetEvents(ctx context.Context, from, to time.Time) ([]models.EventRecord, error) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		where = append(where, "ts < ?")
		args = append(args, to)
	}
	query := `SELECT ts, name, tier, actual, consensus, forecast FROM distro.economic_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_events query error", applogger.Error(err))
		}
		return nil, sourceError("get events", "distro.economic_events", err)
	}
	defer rows.Close()

	var raw []models.EventRecord
	for rows.Next() {
		var (
			e                            models.EventRecord
			actual, consensus, forecast sql.NullFloat64
		)
		if err := rows.Scan(&e.Timestamp, &e.Name, &e.Tier, &actual, &consensus, &forecast); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_events scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = e.Timestamp.In(s.loc)
		e.Actual = nullable(actual)
		e.Consensus = nullable(consensus)
		e.Forecast = nullable(forecast)
		raw = append(raw, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return events.Prepare(raw, s.percentage), nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
