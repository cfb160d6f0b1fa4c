package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	pkgch "DistroDash/pkg/clickhouse"
	applogger "DistroDash/pkg/logger"
)

// BarSchema creates the bar tables, one per interval.
var BarSchema = []string{
	`CREATE DATABASE IF NOT EXISTS distro`,
	barTableDDL("distro.bars_1m"),
	barTableDDL("distro.bars_5m"),
	barTableDDL("distro.bars_1h"),
}

func barTableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
        symbol LowCardinality(String),
        dataset LowCardinality(String),
        ts DateTime64(3, 'UTC'),
        open Float64,
        high Float64,
        low Float64,
        close Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, dataset, ts)`
}

// CHBarStore implements BarSource backed by ClickHouse. Timestamps are stored in UTC
// and returned in the instrument location.
type CHBarStore struct {
	db  *sql.DB
	l   *applogger.Logger
	loc *time.Location
}

func NewCHBarStore(ch *pkgch.Client, loc *time.Location) *CHBarStore {
	if loc == nil {
		loc = time.UTC
	}
	return &CHBarStore{db: ch.DB(), loc: loc}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) GetBars(ctx context.Context, q domrepo.BarQuery) ([]models.Bar, error) {
	start := time.Now()
	table, err := tableForInterval(q.Interval)
	if err != nil {
		return nil, err
	}
	dataset := q.Dataset
	if dataset == "" {
		dataset = domrepo.DatasetAll
	}

	var (
		where = []string{"symbol = ?", "dataset = ?"}
		args  = []any{q.Symbol, string(dataset)}
	)
	if !q.From.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, q.From)
	}
	if !q.To.IsZero() {
		where = append(where, "ts < ?")
		args = append(args, q.To)
	}
	query := fmt.Sprintf(`SELECT ts, open, high, low, close FROM %s WHERE %s ORDER BY ts ASC`,
		table, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logError("clickhouse get_bars query error", table, q, err)
		return nil, sourceError("get bars", table, err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			s.logError("clickhouse get_bars scan error", table, q, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Timestamp = b.Timestamp.In(s.loc)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse get_bars rows error", table, q, err)
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse get_bars ok",
			applogger.String("table", table),
			applogger.String("symbol", q.Symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) logError(msg, table string, q domrepo.BarQuery, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", table),
		applogger.String("symbol", q.Symbol),
		applogger.String("interval", string(q.Interval)),
		applogger.Error(err),
	)
}

func tableForInterval(iv models.Interval) (string, error) {
	switch iv {
	case models.Interval1m:
		return "distro.bars_1m", nil
	case models.Interval5m:
		return "distro.bars_5m", nil
	case models.Interval1h:
		return "distro.bars_1h", nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", iv)
	}
}
