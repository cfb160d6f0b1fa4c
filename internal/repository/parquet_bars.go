package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	applogger "DistroDash/pkg/logger"
)

// BarRow is the on-disk parquet layout of one bar. Timestamp is Unix milliseconds.
type BarRow struct {
	Timestamp int64   `parquet:"t"`
	Open      float64 `parquet:"o"`
	High      float64 `parquet:"h"`
	Low       float64 `parquet:"l"`
	Close     float64 `parquet:"c"`
}

// ParquetBarStore reads bars from {dir}/{symbol}_{interval}_{dataset}.parquet.
type ParquetBarStore struct {
	dir string
	loc *time.Location
	l   *applogger.Logger
}

func NewParquetBarStore(dir string, loc *time.Location) *ParquetBarStore {
	if loc == nil {
		loc = time.UTC
	}
	return &ParquetBarStore{dir: dir, loc: loc}
}

func (s *ParquetBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// BarFile returns the file name holding a bar series.
func BarFile(symbol string, iv models.Interval, dataset domrepo.Dataset) string {
	if dataset == "" {
		dataset = domrepo.DatasetAll
	}
	return fmt.Sprintf("%s_%s_%s.parquet", symbol, iv, dataset)
}

func (s *ParquetBarStore) GetBars(ctx context.Context, q domrepo.BarQuery) ([]models.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, BarFile(q.Symbol, q.Interval, q.Dataset))

	rows, err := parquet.ReadFile[BarRow](path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domrepo.ErrSourceNotFound)
		}
		if s.l != nil {
			s.l.Error("parquet read error", applogger.String("path", path), applogger.Error(err))
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]models.Bar, 0, len(rows))
	for _, r := range rows {
		ts := time.UnixMilli(r.Timestamp).In(s.loc)
		if !q.From.IsZero() && ts.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !ts.Before(q.To) {
			continue
		}
		out = append(out, models.Bar{Timestamp: ts, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	if s.l != nil {
		s.l.Debug("parquet bars loaded", applogger.String("path", path), applogger.Int("rows", len(out)))
	}
	return out, nil
}

// WriteBars stores bars in the layout GetBars reads.
func WriteBars(path string, bars []models.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rows := make([]BarRow, len(bars))
	for i, b := range bars {
		rows[i] = BarRow{Timestamp: b.Timestamp.UnixMilli(), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close}
	}
	return parquet.WriteFile(path, rows)
}
