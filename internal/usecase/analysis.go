package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/returns"
	applogger "DistroDash/pkg/logger"
	"DistroDash/pkg/util"
)

var (
	// ErrNoData means the request selected no bars or events to analyse.
	ErrNoData = errors.New("no data for the requested selection")
	// ErrInvalidRequest wraps request values that passed validation tags but cannot be used.
	ErrInvalidRequest = errors.New("invalid request")
)

// Settings are the instrument and runtime defaults shared by every analysis.
type Settings struct {
	Symbol       string
	Factor       float64
	Interval     models.Interval
	Dataset      domrepo.Dataset
	Location     *time.Location
	Timeout      time.Duration
	SweepWorkers int
	CacheTTL     time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Factor <= 0 {
		s.Factor = returns.DefaultBpsFactor
	}
	if !s.Interval.IsValid() {
		s.Interval = models.Interval1h
	}
	if s.Dataset == "" {
		s.Dataset = domrepo.DatasetAll
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.SweepWorkers <= 0 {
		s.SweepWorkers = 4
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = time.Hour
	}
	return s
}

// barQuery resolves a request range against the defaults. fallback overrides the default interval when set.
func (s Settings) barQuery(r models.DataRange, fallback models.Interval) (domrepo.BarQuery, error) {
	q := domrepo.BarQuery{Symbol: s.Symbol}
	if fallback == "" {
		fallback = s.Interval
	}
	q.Interval = domrepo.NormalizeInterval(r.Interval, fallback)

	q.Dataset = s.Dataset
	if r.Dataset != "" {
		ds, err := domrepo.ParseDataset(r.Dataset)
		if err != nil {
			return q, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		q.Dataset = ds
	}

	var err error
	if q.From, err = s.parseTime("from", r.From); err != nil {
		return q, err
	}
	if q.To, err = s.parseTime("to", r.To); err != nil {
		return q, err
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		return q, fmt.Errorf("%w: from must be before to", ErrInvalidRequest)
	}
	return q, nil
}

func (s Settings) parseTime(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseTime(raw, s.Location)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s %q is not a time", ErrInvalidRequest, field, raw)
	}
	return t, nil
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// loadBars reads and time-orders bars, failing with ErrNoData on an empty result.
func loadBars(ctx context.Context, src domrepo.BarSource, q domrepo.BarQuery, m domrepo.Metrics) ([]models.Bar, error) {
	bars, err := src.GetBars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	m.RecordSourceRows("bars", len(bars))
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no %s bars for %s", ErrNoData, q.Interval, q.Symbol)
	}
	return returns.SortBars(bars), nil
}

func summarize(records []models.ReturnRecord) models.ReturnsReport {
	if records == nil {
		records = []models.ReturnRecord{}
	}
	stats := make(map[string]models.Stats, len(returns.Columns))
	for col, st := range returns.DescribeAll(records) {
		stats[string(col)] = st
	}
	return models.ReturnsReport{Records: records, Stats: stats}
}

// track records duration and outcome of one analysis and logs failures.
func track(l *applogger.Logger, m domrepo.Metrics, kind string, start time.Time, err error) {
	m.RecordAnalysis(kind, time.Since(start), err)
	if err != nil && !errors.Is(err, ErrInvalidRequest) && !errors.Is(err, ErrNoData) {
		l.Error("analysis failed", applogger.String("kind", kind), applogger.Error(err))
	}
}
