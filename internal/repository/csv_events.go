package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/events"
	applogger "DistroDash/pkg/logger"
)

// Accepted timestamp layouts of the datetime column.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CSVEventStore reads a calendar export with the header
// datetime,events,tier,actual,consensus,forecast (column order is free).
type CSVEventStore struct {
	path       string
	loc        *time.Location
	since      time.Time
	percentage []string
	l          *applogger.Logger
}

func NewCSVEventStore(path string, loc *time.Location, since time.Time, percentageEvents []string) *CSVEventStore {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVEventStore{path: path, loc: loc, since: since, percentage: percentageEvents}
}

func (s *CSVEventStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CSVEventStore) GetEvents(ctx context.Context, from, to time.Time) ([]models.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, domrepo.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	raw, skipped, err := s.parse(f)
	if err != nil {
		return nil, err
	}
	if skipped > 0 && s.l != nil {
		s.l.Warn("skipped unparseable event rows", applogger.String("path", s.path), applogger.Int("rows", skipped))
	}

	lo := from
	if s.since.After(lo) {
		lo = s.since
	}
	kept := raw[:0]
	for _, e := range raw {
		if !lo.IsZero() && e.Timestamp.Before(lo) {
			continue
		}
		if !to.IsZero() && !e.Timestamp.Before(to) {
			continue
		}
		kept = append(kept, e)
	}
	return events.Prepare(kept, s.percentage), nil
}

func (s *CSVEventStore) parse(r io.Reader) ([]models.EventRecord, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"datetime", "events"} {
		if _, ok := col[need]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", need)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var (
		out     []models.EventRecord
		skipped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		ts, ok := s.parseTime(get(rec, "datetime"))
		if !ok {
			skipped++
			continue
		}
		tier, err := events.ParseTier(get(rec, "tier"))
		if err != nil {
			skipped++
			continue
		}
		out = append(out, models.EventRecord{
			Timestamp: ts,
			Name:      get(rec, "events"),
			Tier:      tier,
			Actual:    shorthand(get(rec, "actual")),
			Consensus: shorthand(get(rec, "consensus")),
			Forecast:  shorthand(get(rec, "forecast")),
		})
	}
	return out, skipped, nil
}

// parseTime treats zone-less values as UTC, then converts to the instrument zone.
func (s *CSVEventStore) parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(s.loc), true
		}
	}
	return time.Time{}, false
}

func shorthand(raw string) *float64 {
	v, ok := events.ParseShorthand(raw)
	if !ok {
		return nil
	}
	return models.Float(v)
}
