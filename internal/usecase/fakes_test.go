package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	applogger "DistroDash/pkg/logger"
	"DistroDash/pkg/metrics"
)

type fakeBars struct {
	mu      sync.Mutex
	bars    []models.Bar
	err     error
	queries []domrepo.BarQuery
}

func (f *fakeBars) GetBars(_ context.Context, q domrepo.BarQuery) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Bar, 0, len(f.bars))
	for _, b := range f.bars {
		if !q.From.IsZero() && b.Timestamp.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !b.Timestamp.Before(q.To) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBars) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeEvents struct {
	events []models.EventRecord
	err    error
}

func (f *fakeEvents) GetEvents(_ context.Context, from, to time.Time) ([]models.EventRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.EventRecord, 0, len(f.events))
	for _, e := range f.events {
		if !from.IsZero() && e.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !e.Timestamp.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: string(key), value: b})
	return nil
}

func (p *fakePublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// flatHours builds n hourly bars that each open at 100 and close at 100.25.
func flatHours(start time.Time, n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      100, High: 100.5, Low: 99.75, Close: 100.25,
		}
	}
	return out
}

func testSettings() Settings {
	return Settings{Symbol: "ZN", Factor: 16, Interval: models.Interval1h, Location: time.UTC, Timeout: 5 * time.Second}
}

var (
	nopMetrics = metrics.Nop{}
	nopLog     = applogger.Nop()
)
