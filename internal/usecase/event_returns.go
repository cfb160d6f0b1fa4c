package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/events"
	"DistroDash/internal/services/returns"
	applogger "DistroDash/pkg/logger"
)

// EventReturnsUseCase measures price behaviour around the instances of one economic event:
// interaction filter, sub-event deviation filter, windows, returns and statistics.
type EventReturnsUseCase struct {
	bars    domrepo.BarSource
	events  domrepo.EventSource
	catalog events.Catalog
	metrics domrepo.Metrics
	cfg     Settings
	l       *applogger.Logger
}

func NewEventReturnsUseCase(bars domrepo.BarSource, evts domrepo.EventSource, catalog events.Catalog, m domrepo.Metrics, cfg Settings, l *applogger.Logger) *EventReturnsUseCase {
	return &EventReturnsUseCase{bars: bars, events: evts, catalog: catalog, metrics: m, cfg: cfg.withDefaults(), l: l}
}

func (uc *EventReturnsUseCase) EventReturns(ctx context.Context, req models.EventReturnsRequest) (report *models.EventReturnsReport, err error) {
	start := time.Now()
	defer func() { track(uc.l, uc.metrics, "event_returns", start, err) }()

	mode, err := events.ResolveMode(req.Isolate, req.Group)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	subs, err := uc.catalog.SubEvents(req.Event)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	q, err := uc.cfg.barQuery(req.DataRange, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	// Events and bars are independent reads; fetch them together.
	var (
		stream []models.EventRecord
		bars   []models.Bar
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		evts, err := uc.events.GetEvents(gctx, q.From, q.To)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		uc.metrics.RecordSourceRows("events", len(evts))
		stream = evts
		return nil
	})
	g.Go(func() error {
		b, err := loadBars(gctx, uc.bars, q, uc.metrics)
		bars = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept, err := events.FilterInteractions(stream, uc.catalog, events.InteractionParams{
		Selected:     req.Event,
		Window:       hours(req.Window()),
		Mode:         mode,
		ExcludeTiers: req.ExcludeTiers,
		GroupEvent:   req.GroupEvent,
	})
	if err != nil {
		if errors.Is(err, events.ErrUnknownEvent) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, err
	}

	dev := events.FilterDeviations(kept, subs, toBounds(req.Bounds), events.DeviationOptions{
		RequireAllSubEvents: req.RequireAllSubEvents,
	})
	instances := firstPerTimestamp(dev.Events)
	windows := events.BuildWindows(instances, hours(req.Total()), hours(req.OmitHours))
	records := returns.Compute(windows, bars, uc.cfg.Factor, req.LastX)

	uc.l.Debug("event returns computed",
		applogger.String("event", req.Event),
		applogger.String("mode", string(mode)),
		applogger.Int("instances", len(instances)),
		applogger.Int("records", len(records)),
	)

	return &models.EventReturnsReport{
		ReturnsReport: summarize(records),
		Event:         req.Event,
		Instances:     instances,
		Deviations:    dev.Deviations,
		Windows:       windows,
	}, nil
}

func toBounds(in []models.BoundRequest) []events.Bound {
	out := make([]events.Bound, len(in))
	for i, b := range in {
		out[i] = events.Bound{SubEvent: b.SubEvent, Lower: b.Lower, Upper: b.Upper}
	}
	return out
}

// firstPerTimestamp keeps one row per release time so each instance opens one window.
func firstPerTimestamp(evts []models.EventRecord) []models.EventRecord {
	out := make([]models.EventRecord, 0, len(evts))
	seen := make(map[int64]struct{}, len(evts))
	for _, e := range evts {
		k := e.Timestamp.UnixNano()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
