package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/events"
	"DistroDash/internal/services/pullback"
	applogger "DistroDash/pkg/logger"
)

type PullbackUseCase struct {
	bars    domrepo.BarSource
	events  domrepo.EventSource
	metrics domrepo.Metrics
	cfg     Settings
	l       *applogger.Logger
}

func NewPullbackUseCase(bars domrepo.BarSource, evts domrepo.EventSource, m domrepo.Metrics, cfg Settings, l *applogger.Logger) *PullbackUseCase {
	return &PullbackUseCase{bars: bars, events: evts, metrics: m, cfg: cfg.withDefaults(), l: l}
}

// Pullbacks detects the initial move and following pullback after each trigger.
// Bars default to the 1m series since the thresholds are a few bps.
func (uc *PullbackUseCase) Pullbacks(ctx context.Context, req models.PullbackRequest) (report *models.PullbackReport, err error) {
	start := time.Now()
	defer func() { track(uc.l, uc.metrics, "pullback", start, err) }()

	q, err := uc.cfg.barQuery(req.DataRange, models.Interval1m)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	triggers, err := uc.triggers(ctx, req, q)
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("%w: no triggers", ErrNoData)
	}

	bars, err := loadBars(ctx, uc.bars, q, uc.metrics)
	if err != nil {
		return nil, err
	}
	pairs, err := pullback.Detect(ctx, bars, triggers, pullback.Params{
		EstablishBps: req.Establish(),
		ReverseBps:   req.Reverse(),
		Factor:       uc.cfg.Factor,
	})
	if err != nil {
		return nil, err
	}
	if req.FilterInitial {
		pairs = pullback.FilterByInitialMagnitude(pairs, req.Lower, req.Upper)
	}
	if pairs == nil {
		pairs = []models.MovePair{}
	}
	return &models.PullbackReport{Pairs: pairs, Triggers: len(triggers)}, nil
}

func (uc *PullbackUseCase) triggers(ctx context.Context, req models.PullbackRequest, q domrepo.BarQuery) ([]time.Time, error) {
	if req.Event == "" {
		out := make([]time.Time, 0, len(req.Triggers))
		for _, raw := range req.Triggers {
			t, err := uc.cfg.parseTime("trigger", raw)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
		return out, nil
	}

	evts, err := uc.events.GetEvents(ctx, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	uc.metrics.RecordSourceRows("events", len(evts))
	m := events.NewMatcher([]string{req.Event})
	matched := make([]models.EventRecord, 0, len(evts))
	for _, e := range evts {
		if m.Match(events.Normalize(e.Name)) {
			matched = append(matched, e)
		}
	}
	return events.Timestamps(matched), nil
}
