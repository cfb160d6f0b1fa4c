package usecase

import (
	"context"
	"fmt"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/returns"
	applogger "DistroDash/pkg/logger"
)

// CalendarReturnsUseCase serves the calendar based analyses: trading sessions and month-end days.
type CalendarReturnsUseCase struct {
	bars    domrepo.BarSource
	metrics domrepo.Metrics
	cfg     Settings
	l       *applogger.Logger
}

func NewCalendarReturnsUseCase(bars domrepo.BarSource, m domrepo.Metrics, cfg Settings, l *applogger.Logger) *CalendarReturnsUseCase {
	return &CalendarReturnsUseCase{bars: bars, metrics: m, cfg: cfg.withDefaults(), l: l}
}

func (uc *CalendarReturnsUseCase) SessionReturns(ctx context.Context, req models.SessionReturnsRequest) (report *models.ReturnsReport, err error) {
	start := time.Now()
	defer func() { track(uc.l, uc.metrics, "sessions", start, err) }()

	sessions := make([]returns.Session, 0, len(req.Sessions))
	for _, raw := range req.Sessions {
		s, err := returns.ParseSession(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		sessions = append(sessions, s)
	}

	bars, err := uc.load(ctx, req.DataRange)
	if err != nil {
		return nil, err
	}
	rep := summarize(returns.SessionReturns(bars, sessions, uc.cfg.Location, uc.cfg.Factor, req.LastX))
	return &rep, nil
}

func (uc *CalendarReturnsUseCase) MonthEndReturns(ctx context.Context, req models.MonthEndRequest) (report *models.ReturnsReport, err error) {
	start := time.Now()
	defer func() { track(uc.l, uc.metrics, "month_end", start, err) }()

	days := req.DayCount()
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrInvalidRequest)
	}
	bars, err := uc.load(ctx, req.DataRange)
	if err != nil {
		return nil, err
	}
	rep := summarize(returns.MonthEndReturns(bars, days, uc.cfg.Location, uc.cfg.Factor, req.LastX))
	return &rep, nil
}

func (uc *CalendarReturnsUseCase) load(ctx context.Context, r models.DataRange) ([]models.Bar, error) {
	q, err := uc.cfg.barQuery(r, "")
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	return loadBars(ctx, uc.bars, q, uc.metrics)
}
