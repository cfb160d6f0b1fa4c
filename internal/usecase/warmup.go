package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"DistroDash/internal/domain/models"
	applogger "DistroDash/pkg/logger"
)

// MatrixWarmer refreshes the cached matrices of the configured targets on a cron schedule.
type MatrixWarmer struct {
	matrix  *ProbabilityUseCase
	targets []models.ProbabilityRequest
	cron    *cron.Cron
	timeout time.Duration
	l       *applogger.Logger
}

func NewMatrixWarmer(matrix *ProbabilityUseCase, schedule string, targets []models.ProbabilityRequest, loc *time.Location, l *applogger.Logger) (*MatrixWarmer, error) {
	if loc == nil {
		loc = time.UTC
	}
	w := &MatrixWarmer{
		matrix:  matrix,
		targets: targets,
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: matrix.cfg.Timeout * time.Duration(len(targets)+1),
		l:       l,
	}
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("warm-up schedule %q: %w", schedule, err)
	}
	return w, nil
}

func (w *MatrixWarmer) Start() {
	w.cron.Start()
	w.l.Info("matrix warm-up scheduled", applogger.Int("targets", len(w.targets)))
}

// Stop prevents new runs and waits for a running one, or for ctx.
func (w *MatrixWarmer) Stop(ctx context.Context) error {
	done := w.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *MatrixWarmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.WarmAll(ctx)
}

// WarmAll warms every target in turn and returns how many succeeded.
func (w *MatrixWarmer) WarmAll(ctx context.Context) int {
	ok := 0
	for _, t := range w.targets {
		if err := w.matrix.Warm(ctx, t); err != nil {
			w.l.Warn("matrix warm-up failed",
				applogger.Float64("target_bps", t.TargetBps),
				applogger.Int("target_hours", t.Hours()),
				applogger.Error(err),
			)
			continue
		}
		ok++
	}
	w.l.Debug("matrix warm-up finished", applogger.Int("warmed", ok), applogger.Int("targets", len(w.targets)))
	return ok
}
