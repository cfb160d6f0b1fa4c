package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/probability"
	"DistroDash/pkg/cache"
	applogger "DistroDash/pkg/logger"
)

const matrixKeyPrefix = "matrix"

// ProbabilityUseCase builds probability matrices from bars, memoised in the cache per parameter set.
type ProbabilityUseCase struct {
	bars    domrepo.BarSource
	cache   cache.Service
	metrics domrepo.Metrics
	cfg     Settings
	l       *applogger.Logger
}

// NewProbabilityUseCase accepts a nil cache, in which case every request is computed.
func NewProbabilityUseCase(bars domrepo.BarSource, c cache.Service, m domrepo.Metrics, cfg Settings, l *applogger.Logger) *ProbabilityUseCase {
	return &ProbabilityUseCase{bars: bars, cache: c, metrics: m, cfg: cfg.withDefaults(), l: l}
}

func (uc *ProbabilityUseCase) Matrix(ctx context.Context, req models.ProbabilityRequest) (report *models.ProbabilityReport, err error) {
	start := time.Now()
	defer func() { track(uc.l, uc.metrics, "probability", start, err) }()

	version, err := models.ParseVersion(req.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	q, err := uc.cfg.barQuery(req.DataRange, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	key := uc.cacheKey(q, req.TargetBps, req.Hours(), version)
	results, hit, err := cache.GetOrCompute(ctx, uc.cache, key, uc.cfg.CacheTTL, func(ctx context.Context) ([]models.MatrixResult, error) {
		bars, err := loadBars(ctx, uc.bars, q, uc.metrics)
		if err != nil {
			return nil, err
		}
		return probability.Build(ctx, bars, probability.Params{
			TargetBps:   req.TargetBps,
			TargetHours: req.Hours(),
			Version:     version,
			Factor:      uc.cfg.Factor,
			Interval:    q.Interval.Duration(),
			Workers:     uc.cfg.SweepWorkers,
		})
	})
	if uc.cache != nil {
		uc.metrics.RecordCache("probability", hit)
	}
	if err != nil {
		return nil, mapProbabilityErr(err)
	}
	return &models.ProbabilityReport{Results: results, Cached: hit}, nil
}

// Warm precomputes a matrix so later requests hit the cache. A held lock means another
// instance is already warming the same key and the call is a no-op.
func (uc *ProbabilityUseCase) Warm(ctx context.Context, req models.ProbabilityRequest) error {
	if uc.cache == nil {
		return nil
	}
	version, err := models.ParseVersion(req.Version)
	if err != nil {
		return err
	}
	q, err := uc.cfg.barQuery(req.DataRange, "")
	if err != nil {
		return err
	}
	lock := "lock:" + uc.cacheKey(q, req.TargetBps, req.Hours(), version)
	ok, err := uc.cache.TryLock(ctx, lock, uc.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("warm lock: %w", err)
	}
	if !ok {
		uc.l.Debug("matrix warm-up already running", applogger.String("key", lock))
		return nil
	}
	defer func() { _ = uc.cache.Unlock(context.WithoutCancel(ctx), lock) }()

	// Drop the previous entry so the matrix reflects newly ingested bars.
	_ = uc.cache.Delete(ctx, uc.cacheKey(q, req.TargetBps, req.Hours(), version))
	_, err = uc.Matrix(ctx, req)
	return err
}

// Invalidate drops every cached matrix of the configured instrument.
func (uc *ProbabilityUseCase) Invalidate(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.DeleteByPattern(ctx, cache.BuildPattern(matrixKeyPrefix+":"+uc.cfg.Symbol+":"))
}

func (uc *ProbabilityUseCase) cacheKey(q domrepo.BarQuery, bps float64, hours int, v models.Version) string {
	params := cache.HashKey(cache.GenerateKeyWithParams("",
		q.Interval, q.Dataset, q.From.Unix(), q.To.Unix(), bps, hours, v, uc.cfg.Factor))
	return cache.GenerateKeyWithParams(matrixKeyPrefix, uc.cfg.Symbol, params)
}

func mapProbabilityErr(err error) error {
	switch {
	case errors.Is(err, probability.ErrNoData):
		return fmt.Errorf("%w: %w", ErrNoData, err)
	case errors.Is(err, probability.ErrInvalidHorizon),
		errors.Is(err, probability.ErrInvalidInterval),
		errors.Is(err, probability.ErrInvalidVersion):
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	default:
		return err
	}
}
