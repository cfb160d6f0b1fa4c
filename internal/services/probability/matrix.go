package probability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"DistroDash/internal/domain/models"
)

var (
	ErrNoData          = errors.New("no bars available")
	ErrInvalidHorizon  = errors.New("target hours must be positive")
	ErrInvalidInterval = errors.New("bar interval must divide one hour")
	ErrInvalidVersion  = errors.New("invalid version")
)

// Spread is how many horizons on each side of the target are swept.
const Spread = 10

type Params struct {
	TargetBps   float64
	TargetHours int
	Version     models.Version
	Factor      float64
	Interval    time.Duration
	Workers     int
}

func (p Params) validate() error {
	if p.TargetHours <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, p.TargetHours)
	}
	if p.Interval <= 0 || p.Interval > time.Hour || time.Hour%p.Interval != 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, p.Interval)
	}
	if _, err := models.ParseVersion(string(p.Version)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}
	return nil
}

// Horizons returns the swept horizon hours for a target.
func Horizons(target int) []int {
	lo := target - Spread
	if lo < 1 {
		lo = 1
	}
	out := make([]int, 0, target+Spread-lo+1)
	for h := lo; h <= target+Spread; h++ {
		out = append(out, h)
	}
	return out
}

// Build sweeps the horizons around the target on a bounded worker pool and returns one
// result per concrete version. Bars must be ordered by time.
func Build(ctx context.Context, bars []models.Bar, p Params) ([]models.MatrixResult, error) {
	if p.Version == "" {
		p.Version = models.VersionAll
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	if p.Workers <= 0 {
		p.Workers = 4
	}

	segs := Segment(bars, p.Interval)
	perHour := int(time.Hour / p.Interval)
	horizons := Horizons(p.TargetHours)
	sweep := make([]horizonMoves, len(horizons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, h := range horizons {
		i, h := i, h
		g.Go(func() error {
			hm, err := blockMoves(gctx, segs, h, h*perHour, p.Factor)
			if err != nil {
				return err
			}
			sweep[i] = hm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("horizon sweep: %w", err)
	}

	var target horizonMoves
	for _, hm := range sweep {
		if hm.hours == p.TargetHours {
			target = hm
		}
	}

	versions := p.Version.Expand()
	out := make([]models.MatrixResult, 0, len(versions))
	for _, v := range versions {
		out = append(out, buildVersion(sweep, target, v, p))
	}
	return out, nil
}

func buildVersion(sweep []horizonMoves, target horizonMoves, v models.Version, p Params) models.MatrixResult {
	res := models.MatrixResult{
		Version:     v,
		TargetBps:   p.TargetBps,
		TargetHours: p.TargetHours,
		AtOrBelow:   make(map[models.Mode]models.TargetStat, len(models.Modes)),
		Matrices:    make(map[models.Mode]*models.ProbabilityMatrix, len(models.Modes)),
		Latest:      make(map[models.Mode][]models.BlockMove, len(models.Modes)),
	}

	for _, mode := range models.Modes {
		columns := make([][]float64, len(sweep))
		for i, hm := range sweep {
			columns[i] = ApplyVersion(hm.moves[mode], v)
		}

		res.AtOrBelow[mode] = AtOrBelow(ApplyVersion(target.moves[mode], v), p.TargetBps)
		res.Matrices[mode] = newMatrix(v, mode, sweep, columns)

		latest := make([]models.BlockMove, len(target.starts))
		for i, ts := range target.starts {
			latest[i] = models.BlockMove{Start: ts, Bps: target.moves[mode][i]}
		}
		res.Latest[mode] = latest
	}
	return res
}

// AtOrBelow is the share of values at or below the threshold, in percent.
func AtOrBelow(values []float64, threshold float64) models.TargetStat {
	st := models.TargetStat{Samples: len(values)}
	if len(values) == 0 {
		return st
	}
	n := 0
	for _, v := range values {
		if v <= threshold {
			n++
		}
	}
	st.Percent = float64(n) / float64(len(values)) * 100
	return st
}

func newMatrix(v models.Version, mode models.Mode, sweep []horizonMoves, columns [][]float64) *models.ProbabilityMatrix {
	uniq := make(map[float64]struct{})
	for _, col := range columns {
		for _, x := range col {
			uniq[x] = struct{}{}
		}
	}
	rows := make([]float64, 0, len(uniq))
	for x := range uniq {
		rows = append(rows, x)
	}
	sort.Float64s(rows)

	m := &models.ProbabilityMatrix{Version: v, Mode: mode, Rows: rows, Columns: make([]models.MatrixColumn, len(sweep))}
	for i, col := range columns {
		m.Columns[i] = models.MatrixColumn{Hours: sweep[i].hours, Samples: len(col), Exceed: Exceedance(col, rows)}
	}
	return m
}

// Exceedance returns, for each threshold, the percentage of values strictly above it.
// It returns nil for an empty sample.
func Exceedance(values, thresholds []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := float64(len(sorted))

	out := make([]float64, len(thresholds))
	for i, t := range thresholds {
		atOrBelow := sort.Search(len(sorted), func(j int) bool { return sorted[j] > t })
		out[i] = 100 - float64(atOrBelow)/n*100
	}
	return out
}
