package pullback

import (
	"context"
	"sort"
	"time"

	"DistroDash/internal/domain/models"
)

type Params struct {
	EstablishBps float64
	ReverseBps   float64
	Factor       float64
}

// Establish accumulates candle bodies in bps and returns the direction and index of the
// first bar where the running sum strictly exceeds the threshold on either side.
func Establish(bars []models.Bar, threshold, factor float64) (models.Direction, int, bool) {
	sum := 0.0
	for i, b := range bars {
		sum += (b.Close - b.Open) * factor
		switch {
		case sum > threshold:
			return models.DirectionUp, i, true
		case sum < -threshold:
			return models.DirectionDown, i, true
		}
	}
	return "", 0, false
}

// Track follows the running extreme in direction d from bar 0 and stops at the first bar,
// from startCheck on, whose adverse excursion from the extreme reaches the threshold.
// Ties move the pivot forward. It returns the move anchored at the pivot and the pivot index.
// Up magnitudes are measured from the first open, down magnitudes from the first high and are negative.
func Track(bars []models.Bar, d models.Direction, startCheck int, threshold, factor float64) (models.TrendMove, int, bool) {
	if len(bars) == 0 {
		return models.TrendMove{}, 0, false
	}

	pivot := 0
	extreme := bars[0].High
	if d == models.DirectionDown {
		extreme = bars[0].Low
	}

	for i := 1; i < len(bars); i++ {
		b := bars[i]
		var excursion float64
		if d == models.DirectionUp {
			if b.High >= extreme {
				extreme, pivot = b.High, i
			}
			excursion = (extreme - b.Low) * factor
		} else {
			if b.Low <= extreme {
				extreme, pivot = b.Low, i
			}
			excursion = (b.High - extreme) * factor
		}
		if i < startCheck || excursion < threshold {
			continue
		}

		mv := models.TrendMove{Timestamp: bars[pivot].Timestamp, Direction: d}
		if d == models.DirectionUp {
			mv.Magnitude = (extreme - bars[0].Open) * factor
		} else {
			mv.Magnitude = (extreme - bars[0].High) * factor
		}
		return mv, pivot, true
	}
	return models.TrendMove{}, 0, false
}

// DetectOne runs both phases for the bars at and after a trigger.
func DetectOne(bars []models.Bar, p Params) (models.MovePair, bool) {
	dir, at, ok := Establish(bars, p.EstablishBps, p.Factor)
	if !ok {
		return models.MovePair{}, false
	}
	initial, pivot, ok := Track(bars, dir, at, p.ReverseBps, p.Factor)
	if !ok {
		return models.MovePair{}, false
	}
	pb, _, ok := Track(bars[pivot:], dir.Opposite(), 1, p.ReverseBps, p.Factor)
	if !ok {
		return models.MovePair{}, false
	}
	return models.MovePair{Initial: initial, Pullback: pb}, true
}

// Detect evaluates every trigger independently against time-ordered bars. Pairs sharing an
// initial anchor keep the last one; the result follows trigger order.
func Detect(ctx context.Context, bars []models.Bar, triggers []time.Time, p Params) ([]models.MovePair, error) {
	var pairs []models.MovePair
	for _, trig := range triggers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(trig) })
		pair, ok := DetectOne(bars[from:], p)
		if !ok {
			continue
		}
		pair.Trigger = trig
		pairs = append(pairs, pair)
	}
	return dedupeLast(pairs), nil
}

func dedupeLast(pairs []models.MovePair) []models.MovePair {
	seen := make(map[int64]struct{}, len(pairs))
	keep := make([]bool, len(pairs))
	for i := len(pairs) - 1; i >= 0; i-- {
		k := pairs[i].Initial.Timestamp.UnixNano()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[i] = true
	}
	out := make([]models.MovePair, 0, len(seen))
	for i, p := range pairs {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// FilterByInitialMagnitude keeps pairs whose signed initial magnitude lies in [lower, upper].
func FilterByInitialMagnitude(pairs []models.MovePair, lower, upper float64) []models.MovePair {
	out := make([]models.MovePair, 0, len(pairs))
	for _, p := range pairs {
		if p.Initial.Magnitude >= lower && p.Initial.Magnitude <= upper {
			out = append(out, p)
		}
	}
	return out
}
