package probability

import (
	"context"
	"math"
	"time"

	"DistroDash/internal/domain/models"
)

// RoundHalf rounds to the nearest 0.5, halves going away from zero.
func RoundHalf(x float64) float64 {
	return math.Round(x*2) / 2
}

// Segment splits time-ordered bars wherever consecutive bars are more than one interval apart.
func Segment(bars []models.Bar, interval time.Duration) [][]models.Bar {
	if len(bars) == 0 {
		return nil
	}
	var segs [][]models.Bar
	start := 0
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Sub(bars[i-1].Timestamp) > interval {
			segs = append(segs, bars[start:i])
			start = i
		}
	}
	return append(segs, bars[start:])
}

// horizonMoves holds the rounded raw moves of every complete block at one horizon.
type horizonMoves struct {
	hours  int
	starts []time.Time
	moves  map[models.Mode][]float64
}

// blockMoves cuts each segment into complete, non-overlapping blocks of size bars.
func blockMoves(ctx context.Context, segs [][]models.Bar, hours, size int, factor float64) (horizonMoves, error) {
	hm := horizonMoves{hours: hours, moves: make(map[models.Mode][]float64, len(models.Modes))}
	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return hm, err
		}
		full := len(seg) / size
		for i := 0; i < full; i++ {
			if i%256 == 255 {
				if err := ctx.Err(); err != nil {
					return hm, err
				}
			}
			block := seg[i*size : (i+1)*size]
			open, closePx := block[0].Open, block[len(block)-1].Close
			high, low := block[0].High, block[0].Low
			for _, b := range block[1:] {
				high = math.Max(high, b.High)
				low = math.Min(low, b.Low)
			}

			hm.starts = append(hm.starts, block[0].Timestamp)
			hm.moves[models.ModeOpenClose] = append(hm.moves[models.ModeOpenClose], RoundHalf((closePx-open)*factor))
			hm.moves[models.ModeOpenHighLow] = append(hm.moves[models.ModeOpenHighLow], RoundHalf(math.Max(high-open, open-low)*factor))
			hm.moves[models.ModeHighLow] = append(hm.moves[models.ModeHighLow], RoundHalf((high-low)*factor))
		}
	}
	return hm, nil
}

// ApplyVersion transforms raw signed moves. Up keeps zero and positive moves, Down keeps strictly
// negative moves as positive sizes, so the two partition Absolute. Non-finite values are dropped.
func ApplyVersion(values []float64, v models.Version) []float64 {
	out := make([]float64, 0, len(values))
	for _, x := range values {
		switch v {
		case models.VersionAbsolute:
			x = math.Abs(x)
		case models.VersionUp:
			if !(x >= 0) {
				continue
			}
		case models.VersionDown:
			if !(x < 0) {
				continue
			}
			x = -x
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out = append(out, x)
	}
	return out
}
