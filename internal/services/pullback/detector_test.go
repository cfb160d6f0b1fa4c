package pullback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
)

var t0 = time.Date(2024, 4, 10, 8, 30, 0, 0, time.UTC)

func minuteBars(ohlc ...[4]float64) []models.Bar {
	out := make([]models.Bar, len(ohlc))
	for i, p := range ohlc {
		out[i] = models.Bar{Timestamp: t0.Add(time.Duration(i) * time.Minute), Open: p[0], High: p[1], Low: p[2], Close: p[3]}
	}
	return out
}

// rally then pullback: high ties at bars 2 and 3, low pivot at bar 5
func rally() []models.Bar {
	return minuteBars(
		[4]float64{100, 100.5, 99.9, 100.4},
		[4]float64{100.4, 101, 100.3, 100.85},
		[4]float64{100.9, 101.5, 100.8, 101.4},
		[4]float64{101.4, 101.5, 101.0, 101.1},
		[4]float64{101.1, 101.2, 100.5, 100.6},
		[4]float64{100.6, 100.7, 100.2, 100.3},
		[4]float64{100.3, 101.1, 100.3, 101.0},
	)
}

var defaults = Params{EstablishBps: 8, ReverseBps: 12, Factor: 16}

func TestEstablishStrictThreshold(t *testing.T) {
	bars := minuteBars(
		[4]float64{100, 101, 99, 100.5},
		[4]float64{100.5, 102, 100, 101.8},
	)
	dir, at, ok := Establish(bars, 8, 16)
	require.True(t, ok)
	assert.Equal(t, models.DirectionUp, dir)
	assert.Equal(t, 1, at)

	_, _, ok = Establish(bars[:1], 8, 16)
	assert.False(t, ok, "a sum equal to the threshold does not establish")
}

func TestEstablishDown(t *testing.T) {
	bars := minuteBars([4]float64{100, 100, 99, 99.25})
	dir, at, ok := Establish(bars, 8, 16)
	require.True(t, ok)
	assert.Equal(t, models.DirectionDown, dir)
	assert.Equal(t, 0, at)
}

func TestDetectOneRallyAndPullback(t *testing.T) {
	bars := rally()
	pair, ok := DetectOne(bars, defaults)
	require.True(t, ok)

	assert.Equal(t, models.DirectionUp, pair.Initial.Direction)
	assert.True(t, pair.Initial.Timestamp.Equal(bars[3].Timestamp), "ties move the pivot forward")
	assert.InDelta(t, 24, pair.Initial.Magnitude, 1e-9)

	assert.Equal(t, models.DirectionDown, pair.Pullback.Direction)
	assert.True(t, pair.Pullback.Timestamp.Equal(bars[5].Timestamp))
	assert.InDelta(t, -20.8, pair.Pullback.Magnitude, 1e-9)
}

func TestTrackSkipsChecksBeforeStart(t *testing.T) {
	bars := rally()
	// a start index past the first reversal delays the stop
	mv, pivot, ok := Track(bars, models.DirectionUp, 5, 12, 16)
	require.True(t, ok)
	assert.Equal(t, 3, pivot)
	assert.True(t, mv.Timestamp.Equal(bars[3].Timestamp))

	_, _, ok = Track(bars[:4], models.DirectionUp, 1, 12, 16)
	assert.False(t, ok)

	_, _, ok = Track(nil, models.DirectionUp, 1, 12, 16)
	assert.False(t, ok)
}

func TestDetectSelloffHasNegativeInitialMagnitude(t *testing.T) {
	bars := minuteBars(
		[4]float64{100, 100.1, 99.5, 99.6},
		[4]float64{99.6, 99.7, 99.0, 99.1},
		[4]float64{99.1, 99.2, 98.8, 98.9},
		[4]float64{98.9, 99.8, 98.9, 99.7},
		[4]float64{99.7, 99.8, 99.0, 99.1},
	)
	pair, ok := DetectOne(bars, defaults)
	require.True(t, ok)
	assert.Equal(t, models.DirectionDown, pair.Initial.Direction)
	assert.True(t, pair.Initial.Timestamp.Equal(bars[2].Timestamp))
	assert.InDelta(t, (98.8-100.1)*16, pair.Initial.Magnitude, 1e-9)
	assert.Less(t, pair.Initial.Magnitude, 0.0)

	assert.Equal(t, models.DirectionUp, pair.Pullback.Direction)
	assert.True(t, pair.Pullback.Timestamp.Equal(bars[3].Timestamp))
	assert.InDelta(t, (99.8-99.1)*16, pair.Pullback.Magnitude, 1e-9)
}

func TestNoPullbackEmitsNothing(t *testing.T) {
	bars := rally()[:5]
	_, ok := DetectOne(bars, defaults)
	assert.False(t, ok)

	flat := minuteBars([4]float64{100, 100.1, 99.9, 100.1}, [4]float64{100.1, 100.2, 100, 100})
	_, ok = DetectOne(flat, defaults)
	assert.False(t, ok)
}

func TestDetectIsIdempotentAndDedupesAnchors(t *testing.T) {
	bars := rally()
	triggers := []time.Time{bars[0].Timestamp, bars[1].Timestamp, t0.Add(time.Hour)}

	first, err := Detect(context.Background(), bars, triggers, defaults)
	require.NoError(t, err)
	second, err := Detect(context.Background(), bars, triggers, defaults)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 1, "both triggers pivot at the same bar")
	assert.True(t, first[0].Trigger.Equal(bars[1].Timestamp), "the last pair wins")
	assert.InDelta(t, (101.5-100.4)*16, first[0].Initial.Magnitude, 1e-9)
}

func TestDetectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Detect(ctx, rally(), []time.Time{t0}, defaults)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterByInitialMagnitudeKeepsPairsTogether(t *testing.T) {
	pairs := []models.MovePair{
		{Initial: models.TrendMove{Magnitude: 24}, Pullback: models.TrendMove{Magnitude: -20}},
		{Initial: models.TrendMove{Magnitude: -10}, Pullback: models.TrendMove{Magnitude: 5}},
		{Initial: models.TrendMove{Magnitude: 8}, Pullback: models.TrendMove{Magnitude: -3}},
	}
	out := FilterByInitialMagnitude(pairs, 0, 10)
	require.Len(t, out, 1)
	assert.Equal(t, -3.0, out[0].Pullback.Magnitude)

	out = FilterByInitialMagnitude(pairs, -10, 24)
	assert.Len(t, out, 3)
}
