package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
)

var rallyStart = time.Date(2024, 4, 10, 8, 30, 0, 0, time.UTC)

// rallyBars rise about 24 bps, then pull back about 21 bps.
func rallyBars() []models.Bar {
	ohlc := [][4]float64{
		{100, 100.5, 99.9, 100.4},
		{100.4, 101, 100.3, 100.85},
		{100.9, 101.5, 100.8, 101.4},
		{101.4, 101.5, 101.0, 101.1},
		{101.1, 101.2, 100.5, 100.6},
		{100.6, 100.7, 100.2, 100.3},
		{100.3, 101.1, 100.3, 101.0},
	}
	out := make([]models.Bar, len(ohlc))
	for i, p := range ohlc {
		out[i] = models.Bar{Timestamp: rallyStart.Add(time.Duration(i) * time.Minute), Open: p[0], High: p[1], Low: p[2], Close: p[3]}
	}
	return out
}

func pullbackRequest() models.PullbackRequest {
	return models.PullbackRequest{EstablishBps: models.Float(8), ReverseBps: models.Float(12)}
}

func TestPullbacksFromEventTriggers(t *testing.T) {
	bars := &fakeBars{bars: rallyBars()}
	evts := &fakeEvents{events: []models.EventRecord{
		{Timestamp: rallyStart, Name: "Initial Jobless Claims", Tier: 1},
		{Timestamp: rallyStart, Name: "Continuing Jobless Claims", Tier: 2},
		{Timestamp: rallyStart.Add(-24 * time.Hour), Name: "Retail Sales MoM", Tier: 1},
	}}
	uc := NewPullbackUseCase(bars, evts, nopMetrics, testSettings(), nopLog)

	req := pullbackRequest()
	req.Event = "initial jobless"
	rep, err := uc.Pullbacks(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Triggers)
	require.Len(t, rep.Pairs, 1)
	assert.Equal(t, models.DirectionUp, rep.Pairs[0].Initial.Direction)
	assert.InDelta(t, 24, rep.Pairs[0].Initial.Magnitude, 1e-9)
	assert.InDelta(t, -20.8, rep.Pairs[0].Pullback.Magnitude, 1e-9)

	require.Len(t, bars.queries, 1)
	assert.Equal(t, models.Interval1m, bars.queries[0].Interval, "pullbacks default to minute bars")
}

func TestPullbacksExplicitTriggersAndFilter(t *testing.T) {
	uc := NewPullbackUseCase(&fakeBars{bars: rallyBars()}, &fakeEvents{}, nopMetrics, testSettings(), nopLog)

	req := pullbackRequest()
	req.Triggers = []string{rallyStart.Format(time.RFC3339)}
	rep, err := uc.Pullbacks(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rep.Pairs, 1)

	req.FilterInitial = true
	req.Lower, req.Upper = 30, 50
	rep, err = uc.Pullbacks(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, rep.Pairs)
	assert.NotNil(t, rep.Pairs)
}

func TestPullbacksWithoutTriggers(t *testing.T) {
	uc := NewPullbackUseCase(&fakeBars{bars: rallyBars()}, &fakeEvents{}, nopMetrics, testSettings(), nopLog)
	req := pullbackRequest()
	req.Event = "CPI"
	_, err := uc.Pullbacks(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoData)

	req.Event = ""
	req.Triggers = []string{"yesterday"}
	_, err = uc.Pullbacks(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
