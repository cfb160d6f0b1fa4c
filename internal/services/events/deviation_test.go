package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
)

func row(ts time.Time, name string, actual, consensus, forecast *float64) models.EventRecord {
	return models.EventRecord{Timestamp: ts, Name: name, Actual: actual, Consensus: consensus, Forecast: forecast}
}

var f = models.Float

func TestFilterDeviationsWholeTimestampMustPass(t *testing.T) {
	t1, t2 := at(10, 8, 30), at(11, 8, 30)
	evts := []models.EventRecord{
		row(t1, "Core PPI MoM", f(0.3), f(0.2), nil),
		row(t1, "PPI MoM", f(0.5), f(0.2), nil),
		row(t2, "Core PPI MoM", f(0.2), f(0.2), nil),
		row(t2, "PPI MoM", f(0.1), nil, f(0.2)),
		row(t2, "Retail Sales MoM", f(9), f(0), nil),
	}
	bounds := []Bound{
		{SubEvent: "PPI MoM", Lower: f(-0.2), Upper: f(0.2)},
	}

	res := FilterDeviations(evts, DefaultCatalog()["PPI"], bounds, DeviationOptions{})
	require.Len(t, res.Events, 2)
	for _, e := range res.Events {
		assert.True(t, e.Timestamp.Equal(t2))
	}
	require.Len(t, res.Deviations, 2)
	assert.InDelta(t, -0.1, *res.Deviations[1].Deviation, 1e-9)
}

func TestFilterDeviationsNullBoundSideFails(t *testing.T) {
	evts := []models.EventRecord{row(at(10, 8, 30), "PPI MoM", f(0.1), f(0.1), nil)}
	res := FilterDeviations(evts, []string{"PPI MoM"}, []Bound{{SubEvent: "PPI MoM", Lower: f(-1)}}, DeviationOptions{})
	assert.Empty(t, res.Events)
}

func TestFilterDeviationsNullDeviationFailsMatchedBound(t *testing.T) {
	evts := []models.EventRecord{row(at(10, 8, 30), "PPI MoM", nil, f(0.1), nil)}
	res := FilterDeviations(evts, []string{"PPI MoM"}, []Bound{{SubEvent: "PPI MoM", Lower: f(-1), Upper: f(1)}}, DeviationOptions{})
	assert.Empty(t, res.Events)

	// unmatched rows pass even without values
	res = FilterDeviations(evts, []string{"PPI MoM"}, nil, DeviationOptions{})
	assert.Len(t, res.Events, 1)
	assert.Nil(t, res.Deviations[0].Deviation)
}

func TestFilterDeviationsMonthSuffixGuard(t *testing.T) {
	ts := at(10, 8, 30)
	bounds := []Bound{{SubEvent: "CPI", Lower: f(-0.1), Upper: f(0.1)}}

	// "CPI s.a" starts with "CPI" but its suffix is not a month, so the bound does not apply
	res := FilterDeviations([]models.EventRecord{
		row(ts, "CPI", f(310.0), f(310.05), nil),
		row(ts, "CPI s.a", f(312), f(310), nil),
	}, DefaultCatalog()["CPI"], bounds, DeviationOptions{})
	assert.Len(t, res.Events, 2)

	// "CPI Dec" carries a month suffix, so it is bound and fails
	res = FilterDeviations([]models.EventRecord{
		row(ts, "CPI", f(310.0), f(310.05), nil),
		row(ts, "CPI Dec", f(312), f(310), nil),
	}, DefaultCatalog()["CPI"], bounds, DeviationOptions{})
	assert.Empty(t, res.Events)
}

func TestFilterDeviationsFirstBoundWins(t *testing.T) {
	evts := []models.EventRecord{row(at(10, 8, 30), "PPI MoM", f(0.5), f(0.2), nil)}
	bounds := []Bound{
		{SubEvent: "PPI MoM", Lower: f(0.0), Upper: f(1.0)},
		{SubEvent: "PPI", Lower: f(-0.1), Upper: f(0.1)},
	}
	res := FilterDeviations(evts, []string{"PPI MoM"}, bounds, DeviationOptions{})
	assert.Len(t, res.Events, 1)
}

func TestFilterDeviationsRequireAllSubEvents(t *testing.T) {
	subs := []string{"Core PPI MoM", "PPI MoM"}
	t1, t2 := at(10, 8, 30), at(11, 8, 30)
	evts := []models.EventRecord{
		row(t1, "Core PPI MoM", f(0.2), f(0.2), nil),
		row(t1, "PPI MoM", f(0.2), f(0.2), nil),
		row(t2, "PPI MoM", f(0.2), f(0.2), nil),
	}
	res := FilterDeviations(evts, subs, nil, DeviationOptions{RequireAllSubEvents: true})
	require.Len(t, res.Events, 2)
	assert.Equal(t, []time.Time{t1}, Timestamps(res.Events))

	res = FilterDeviations(evts, subs, nil, DeviationOptions{})
	assert.Len(t, res.Events, 3)
}
