package events

import (
	"time"

	"DistroDash/internal/domain/models"
)

// Bound limits the surprise of one sub-event. A nil side rejects every row it matches.
type Bound struct {
	SubEvent string   `json:"sub_event" yaml:"sub_event" validate:"required"`
	Lower    *float64 `json:"lower" yaml:"lower"`
	Upper    *float64 `json:"upper" yaml:"upper"`
}

type DeviationOptions struct {
	// RequireAllSubEvents also drops timestamps that do not carry exactly one row per sub-event.
	RequireAllSubEvents bool
}

type DeviationResult struct {
	Events     []models.EventRecord  `json:"events"`
	Deviations []models.DeviationRow `json:"deviations"`
}

// ScopeToSubEvents keeps the rows whose name belongs to one of the sub-events.
func ScopeToSubEvents(evts []models.EventRecord, subEvents []string) []models.EventRecord {
	m := NewMatcher(subEvents)
	out := make([]models.EventRecord, 0, len(evts))
	for _, e := range evts {
		if m.Match(Normalize(e.Name)) {
			out = append(out, e)
		}
	}
	return out
}

// FilterDeviations scopes rows to the sub-events and keeps only the timestamps
// where every row passes its bound. Bounds are tried in order; the first match wins.
func FilterDeviations(evts []models.EventRecord, subEvents []string, bounds []Bound, opts DeviationOptions) DeviationResult {
	rows := ScopeToSubEvents(evts, subEvents)

	keys := make([]string, len(bounds))
	for i, b := range bounds {
		keys[i] = Normalize(b.SubEvent)
	}
	type tsState struct {
		pass bool
		rows int
	}
	states := make(map[int64]*tsState)
	for _, e := range rows {
		k := e.Timestamp.UnixNano()
		st, ok := states[k]
		if !ok {
			st = &tsState{pass: true}
			states[k] = st
		}
		st.rows++
		if !rowPasses(Normalize(e.Name), e.Deviation(), bounds, keys) {
			st.pass = false
		}
	}

	res := DeviationResult{}
	for _, e := range rows {
		st := states[e.Timestamp.UnixNano()]
		if !st.pass {
			continue
		}
		if opts.RequireAllSubEvents && st.rows != len(subEvents) {
			continue
		}
		res.Events = append(res.Events, e)
		res.Deviations = append(res.Deviations, models.DeviationRow{
			Timestamp: e.Timestamp,
			Name:      e.Name,
			Deviation: e.Deviation(),
		})
	}
	return res
}

func rowPasses(name string, dev *float64, bounds []Bound, keys []string) bool {
	for i, b := range bounds {
		if !MatchesBound(name, keys[i]) {
			continue
		}
		if b.Lower == nil || b.Upper == nil || dev == nil {
			return false
		}
		return *b.Lower <= *dev && *dev <= *b.Upper
	}
	return true
}

// Timestamps returns the distinct release times of the events in order of first appearance.
func Timestamps(evts []models.EventRecord) []time.Time {
	seen := make(map[int64]struct{}, len(evts))
	var out []time.Time
	for _, e := range evts {
		k := e.Timestamp.UnixNano()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e.Timestamp)
	}
	return out
}
