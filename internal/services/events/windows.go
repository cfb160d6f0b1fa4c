package events

import (
	"time"

	"DistroDash/internal/domain/models"
)

// HourFloor zeroes minutes, seconds and sub-seconds in the timestamp's own location.
func HourFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// BuildWindows attaches an analysis window to every event.
// A negative total looks back from the event hour, a non-negative total looks forward.
// omit trims the edge closest to the event. Nothing is clamped.
func BuildWindows(evts []models.EventRecord, total, omit time.Duration) []models.EventWindow {
	out := make([]models.EventWindow, 0, len(evts))
	for _, e := range evts {
		base := HourFloor(e.Timestamp)
		w := models.EventWindow{Event: e}
		if total < 0 {
			w.Start = base.Add(total)
			w.End = base.Add(omit)
		} else {
			w.Start = base.Add(omit)
			w.End = base.Add(total)
		}
		out = append(out, w)
	}
	return out
}
