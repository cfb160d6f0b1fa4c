package returns

import (
	"fmt"
	"time"

	"DistroDash/internal/domain/models"
)

// Session is a fixed clock-hour bucket in exchange (US/Eastern) time.
type Session string

const (
	SessionAsia    Session = "Asia 18-24 ET"
	SessionLondon  Session = "London 0-7 ET"
	SessionUSOpen  Session = "US Open 7-10 ET"
	SessionUSMid   Session = "US Mid 10-15 ET"
	SessionUSClose Session = "US Close 15-17 ET"
	SessionOther   Session = "Other"
)

var Sessions = []Session{SessionAsia, SessionLondon, SessionUSOpen, SessionUSMid, SessionUSClose, SessionOther}

// ParseSession accepts the full label.
func ParseSession(s string) (Session, error) {
	for _, v := range Sessions {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown session %q", s)
}

// SessionOf returns the session the timestamp falls in, evaluated in loc.
func SessionOf(t time.Time, loc *time.Location) Session {
	switch h := t.In(loc).Hour(); {
	case h >= 18:
		return SessionAsia
	case h < 7:
		return SessionLondon
	case h < 10:
		return SessionUSOpen
	case h < 15:
		return SessionUSMid
	case h < 17:
		return SessionUSClose
	default:
		return SessionOther
	}
}

// SessionReturns aggregates, per calendar date in loc, the bars that fall in any of the selected sessions.
func SessionReturns(bars []models.Bar, selected []Session, loc *time.Location, factor float64, lastX int) []models.ReturnRecord {
	want := make(map[Session]struct{}, len(selected))
	for _, s := range selected {
		want[s] = struct{}{}
	}
	in := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if _, ok := want[SessionOf(b.Timestamp, loc)]; ok {
			in = append(in, b)
		}
	}
	out := groupBy(in, factor, func(t time.Time) (string, bool) {
		return t.In(loc).Format(time.DateOnly), true
	})
	return Tail(out, lastX)
}
