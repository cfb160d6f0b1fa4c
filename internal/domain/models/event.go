package models

import "time"

// EventRecord is one economic announcement. Actual, Consensus and Forecast are nil when not published.
type EventRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Tier      int       `json:"tier"`
	Actual    *float64  `json:"actual,omitempty"`
	Consensus *float64  `json:"consensus,omitempty"`
	Forecast  *float64  `json:"forecast,omitempty"`
}

// Expected returns the consensus value, falling back to the forecast.
func (e EventRecord) Expected() *float64 {
	if e.Consensus != nil {
		return e.Consensus
	}
	return e.Forecast
}

// Deviation returns actual minus expected, or nil if either side is missing.
func (e EventRecord) Deviation() *float64 {
	exp := e.Expected()
	if e.Actual == nil || exp == nil {
		return nil
	}
	d := *e.Actual - *exp
	return &d
}

// EventWindow is the analysis slice attached to an event.
type EventWindow struct {
	Event EventRecord `json:"event"`
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
}

// DeviationRow is the surprise of one sub-event row.
type DeviationRow struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Deviation *float64  `json:"deviation"`
}

// Float returns a pointer to v. Handy for building nullable event fields.
func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
