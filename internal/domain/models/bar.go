package models

import "time"

// Bar is one OHLC sample of an instrument at a fixed sampling interval.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Interval is a bar sampling resolution.
type Interval string

const (
	Interval1m Interval = "1m"
	Interval5m Interval = "5m"
	Interval1h Interval = "1h"
)

// Duration returns the sampling step of the interval, or 0 if unknown.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval1h:
		return time.Hour
	default:
		return 0
	}
}

// IsValid reports whether the interval is supported.
func (i Interval) IsValid() bool { return i.Duration() > 0 }
