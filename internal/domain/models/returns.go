package models

import "time"

// ReturnRecord holds the price move over one observed window, in bps.
type ReturnRecord struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	EntryPrice     float64   `json:"entry_price"`
	ExitPrice      float64   `json:"exit_price"`
	High           float64   `json:"high"`
	Low            float64   `json:"low"`
	Return         float64   `json:"return"`
	AbsoluteReturn float64   `json:"absolute_return"`
	RangeReturn    float64   `json:"range_return"`
}

// Stats summarises one return column.
type Stats struct {
	Count       int                `json:"count"`
	Mean        float64            `json:"mean"`
	Std         float64            `json:"std"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Percentiles map[string]float64 `json:"percentiles"`
	Skewness    float64            `json:"skewness"`
	Kurtosis    float64            `json:"kurtosis"`
}
