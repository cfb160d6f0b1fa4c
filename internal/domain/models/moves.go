package models

import "time"

// Direction of a price move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

// TrendMove is a directional leg anchored at its pivot bar.
// Down legs carry a negative magnitude.
type TrendMove struct {
	Timestamp time.Time `json:"timestamp"`
	Magnitude float64   `json:"magnitude"`
	Direction Direction `json:"direction"`
}

// MovePair is the initial move after a trigger and the pullback that followed it.
type MovePair struct {
	Trigger  time.Time `json:"trigger"`
	Initial  TrendMove `json:"initial"`
	Pullback TrendMove `json:"pullback"`
}
