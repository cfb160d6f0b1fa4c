package repository

import (
	"context"
	"errors"
	"time"

	"DistroDash/internal/domain/models"
)

// ErrSourceNotFound means no underlying bar or event source could be located at all.
var ErrSourceNotFound = errors.New("data source not found")

// BarQuery selects bars of one instrument. Zero From/To leave that side open.
type BarQuery struct {
	Symbol   string
	Interval models.Interval
	Dataset  Dataset
	From     time.Time
	To       time.Time
}

// BarSource provides time-ordered bars.
type BarSource interface {
	GetBars(ctx context.Context, q BarQuery) ([]models.Bar, error)
}

// EventSource provides cleaned, time-ordered economic announcements.
type EventSource interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]models.EventRecord, error)
}

// Publisher sends JSON payloads to a topic. Publish keys the message for partitioning.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type Metrics interface {
	RecordAnalysis(kind string, d time.Duration, err error)
	RecordCache(kind string, hit bool)
	RecordSourceRows(source string, rows int)
}
