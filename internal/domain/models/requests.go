package models

// Requests accepted by the HTTP API and the Kafka job topic. Times are RFC3339 or YYYY-MM-DD
// strings read in the instrument timezone; empty means unbounded.
//
// Numeric knobs where zero is a real value (or must be rejected) are pointers: nil takes the
// default, an explicit zero is kept and validated as sent.

const (
	DefaultTotalHours   = 2.0
	DefaultWindowHours  = 1.0
	DefaultTargetHours  = 6
	DefaultEstablishBps = 3.0
	DefaultReverseBps   = 5.0
	DefaultMonthEndDays = 1
)

type DataRange struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Interval string `json:"interval" validate:"omitempty,oneof=1m 5m 1h"`
	Dataset  string `json:"dataset" validate:"omitempty,oneof=all nonevents"`
}

type BoundRequest struct {
	SubEvent string   `json:"sub_event" validate:"required"`
	Lower    *float64 `json:"lower"`
	Upper    *float64 `json:"upper"`
}

type EventReturnsRequest struct {
	DataRange
	Event string `json:"event" validate:"required"`
	// TotalHours is the signed window length from the event hour; negative looks back.
	TotalHours *float64 `json:"total_hours" validate:"omitempty,gte=-72,lte=72"`
	OmitHours  float64  `json:"omit_hours" validate:"gte=-72,lte=72"`

	Isolate bool `json:"isolate"`
	Group   bool `json:"group"`
	// WindowHours of 0 only relates events sharing the instance's timestamp.
	WindowHours  *float64 `json:"window_hours" validate:"omitempty,gte=0,lte=48"`
	ExcludeTiers []int    `json:"exclude_tiers" validate:"dive,gte=1,lte=5"`
	GroupEvent   string   `json:"group_event" validate:"required_if=Group true"`

	Bounds              []BoundRequest `json:"bounds" validate:"dive"`
	RequireAllSubEvents bool           `json:"require_all_sub_events"`

	LastX int `json:"last_x" validate:"gte=0"`
}

func (r EventReturnsRequest) Total() float64 {
	if r.TotalHours == nil {
		return DefaultTotalHours
	}
	return *r.TotalHours
}

func (r EventReturnsRequest) Window() float64 {
	if r.WindowHours == nil {
		return DefaultWindowHours
	}
	return *r.WindowHours
}

type ProbabilityRequest struct {
	DataRange
	TargetBps   float64 `json:"target_bps" validate:"gte=0"`
	TargetHours *int    `json:"target_hours" validate:"omitempty,gte=1,lte=240"`
	Version     string  `json:"version" default:"NA" validate:"oneof=Absolute Up Down No-Version NA"`
}

func (r ProbabilityRequest) Hours() int {
	if r.TargetHours == nil {
		return DefaultTargetHours
	}
	return *r.TargetHours
}

type PullbackRequest struct {
	DataRange
	// Event selects triggers by event-name prefix from the event source.
	Event string `json:"event" validate:"required_without=Triggers"`
	// Triggers are explicit trigger timestamps, used when Event is empty.
	Triggers     []string `json:"triggers" validate:"required_without=Event,dive,required"`
	EstablishBps *float64 `json:"establish_bps" validate:"omitempty,gt=0"`
	ReverseBps   *float64 `json:"reverse_bps" validate:"omitempty,gt=0"`
	// FilterInitial enables the lower/upper post-filter on the initial move magnitude.
	FilterInitial bool    `json:"filter_initial"`
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper" validate:"gtefield=Lower"`
}

func (r PullbackRequest) Establish() float64 {
	if r.EstablishBps == nil {
		return DefaultEstablishBps
	}
	return *r.EstablishBps
}

func (r PullbackRequest) Reverse() float64 {
	if r.ReverseBps == nil {
		return DefaultReverseBps
	}
	return *r.ReverseBps
}

type SessionReturnsRequest struct {
	DataRange
	Sessions []string `json:"sessions" validate:"required,min=1,dive,required"`
	LastX    int      `json:"last_x" validate:"gte=0"`
}

type MonthEndRequest struct {
	DataRange
	Days  *int `json:"days" validate:"omitempty,gte=1,lte=10"`
	LastX int  `json:"last_x" validate:"gte=0"`
}

func (r MonthEndRequest) DayCount() int {
	if r.Days == nil {
		return DefaultMonthEndDays
	}
	return *r.Days
}
