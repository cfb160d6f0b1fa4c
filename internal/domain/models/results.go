package models

// ReturnsReport is the response of every returns analysis.
type ReturnsReport struct {
	Records []ReturnRecord   `json:"records"`
	Stats   map[string]Stats `json:"stats"`
}

// EventReturnsReport adds the filtering trail to a returns report.
type EventReturnsReport struct {
	ReturnsReport
	Event      string         `json:"event"`
	Instances  []EventRecord  `json:"instances"`
	Deviations []DeviationRow `json:"deviations,omitempty"`
	Windows    []EventWindow  `json:"windows"`
}

type ProbabilityReport struct {
	Results []MatrixResult `json:"results"`
	Cached  bool           `json:"cached"`
}

type PullbackReport struct {
	Pairs    []MovePair `json:"pairs"`
	Triggers int        `json:"triggers"`
}

// AnalysisJob is a probability request carried over Kafka.
type AnalysisJob struct {
	ID      string             `json:"id"`
	Request ProbabilityRequest `json:"request"`
}

// AnalysisJobResult is published once a job finishes.
type AnalysisJobResult struct {
	ID     string             `json:"id"`
	Report *ProbabilityReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}
