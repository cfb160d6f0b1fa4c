package models

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Mode selects how a block move is measured.
type Mode string

const (
	ModeOpenClose   Mode = "open_close"
	ModeOpenHighLow Mode = "open_high_low"
	ModeHighLow     Mode = "high_low"
)

// Modes lists every block measurement in output order.
var Modes = []Mode{ModeOpenClose, ModeOpenHighLow, ModeHighLow}

// Version selects the sign treatment of block moves.
type Version string

const (
	VersionAbsolute Version = "Absolute"
	VersionUp       Version = "Up"
	VersionDown     Version = "Down"
	VersionNone     Version = "No-Version"
	// VersionAll expands to Absolute, Up and Down.
	VersionAll Version = "NA"
)

// ParseVersion validates a version string.
func ParseVersion(s string) (Version, error) {
	switch v := Version(s); v {
	case VersionAbsolute, VersionUp, VersionDown, VersionNone, VersionAll:
		return v, nil
	case "":
		return VersionAll, nil
	default:
		return "", fmt.Errorf("invalid version %q: use Absolute, Up, Down, No-Version or NA", s)
	}
}

// Expand returns the concrete versions a request resolves to.
func (v Version) Expand() []Version {
	if v == VersionAll {
		return []Version{VersionAbsolute, VersionUp, VersionDown}
	}
	return []Version{v}
}

// MatrixColumn is the exceedance curve of one horizon. Exceed is nil when the horizon produced no moves.
type MatrixColumn struct {
	Hours   int       `json:"hours"`
	Samples int       `json:"samples"`
	Exceed  []float64 `json:"exceed,omitempty"`
}

// ProbabilityMatrix answers "probability of moving more than Rows[i] bps within Columns[j].Hours".
type ProbabilityMatrix struct {
	Version Version        `json:"version"`
	Mode    Mode           `json:"mode"`
	Rows    []float64      `json:"rows"`
	Columns []MatrixColumn `json:"columns"`
}

// Cell returns the exceedance percentage at (row, col) and whether it is defined.
func (m *ProbabilityMatrix) Cell(row, col int) (float64, bool) {
	if col < 0 || col >= len(m.Columns) || row < 0 || row >= len(m.Rows) {
		return 0, false
	}
	c := m.Columns[col]
	if c.Exceed == nil {
		return 0, false
	}
	return c.Exceed[row], true
}

// Formatted renders the matrix cells as percentage strings, "" for undefined cells.
func (m *ProbabilityMatrix) Formatted() [][]string {
	out := make([][]string, len(m.Rows))
	for r := range m.Rows {
		out[r] = make([]string, len(m.Columns))
		for c := range m.Columns {
			if v, ok := m.Cell(r, c); ok {
				out[r][c] = FormatPercent(v)
			}
		}
	}
	return out
}

// FormatPercent rounds to two decimals and keeps at least one fractional digit, e.g. 70 -> "70.0%".
func FormatPercent(v float64) string {
	v = math.Round(v*100) / 100
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s + "%"
}

// BlockMove is one completed block at the target horizon.
type BlockMove struct {
	Start time.Time `json:"start"`
	Bps   float64   `json:"bps"`
}

// TargetStat is the share of target-horizon moves at or below the target bps.
type TargetStat struct {
	Percent float64 `json:"percent"`
	Samples int     `json:"samples"`
}

// MatrixResult bundles everything built for one version.
type MatrixResult struct {
	Version     Version                     `json:"version"`
	TargetBps   float64                     `json:"target_bps"`
	TargetHours int                         `json:"target_hours"`
	AtOrBelow   map[Mode]TargetStat         `json:"at_or_below"`
	Matrices    map[Mode]*ProbabilityMatrix `json:"matrices"`
	Latest      map[Mode][]BlockMove        `json:"latest"`
}
