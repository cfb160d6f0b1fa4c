package events

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"DistroDash/internal/domain/models"
)

var ErrConflictingModes = errors.New("isolation and grouping cannot be combined")

type InteractionMode string

const (
	ModeNone    InteractionMode = "none"
	ModeIsolate InteractionMode = "isolate"
	ModeGroup   InteractionMode = "group"
)

// ResolveMode turns the two request switches into a mode.
func ResolveMode(isolate, group bool) (InteractionMode, error) {
	switch {
	case isolate && group:
		return "", ErrConflictingModes
	case isolate:
		return ModeIsolate, nil
	case group:
		return ModeGroup, nil
	default:
		return ModeNone, nil
	}
}

type InteractionParams struct {
	Selected     string
	Window       time.Duration
	Mode         InteractionMode
	ExcludeTiers []int
	GroupEvent   string
}

// FilterInteractions keeps the instances of the selected event that satisfy the
// neighbourhood rule and returns every stream event released at their timestamps.
// Neighbours are found with a sliding window over the time-sorted stream.
func FilterInteractions(stream []models.EventRecord, catalog Catalog, p InteractionParams) ([]models.EventRecord, error) {
	subs, err := catalog.SubEvents(p.Selected)
	if err != nil {
		return nil, err
	}
	selected := NewMatcher(subs)

	var group *Matcher
	switch p.Mode {
	case ModeNone, ModeIsolate:
	case ModeGroup:
		gs, err := catalog.SubEvents(p.GroupEvent)
		if err != nil {
			return nil, fmt.Errorf("group event: %w", err)
		}
		group = NewMatcher(gs)
	default:
		return nil, fmt.Errorf("unknown interaction mode %q", p.Mode)
	}

	sorted := make([]models.EventRecord, len(stream))
	copy(sorted, stream)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = Normalize(e.Name)
	}

	// distinct instance timestamps in ascending order
	var instances []time.Time
	for i, e := range sorted {
		if !selected.Match(names[i]) {
			continue
		}
		if n := len(instances); n == 0 || !instances[n-1].Equal(e.Timestamp) {
			instances = append(instances, e.Timestamp)
		}
	}
	if len(instances) == 0 {
		return nil, nil
	}

	excluded := make(map[int]struct{}, len(p.ExcludeTiers))
	for _, t := range p.ExcludeTiers {
		excluded[t] = struct{}{}
	}

	kept := make(map[int64]struct{}, len(instances))
	lo := 0
	for _, ts := range instances {
		from, to := ts.Add(-p.Window), ts.Add(p.Window)
		for lo < len(sorted) && sorted[lo].Timestamp.Before(from) {
			lo++
		}

		keep := p.Mode != ModeGroup
		if p.Mode != ModeNone {
			for j := lo; j < len(sorted) && !sorted[j].Timestamp.After(to); j++ {
				switch p.Mode {
				case ModeIsolate:
					// the instance's own release never isolates it
					if sorted[j].Timestamp.Equal(ts) && selected.Match(names[j]) {
						continue
					}
					if _, bad := excluded[sorted[j].Tier]; bad {
						keep = false
					}
				case ModeGroup:
					if group.Match(names[j]) {
						keep = true
					}
				}
				if keep == (p.Mode == ModeGroup) {
					break
				}
			}
		}
		if keep {
			kept[ts.UnixNano()] = struct{}{}
		}
	}

	out := make([]models.EventRecord, 0, len(kept))
	for _, e := range sorted {
		if _, ok := kept[e.Timestamp.UnixNano()]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}
