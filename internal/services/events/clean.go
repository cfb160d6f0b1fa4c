package events

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"DistroDash/internal/domain/models"
)

// CleanName folds compatibility forms, turns invisible spacing into plain spaces and collapses runs of whitespace.
func CleanName(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if isInvisible(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseShorthand parses calendar values such as "1.2K", "$3B", "-0.3%" or "1,250".
// ok is false for empty or unparseable input.
func ParseShorthand(raw string) (v float64, ok bool) {
	x := strings.ToUpper(strings.TrimSpace(raw))
	x = strings.NewReplacer(",", "", "$", "").Replace(x)
	for strings.HasPrefix(x, "--") {
		x = x[1:]
	}
	if x == "" {
		return 0, false
	}

	mult := 1.0
	switch x[len(x)-1] {
	case 'T':
		mult = 1e12
	case 'B':
		mult = 1e9
	case 'M':
		mult = 1e6
	case 'K':
		mult = 1e3
	case '%':
		mult = 0.01
	}
	if mult != 1 {
		x = x[:len(x)-1]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return 0, false
	}
	return f * mult, true
}

// Prepare cleans names, keeps the last row per (timestamp, name), sorts by time
// and rescales the values of percentage events by 100.
func Prepare(raw []models.EventRecord, percentageEvents []string) []models.EventRecord {
	type key struct {
		ts   int64
		name string
	}
	last := make(map[key]int, len(raw))
	cleaned := make([]models.EventRecord, len(raw))
	for i, e := range raw {
		e.Name = CleanName(e.Name)
		cleaned[i] = e
		last[key{e.Timestamp.UnixNano(), e.Name}] = i
	}

	pct := NewMatcher(percentageEvents)
	out := make([]models.EventRecord, 0, len(last))
	for i, e := range cleaned {
		if last[key{e.Timestamp.UnixNano(), e.Name}] != i || e.Name == "" {
			continue
		}
		if pct.Match(Normalize(e.Name)) {
			e.Actual = scale(e.Actual)
			e.Consensus = scale(e.Consensus)
			e.Forecast = scale(e.Forecast)
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func scale(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(*v * 100)
}

// ParseTier reads tier columns written either as "1" or "Tier 1".
func ParseTier(raw string) (int, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "tier"))
	if s == "" {
		return 0, nil
	}
	t, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid tier %q: %w", raw, err)
	}
	return t, nil
}
