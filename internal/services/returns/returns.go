package returns

import (
	"math"
	"sort"
	"time"

	"DistroDash/internal/domain/models"
)

// DefaultBpsFactor converts a price delta of an instrument quoted in 32nds into bps.
const DefaultBpsFactor = 16.0

// Aggregate folds a non-empty run of bars into one record: first open, last close, extreme high and low.
func Aggregate(bars []models.Bar, factor float64) (models.ReturnRecord, bool) {
	if len(bars) == 0 {
		return models.ReturnRecord{}, false
	}
	first, last := bars[0], bars[len(bars)-1]
	r := models.ReturnRecord{
		Start:      first.Timestamp,
		End:        last.Timestamp,
		EntryPrice: first.Open,
		ExitPrice:  last.Close,
		High:       first.High,
		Low:        first.Low,
	}
	for _, b := range bars[1:] {
		r.High = math.Max(r.High, b.High)
		r.Low = math.Min(r.Low, b.Low)
	}
	move := r.ExitPrice - r.EntryPrice
	r.Return = move * factor
	r.AbsoluteReturn = math.Abs(move) * factor
	r.RangeReturn = (r.High - r.Low) * factor
	if !finite(r) {
		return models.ReturnRecord{}, false
	}
	return r, true
}

func finite(r models.ReturnRecord) bool {
	for _, v := range []float64{r.EntryPrice, r.ExitPrice, r.High, r.Low, r.Return, r.RangeReturn} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Compute measures every window over bars in [start, end). Bars must be sorted by time.
// Windows without bars are dropped, duplicate starts keep the first record, the result is
// ordered by start and lastX > 0 keeps only the most recent lastX records.
func Compute(windows []models.EventWindow, bars []models.Bar, factor float64, lastX int) []models.ReturnRecord {
	out := make([]models.ReturnRecord, 0, len(windows))
	seen := make(map[int64]struct{}, len(windows))
	for _, w := range windows {
		lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(w.Start) })
		hi := sort.Search(len(bars), func(i int) bool { return !bars[i].Timestamp.Before(w.End) })
		if hi <= lo {
			continue
		}
		r, ok := Aggregate(bars[lo:hi], factor)
		if !ok {
			continue
		}
		k := r.Start.UnixNano()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	sortByStart(out)
	return Tail(out, lastX)
}

func sortByStart(rs []models.ReturnRecord) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Start.Before(rs[j].Start) })
}

// Tail keeps the last n records; n <= 0 keeps everything.
func Tail(rs []models.ReturnRecord, n int) []models.ReturnRecord {
	if n <= 0 || n >= len(rs) {
		return rs
	}
	return rs[len(rs)-n:]
}

// SortBars orders bars by timestamp in place and returns them.
func SortBars(bars []models.Bar) []models.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars
}

// groupBy aggregates consecutive runs of sorted bars sharing a key.
func groupBy(bars []models.Bar, factor float64, key func(time.Time) (string, bool)) []models.ReturnRecord {
	var (
		out   []models.ReturnRecord
		cur   string
		start = -1
	)
	flush := func(end int) {
		if start < 0 {
			return
		}
		if r, ok := Aggregate(bars[start:end], factor); ok {
			out = append(out, r)
		}
		start = -1
	}
	for i, b := range bars {
		k, ok := key(b.Timestamp)
		if !ok {
			flush(i)
			continue
		}
		if start >= 0 && k != cur {
			flush(i)
		}
		if start < 0 {
			start, cur = i, k
		}
	}
	flush(len(bars))
	return out
}
