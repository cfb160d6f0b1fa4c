package returns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"DistroDash/internal/domain/models"
)

// Column names a ReturnRecord measure.
type Column string

const (
	ColumnReturn   Column = "return"
	ColumnAbsolute Column = "absolute_return"
	ColumnRange    Column = "range_return"
)

var Columns = []Column{ColumnAbsolute, ColumnReturn, ColumnRange}

// Percentiles reported by Describe.
var Percentiles = []float64{10, 25, 50, 75, 95, 99}

// Values extracts one column from the records.
func Values(rs []models.ReturnRecord, c Column) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		switch c {
		case ColumnReturn:
			out[i] = r.Return
		case ColumnAbsolute:
			out[i] = r.AbsoluteReturn
		case ColumnRange:
			out[i] = r.RangeReturn
		}
	}
	return out
}

// DescribeAll summarises every column of the records.
func DescribeAll(rs []models.ReturnRecord) map[Column]models.Stats {
	out := make(map[Column]models.Stats, len(Columns))
	for _, c := range Columns {
		out[c] = Describe(Values(rs, c))
	}
	return out
}

// Describe computes sample statistics. Skewness and excess kurtosis use the
// bias-adjusted estimators and stay zero below 3 and 4 samples respectively,
// or when every value is the same.
func Describe(values []float64) models.Stats {
	n := len(values)
	st := models.Stats{Count: n, Percentiles: map[string]float64{}}
	if n == 0 {
		return st
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	st.Min, st.Max = sorted[0], sorted[n-1]

	if n == 1 {
		st.Mean = sorted[0]
	} else {
		st.Mean, st.Std = stat.MeanStdDev(sorted, nil)
	}
	if n > 2 && st.Std > 0 {
		st.Skewness = stat.Skew(sorted, nil)
	}
	if n > 3 && st.Std > 0 {
		st.Kurtosis = stat.ExKurtosis(sorted, nil)
	}

	for _, p := range Percentiles {
		st.Percentiles[fmt.Sprintf("p%g", p)] = Percentile(sorted, p)
	}
	return st
}

// Percentile interpolates linearly between closest ranks at (n-1)*p, the rule pandas
// uses. stat.Quantile's LinInterp places ranks at n*p and disagrees on small samples.
// sorted must be ascending.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}
