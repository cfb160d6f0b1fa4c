package returns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"DistroDash/internal/domain/models"
)

func TestDescribe(t *testing.T) {
	st := Describe([]float64{4, 1, 3, 2, 5})
	assert.Equal(t, 5, st.Count)
	assert.InDelta(t, 3, st.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), st.Std, 1e-12)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 5.0, st.Max)
	assert.InDelta(t, 3, st.Percentiles["p50"], 1e-12)
	assert.InDelta(t, 1.4, st.Percentiles["p10"], 1e-12)
	assert.InDelta(t, 4.96, st.Percentiles["p99"], 1e-12)
	assert.InDelta(t, 0, st.Skewness, 1e-12)
	assert.InDelta(t, -1.2, st.Kurtosis, 1e-12)
}

func TestDescribeSkewSign(t *testing.T) {
	st := Describe([]float64{1, 1, 1, 1, 10})
	assert.Greater(t, st.Skewness, 0.0)
}

func TestDescribeMatchesPandas(t *testing.T) {
	// pandas: s.std(), s.skew(), s.kurt(), s.quantile(.25)
	st := Describe([]float64{-3, 1, 2, 2, 8, 14})
	assert.InDelta(t, 4, st.Mean, 1e-12)
	assert.InDelta(t, 6.0332412515993425, st.Std, 1e-9)
	assert.InDelta(t, 0.9261874099, st.Skewness, 1e-6)
	assert.InDelta(t, 0.4966187658, st.Kurtosis, 1e-6)
	assert.InDelta(t, 1.25, st.Percentiles["p25"], 1e-12)
}

func TestDescribeDegenerate(t *testing.T) {
	st := Describe([]float64{7})
	assert.Equal(t, 7.0, st.Mean)
	assert.Zero(t, st.Std)

	st = Describe([]float64{2, 2, 2, 2, 2})
	assert.Zero(t, st.Std)
	assert.Zero(t, st.Skewness)
	assert.Zero(t, st.Kurtosis)
	assert.Equal(t, 2.0, st.Percentiles["p95"])
}

func TestDescribeEmpty(t *testing.T) {
	st := Describe(nil)
	assert.Zero(t, st.Count)
	assert.Empty(t, st.Percentiles)
}

func TestDescribeAll(t *testing.T) {
	rs := []models.ReturnRecord{
		{Return: -2, AbsoluteReturn: 2, RangeReturn: 6},
		{Return: 4, AbsoluteReturn: 4, RangeReturn: 8},
	}
	all := DescribeAll(rs)
	assert.InDelta(t, 1, all[ColumnReturn].Mean, 1e-12)
	assert.InDelta(t, 3, all[ColumnAbsolute].Mean, 1e-12)
	assert.InDelta(t, 7, all[ColumnRange].Mean, 1e-12)
}
