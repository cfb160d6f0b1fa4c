package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, ok := ParseTime("2024-10-10T10:10:10Z", ny)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix(), got.Unix())
	assert.Equal(t, ny, got.Location())

	got, ok = ParseTime("2024-10-10", ny)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, ny), got)

	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok = ParseTime(strconv.FormatInt(ts, 10), nil)
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())

	_, ok = ParseTime("yesterday", nil)
	assert.False(t, ok)
	_, ok = ParseTime("", nil)
	assert.False(t, ok)
}

func TestMonthEnd(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), MonthEnd(time.Date(2024, 2, 3, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), MonthEnd(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestSplitTrim(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitTrim(" a:9092, ,b:9092 ", ","))
	assert.Empty(t, SplitTrim("", ","))
}
