package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	internalrepo "DistroDash/internal/repository"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t0 := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

	hourly := make([]models.Bar, 48)
	for i := range hourly {
		hourly[i] = models.Bar{Timestamp: t0.Add(time.Duration(i) * time.Hour), Open: 100, High: 100.5, Low: 99.75, Close: 100.25}
	}
	require.NoError(t, internalrepo.WriteBars(filepath.Join(dir, internalrepo.BarFile("ZN", models.Interval1h, domrepo.DatasetAll)), hourly))

	csv := "datetime,events,tier,actual,consensus,forecast\n" +
		"2024-05-14 12:30:00+00:00,Inflation Rate MoM,1,0.3%,0.4%,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.csv"), []byte(csv), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMatrixCommandJSON(t *testing.T) {
	dir := writeFixtures(t)
	out, err := run(t, "matrix", "--bars", dir, "--tz", "UTC", "--bps", "4", "--hours", "2", "--version", "Absolute", "-o", "json")
	require.NoError(t, err, out)

	var rep models.ProbabilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Results, 1)
	assert.Equal(t, models.VersionAbsolute, rep.Results[0].Version)
}

func TestReturnsCommandTable(t *testing.T) {
	dir := writeFixtures(t)
	out, err := run(t, "returns", "--bars", dir, "--events", filepath.Join(dir, "events.csv"), "--tz", "UTC",
		"--event", "CPI", "--total-hours", "2", "-o", "table")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2024-05-14 12:00:00")
	assert.Contains(t, out, "absolute_return")
}

func TestMatrixCommandRejectsBadVersion(t *testing.T) {
	dir := writeFixtures(t)
	_, err := run(t, "matrix", "--bars", dir, "--version", "Sideways")
	assert.Error(t, err)
}
