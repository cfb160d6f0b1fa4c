package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
environment: test
instrument:
  symbol: ZN
files:
  bar_dir: /tmp/bars
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 16.0, c.Instrument.BpsFactor)
	assert.Equal(t, "1h", c.Instrument.Interval)
	assert.Equal(t, "files", c.Source)
	assert.Equal(t, "analysis.requests", c.Kafka.RequestTopic)
	assert.Equal(t, 30*time.Second, c.Analysis.Timeout)

	since, err := c.EventsSince()
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	assert.Zero(t, c.Server.RateLimit.Burst)
}

func TestRateLimitBurstDefaultsFromRPS(t *testing.T) {
	c, err := Parse([]byte(minimal + "server:\n  rate_limit: {rps: 2.5}\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Server.RateLimit.Burst)

	c, err = Parse([]byte(minimal + "server:\n  rate_limit: {rps: 2, burst: 10}\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Server.RateLimit.Burst)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := map[string]string{
		"no symbol":      "environment: test\nfiles: {bar_dir: x}\n",
		"bad interval":   "environment: test\ninstrument: {symbol: ZN, interval: 2h}\nfiles: {bar_dir: x}\n",
		"bad source":     minimal + "source: s3\n",
		"no ch host":     "environment: test\ninstrument: {symbol: ZN}\nsource: clickhouse\n",
		"bad timezone":   "environment: test\ninstrument: {symbol: ZN, timezone: Mars/Base}\nfiles: {bar_dir: x}\n",
		"negative bps":   "environment: test\ninstrument: {symbol: ZN, bps_factor: -1}\nfiles: {bar_dir: x}\n",
		"kafka brokers":  minimal + "kafka: {enabled: true, brokers: []}\n",
		"bad since":      minimal + "events: {since: yesterday}\n",
		"warmup horizon": minimal + "warmup: {targets: [{bps: 2, hours: 0}]}\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("BPS_FACTOR", "32")
	t.Setenv("REDIS_ADDR", "cache:6379")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 32.0, c.Instrument.BpsFactor)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache:6379", c.Redis.Addr)
}

func TestShippedConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ZN", c.Instrument.Symbol)
	assert.Len(t, c.Warmup.Targets, 2)

	since, err := c.EventsSince()
	require.NoError(t, err)
	assert.Equal(t, 2022, since.Year())
}
