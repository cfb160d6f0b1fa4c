package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"DistroDash/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
		// RateLimit throttles /api per client IP; zero RPS disables it.
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		// Topic receives aggregated error logs when Kafka is enabled.
		Topic string `yaml:"topic"`
	} `yaml:"logging"`
	Instrument struct {
		Symbol    string  `yaml:"symbol"`
		BpsFactor float64 `yaml:"bps_factor"`
		Interval  string  `yaml:"interval"`
		Timezone  string  `yaml:"timezone"`
	} `yaml:"instrument"`
	// Source selects where bars and events come from: clickhouse or files.
	Source     string `yaml:"source"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Files struct {
		BarDir     string `yaml:"bar_dir"`
		EventsFile string `yaml:"events_file"`
	} `yaml:"files"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequestTopic string   `yaml:"request_topic"`
		ResultTopic  string   `yaml:"result_topic"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Analysis struct {
		Timeout      time.Duration `yaml:"timeout"`
		SweepWorkers int           `yaml:"sweep_workers"`
		Dataset      string        `yaml:"dataset"`
	} `yaml:"analysis"`
	Warmup struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
		Targets  []struct {
			Bps     float64 `yaml:"bps"`
			Hours   int     `yaml:"hours"`
			Version string  `yaml:"version"`
		} `yaml:"targets"`
	} `yaml:"warmup"`
	Events struct {
		// Since drops announcements before this date (YYYY-MM-DD).
		Since            string              `yaml:"since"`
		Catalog          map[string][]string `yaml:"catalog"`
		PercentageEvents []string            `yaml:"percentage_events"`
	} `yaml:"events"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SOURCE"); v != "" {
		c.Source = v
	}
	if v := getenv("SYMBOL"); v != "" {
		c.Instrument.Symbol = v
	}
	if v := getenv("BPS_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Instrument.BpsFactor = f
		}
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("BAR_DIR"); v != "" {
		c.Files.BarDir = v
	}
	if v := getenv("EVENTS_FILE"); v != "" {
		c.Files.EventsFile = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitTrim(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = int(c.Server.RateLimit.RPS) + 1
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Instrument.BpsFactor == 0 {
		c.Instrument.BpsFactor = 16
	}
	if c.Instrument.Interval == "" {
		c.Instrument.Interval = "1h"
	}
	if c.Instrument.Timezone == "" {
		c.Instrument.Timezone = "America/New_York"
	}
	if c.Source == "" {
		c.Source = "files"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = time.Hour
	}
	if c.Kafka.RequestTopic == "" {
		c.Kafka.RequestTopic = "analysis.requests"
	}
	if c.Kafka.ResultTopic == "" {
		c.Kafka.ResultTopic = "analysis.results"
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = "distro-analysis"
	}
	if c.Analysis.Timeout == 0 {
		c.Analysis.Timeout = 30 * time.Second
	}
	if c.Analysis.SweepWorkers == 0 {
		c.Analysis.SweepWorkers = 4
	}
	if c.Analysis.Dataset == "" {
		c.Analysis.Dataset = "all"
	}
	if c.Warmup.Schedule == "" {
		c.Warmup.Schedule = "@every 1h"
	}
}

// Location resolves the instrument timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Instrument.Timezone)
}

// EventsSince parses Events.Since; the zero time means no cutoff.
func (c *Config) EventsSince() (time.Time, error) {
	if c.Events.Since == "" {
		return time.Time{}, nil
	}
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(time.DateOnly, c.Events.Since, loc)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Instrument.Symbol == "" {
		return fmt.Errorf("instrument.symbol is required")
	}
	if c.Instrument.BpsFactor <= 0 {
		return fmt.Errorf("instrument.bps_factor must be positive, got %v", c.Instrument.BpsFactor)
	}
	switch c.Instrument.Interval {
	case "1m", "5m", "1h":
	default:
		return fmt.Errorf("instrument.interval must be one of 1m, 5m, 1h, got '%s'", c.Instrument.Interval)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("instrument.timezone: %w", err)
	}
	switch c.Source {
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required when source is clickhouse")
		}
	case "files":
		if c.Files.BarDir == "" {
			return fmt.Errorf("files.bar_dir is required when source is files")
		}
	default:
		return fmt.Errorf("source must be 'clickhouse' or 'files', got '%s'", c.Source)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if _, err := c.EventsSince(); err != nil {
		return fmt.Errorf("events.since: %w", err)
	}
	for i, t := range c.Warmup.Targets {
		if t.Hours <= 0 {
			return fmt.Errorf("warmup.targets[%d].hours must be positive", i)
		}
	}
	return nil
}
