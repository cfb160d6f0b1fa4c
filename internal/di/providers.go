package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/domain/repository"
	"DistroDash/internal/handler/api"
	internalrepo "DistroDash/internal/repository"
	"DistroDash/internal/service/ratelimit"
	"DistroDash/internal/services/events"
	"DistroDash/internal/usecase"
	"DistroDash/pkg/cache"
	pkgch "DistroDash/pkg/clickhouse"
	"DistroDash/pkg/config"
	pkgkafka "DistroDash/pkg/kafka"
	applogger "DistroDash/pkg/logger"
	"DistroDash/pkg/metrics"
	"DistroDash/pkg/server"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

// ProvideSettings collects the instrument and analysis defaults.
func ProvideSettings(cfg *config.Config, loc *time.Location) (usecase.Settings, error) {
	ds, err := repository.ParseDataset(cfg.Analysis.Dataset)
	if err != nil {
		return usecase.Settings{}, fmt.Errorf("analysis.dataset: %w", err)
	}
	return usecase.Settings{
		Symbol:       cfg.Instrument.Symbol,
		Factor:       cfg.Instrument.BpsFactor,
		Interval:     models.Interval(cfg.Instrument.Interval),
		Dataset:      ds,
		Location:     loc,
		Timeout:      cfg.Analysis.Timeout,
		SweepWorkers: cfg.Analysis.SweepWorkers,
		CacheTTL:     cfg.Redis.TTL,
	}, nil
}

// ProvideCatalog merges configured overrides into the built-in sub-event catalog.
func ProvideCatalog(cfg *config.Config) events.Catalog {
	return events.DefaultCatalog().Merge(cfg.Events.Catalog)
}

func percentageEvents(cfg *config.Config) []string {
	if len(cfg.Events.PercentageEvents) > 0 {
		return cfg.Events.PercentageEvents
	}
	return events.DefaultPercentageEvents()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideClickHouseClient connects when ClickHouse is the data source and returns nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Source != "clickhouse" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	schema := append(append([]string{}, internalrepo.BarSchema...), internalrepo.EventSchema...)
	if err := client.InitSchema(ctx, schema); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideBarSource reads bars from ClickHouse or from parquet files.
func ProvideBarSource(cfg *config.Config, ch *pkgch.Client, loc *time.Location, l *applogger.Logger) repository.BarSource {
	if ch != nil {
		s := internalrepo.NewCHBarStore(ch, loc)
		s.SetLogger(l)
		return s
	}
	s := internalrepo.NewParquetBarStore(cfg.Files.BarDir, loc)
	s.SetLogger(l)
	return s
}

// ProvideEventSource reads the calendar from ClickHouse or from the events CSV.
func ProvideEventSource(cfg *config.Config, ch *pkgch.Client, loc *time.Location, l *applogger.Logger) (repository.EventSource, error) {
	if ch != nil {
		s := internalrepo.NewCHEventStore(ch, loc, percentageEvents(cfg))
		s.SetLogger(l)
		return s, nil
	}
	since, err := cfg.EventsSince()
	if err != nil {
		return nil, err
	}
	path := cfg.Files.EventsFile
	if path == "" {
		path = filepath.Join(cfg.Files.BarDir, "economic_events.csv")
	}
	s := internalrepo.NewCSVEventStore(path, loc, since, percentageEvents(cfg))
	s.SetLogger(l)
	return s, nil
}

// ProvideCache returns a Redis-backed layered cache, or a process-local one when Redis is off.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache()
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("distro:"+cfg.Instrument.Symbol),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc)
	l.Info("redis cache enabled", applogger.String("addr", cfg.Redis.Addr))
	return lc, func() {
		_ = lc.Close()
		_ = rc.Close()
	}, nil
}

// ProvideKafkaProducer creates a producer when Kafka is enabled and returns nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(0, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideKafkaConsumer creates the job consumer when Kafka is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l)
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.JobIDHook()))
	return consumer, nil
}

func ProvideEventReturnsUseCase(bars repository.BarSource, evts repository.EventSource, catalog events.Catalog, m repository.Metrics, s usecase.Settings, l *applogger.Logger) *usecase.EventReturnsUseCase {
	return usecase.NewEventReturnsUseCase(bars, evts, catalog, m, s, l)
}

func ProvideProbabilityUseCase(bars repository.BarSource, c cache.Service, m repository.Metrics, s usecase.Settings, l *applogger.Logger) *usecase.ProbabilityUseCase {
	return usecase.NewProbabilityUseCase(bars, c, m, s, l)
}

func ProvidePullbackUseCase(bars repository.BarSource, evts repository.EventSource, m repository.Metrics, s usecase.Settings, l *applogger.Logger) *usecase.PullbackUseCase {
	return usecase.NewPullbackUseCase(bars, evts, m, s, l)
}

func ProvideCalendarReturnsUseCase(bars repository.BarSource, m repository.Metrics, s usecase.Settings, l *applogger.Logger) *usecase.CalendarReturnsUseCase {
	return usecase.NewCalendarReturnsUseCase(bars, m, s, l)
}

// ProvideAnalysisJobHandler returns nil without a producer.
func ProvideAnalysisJobHandler(cfg *config.Config, uc *usecase.ProbabilityUseCase, producer *pkgkafka.Producer, l *applogger.Logger) *usecase.AnalysisJobHandler {
	if producer == nil {
		return nil
	}
	return usecase.NewAnalysisJobHandler(cfg.Kafka.RequestTopic, cfg.Kafka.ResultTopic, uc, producer, l)
}

// ProvideMatrixWarmer returns nil when warm-up is disabled.
func ProvideMatrixWarmer(cfg *config.Config, uc *usecase.ProbabilityUseCase, loc *time.Location, l *applogger.Logger) (*usecase.MatrixWarmer, error) {
	if !cfg.Warmup.Enabled || len(cfg.Warmup.Targets) == 0 {
		return nil, nil
	}
	targets := make([]models.ProbabilityRequest, len(cfg.Warmup.Targets))
	for i, t := range cfg.Warmup.Targets {
		targets[i] = models.ProbabilityRequest{TargetBps: t.Bps, TargetHours: models.Int(t.Hours), Version: t.Version}
	}
	return usecase.NewMatrixWarmer(uc, cfg.Warmup.Schedule, targets, loc, l)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.Server.RateLimit.RPS <= 0 {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
}

func ProvideAnalysisHandler(
	l *applogger.Logger,
	evts *usecase.EventReturnsUseCase,
	matrix *usecase.ProbabilityUseCase,
	pb *usecase.PullbackUseCase,
	calendar *usecase.CalendarReturnsUseCase,
	jobs *usecase.AnalysisJobHandler,
	limiter *ratelimit.Limiter,
) *api.AnalysisHandler {
	h := api.NewAnalysisHandler(l, evts, matrix, pb, calendar)
	if jobs != nil {
		h.SetJobs(jobs)
	}
	h.SetLimiter(limiter)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.AnalysisHandler,
	consumer *pkgkafka.Consumer,
	jobs *usecase.AnalysisJobHandler,
	warmer *usecase.MatrixWarmer,
	producer *pkgkafka.Producer,
) *server.App {
	app := server.New(cfg, l, handler)
	if consumer != nil && jobs != nil {
		app.SetConsumer(consumer, jobs)
	}
	if warmer != nil {
		app.SetWarmer(warmer)
	}
	if producer != nil && cfg.Logging.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: 30 * time.Second,
			Topic:        cfg.Logging.Topic,
			Publisher:    producer,
		})
	}
	return app
}
