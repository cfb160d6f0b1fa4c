package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DistroDash/pkg/config"
	xhttp "DistroDash/pkg/http"
	pkgkafka "DistroDash/pkg/kafka"
	applogger "DistroDash/pkg/logger"
)

// Scheduler is a background job runner such as the matrix warm-up.
type Scheduler interface {
	Start()
	Stop(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	jobs       pkgkafka.MessageHandler
	warmer     Scheduler
}

// New creates a new App serving handler over HTTP.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, handler: handler}
}

// SetConsumer enables the Kafka job consumer.
func (a *App) SetConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = c
	a.jobs = h
}

func (a *App) SetWarmer(s Scheduler) { a.warmer = s }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	a.l.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Start launches the HTTP server, the job consumer and the scheduler without blocking.
func (a *App) Start() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithLogger(a.l),
	)

	if a.consumer != nil && a.jobs != nil {
		a.consumer.RegisterHandler(a.jobs)
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer error", applogger.Error(err))
			return err
		}
	}

	if a.warmer != nil {
		a.warmer.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("symbol", a.cfg.Instrument.Symbol),
		applogger.String("source", a.cfg.Source),
	)
	return nil
}

// Shutdown stops intake first, then background work, then flushes aggregated logs.
func (a *App) Shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.warmer != nil {
		if err := a.warmer.Stop(shutdownCtx); err != nil {
			a.l.Warn("warm-up stop error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	a.l.RemoveCollector()
	return nil
}
