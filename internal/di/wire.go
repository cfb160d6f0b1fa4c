//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"DistroDash/pkg/config"
	"DistroDash/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application and its cleanup.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideLocation,
		ProvideSettings,
		ProvideCatalog,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Data sources
		ProvideBarSource,
		ProvideEventSource,

		// Use cases
		ProvideEventReturnsUseCase,
		ProvideProbabilityUseCase,
		ProvidePullbackUseCase,
		ProvideCalendarReturnsUseCase,
		ProvideAnalysisJobHandler,
		ProvideMatrixWarmer,

		// Transport
		ProvideRateLimiter,
		ProvideAnalysisHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
