//go:build wireinject
// +build wireinject

package di

import (
	"github.com/RobinLinde/MapComplete-MQTT/internal"
	"github.com/RobinLinde/MapComplete-MQTT/internal/controllers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/services"
	"github.com/RobinLinde/MapComplete-MQTT/internal/statistic"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		models.NewDailyState,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewHttpClientProvider,
		providers.NewSinkProvider,

		services.NewChangesetService,
		services.NewColorService,
		services.NewStatisticService,
		services.NewPublishService,
		statistic.NewZstdCompressor,
		statistic.NewFileManager,
		statistic.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
