package internal

import (
	"github.com/RobinLinde/MapComplete-MQTT/internal/controllers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	routers.Get("/themes", http.HandlerFunc(apiController.GetThemes))
	return routers
}
