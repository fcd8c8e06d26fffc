package controllers

import (
	"errors"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/services"
	json "github.com/goccy/go-json"
	"net/http"
)

var errNoStatistics = errors.New("no statistics computed yet")

type ApiController struct {
	logger  providers.Logger
	service services.StatisticServiceInterface
	cache   providers.CacheProviderInterface
}

// statsResponse adds the per-theme breakdown, which is not part of the root topic payload.
type statsResponse struct {
	*models.Statistics
	PerTheme []*models.ThemeStatistics `json:"perTheme"`
}

func NewApiController(logger providers.Logger, service services.StatisticServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Warnf(providers.TypeHttp, "Serving %s failed: %s", cacheKey, err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetStats returns the statistics of the last completed cycle.
func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeyStatistics, func() (any, error) {
		stats := ac.service.GetLastStatistics()
		if stats == nil {
			return nil, errNoStatistics
		}
		return statsResponse{Statistics: stats, PerTheme: stats.PerTheme}, nil
	})
}

// GetThemes returns every resolved theme ordered by id.
func (ac *ApiController) GetThemes(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.CacheKeyThemes, func() (any, error) {
		return ac.service.GetState().ThemeCache.Snapshot(), nil
	})
}
