package internal

import (
	"context"
	"github.com/RobinLinde/MapComplete-MQTT/internal/controllers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/testutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- minimal mocks for routes test ---

type routeTestCache struct{}

func (m *routeTestCache) Get(_ string) ([]byte, bool) { return nil, false }
func (m *routeTestCache) Set(_ string, _ []byte)      {}
func (m *routeTestCache) Del(_ string)                {}

type routeTestMockService struct {
	state *models.DailyState
}

func (m *routeTestMockService) Ingest(_ []*models.Changeset) int { return 0 }
func (m *routeTestMockService) ComputeStatistics(_ context.Context) *models.Statistics {
	return &models.Statistics{}
}
func (m *routeTestMockService) Rollover(_ time.Time) bool              { return false }
func (m *routeTestMockService) GetState() *models.DailyState           { return m.state }
func (m *routeTestMockService) PutLastStatistics(_ *models.Statistics) {}
func (m *routeTestMockService) GetLastStatistics() *models.Statistics {
	return &models.Statistics{}
}

func newRouteTestController() *controllers.ApiController {
	svc := &routeTestMockService{state: models.NewDailyState()}
	return controllers.NewApiController(&testutil.MockLogger{}, svc, &routeTestCache{})
}

func TestInitRoutes_RegistersReadRoutes(t *testing.T) {
	router := InitRoutes(newRouteTestController())
	routes := router.GetRoutes()

	require.Len(t, routes, 2)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/stats")
	assert.Contains(t, urls, "/themes")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(newRouteTestController())

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	for _, path := range []string{"/stats", "/themes"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)

		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}
