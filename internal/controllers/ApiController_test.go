package controllers

import (
	"context"
	"encoding/json"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockService struct {
	state *models.DailyState
	last  *models.Statistics
}

func newMockService() *mockService {
	return &mockService{state: models.NewDailyState()}
}

func (m *mockService) Ingest(changesets []*models.Changeset) int { return len(changesets) }
func (m *mockService) ComputeStatistics(_ context.Context) *models.Statistics {
	return &models.Statistics{}
}
func (m *mockService) Rollover(_ time.Time) bool                  { return false }
func (m *mockService) GetState() *models.DailyState               { return m.state }
func (m *mockService) PutLastStatistics(stats *models.Statistics) { m.last = stats }
func (m *mockService) GetLastStatistics() *models.Statistics      { return m.last }

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) Del(key string)                { delete(m.data, key) }

// --- helpers ---

func newTestController(svc *mockService, cache *mockCache) *ApiController {
	return NewApiController(&mockLogger{}, svc, cache)
}

func sampleStats() *models.Statistics {
	last, user := int64(99), "alice"
	return &models.Statistics{
		Changesets: models.ChangesetStats{Total: 1, Last: &last, LastUser: &user},
		Images:     4,
		PerTheme: []*models.ThemeStatistics{
			{Id: "benches", Title: "Benches", Changesets: models.ThemeChangesetStats{Total: 1}},
		},
	}
}

// --- GetStats tests ---

func TestGetStats_ReturnsJSON(t *testing.T) {
	svc := newMockService()
	svc.last = sampleStats()
	ac := newTestController(svc, newMockCache())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	ac.GetStats(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp["images"])
	changesets := resp["changesets"].(map[string]any)
	assert.Equal(t, float64(99), changesets["last"])
	perTheme := resp["perTheme"].([]any)
	require.Len(t, perTheme, 1)
	assert.Equal(t, "benches", perTheme[0].(map[string]any)["id"])
}

func TestGetStats_NotReady(t *testing.T) {
	cache := newMockCache()
	ac := newTestController(newMockService(), cache)

	rr := httptest.NewRecorder()
	ac.GetStats(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, cache.data)
}

func TestGetStats_ServedFromCache(t *testing.T) {
	svc := newMockService()
	svc.last = sampleStats()
	cache := newMockCache()
	cache.data[providers.CacheKeyStatistics] = []byte(`{"cached":true}`)
	ac := newTestController(svc, cache)

	rr := httptest.NewRecorder()
	ac.GetStats(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cached":true}`, rr.Body.String())
}

func TestGetStats_PopulatesCache(t *testing.T) {
	svc := newMockService()
	svc.last = sampleStats()
	cache := newMockCache()
	ac := newTestController(svc, cache)

	rr := httptest.NewRecorder()
	ac.GetStats(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))

	cached, ok := cache.data[providers.CacheKeyStatistics]
	require.True(t, ok)
	assert.Equal(t, rr.Body.Bytes(), cached)
}

// --- GetThemes tests ---

func TestGetThemes_ReturnsSortedThemes(t *testing.T) {
	svc := newMockService()
	svc.state.ThemeCache.Set("toilets", models.ThemeInfo{Title: "Toilets", Color: "#3d8fd4"})
	svc.state.ThemeCache.Set("benches", models.ThemeInfo{Title: "Benches", Color: "#8a5a2b"})
	ac := newTestController(svc, newMockCache())

	rr := httptest.NewRecorder()
	ac.GetThemes(rr, httptest.NewRequest(http.MethodGet, "/themes", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var themes []models.ThemeInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &themes))
	require.Len(t, themes, 2)
	assert.Equal(t, "benches", themes[0].Id)
	assert.Equal(t, "#3d8fd4", themes[1].Color)
}

func TestGetThemes_Empty(t *testing.T) {
	ac := newTestController(newMockService(), newMockCache())

	rr := httptest.NewRecorder()
	ac.GetThemes(rr, httptest.NewRequest(http.MethodGet, "/themes", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
