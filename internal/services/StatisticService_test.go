package services

import (
	"context"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/RobinLinde/MapComplete-MQTT/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *structures.Config {
	return &structures.Config{
		Theme: structures.ThemeConfig{
			DefaultColor:   "#70c549",
			DefaultIcon:    "https://icons.test/default.svg",
			RepositoryBase: "https://raw.example.test/MapComplete/",
		},
		Broker: structures.BrokerConfig{
			TopicPrefix:     "mapcomplete/statistics",
			DiscoveryPrefix: "homeassistant",
		},
	}
}

func newStatisticService(resolver ColorServiceInterface) (*StatisticService, *testutil.MockLogger) {
	logger := &testutil.MockLogger{}
	state := models.NewDailyStateAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	return NewStatisticService(testConfig(), state, resolver, logger).(*StatisticService), logger
}

func changeset(id int64, user, theme string, meta map[string]string) *models.Changeset {
	if meta == nil {
		meta = map[string]string{}
	}
	return &models.Changeset{Id: id, User: user, UserId: user, Theme: theme, Host: "https://mapcomplete.org/" + theme, Metadata: meta}
}

func TestComputeStatistics_EndToEnd(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})
	ss.Ingest([]*models.Changeset{
		changeset(1231, "user1", "etymology", nil),
		changeset(1233, "user2", "cyclofix", nil),
		changeset(1234, "user2", "advertising", nil),
	})

	stats := ss.ComputeStatistics(context.Background())

	assert.Equal(t, 3, stats.Changesets.Total)
	require.NotNil(t, stats.Changesets.Last)
	assert.Equal(t, int64(1234), *stats.Changesets.Last)
	assert.Equal(t, "user2", *stats.Changesets.LastUser)
	assert.Equal(t, "advertising", *stats.Changesets.LastTheme)
	assert.Equal(t, "#123456", *stats.Changesets.LastColor)

	assert.Equal(t, 2, stats.Users.Total)
	require.NotNil(t, stats.Users.Top)
	assert.Equal(t, "user2", *stats.Users.Top)
	assert.Equal(t, []models.KeyCount{{Key: "user2", Count: 2}, {Key: "user1", Count: 1}}, stats.Users.Counts)

	assert.Equal(t, 3, stats.Themes.Total)
	require.NotNil(t, stats.Themes.Top)
	assert.Equal(t, "etymology, cyclofix, advertising", *stats.Themes.Top)

	require.Len(t, stats.Changesets.List, 3)
	for _, s := range stats.Changesets.List {
		require.NotNil(t, s.Color)
	}
}

func TestComputeStatistics_EmptyDay(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})

	stats := ss.ComputeStatistics(context.Background())

	assert.Equal(t, 0, stats.Changesets.Total)
	assert.Nil(t, stats.Changesets.Last)
	assert.Nil(t, stats.Changesets.LastUser)
	assert.Nil(t, stats.Changesets.LastTheme)
	assert.Nil(t, stats.Changesets.LastColor)
	assert.Empty(t, stats.Changesets.List)
	assert.Nil(t, stats.Users.Top)
	assert.Nil(t, stats.Themes.Top)
	assert.Equal(t, 0, stats.Users.Total)
	assert.Empty(t, stats.PerTheme)
}

func TestIngest_DeduplicatesAndSorts(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})

	added := ss.Ingest([]*models.Changeset{
		changeset(30, "a", "shops", nil),
		changeset(10, "b", "shops", nil),
	})
	assert.Equal(t, 2, added)

	added = ss.Ingest([]*models.Changeset{
		changeset(10, "b", "shops", nil),
		changeset(20, "c", "benches", nil),
		nil,
	})
	assert.Equal(t, 1, added)

	ids := make([]int64, 0)
	for _, c := range ss.GetState().Changesets {
		ids = append(ids, c.Id)
	}
	assert.Equal(t, []int64{10, 20, 30}, ids)
}

func TestComputeStatistics_NumericRollups(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})
	ss.Ingest([]*models.Changeset{
		changeset(1, "a", "shops", map[string]string{"add-image": "2", "answer": "5"}),
		changeset(2, "a", "shops", map[string]string{"add-image": "1", "create": "3"}),
		changeset(3, "b", "benches", map[string]string{"answer": "not-a-number", "delete": "1", "move": "4"}),
	})

	stats := ss.ComputeStatistics(context.Background())

	assert.Equal(t, 3, stats.Images)
	assert.Equal(t, 5, stats.Questions)
	assert.Equal(t, 3, stats.Points)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 4, stats.Moved)
}

func TestComputeStatistics_ColorFailureKeepsChangeset(t *testing.T) {
	resolver := &testutil.MockColorResolver{Fail: map[string]bool{"broken": true}}
	ss, logger := newStatisticService(resolver)
	ss.Ingest([]*models.Changeset{
		changeset(1, "a", "shops", nil),
		changeset(2, "b", "broken", nil),
	})

	stats := ss.ComputeStatistics(context.Background())

	assert.Equal(t, 2, stats.Changesets.Total)
	require.Len(t, stats.Changesets.List, 2)
	assert.NotNil(t, stats.Changesets.List[0].Color)
	assert.Nil(t, stats.Changesets.List[1].Color)
	assert.Equal(t, "#70c549", *stats.Changesets.LastColor)
	assert.Equal(t, 1, logger.Count("warn"))

	require.Len(t, stats.PerTheme, 2)
	assert.Equal(t, "broken", stats.PerTheme[1].Title)
	assert.Equal(t, "#70c549", stats.PerTheme[1].Color)
}

func TestComputeStatistics_PerTheme(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{Color: "#abcdef"})
	ss.Ingest([]*models.Changeset{
		changeset(1, "a", "shops", map[string]string{"answer": "2"}),
		changeset(2, "b", "benches", nil),
		changeset(3, "b", "shops", map[string]string{"answer": "1"}),
		changeset(4, "b", "shops", nil),
	})

	stats := ss.ComputeStatistics(context.Background())

	require.Len(t, stats.PerTheme, 2)
	shops := stats.PerTheme[0]
	assert.Equal(t, "shops", shops.Id)
	assert.Equal(t, "#abcdef", shops.Color)
	assert.Equal(t, 3, shops.Changesets.Total)
	assert.Equal(t, int64(4), *shops.Changesets.Last)
	assert.Equal(t, "b", *shops.Changesets.LastUser)
	assert.Equal(t, 2, shops.Users.Total)
	assert.Equal(t, "b", *shops.Users.Top)
	assert.Equal(t, 3, shops.Questions)

	assert.Equal(t, "benches", stats.PerTheme[1].Id)
	assert.Equal(t, 1, stats.PerTheme[1].Changesets.Total)
}

func TestComputeStatistics_ResolvesThroughSharedCache(t *testing.T) {
	resolver := &testutil.MockColorResolver{}
	ss, _ := newStatisticService(resolver)
	ss.Ingest([]*models.Changeset{
		changeset(1, "a", "shops", nil),
		changeset(2, "b", "shops", nil),
	})

	ss.ComputeStatistics(context.Background())

	assert.Equal(t, 1, ss.GetState().ThemeCache.Len())
	assert.Equal(t, 2, resolver.Calls)
}

func TestRollover_ClearsPreviousDay(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})
	ss.Ingest([]*models.Changeset{changeset(1, "a", "shops", nil)})

	assert.False(t, ss.Rollover(time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 1, ss.GetState().Len())

	assert.True(t, ss.Rollover(time.Date(2024, 5, 11, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, 0, ss.GetState().Len())
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), ss.GetState().DayStart)
}

func TestLastStatistics(t *testing.T) {
	ss, _ := newStatisticService(&testutil.MockColorResolver{})
	assert.Nil(t, ss.GetLastStatistics())

	stats := &models.Statistics{Questions: 7}
	ss.PutLastStatistics(stats)
	assert.Same(t, stats, ss.GetLastStatistics())
}
