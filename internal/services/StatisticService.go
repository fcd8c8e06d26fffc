package services

import (
	"context"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"sync"
	"time"
)

type StatisticServiceInterface interface {
	Ingest(changesets []*models.Changeset) int
	ComputeStatistics(ctx context.Context) *models.Statistics
	Rollover(now time.Time) bool
	GetState() *models.DailyState
	PutLastStatistics(stats *models.Statistics)
	GetLastStatistics() *models.Statistics
}

// StatisticService aggregates the changesets of the current day.
type StatisticService struct {
	state        *models.DailyState
	resolver     ColorServiceInterface
	logger       providers.Logger
	defaultColor string
	defaultIcon  string

	lastMu sync.RWMutex
	last   *models.Statistics
}

func NewStatisticService(conf *structures.Config, state *models.DailyState, resolver ColorServiceInterface, logger providers.Logger) StatisticServiceInterface {
	return &StatisticService{
		state:        state,
		resolver:     resolver,
		logger:       logger,
		defaultColor: conf.Theme.DefaultColor,
		defaultIcon:  conf.Theme.DefaultIcon,
	}
}

func (ss *StatisticService) GetState() *models.DailyState {
	return ss.state
}

// Ingest adds unseen changesets and keeps the day sorted by id.
// It returns how many changesets were new.
func (ss *StatisticService) Ingest(changesets []*models.Changeset) int {
	added := 0
	for _, c := range changesets {
		if ss.state.Add(c) {
			added++
		}
	}
	ss.state.Sort()
	return added
}

func (ss *StatisticService) Rollover(now time.Time) bool {
	return ss.state.Rollover(now)
}

type themeAccumulator struct {
	stats    *models.ThemeStatistics
	users    *models.Counter
	userKeys map[string]struct{}
	rollups  models.Rollups
}

func (ss *StatisticService) ComputeStatistics(ctx context.Context) *models.Statistics {
	stats := &models.Statistics{}
	users := models.NewCounter()
	userKeys := make(map[string]struct{})
	themes := models.NewCounter()
	rollups := models.Rollups{}

	perTheme := make(map[string]*themeAccumulator)
	themeOrder := make([]string, 0)

	stats.Changesets.List = make([]models.ChangesetSummary, 0, ss.state.Len())

	for _, c := range ss.state.Changesets {
		users.Inc(c.User)
		userKeys[c.UserKey()] = struct{}{}
		themes.Inc(c.Theme)
		rollups.Add(c)

		summary := models.ChangesetSummary{Id: c.Id, User: c.User, Theme: c.Theme}
		info, err := ss.resolver.Resolve(ctx, ss.state.ThemeCache, c.Theme, c.Host)
		if err != nil {
			ss.logger.Warnf(providers.TypeColor, "No color for changeset %d: %s", c.Id, err)
			info = models.ThemeInfo{Id: c.Theme, Title: c.Theme, IconUrl: ss.defaultIcon, Color: ss.defaultColor}
		} else {
			color := info.Color
			summary.Color = &color
		}
		stats.Changesets.List = append(stats.Changesets.List, summary)

		acc, ok := perTheme[c.Theme]
		if !ok {
			acc = &themeAccumulator{
				stats: &models.ThemeStatistics{
					Id:    c.Theme,
					Title: info.Title,
					Icon:  info.IconUrl,
					Color: info.Color,
				},
				users:    models.NewCounter(),
				userKeys: make(map[string]struct{}),
			}
			perTheme[c.Theme] = acc
			themeOrder = append(themeOrder, c.Theme)
		}
		acc.users.Inc(c.User)
		acc.userKeys[c.UserKey()] = struct{}{}
		acc.rollups.Add(c)
		acc.stats.Changesets.Total++
		id, user := c.Id, c.User
		acc.stats.Changesets.Last = &id
		acc.stats.Changesets.LastUser = &user
	}

	stats.Changesets.Total = ss.state.Len()
	if last := ss.state.Last(); last != nil {
		summary := stats.Changesets.List[len(stats.Changesets.List)-1]
		id, user, theme := last.Id, last.User, last.Theme
		color := ss.defaultColor
		if summary.Color != nil {
			color = *summary.Color
		}
		stats.Changesets.Last = &id
		stats.Changesets.LastUser = &user
		stats.Changesets.LastTheme = &theme
		stats.Changesets.LastColor = &color
	}

	userCounts := users.Sorted()
	stats.Users = models.CountStats{Total: len(userKeys), Top: models.Top(userCounts), Counts: userCounts}
	themeCounts := themes.Sorted()
	stats.Themes = models.CountStats{Total: themes.Len(), Top: models.Top(themeCounts), Counts: themeCounts}
	stats.SetRollups(rollups)

	stats.PerTheme = make([]*models.ThemeStatistics, 0, len(themeOrder))
	for _, id := range themeOrder {
		acc := perTheme[id]
		counts := acc.users.Sorted()
		acc.stats.Users = models.CountStats{Total: len(acc.userKeys), Top: models.Top(counts), Counts: counts}
		acc.stats.SetRollups(acc.rollups)
		stats.PerTheme = append(stats.PerTheme, acc.stats)
	}

	return stats
}

func (ss *StatisticService) PutLastStatistics(stats *models.Statistics) {
	ss.lastMu.Lock()
	defer ss.lastMu.Unlock()
	ss.last = stats
}

func (ss *StatisticService) GetLastStatistics() *models.Statistics {
	ss.lastMu.RLock()
	defer ss.lastMu.RUnlock()
	return ss.last
}
