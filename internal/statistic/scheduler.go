package statistic

import (
	"context"
	"errors"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/services"
	"github.com/RobinLinde/MapComplete-MQTT/internal/statistic/interfaces"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
	"sync"
	"time"
)

// ErrCycleRunning is returned when a tick fires while the previous cycle is still busy.
var ErrCycleRunning = errors.New("update cycle already running")

// Scheduler drives the update cycle: fetch, aggregate, resolve colors and publish.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	source      services.ChangesetServiceInterface
	service     services.StatisticServiceInterface
	publisher   services.PublishServiceInterface
	cache       providers.CacheProviderInterface
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
	running     *atomic.Bool
	started     bool
	announced   bool
	now         func() time.Time
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if s.config.Persistence.FilePath != "" {
		s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
			if err := s.Persist(); err == nil {
				s.logger.Debugf(providers.TypeApp, "Persisted theme cache to %s", s.config.Persistence.FilePath)
			}
		})
	}

	s.cron.AddFunc(gron.Every(s.config.Statistic.Interval), func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Errorf(providers.TypeApp, "Update cycle failed: %s", err)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warnf(providers.TypeApp, "Previous update cycle still running, skipping tick")
		return ErrCycleRunning
	}
	defer s.running.Store(false)

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if timeout := s.config.Statistic.CycleTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { s.metrics.ObserveCycleDuration(time.Since(start)) }()

	rolledOver := s.service.Rollover(s.now())
	if rolledOver {
		s.logger.Infof(providers.TypeApp, "New day started, statistics reset")
	}
	state := s.service.GetState()

	changesets, err := s.source.Fetch(ctx, state.DayStart, s.config.Upstream.PageSize)
	if err != nil {
		s.metrics.IncFetchErrors()
		s.logger.Errorf(providers.TypeFetch, "Fetching changesets failed: %s", err)
	}
	s.metrics.AddFetchedChangesets(len(changesets))
	added := s.service.Ingest(changesets)
	s.metrics.SetChangesetsTotal(state.Len())
	s.logger.Infof(providers.TypeFetch, "Fetched %d changesets, %d new, %d today", len(changesets), added, state.Len())

	stats := s.service.ComputeStatistics(ctx)

	var errs []error
	if !s.announced {
		if err := s.publisher.PublishGlobalDiscovery(); err != nil {
			errs = append(errs, err)
		} else {
			s.announced = true
		}
	}

	themeIds := state.ThemeIds()
	if err := s.publisher.PublishThemeDiscovery(state.ThemeCache, themeIds); err != nil {
		errs = append(errs, err)
	}
	if err := s.publisher.PublishStatistics(stats); err != nil {
		errs = append(errs, err)
	}
	if rolledOver || !s.started {
		if err := s.publisher.CleanupRemovedThemes(state.ThemeCache, themeIds); err != nil {
			errs = append(errs, err)
		}
	}
	s.started = true

	s.service.PutLastStatistics(stats)
	s.cache.Del(providers.CacheKeyStatistics)
	s.cache.Del(providers.CacheKeyThemes)

	if err := errors.Join(errs...); err != nil {
		s.logger.Warnf(providers.TypePublish, "Some topics were not published: %s", err)
	}
	s.logger.Infof(providers.TypeApp, "Update cycle finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting theme cache: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	source services.ChangesetServiceInterface,
	service services.StatisticServiceInterface,
	publisher services.PublishServiceInterface,
	cache providers.CacheProviderInterface,
	metrics providers.MetricsProviderInterface,
	fileManager *FileManager,
) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		source:      source,
		service:     service,
		publisher:   publisher,
		cache:       cache,
		metrics:     metrics,
		fileManager: fileManager,
		running:     atomic.NewBool(false),
		now:         time.Now,
	}
}
