package testutil

import (
	"context"
	"errors"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockSink implements providers.SinkProviderInterface as an in-memory retained store.
type MockSink struct {
	mu       sync.Mutex
	Retained map[string]string
	Topics   []string
	FailOn   map[string]bool
	Closed   bool
}

func NewMockSink() *MockSink {
	return &MockSink{Retained: make(map[string]string), FailOn: make(map[string]bool)}
}

func (m *MockSink) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOn[topic] {
		return errors.New("broker unavailable")
	}
	m.Retained[topic] = string(payload)
	m.Topics = append(m.Topics, topic)
	return nil
}

func (m *MockSink) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// Snapshot returns a copy of the retained topic contents.
func (m *MockSink) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.Retained))
	for k, v := range m.Retained {
		out[k] = v
	}
	return out
}

func (m *MockSink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retained = make(map[string]string)
	m.Topics = nil
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu               sync.Mutex
	Published        int
	PublishErrors    int
	FetchErrors      int
	Fetched          int
	ChangesetsTotal  int
	Cycles           int
	ColorOutcomes    map[string]int
	PersistenceCalls int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceCalls++
}
func (m *MockMetrics) ObserveCycleDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles++
}
func (m *MockMetrics) AddFetchedChangesets(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched += count
}
func (m *MockMetrics) IncFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}
func (m *MockMetrics) IncPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published++
}
func (m *MockMetrics) IncPublishErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishErrors++
}
func (m *MockMetrics) IncColorResolution(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ColorOutcomes == nil {
		m.ColorOutcomes = make(map[string]int)
	}
	m.ColorOutcomes[outcome]++
}
func (m *MockMetrics) SetChangesetsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChangesetsTotal = count
}

// MockColorResolver resolves every theme to a fixed color, or fails for
// themes listed in Fail.
type MockColorResolver struct {
	mu    sync.Mutex
	Color string
	Fail  map[string]bool
	Calls int
}

func (m *MockColorResolver) Resolve(_ context.Context, cache *models.ThemeCache, theme string, _ string) (models.ThemeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Fail[theme] {
		return models.ThemeInfo{}, errors.New("resolution failed")
	}
	if info, ok := cache.Get(theme); ok {
		return info, nil
	}
	color := m.Color
	if color == "" {
		color = "#123456"
	}
	cache.Set(theme, models.ThemeInfo{Title: theme, IconUrl: "https://icons.test/" + theme + ".svg", Color: color})
	info, _ := cache.Get(theme)
	return info, nil
}

// MockChangesetSource returns queued pages, one per Fetch call.
type MockChangesetSource struct {
	mu     sync.Mutex
	Pages  [][]*models.Changeset
	Err    error
	Since  []time.Time
	Called int
}

func (m *MockChangesetSource) Fetch(_ context.Context, since time.Time, _ int) ([]*models.Changeset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called++
	m.Since = append(m.Since, since)
	if m.Err != nil {
		return []*models.Changeset{}, m.Err
	}
	if len(m.Pages) == 0 {
		return []*models.Changeset{}, nil
	}
	page := m.Pages[0]
	m.Pages = m.Pages[1:]
	return page, nil
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
