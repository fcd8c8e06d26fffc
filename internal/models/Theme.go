package models

import (
	"sort"
	"strings"
	"sync"
)

type ThemeInfo struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	IconUrl   string `json:"iconUrl"`
	Color     string `json:"color"`
	Published bool   `json:"published"`
}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// SanitizeThemeId turns a theme id (possibly a full URL) into a single topic level.
func SanitizeThemeId(id string) string {
	return topicReplacer.Replace(id)
}

// ThemeCache holds resolved themes for the lifetime of the process.
type ThemeCache struct {
	Mutex sync.RWMutex
	Data  map[string]*ThemeInfo
}

func NewThemeCache() *ThemeCache {
	return &ThemeCache{Data: make(map[string]*ThemeInfo)}
}

// Get returns a copy of the cached entry.
func (tc *ThemeCache) Get(id string) (ThemeInfo, bool) {
	tc.Mutex.RLock()
	defer tc.Mutex.RUnlock()
	val, ok := tc.Data[id]
	if !ok {
		return ThemeInfo{}, false
	}
	return *val, true
}

// Set stores info under id. An existing Published flag is kept.
func (tc *ThemeCache) Set(id string, info ThemeInfo) {
	tc.Mutex.Lock()
	defer tc.Mutex.Unlock()
	if prev, ok := tc.Data[id]; ok {
		info.Published = prev.Published
	}
	info.Id = id
	tc.Data[id] = &info
}

func (tc *ThemeCache) MarkPublished(id string) {
	tc.Mutex.Lock()
	defer tc.Mutex.Unlock()
	if val, ok := tc.Data[id]; ok {
		val.Published = true
	}
}

func (tc *ThemeCache) Len() int {
	tc.Mutex.RLock()
	defer tc.Mutex.RUnlock()
	return len(tc.Data)
}

// Ids returns the cached theme ids in ascending order.
func (tc *ThemeCache) Ids() []string {
	tc.Mutex.RLock()
	defer tc.Mutex.RUnlock()
	ids := make([]string, 0, len(tc.Data))
	for id := range tc.Data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns copies of all entries ordered by id.
func (tc *ThemeCache) Snapshot() []ThemeInfo {
	tc.Mutex.RLock()
	defer tc.Mutex.RUnlock()
	out := make([]ThemeInfo, 0, len(tc.Data))
	for _, v := range tc.Data {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// PutData replaces the cache content, resetting every Published flag.
func (tc *ThemeCache) PutData(themes []ThemeInfo) {
	data := make(map[string]*ThemeInfo, len(themes))
	for i := range themes {
		info := themes[i]
		if info.Id == "" {
			continue
		}
		info.Published = false
		data[info.Id] = &info
	}
	tc.Mutex.Lock()
	defer tc.Mutex.Unlock()
	tc.Data = data
}
