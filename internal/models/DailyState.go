package models

import (
	"sort"
	"time"
)

// DailyState is the aggregation window of the current UTC day.
// It is owned by the update loop and must not be shared with other goroutines,
// except for ThemeCache which guards itself.
type DailyState struct {
	DayStart   time.Time
	Changesets []*Changeset
	ThemeCache *ThemeCache

	index map[int64]struct{}
}

func NewDailyState() *DailyState {
	return NewDailyStateAt(time.Now())
}

func NewDailyStateAt(now time.Time) *DailyState {
	return &DailyState{
		DayStart:   StartOfDay(now),
		Changesets: make([]*Changeset, 0),
		ThemeCache: NewThemeCache(),
		index:      make(map[int64]struct{}),
	}
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares full UTC calendar dates, so the 5th of two different
// months are different days.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (s *DailyState) Has(id int64) bool {
	if s.index == nil || len(s.index) != len(s.Changesets) {
		s.reindex()
	}
	_, ok := s.index[id]
	return ok
}

// Add appends c unless a changeset with the same id is already present.
func (s *DailyState) Add(c *Changeset) bool {
	if c == nil || s.Has(c.Id) {
		return false
	}
	s.Changesets = append(s.Changesets, c)
	s.index[c.Id] = struct{}{}
	return true
}

func (s *DailyState) Sort() {
	sort.SliceStable(s.Changesets, func(i, j int) bool {
		return s.Changesets[i].Id < s.Changesets[j].Id
	})
}

func (s *DailyState) Len() int {
	return len(s.Changesets)
}

// Last returns the highest-id changeset, or nil for an empty day.
func (s *DailyState) Last() *Changeset {
	if len(s.Changesets) == 0 {
		return nil
	}
	return s.Changesets[len(s.Changesets)-1]
}

// Rollover clears the day if now is on a later calendar day than DayStart.
func (s *DailyState) Rollover(now time.Time) bool {
	if SameDay(s.DayStart, now) {
		return false
	}
	s.DayStart = StartOfDay(now)
	s.Changesets = make([]*Changeset, 0)
	s.index = make(map[int64]struct{})
	return true
}

// ThemeIds returns distinct themes in encounter order of the sorted set.
func (s *DailyState) ThemeIds() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, c := range s.Changesets {
		if _, ok := seen[c.Theme]; ok {
			continue
		}
		seen[c.Theme] = struct{}{}
		ids = append(ids, c.Theme)
	}
	return ids
}

func (s *DailyState) reindex() {
	s.index = make(map[int64]struct{}, len(s.Changesets))
	for _, c := range s.Changesets {
		s.index[c.Id] = struct{}{}
	}
}
