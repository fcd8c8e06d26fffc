package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2024, 3, 10, 2, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), StartOfDay(local))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, a.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, SameDay(a, a.Add(24*time.Hour)))
}

func TestSameDay_MonthBoundary(t *testing.T) {
	// Same day-of-month, different month: must be treated as a new day.
	a := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	b := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	assert.False(t, SameDay(a, b))

	c := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.False(t, SameDay(a, c))
}

func TestDailyState_AddDeduplicates(t *testing.T) {
	s := NewDailyStateAt(time.Now())
	assert.True(t, s.Add(&Changeset{Id: 1}))
	assert.False(t, s.Add(&Changeset{Id: 1, User: "other"}))
	assert.True(t, s.Add(&Changeset{Id: 2}))
	assert.False(t, s.Add(nil))
	assert.Equal(t, 2, s.Len())
}

func TestDailyState_HasAfterDirectSeed(t *testing.T) {
	s := NewDailyStateAt(time.Now())
	s.Changesets = []*Changeset{{Id: 7}, {Id: 3}}

	assert.True(t, s.Has(7))
	assert.False(t, s.Add(&Changeset{Id: 3}))
}

func TestDailyState_SortAndLast(t *testing.T) {
	s := NewDailyStateAt(time.Now())
	assert.Nil(t, s.Last())

	s.Add(&Changeset{Id: 30})
	s.Add(&Changeset{Id: 10})
	s.Add(&Changeset{Id: 20})
	s.Sort()

	require.NotNil(t, s.Last())
	assert.Equal(t, int64(30), s.Last().Id)
	assert.Equal(t, int64(10), s.Changesets[0].Id)
}

func TestDailyState_Rollover(t *testing.T) {
	yesterday := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	s := NewDailyStateAt(yesterday)
	s.Add(&Changeset{Id: 1, Theme: "a"})
	s.ThemeCache.Set("a", ThemeInfo{Color: "#fff"})

	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	assert.True(t, s.Rollover(now))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), s.DayStart)
	assert.Equal(t, 1, s.ThemeCache.Len())
	assert.True(t, s.Add(&Changeset{Id: 1}))

	assert.False(t, s.Rollover(now.Add(time.Hour)))
}

func TestDailyState_ThemeIdsEncounterOrder(t *testing.T) {
	s := NewDailyStateAt(time.Now())
	s.Add(&Changeset{Id: 1, Theme: "b"})
	s.Add(&Changeset{Id: 2, Theme: "a"})
	s.Add(&Changeset{Id: 3, Theme: "b"})

	assert.Equal(t, []string{"b", "a"}, s.ThemeIds())
}
