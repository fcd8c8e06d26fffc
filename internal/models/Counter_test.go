package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTop_UniqueMax(t *testing.T) {
	top := Top([]KeyCount{{Key: "a", Count: 5}})
	require.NotNil(t, top)
	assert.Equal(t, "a", *top)
}

func TestTop_TiesAreJoined(t *testing.T) {
	top := Top([]KeyCount{{Key: "a", Count: 3}, {Key: "b", Count: 3}, {Key: "c", Count: 1}})
	require.NotNil(t, top)
	assert.Equal(t, "a, b", *top)
}

func TestTop_TiesKeepGivenOrder(t *testing.T) {
	top := Top([]KeyCount{{Key: "c", Count: 1}, {Key: "b", Count: 3}, {Key: "a", Count: 3}})
	require.NotNil(t, top)
	assert.Equal(t, "b, a", *top)
}

func TestTop_Empty(t *testing.T) {
	assert.Nil(t, Top(nil))
	assert.Nil(t, Top([]KeyCount{}))
}

func TestCounter_SortedByCountThenFirstSeen(t *testing.T) {
	c := NewCounter()
	for _, k := range []string{"x", "y", "z", "y", "x", "z", "w"} {
		c.Inc(k)
	}
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []KeyCount{
		{Key: "x", Count: 2},
		{Key: "y", Count: 2},
		{Key: "z", Count: 2},
		{Key: "w", Count: 1},
	}, c.Sorted())
}

func TestCounter_Empty(t *testing.T) {
	c := NewCounter()
	assert.Empty(t, c.Sorted())
	assert.Nil(t, Top(c.Sorted()))
}
