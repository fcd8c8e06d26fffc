package models

import (
	"sort"
	"strings"
)

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Counter counts occurrences of keys and remembers the order keys were first seen in.
type Counter struct {
	order  []string
	counts map[string]int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *Counter) Len() int {
	return len(c.order)
}

// Sorted returns counts by count descending; ties keep first-seen order.
func (c *Counter) Sorted() []KeyCount {
	out := make([]KeyCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, KeyCount{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Top returns every key sharing the highest count joined with ", ", in the
// order they appear in counts. Nil when counts is empty.
func Top(counts []KeyCount) *string {
	if len(counts) == 0 {
		return nil
	}
	best := counts[0].Count
	for _, kc := range counts[1:] {
		if kc.Count > best {
			best = kc.Count
		}
	}
	keys := make([]string, 0, 1)
	for _, kc := range counts {
		if kc.Count == best {
			keys = append(keys, kc.Key)
		}
	}
	top := strings.Join(keys, ", ")
	return &top
}
