package skeleton

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

// discovery orders observations by where a serial scan would first see them.
type discovery struct {
	pair int
	tile int
}

func (d discovery) before(o discovery) bool {
	if d.pair != o.pair {
		return d.pair < o.pair
	}
	return d.tile < o.tile
}

type entry struct {
	lines []string
	count int
	first discovery
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// groupCounter counts line groups across concurrent pair scans.
type groupCounter struct {
	shards [shardCount]shard
}

func newGroupCounter() *groupCounter {
	c := &groupCounter{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*entry)
	}
	return c
}

func groupKey(lines []string) string {
	return strings.Join(lines, "\x00")
}

// add records one observation of lines.
func (c *groupCounter) add(lines []string, at discovery) {
	key := groupKey(lines)
	s := &c.shards[xxhash.Sum64String(key)%shardCount]

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = &entry{lines: slices.Clone(lines), count: 1, first: at}
		return
	}
	e.count++
	if at.before(e.first) {
		e.first = at
	}
}

// ranked returns every group by descending count, earliest discovery first on ties.
func (c *groupCounter) ranked() []*entry {
	var out []*entry
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for _, e := range s.entries {
			out = append(out, e)
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].first.before(out[j].first)
	})
	return out
}
