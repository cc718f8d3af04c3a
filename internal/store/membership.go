// Package store provides a small in-memory membership cache backed by a
// Bloom filter and an LRU index.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Membership caches which track IDs are known to belong to a collection
// (the user's favorites). The Bloom filter answers the common negative case
// without touching the map; the LRU index supplies an eviction order when
// the cache grows past its capacity.
type Membership struct {
	mu                sync.RWMutex
	ids               map[string]struct{}
	bloom             *bloom.BloomFilter
	recency           *lru.Cache[string, struct{}]
	capacity          int
	falsePositiveRate float64
}

// NewMembership creates a membership cache for roughly capacity entries with
// the given Bloom filter false positive rate.
func NewMembership(capacity int, falsePositiveRate float64) *Membership {
	recency, _ := lru.New[string, struct{}](capacity)

	return &Membership{
		ids:               make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		recency:           recency,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}
}

// Has reports whether the track ID is a known member.
func (m *Membership) Has(trackID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.bloom.TestString(trackID) {
		return false
	}
	_, ok := m.ids[trackID]
	return ok
}

// Add records the track ID as a member.
func (m *Membership) Add(trackID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[trackID]; ok {
		return
	}

	m.ids[trackID] = struct{}{}
	m.bloom.AddString(trackID)
	m.recency.Add(trackID, struct{}{})

	if len(m.ids) > m.capacity {
		m.evictOldest()
	}
}

// Remove forgets a member. The Bloom filter does not support removal, so a
// removed ID may still test positive there; the map stays authoritative.
func (m *Membership) Remove(trackID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[trackID]; !ok {
		return
	}
	delete(m.ids, trackID)
	m.recency.Remove(trackID)
}

// Load replaces the cached membership with the given track IDs.
func (m *Membership) Load(trackIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids = make(map[string]struct{})
	m.bloom = bloom.NewWithEstimates(uint(m.capacity), m.falsePositiveRate)
	m.recency.Purge()

	for _, trackID := range trackIDs {
		if trackID == "" {
			continue
		}
		m.ids[trackID] = struct{}{}
		m.bloom.AddString(trackID)
		m.recency.Add(trackID, struct{}{})
	}

	for len(m.ids) > m.capacity {
		m.evictOldest()
	}
}

// Size returns the number of cached members.
func (m *Membership) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *Membership) evictOldest() {
	oldest, _, ok := m.recency.GetOldest()
	if !ok {
		return
	}
	delete(m.ids, oldest)
	m.recency.Remove(oldest)
}
