/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import (
	"context"
	"sync"

	"resenje.org/singleflight"
)

// Pair is a key-value pair stored in the cache.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// SyncedCache is a wrapper around LFUCache that is safe for concurrent use.
// Every read changes use counts, so all operations are serialized with a single mutex.
type SyncedCache[K comparable, V any] struct {
	mu    sync.Mutex
	cache *LFUCache[K, V]
	loads singleflight.Group[K, V]
}

// NewSynced wraps the cache. The cache must not be used directly after that.
func NewSynced[K comparable, V any](cache *LFUCache[K, V]) *SyncedCache[K, V] {
	return &SyncedCache[K, V]{cache: cache}
}

// Get returns a value from the cache by the provided key.
func (s *SyncedCache[K, V]) Get(key K) (value V, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key)
}

// GetOrDefault returns a value from the cache by the provided key or fallback if the key does not exist.
func (s *SyncedCache[K, V]) GetOrDefault(key K, fallback V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.GetOrDefault(key, fallback)
}

// GetOrLoad returns a value from the cache by the provided key.
// If the key does not exist, the value is obtained from loader and added to the cache.
// Concurrent calls for the same missing key share a single loader call.
// Only the call that runs the flight touches the cache: callers that join an in-flight load
// get the shared result without recording a usage, a hit or a miss for it.
// Loader errors are returned as is and nothing is stored in the cache.
func (s *SyncedCache[K, V]) GetOrLoad(
	ctx context.Context, key K, loader func(ctx context.Context) (V, error),
) (V, error) {
	if value, ok := s.Get(key); ok {
		return value, nil
	}
	value, _, err := s.loads.Do(ctx, key, func(ctx context.Context) (V, error) {
		// The value may have been stored by a flight that has just finished.
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return v, loadErr
		}
		s.Set(key, v)
		return v, nil
	})
	return value, err
}

// Peek returns a value from the cache by the provided key without incrementing its use count.
func (s *SyncedCache[K, V]) Peek(key K) (value V, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Peek(key)
}

// UseCount returns the use count of the entry with the provided key.
func (s *SyncedCache[K, V]) UseCount(key K) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.UseCount(key)
}

// Set adds or updates a value in the cache.
func (s *SyncedCache[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, value)
}

// Remove removes a value from the cache by the provided key.
func (s *SyncedCache[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(key)
}

// Purge clears the cache.
func (s *SyncedCache[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

// Resize changes the cache capacity and returns the number of evicted entries.
func (s *SyncedCache[K, V]) Resize(size int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Resize(size)
}

// Len returns the number of items in the cache.
func (s *SyncedCache[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// IsEmpty reports whether the cache has no items.
func (s *SyncedCache[K, V]) IsEmpty() bool {
	return s.Len() == 0
}

// Snapshot returns all entries in the eviction order (see LFUCache.All).
func (s *SyncedCache[K, V]) Snapshot() []Pair[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make([]Pair[K, V], 0, s.cache.Len())
	for k, v := range s.cache.All() {
		pairs = append(pairs, Pair[K, V]{Key: k, Value: v})
	}
	return pairs
}
