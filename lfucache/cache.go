/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidCapacity is returned when the cache is created with non-positive capacity.
var ErrInvalidCapacity = errors.New("capacity must be greater than 0")

type cacheEntry[K comparable, V any] struct {
	key     K
	value   V
	bucket  int
	prev    int
	next    int
	lastUse uint64
}

// frequencyBucket holds all entries with the same use count.
// head is the least recently used entry, tail is the most recently used one.
type frequencyBucket struct {
	useCount int
	head     int
	tail     int
	prev     int
	next     int
}

// EvictedEntry describes an entry removed from the cache to free space for a new one.
type EvictedEntry[K comparable, V any] struct {
	Key      K
	Value    V
	UseCount int

	// LastUse is the value of the cache usage tick at the moment of the last access to the entry.
	// Ticks increase monotonically over the cache lifetime and may be used to order evictions.
	LastUse uint64
}

// Options represents options for the cache.
type Options[K comparable, V any] struct {
	// OnEvict is called for every entry evicted by Set or Resize.
	// It's not called for entries removed by Remove or Purge.
	// The callback must not access the cache.
	OnEvict func(EvictedEntry[K, V])
}

// LFUCache represents an LFU cache with eviction mechanism and Prometheus metrics.
type LFUCache[K comparable, V any] struct {
	capacity int

	index   map[K]int // map of cache entries, value is an index in the entries arena
	entries arena[cacheEntry[K, V]]
	buckets arena[frequencyBucket]

	// Bucket list sorted by use count in ascending order.
	headBucket int
	tailBucket int

	tick uint64

	onEvict          func(EvictedEntry[K, V])
	metricsCollector MetricsCollector
}

// New creates a new LFUCache with the provided capacity and metrics collector.
func New[K comparable, V any](capacity int, metricsCollector MetricsCollector) (*LFUCache[K, V], error) {
	return NewWithOpts[K, V](capacity, metricsCollector, Options[K, V]{})
}

// NewWithOpts creates a new LFUCache with the provided capacity, metrics collector, and options.
// Metrics collector is used to collect statistics about cache usage.
// It can be nil, in this case, metrics will be disabled.
func NewWithOpts[K comparable, V any](
	capacity int, metricsCollector MetricsCollector, opts Options[K, V],
) (*LFUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCapacity, capacity)
	}
	if metricsCollector == nil {
		metricsCollector = disabledMetricsCollector
	}
	return &LFUCache[K, V]{
		capacity:         capacity,
		index:            make(map[K]int, capacity),
		headBucket:       nilIdx,
		tailBucket:       nilIdx,
		onEvict:          opts.OnEvict,
		metricsCollector: metricsCollector,
	}, nil
}

// MustNew creates a new LFUCache without metrics and panics if capacity is not positive.
func MustNew[K comparable, V any](capacity int) *LFUCache[K, V] {
	c, err := New[K, V](capacity, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns a value from the cache by the provided key.
// On hit, the use count of the entry is incremented.
func (c *LFUCache[K, V]) Get(key K) (value V, ok bool) {
	idx, hit := c.index[key]
	if !hit {
		c.metricsCollector.IncMisses()
		return value, false
	}
	c.promote(idx)
	c.metricsCollector.IncHits()
	return c.entries.at(idx).value, true
}

// GetOrDefault returns a value from the cache by the provided key or fallback if the key does not exist.
// Fallback is never stored in the cache.
func (c *LFUCache[K, V]) GetOrDefault(key K, fallback V) V {
	if value, ok := c.Get(key); ok {
		return value
	}
	return fallback
}

// Peek returns a value from the cache by the provided key without incrementing its use count.
func (c *LFUCache[K, V]) Peek(key K) (value V, ok bool) {
	idx, hit := c.index[key]
	if !hit {
		return value, false
	}
	return c.entries.at(idx).value, true
}

// UseCount returns how many times the entry was set or read since it was added to the cache.
func (c *LFUCache[K, V]) UseCount(key K) (int, bool) {
	idx, hit := c.index[key]
	if !hit {
		return 0, false
	}
	return c.buckets.at(c.entries.at(idx).bucket).useCount, true
}

// Set adds a value to the cache with the provided key or updates the existing one.
// Updating counts as a usage of the entry, the same as Get.
// If the cache is full, the least frequently used entry will be removed.
// Among entries with the same use count, the least recently used one is removed.
func (c *LFUCache[K, V]) Set(key K, value V) {
	if idx, ok := c.index[key]; ok {
		c.promote(idx)
		c.entries.at(idx).value = value
		return
	}

	if len(c.index) >= c.capacity {
		c.evictOne()
	}

	target := c.headBucket
	if target == nilIdx || c.buckets.at(target).useCount != 1 {
		target = c.insertBucketAfter(nilIdx, 1)
	}
	c.tick++
	idx := c.entries.alloc(cacheEntry[K, V]{key: key, value: value, lastUse: c.tick})
	c.appendEntry(target, idx)
	c.index[key] = idx
	c.metricsCollector.SetAmount(len(c.index))
}

// Remove removes a value from the cache by the provided key.
// Removal is not a usage and is not counted as eviction.
func (c *LFUCache[K, V]) Remove(key K) bool {
	idx, ok := c.index[key]
	if !ok {
		return false
	}
	c.detach(idx)
	c.metricsCollector.SetAmount(len(c.index))
	return true
}

// Purge clears the cache.
// Keep in mind that this method does not reset the cache capacity
// and does not reset Prometheus metrics except for the total number of entries.
// All removed entries will not be counted as evictions.
func (c *LFUCache[K, V]) Purge() {
	c.index = make(map[K]int, c.capacity)
	c.entries.reset()
	c.buckets.reset()
	c.headBucket, c.tailBucket = nilIdx, nilIdx
	c.metricsCollector.SetAmount(0)
}

// Resize changes the cache capacity and returns the number of evicted entries.
// Non-positive size is ignored.
func (c *LFUCache[K, V]) Resize(size int) (evicted int) {
	if size <= 0 {
		return 0
	}
	c.capacity = size
	for len(c.index) > size && c.evictOne() {
		evicted++
	}
	if evicted > 0 {
		c.metricsCollector.SetAmount(len(c.index))
	}
	return evicted
}

// Len returns the number of items in the cache.
func (c *LFUCache[K, V]) Len() int {
	return len(c.index)
}

// IsEmpty reports whether the cache has no items.
func (c *LFUCache[K, V]) IsEmpty() bool {
	return len(c.index) == 0
}

// Capacity returns the maximum number of items the cache can hold.
func (c *LFUCache[K, V]) Capacity() int {
	return c.capacity
}

// All returns an iterator over key-value pairs in the eviction order:
// by use count ascending, and from the least to the most recently used entry within the same use count.
// Iterating does not change use counts.
// The loop body may remove the yielded key; any other modification of the cache during iteration
// leads to unspecified results.
func (c *LFUCache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for b := c.headBucket; b != nilIdx; {
			bucket := c.buckets.at(b)
			nextBucket := bucket.next
			for e := bucket.head; e != nilIdx; {
				entry := c.entries.at(e)
				nextEntry := entry.next
				if !yield(entry.key, entry.value) {
					return
				}
				e = nextEntry
			}
			b = nextBucket
		}
	}
}

// Keys returns an iterator over keys in the same order as All.
func (c *LFUCache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// promote moves the entry to the bucket with the next use count and makes it the most recently used there.
func (c *LFUCache[K, V]) promote(idx int) {
	c.tick++
	entry := c.entries.at(idx)
	entry.lastUse = c.tick

	cur := entry.bucket
	nextUseCount := c.buckets.at(cur).useCount + 1
	target := c.buckets.at(cur).next
	if target == nilIdx || c.buckets.at(target).useCount != nextUseCount {
		target = c.insertBucketAfter(cur, nextUseCount)
	}

	c.unlinkEntry(idx)
	c.appendEntry(target, idx)
	if c.buckets.at(cur).head == nilIdx {
		c.removeBucket(cur)
	}
}

// evictOne removes the least recently used entry from the bucket with the lowest use count.
func (c *LFUCache[K, V]) evictOne() bool {
	if c.headBucket == nilIdx {
		return false
	}
	bucket := c.buckets.at(c.headBucket)
	useCount := bucket.useCount
	entry := c.detach(bucket.head)
	c.metricsCollector.ObserveEviction(useCount)
	if c.onEvict != nil {
		c.onEvict(EvictedEntry[K, V]{Key: entry.key, Value: entry.value, UseCount: useCount, LastUse: entry.lastUse})
	}
	return true
}

// detach unlinks the entry from its bucket, drops the bucket if it becomes empty,
// and removes the entry from the index. A copy of the removed entry is returned.
func (c *LFUCache[K, V]) detach(idx int) cacheEntry[K, V] {
	entry := *c.entries.at(idx)
	c.unlinkEntry(idx)
	if c.buckets.at(entry.bucket).head == nilIdx {
		c.removeBucket(entry.bucket)
	}
	delete(c.index, entry.key)
	c.entries.release(idx)
	return entry
}

func (c *LFUCache[K, V]) appendEntry(bucketIdx, idx int) {
	bucket := c.buckets.at(bucketIdx)
	entry := c.entries.at(idx)
	entry.bucket = bucketIdx
	entry.prev = bucket.tail
	entry.next = nilIdx
	if bucket.tail == nilIdx {
		bucket.head = idx
	} else {
		c.entries.at(bucket.tail).next = idx
	}
	bucket.tail = idx
}

func (c *LFUCache[K, V]) unlinkEntry(idx int) {
	entry := c.entries.at(idx)
	bucket := c.buckets.at(entry.bucket)
	if entry.prev == nilIdx {
		bucket.head = entry.next
	} else {
		c.entries.at(entry.prev).next = entry.next
	}
	if entry.next == nilIdx {
		bucket.tail = entry.prev
	} else {
		c.entries.at(entry.next).prev = entry.prev
	}
	entry.prev, entry.next = nilIdx, nilIdx
}

// insertBucketAfter creates an empty bucket and links it after prev (or as the head if prev is nilIdx).
func (c *LFUCache[K, V]) insertBucketAfter(prev, useCount int) int {
	next := c.headBucket
	if prev != nilIdx {
		next = c.buckets.at(prev).next
	}
	idx := c.buckets.alloc(frequencyBucket{useCount: useCount, head: nilIdx, tail: nilIdx, prev: prev, next: next})
	if prev == nilIdx {
		c.headBucket = idx
	} else {
		c.buckets.at(prev).next = idx
	}
	if next == nilIdx {
		c.tailBucket = idx
	} else {
		c.buckets.at(next).prev = idx
	}
	return idx
}

func (c *LFUCache[K, V]) removeBucket(idx int) {
	bucket := *c.buckets.at(idx)
	if bucket.prev == nilIdx {
		c.headBucket = bucket.next
	} else {
		c.buckets.at(bucket.prev).next = bucket.next
	}
	if bucket.next == nilIdx {
		c.tailBucket = bucket.prev
	} else {
		c.buckets.at(bucket.next).prev = bucket.prev
	}
	c.buckets.release(idx)
}
