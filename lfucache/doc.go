/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package lfucache provides in-memory cache with LFU (least frequently used) eviction policy and Prometheus metrics.
//
// All operations are O(1). Entries are grouped into frequency buckets: each bucket holds the entries
// that have been used the same number of times, ordered from the least to the most recently used one.
// Buckets themselves are kept in a list sorted by the use count.
// When the cache is full, the least recently used entry of the bucket with the lowest use count is evicted.
//
// LFUCache is not safe for concurrent use. Wrap it with SyncedCache (see NewSynced)
// or guard it with your own mutex when it is shared between goroutines.
package lfucache
