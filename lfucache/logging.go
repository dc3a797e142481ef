/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import (
	"fmt"

	"github.com/acronis/go-appkit/log"
)

// NewLoggingEvictCallback returns a callback for Options.OnEvict that logs every evicted entry at debug level.
// Values are not logged.
func NewLoggingEvictCallback[K comparable, V any](logger log.FieldLogger) func(EvictedEntry[K, V]) {
	return func(e EvictedEntry[K, V]) {
		logger.AtLevel(log.LevelDebug, func(logFunc log.LogFunc) {
			logFunc("cache entry evicted",
				log.String("key", fmt.Sprint(e.Key)),
				log.Int("use_count", e.UseCount),
				log.Uint64("last_use", e.LastUse),
			)
		})
	}
}

// ChainEvictCallbacks returns a callback that calls all non-nil callbacks in order.
func ChainEvictCallbacks[K comparable, V any](callbacks ...func(EvictedEntry[K, V])) func(EvictedEntry[K, V]) {
	return func(e EvictedEntry[K, V]) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(e)
			}
		}
	}
}
