/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"fmt"
	"io"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-lfucache/lfucache"
)

type replayer struct {
	cache  *lfucache.LFUCache[string, string]
	out    io.Writer
	logger log.FieldLogger
}

func newReplayer(cache *lfucache.LFUCache[string, string], out io.Writer, logger log.FieldLogger) *replayer {
	return &replayer{cache: cache, out: out, logger: logger}
}

// run applies all operations in order and prints the final cache content.
func (r *replayer) run(s *script) error {
	for i, op := range s.Ops {
		r.logger.Debug("applying operation",
			log.Int("n", i+1), log.String("op", string(op.Op)), log.String("key", op.Key))
		if err := r.apply(op); err != nil {
			return fmt.Errorf("op #%d: %w", i+1, err)
		}
	}
	if err := r.dump("final"); err != nil {
		return err
	}
	r.logger.Info("replay finished", log.Int("ops", len(s.Ops)), log.Int("entries", r.cache.Len()))
	return nil
}

func (r *replayer) apply(op scriptOp) error {
	var err error
	switch op.Op {
	case opSet:
		r.cache.Set(op.Key, op.Value)
	case opGet:
		if value, ok := r.cache.Get(op.Key); ok {
			_, err = fmt.Fprintf(r.out, "%s=%s\n", op.Key, value)
		} else {
			_, err = fmt.Fprintf(r.out, "%s (miss)\n", op.Key)
		}
	case opDelete:
		if !r.cache.Remove(op.Key) {
			r.logger.Debug("nothing to delete", log.String("key", op.Key))
		}
	case opDump:
		err = r.dump("dump")
	default:
		err = fmt.Errorf("unknown operation %q", op.Op)
	}
	return err
}

// dump prints entries in eviction order along with their use counts.
func (r *replayer) dump(title string) error {
	if _, err := fmt.Fprintf(r.out, "--- %s (%d/%d)\n", title, r.cache.Len(), r.cache.Capacity()); err != nil {
		return err
	}
	for key, value := range r.cache.All() {
		useCount, _ := r.cache.UseCount(key)
		if _, err := fmt.Fprintf(r.out, "%s=%s uses=%d\n", key, value, useCount); err != nil {
			return err
		}
	}
	return nil
}
