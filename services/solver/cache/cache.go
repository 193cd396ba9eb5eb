// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache stores completed solver results in BadgerDB.
//
// A calculation is a pure function of (list, target, strategy, limits), so
// a completed Result can be replayed verbatim. Only successful results are
// stored; errors are never cached.
//
// The database runs in memory by default. With a Path it persists across
// restarts and a background runner collects value-log garbage.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces result keys and carries the encoding version.
const keyPrefix = "subsetsum/v1/"

// ErrClosed is returned by operations on a closed Cache.
var ErrClosed = errors.New("cache: closed")

// =============================================================================
// Configuration
// =============================================================================

// Config configures a Cache.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string `yaml:"path"`

	// InMemory keeps the database in RAM only.
	InMemory bool `yaml:"in_memory"`

	// TTL bounds how long a result is kept. Zero keeps results forever.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntryBytes skips results whose encoding is larger. Zero disables
	// the check.
	MaxEntryBytes int `yaml:"max_entry_bytes"`

	// SyncWrites fsyncs every write. Only meaningful on disk.
	SyncWrites bool `yaml:"sync_writes"`

	// GCInterval is how often value-log GC runs on disk. Zero disables it.
	GCInterval time.Duration `yaml:"gc_interval"`

	// GCDiscardRatio is the garbage ratio that triggers a rewrite.
	GCDiscardRatio float64 `yaml:"gc_discard_ratio"`

	// Logger receives BadgerDB's own log output. Nil silences it.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns an in-memory cache with a 10 minute TTL and a
// 1 MiB entry cap.
func DefaultConfig() Config {
	return Config{
		InMemory:       true,
		TTL:            10 * time.Minute,
		MaxEntryBytes:  1 << 20,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// =============================================================================
// Cache
// =============================================================================

// Cache is a BadgerDB-backed result store. Safe for concurrent use.
type Cache struct {
	db       *badger.DB
	cfg      Config
	gc       *gcRunner
	closeMu  sync.Once
	closeErr error
}

// Open opens the cache described by cfg.
//
// # Outputs
//
//   - *Cache: Caller must Close it.
//   - error: Non-nil when the path is missing or the database fails to open.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("cache: path is required for a persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger: %w", err)
	}

	c := &Cache{db: db, cfg: cfg}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		c.gc.start()
	}
	return c, nil
}

// Key derives the cache key of a calculation. Limits take part because
// they decide whether a calculation succeeds at all.
func Key(values []int, target int, strategy subsetsum.StrategyName, limits subsetsum.Limits) []byte {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	h.Write([]byte(strategy))
	h.Write([]byte{0})
	writeInt(int64(limits.MaxPartitionSize))
	writeInt(int64(limits.MaxZeroCount))
	writeInt(int64(limits.MaxNaiveSize))
	writeInt(int64(limits.MaxIterations))
	writeInt(int64(limits.MaxMatches))
	writeInt(int64(target))
	writeInt(int64(len(values)))
	for _, v := range values {
		writeInt(int64(v))
	}

	return append([]byte(keyPrefix), h.Sum(nil)...)
}

// Get returns the stored result for key.
//
// # Outputs
//
//   - subsetsum.Result: The stored result when found.
//   - bool: false on a miss or expiry.
//   - error: Storage or decoding failures. A miss is not an error.
func (c *Cache) Get(key []byte) (subsetsum.Result, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return subsetsum.Result{}, false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return subsetsum.Result{}, false, ErrClosed
	case err != nil:
		return subsetsum.Result{}, false, fmt.Errorf("cache: get: %w", err)
	}

	var res subsetsum.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return subsetsum.Result{}, false, fmt.Errorf("cache: decode: %w", err)
	}
	return res, true, nil
}

// Put stores res under key.
//
// # Outputs
//
//   - bool: false when the result was skipped for exceeding MaxEntryBytes.
//   - error: Encoding or storage failures.
func (c *Cache) Put(key []byte, res subsetsum.Result) (bool, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return false, fmt.Errorf("cache: encode: %w", err)
	}
	if c.cfg.MaxEntryBytes > 0 && len(data) > c.cfg.MaxEntryBytes {
		return false, nil
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if c.cfg.TTL > 0 {
			entry = entry.WithTTL(c.cfg.TTL)
		}
		return txn.SetEntry(entry)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return false, ErrClosed
	}
	if err != nil {
		return false, fmt.Errorf("cache: put: %w", err)
	}
	return true, nil
}

// Close stops garbage collection and closes the database. Safe to call
// more than once.
func (c *Cache) Close() error {
	c.closeMu.Do(func() {
		if c.gc != nil {
			c.gc.stop()
		}
		c.closeErr = c.db.Close()
	})
	return c.closeErr
}

// =============================================================================
// Garbage Collection
// =============================================================================

// gcRunner runs periodic value-log garbage collection.
type gcRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) *gcRunner {
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &gcRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *gcRunner) start() {
	go r.run()
}

func (r *gcRunner) stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *gcRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.collect()
		}
	}
}

func (r *gcRunner) collect() {
	// ErrNoRewrite means there was nothing to collect.
	err := r.db.RunValueLogGC(r.ratio)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && r.logger != nil {
		r.logger.Warn("cache value log GC failed", slog.String("error", err.Error()))
	}
}
