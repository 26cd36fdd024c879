// Package messagebus implements the C3 named-topic durable queue contract
// with two backends: a filesystem directory-per-topic queue for local
// deployments, and a redis-backed asynq queue for the cloud deployment.
package messagebus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// LocalBus is the filesystem directory-per-topic implementation (spec
// §4.3). Publish writes "{YYYYMMDDhhmmssfff}-{uuid}.json"; the consumer
// polls on PollInterval, sorts lexicographically for best-effort FIFO, and
// opens each file with an exclusive lock to detect concurrent consumers.
type LocalBus struct {
	root         string
	pollInterval time.Duration

	mu        sync.Mutex
	cancelFns []func()
	stopped   bool
}

// NewLocalBus roots queue directories at opts.RootPath.
func NewLocalBus(opts config.FileQueueOptions) (*LocalBus, error) {
	if err := os.MkdirAll(opts.RootPath, 0o755); err != nil {
		return nil, fmt.Errorf("messagebus: create root: %w", err)
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &LocalBus{root: opts.RootPath, pollInterval: interval}, nil
}

func (b *LocalBus) topicDir(topic string) string {
	return filepath.Join(b.root, topic)
}

// Publish writes message as a new timestamp-prefixed file under topic's directory.
func (b *LocalBus) Publish(ctx context.Context, topic string, message []byte) error {
	dir := b.topicDir(topic)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("messagebus: mkdir topic %q: %w", topic, err)
	}
	now := time.Now().UTC()
	timestamp := fmt.Sprintf("%s%03d", now.Format("20060102150405"), now.Nanosecond()/1e6)
	name := fmt.Sprintf("%s-%s.json", timestamp, uuid.NewString())
	p := filepath.Join(dir, name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, message, 0o644); err != nil {
		return fmt.Errorf("messagebus: write: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("messagebus: rename: %w", err)
	}
	return nil
}

// StartConsume polls topic's directory at pollInterval, processing files in
// lexicographic (hence chronological) order. Exactly one goroutine runs per
// topic. Exclusive-open contention is treated as "in progress elsewhere"
// and skipped; success deletes the file, and a handler error leaves it in
// place for redelivery on the next scan.
func (b *LocalBus) StartConsume(ctx context.Context, topic string, handler interfaces.MessageHandler) (func(), error) {
	dir := b.topicDir(topic)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("messagebus: mkdir topic %q: %w", topic, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(b.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-consumeCtx.Done():
				return
			case <-ticker.C:
				b.scanOnce(consumeCtx, topic, dir, handler)
			}
		}
	}()

	b.mu.Lock()
	b.cancelFns = append(b.cancelFns, cancel)
	b.mu.Unlock()
	return cancel, nil
}

func (b *LocalBus) scanOnce(ctx context.Context, topic, dir string, handler interfaces.MessageHandler) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Errorf(ctx, "messagebus: read topic dir %q: %v", topic, err)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p := filepath.Join(dir, name)
		b.processOne(ctx, topic, p, handler)
	}
}

func (b *LocalBus) processOne(ctx context.Context, topic, p string, handler interfaces.MessageHandler) {
	f, err := os.OpenFile(p, os.O_RDWR, 0o644)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf(ctx, "messagebus: open %q: %v", p, err)
		}
		return
	}
	defer f.Close()

	if err := tryLockExclusive(f); err != nil {
		// Another consumer holds this message; skip it this scan.
		return
	}
	defer unlockExclusive(f)

	data, err := os.ReadFile(p)
	if err != nil {
		logger.Errorf(ctx, "messagebus: read %q: %v", p, err)
		return
	}

	if err := handler(ctx, data); err != nil {
		logger.Warnf(ctx, "messagebus: handler error on topic %q, message left for redelivery: %v", topic, err)
		return
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		logger.Errorf(ctx, "messagebus: delete %q after success: %v", p, err)
	}
}

// StopAll cancels every consumer started via StartConsume.
func (b *LocalBus) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	for _, cancel := range b.cancelFns {
		cancel()
	}
}
