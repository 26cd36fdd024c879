package messagebus

import (
	"context"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// AsynqBus is the cloud C3 implementation: a redis-backed durable queue via
// hibiken/asynq. Each topic maps to one asynq queue and one task type; the
// server is configured with a concurrency of 1 per queue so at most one
// handler runs per topic per process (spec §4.3).
type AsynqBus struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redisOpt  asynq.RedisClientOpt
	maxRetry  int

	// pinger is a direct go-redis client used only for the gateway's
	// /readyz probe, which needs a cheap PING rather than a real enqueue.
	pinger *redis.Client

	mu      sync.Mutex
	servers []*asynq.Server
}

// NewAsynqBus connects to Redis at opts.RedisAddr.
func NewAsynqBus(opts config.AsynqOptions) (*AsynqBus, error) {
	if opts.RedisAddr == "" {
		return nil, fmt.Errorf("messagebus: Cloud:Redis:Addr is required")
	}
	redisOpt := asynq.RedisClientOpt{Addr: opts.RedisAddr, DB: opts.RedisDB}
	maxRetry := opts.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 25
	}
	return &AsynqBus{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redisOpt:  redisOpt,
		maxRetry:  maxRetry,
		pinger:    redis.NewClient(&redis.Options{Addr: opts.RedisAddr, DB: opts.RedisDB}),
	}, nil
}

// Ping reports whether the backing Redis instance is reachable. It is not
// part of the MessageBus interface; callers type-assert for it (as the
// gateway's /readyz handler does) when they want a cheaper check than a
// full Publish.
func (b *AsynqBus) Ping(ctx context.Context) error {
	return b.pinger.Ping(ctx).Err()
}

// Publish enqueues message as an asynq task of type topic on a same-named queue.
func (b *AsynqBus) Publish(ctx context.Context, topic string, message []byte) error {
	task := asynq.NewTask(topic, message)
	_, err := b.client.EnqueueContext(ctx, task,
		asynq.Queue(topic),
		asynq.MaxRetry(b.maxRetry),
	)
	if err != nil {
		return fmt.Errorf("messagebus: enqueue %q: %w", topic, err)
	}
	return nil
}

// StartConsume runs a dedicated single-concurrency asynq server for topic.
// On handler error the task is left for asynq's own retry/backoff (cloud
// "abandon on exception" semantics of spec §4.3); on success the task is
// acked implicitly by returning nil.
func (b *AsynqBus) StartConsume(ctx context.Context, topic string, handler interfaces.MessageHandler) (func(), error) {
	srv := asynq.NewServer(b.redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{topic: 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(topic, func(taskCtx context.Context, t *asynq.Task) error {
		if err := handler(taskCtx, t.Payload()); err != nil {
			logger.Warnf(taskCtx, "messagebus: handler error on topic %q, task redelivered: %v", topic, err)
			return err
		}
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(mux)
	}()

	b.mu.Lock()
	b.servers = append(b.servers, srv)
	b.mu.Unlock()

	cancel := func() { srv.Shutdown() }
	return cancel, nil
}

// StopAll shuts down every server started via StartConsume.
func (b *AsynqBus) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, srv := range b.servers {
		srv.Shutdown()
	}
	b.servers = nil
	b.client.Close()
	b.inspector.Close()
}
