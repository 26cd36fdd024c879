// Package wiring assembles the process-level dependency graph shared by
// every cmd/* binary: resolve configuration, bind the Platform:Mode
// backend triad (object store, job status store, message bus) exactly
// once, and let each entrypoint dig.Invoke the pieces it needs.
package wiring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/dig"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/jobstore"
	"github.com/brillob/dtce/internal/messagebus"
	"github.com/brillob/dtce/internal/objectstore"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// Tracer is the shared span tracer every worker stage and gateway request
// wraps its work in (SPEC_FULL.md §4's OpenTelemetry supplement).
var Tracer = otel.Tracer("github.com/brillob/dtce")

// NewContainer builds a dig.Container providing *config.Config and the
// three backend-neutral abstractions, resolved according to cfg.Mode.
func NewContainer(ctx context.Context) (*dig.Container, error) {
	c := dig.New()

	if err := c.Provide(config.Load); err != nil {
		return nil, fmt.Errorf("wiring: provide config: %w", err)
	}

	if err := c.Provide(func(cfg *config.Config) (interfaces.ObjectStore, error) {
		return newObjectStore(ctx, cfg)
	}); err != nil {
		return nil, fmt.Errorf("wiring: provide object store: %w", err)
	}

	if err := c.Provide(func(cfg *config.Config) (interfaces.JobStatusStore, error) {
		return newJobStatusStore(cfg)
	}); err != nil {
		return nil, fmt.Errorf("wiring: provide job status store: %w", err)
	}

	if err := c.Provide(func(cfg *config.Config) (interfaces.MessageBus, error) {
		return newMessageBus(cfg)
	}); err != nil {
		return nil, fmt.Errorf("wiring: provide message bus: %w", err)
	}

	return c, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (interfaces.ObjectStore, error) {
	switch cfg.Mode {
	case config.ModeProd:
		return objectstore.NewMinioStore(ctx, cfg.Minio)
	default:
		return objectstore.NewLocalStore(cfg.Local, cfg.Gateway.BaseURL)
	}
}

func newJobStatusStore(cfg *config.Config) (interfaces.JobStatusStore, error) {
	switch cfg.Mode {
	case config.ModeProd:
		return jobstore.NewPostgresStore(cfg.Postgres)
	default:
		return jobstore.NewLocalStore(cfg.Local)
	}
}

func resourceFor(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
}

func newMessageBus(cfg *config.Config) (interfaces.MessageBus, error) {
	switch cfg.Mode {
	case config.ModeProd:
		return messagebus.NewAsynqBus(cfg.Asynq)
	default:
		return messagebus.NewLocalBus(cfg.Queue)
	}
}

// InitTracing installs a stdout-exporting OpenTelemetry trace provider,
// matching the teacher's stack (go.opentelemetry.io/otel/exporters/stdout/
// stdouttrace). Every cmd/* binary calls it in both Dev and Prod mode; no
// other exporter is configured.
func InitTracing(serviceName string) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("wiring: init trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resourceFor(serviceName)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
