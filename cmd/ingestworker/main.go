// Command ingestworker runs the C5 ingestion stage: consume job-requests,
// validate the submission, and forward it to parsing-jobs.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/ingestion"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/pipeline"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
	"github.com/brillob/dtce/internal/wiring"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := wiring.InitTracing("dtce-ingestworker")
	if err != nil {
		log.Fatalf("ingestworker: init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	container, err := wiring.NewContainer(ctx)
	if err != nil {
		log.Fatalf("ingestworker: build container: %v", err)
	}

	err = container.Invoke(func(cfg *config.Config, store interfaces.ObjectStore, statusStore interfaces.JobStatusStore, bus interfaces.MessageBus) error {
		if cfg.Mode == config.ModeProd {
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logrus.DebugLevel)
		}

		worker := &ingestion.Worker{Store: store, StatusStore: statusStore, Bus: bus}
		stopConsume, err := pipeline.Run(ctx, bus, statusStore, types.TopicJobRequests, worker.Handle)
		if err != nil {
			return err
		}
		defer stopConsume()

		logger.Infof(ctx, "ingestworker: consuming %s", types.TopicJobRequests)
		<-ctx.Done()
		bus.StopAll()
		return nil
	})
	if err != nil {
		log.Fatalf("ingestworker: %v", err)
	}
}
