// Command parseworker runs the C6 parsing stage: dispatch each JobRequest
// to its format handler and forward the parsed result to analysis-jobs.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/parsing"
	"github.com/brillob/dtce/internal/pipeline"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
	"github.com/brillob/dtce/internal/wiring"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := wiring.InitTracing("dtce-parseworker")
	if err != nil {
		log.Fatalf("parseworker: init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	container, err := wiring.NewContainer(ctx)
	if err != nil {
		log.Fatalf("parseworker: build container: %v", err)
	}

	err = container.Invoke(func(cfg *config.Config, store interfaces.ObjectStore, statusStore interfaces.JobStatusStore, bus interfaces.MessageBus) error {
		if cfg.Mode == config.ModeProd {
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logrus.DebugLevel)
		}

		worker := &parsing.Worker{Store: store, StatusStore: statusStore, Bus: bus}
		stopConsume, err := pipeline.Run(ctx, bus, statusStore, types.TopicParsingJobs, worker.Handle)
		if err != nil {
			return err
		}
		defer stopConsume()

		logger.Infof(ctx, "parseworker: consuming %s", types.TopicParsingJobs)
		<-ctx.Done()
		bus.StopAll()
		return nil
	})
	if err != nil {
		log.Fatalf("parseworker: %v", err)
	}
}
