// Command analysisworker runs the C7 analysis stage: linguistic style
// scoring and logo/image classification over a parsed document, producing
// the final template.json/context.json artifacts.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/brillob/dtce/internal/analysis"
	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/pipeline"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
	"github.com/brillob/dtce/internal/wiring"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := wiring.InitTracing("dtce-analysisworker")
	if err != nil {
		log.Fatalf("analysisworker: init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	container, err := wiring.NewContainer(ctx)
	if err != nil {
		log.Fatalf("analysisworker: build container: %v", err)
	}

	err = container.Invoke(func(cfg *config.Config, store interfaces.ObjectStore, statusStore interfaces.JobStatusStore, bus interfaces.MessageBus) error {
		if cfg.Mode == config.ModeProd {
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logrus.DebugLevel)
		}

		worker := &analysis.Worker{Store: store, StatusStore: statusStore}
		stopConsume, err := pipeline.Run(ctx, bus, statusStore, types.TopicAnalysisJobs, worker.Handle)
		if err != nil {
			return err
		}
		defer stopConsume()

		logger.Infof(ctx, "analysisworker: consuming %s", types.TopicAnalysisJobs)
		<-ctx.Done()
		bus.StopAll()
		return nil
	})
	if err != nil {
		log.Fatalf("analysisworker: %v", err)
	}
}
