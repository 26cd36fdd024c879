// Command gateway serves the C9 HTTP surface (spec §4.9, §6): job
// submission, status, results, and file retrieval.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/gateway"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types/interfaces"
	"github.com/brillob/dtce/internal/wiring"
)

// @title        Document Template & Content Extraction API
// @version      1.0
// @description  Submit a document, track its pipeline status, and retrieve
// @description  the rendered template.json/context.json artifacts.
// @BasePath     /
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := wiring.InitTracing("dtce-gateway")
	if err != nil {
		log.Fatalf("gateway: init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	container, err := wiring.NewContainer(ctx)
	if err != nil {
		log.Fatalf("gateway: build container: %v", err)
	}

	err = container.Invoke(func(cfg *config.Config, store interfaces.ObjectStore, statusStore interfaces.JobStatusStore, bus interfaces.MessageBus) error {
		if cfg.Mode == config.ModeProd {
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logrus.DebugLevel)
		}

		router := gateway.NewRouter(cfg, store, statusStore, bus)
		srv := &http.Server{Addr: cfg.Gateway.ListenAddr, Handler: router}

		go func() {
			logger.Infof(ctx, "gateway: listening on %s", cfg.Gateway.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("gateway: serve: %v", err)
			}
		}()

		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}
}
