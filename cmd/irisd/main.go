// Command irisd is the capture daemon: it loads a deployment's config,
// wires a repository and image store, and serves the debug/ops HTTP
// surface in front of the capture controller. One composition root
// builds every component and hands off to Run, the same shape as a
// desktop app's signal-driven shutdown, generalized to an HTTP server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/irislab/irisgo/internal/api"
	"github.com/irislab/irisgo/internal/capture"
	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/events"
	"github.com/irislab/irisgo/internal/imagestore"
	"github.com/irislab/irisgo/internal/logger"
	"github.com/irislab/irisgo/internal/opencv/memory"
	"github.com/irislab/irisgo/internal/repository"
	"github.com/irislab/irisgo/internal/statuspush"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("irisd: %v", err)
		}
		cfg = loaded
	}

	appLogger := logger.NewConsoleLogger(zerolog.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := buildRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("irisd: repository: %v", err)
	}
	defer closeRepo()

	imgStore, err := buildImageStore(ctx, cfg)
	if err != nil {
		log.Fatalf("irisd: image store: %v", err)
	}

	memManager := memory.NewManager(appLogger)
	defer memManager.Shutdown()

	controller := capture.NewControllerWithMemory(cfg, appLogger, repository.ControllerAdapter{Repo: repo}, memManager)
	controller.SetImageStore(imgStore)

	hub := statuspush.NewHub(appLogger)
	go hub.Run()
	controller.OnStatus(hub.Broadcast)

	var publisher *events.Publisher
	if cfg.Events.Enabled {
		publisher, err = events.NewPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			log.Fatalf("irisd: events publisher: %v", err)
		}
		defer publisher.Close()
		controller.OnDecision(func(e capture.DecisionEvent) {
			if err := publisher.Publish(e); err != nil {
				appLogger.Error("events", err, map[string]interface{}{"subject": cfg.Events.Subject})
			}
		})
	}

	server := api.New(cfg.API, appLogger, controller, hub)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLogger.Info("irisd", "received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
		os.Exit(0)
	}()

	appLogger.Info("irisd", "starting", map[string]interface{}{
		"addr":    cfg.API.Addr,
		"backend": cfg.Storage.Backend,
		"mode":    string(cfg.Controller.Mode),
	})

	if err := server.Run(); err != nil {
		log.Fatalf("irisd: server: %v", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config) (repository.Repository, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pg, err := repository.NewPostgres(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, func() {}, err
		}
		return pg, pg.Close, nil
	default:
		return repository.NewMemory(), func() {}, nil
	}
}

func buildImageStore(ctx context.Context, cfg config.Config) (imagestore.Store, error) {
	if cfg.Storage.MinIO != nil {
		store, err := imagestore.NewMinIO(*cfg.Storage.MinIO)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return imagestore.NewFilesystem(cfg.Storage.ImagesDir)
}
