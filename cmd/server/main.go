package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailan-new/contractsplit/internal/api"
	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/config"
	"github.com/hailan-new/contractsplit/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The rule-based classifier always exists; the remote classifier
	// wraps it when an endpoint is configured.
	classifierCfg := classify.DefaultConfig()
	classifierCfg.DocumentType = cfg.DocumentType
	ruleBased := classify.NewRuleBased(classifierCfg)
	var classifier classify.Classifier = ruleBased
	var remote *classify.Remote
	if cfg.ClassifierEndpoint != "" {
		remote = classify.NewRemote(classify.RemoteConfig{
			Endpoint:     cfg.ClassifierEndpoint,
			APIKey:       cfg.ClassifierAPIKey,
			Model:        cfg.ClassifierModel,
			Timeout:      cfg.ClassifierTimeout,
			CacheEnabled: cfg.ClassifierCache,
		}, ruleBased)
		remote.Stats = classify.NewStats(time.Hour)
		classifier = remote
		log.Info("remote classifier enabled", "model", cfg.ClassifierModel)
	}

	orch := pipeline.NewOrchestrator(cfg, classifier, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, remote, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if remote != nil {
			remote.Close()
		}
	}()

	log.Info("starting contractsplit", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
