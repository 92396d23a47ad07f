package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	configloader "github.com/orcavozapp/orcavoz/external/config"
	documentimpl "github.com/orcavozapp/orcavoz/external/document"
	extractorimpl "github.com/orcavozapp/orcavoz/external/extractor"
	"github.com/orcavozapp/orcavoz/external/httpapi"
	recognizerimpl "github.com/orcavozapp/orcavoz/external/recognizer"
	repositoryimpl "github.com/orcavozapp/orcavoz/external/repository"
	"github.com/orcavozapp/orcavoz/internal/budget"
	"github.com/orcavozapp/orcavoz/internal/config"
	"github.com/orcavozapp/orcavoz/internal/wizard"
	"github.com/samber/do/v2"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server", "port", cfg.HTTPPort)
	runServer(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	recognizerimpl.RegisterDI(injector)
	extractorimpl.RegisterDI(injector)
	documentimpl.RegisterDI(injector)
	budget.RegisterDI(injector)
	wizard.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runServer(injector do.Injector) {
	server, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
		<-done
	case <-done:
	}
}
