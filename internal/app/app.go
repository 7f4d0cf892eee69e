// Package app assembles the process: logging router, metrics, hub, and the
// HTTP surface. cmd/server stays a thin shell around Run.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	server "wakerunner/server"
	servernet "wakerunner/server/internal/net"
	"wakerunner/server/internal/telemetry"
	"wakerunner/server/logging"
	loggingSinks "wakerunner/server/logging/sinks"
)

// Config carries the process-level knobs. Every field has an environment
// override so deployments can tune without rebuilding.
type Config struct {
	Addr          string
	ClientDir     string
	HighScorePath string
	LogJSONPath   string
	Logger        telemetry.Logger
}

func (cfg Config) withEnv() Config {
	if raw := os.Getenv("ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := os.Getenv("CLIENT_DIR"); raw != "" {
		cfg.ClientDir = raw
	}
	if raw := os.Getenv("HIGHSCORE_PATH"); raw != "" {
		cfg.HighScorePath = raw
	}
	if raw := os.Getenv("LOG_JSON_PATH"); raw != "" {
		cfg.LogJSONPath = raw
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ClientDir == "" {
		cfg.ClientDir = filepath.Clean(filepath.Join("..", "client"))
	}
	return cfg
}

// Run wires everything together and serves until the listener fails.
func Run(ctx context.Context, cfg Config) error {
	cfg = cfg.withEnv()

	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	logConfig := logging.DefaultConfig()
	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	}
	if cfg.LogJSONPath != "" {
		file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open json log: %w", err)
		}
		defer file.Close()
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSONSink(file, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	metrics := logging.NewMetrics()

	hubCfg := server.DefaultHubConfig()
	if cfg.HighScorePath != "" {
		hubCfg.HighScorePath = cfg.HighScorePath
	}
	hubCfg.Logger = telemetryLogger
	hubCfg.Metrics = telemetry.WrapMetrics(metrics)

	hub, err := server.NewHub(hubCfg, router)
	if err != nil {
		return fmt.Errorf("construct hub: %w", err)
	}

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Telemetry: metrics.TelemetrySnapshot,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
