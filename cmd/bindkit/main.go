package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bindkit/bindkit/config"
	"github.com/bindkit/bindkit/pkg/callback"
	"github.com/bindkit/bindkit/pkg/forwarder"
	"github.com/bindkit/bindkit/pkg/logger"
	"github.com/bindkit/bindkit/pkg/metrics"
	"github.com/bindkit/bindkit/pkg/object"
	"github.com/bindkit/bindkit/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName     = flag.String("app-name", "", "Override app name")
	logLevel    = flag.String("log-level", "", "Override log level")
	debugMode   = flag.Bool("debug", false, "Enable debug mode")
	metricsAddr = flag.String("metrics-addr", ":9090", "Metrics listen address")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	logger.SetGlobal(log)

	log.Info("starting bindkit",
		"version", version.Version,
		"environment", cfg.App.Environment,
		"max_bindings", cfg.Signal.MaxBindings)

	mgr := metrics.NewManager(metrics.Config{
		Enabled: cfg.Metrics.Enabled,
		Path:    cfg.Metrics.Path,
	})
	forwarder.SetMetricsRecorder(mgr)
	forwarder.SetSharedOptions(
		forwarder.WithLogger(log),
		forwarder.WithMaxSignalBindings(cfg.Signal.MaxBindings),
		forwarder.WithDiagnosticInterval(cfg.Signal.DiagnosticInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, mgr.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			log.Info("metrics endpoint listening", "addr", *metricsAddr, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runHeartbeat(ctx, log)
	log.Info("shutdown complete")
}

// runHeartbeat drives a demo binding so the metrics endpoint has live
// dispatch counters to report: a clock object emits tick(int) once a
// second and a bound callback logs it.
func runHeartbeat(ctx context.Context, log logger.Logger) {
	clock := object.New("clock")
	if _, err := clock.DeclareSignal("tick(int)"); err != nil {
		log.Error("declare tick signal", "error", err)
		return
	}

	cb := callback.MustNew(func(seq int) {
		log.Debug("tick dispatched", "seq", seq)
	})
	if !forwarder.Connect(clock, "tick(int)", nil, cb) {
		log.Error("tick binding rejected")
		return
	}
	defer clock.Destroy()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seq++
			if err := clock.Emit("tick(int)", seq); err != nil {
				log.Error("tick emit failed", "error", err)
			}
		}
	}
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})
	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
		overrides["log.level"] = "debug"
	}
	return overrides
}

func printVersion() {
	info := version.Info()
	fmt.Printf("bindkit %s\n", info["version"])
	fmt.Printf("  build time: %s\n", info["buildTime"])
	fmt.Printf("  git commit: %s\n", info["gitCommit"])
	fmt.Printf("  go version: %s\n", info["goVersion"])
}

func printHelp() {
	fmt.Println("bindkit - dynamic signal and event binding engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bindkit [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
