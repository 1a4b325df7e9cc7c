package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/evdnx/gotf/bot"
	"github.com/evdnx/gotf/config"
	"github.com/evdnx/gotf/executor"
	"github.com/evdnx/gotf/logger"
	"github.com/evdnx/gotf/metrics"
	"github.com/evdnx/gotf/types"
)

const tickInterval = time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	// .env is optional; it only seeds environment overrides.
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath == "" {
		*configPath = os.Getenv("GOTF_CONFIG")
	}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var log logger.Logger
	if cfg.LogFile != "" {
		log = logger.NewFileLogger(cfg.LogFile)
	} else {
		l, err := logger.NewZapLogger()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		log = l
	}

	if cfg.MetricsPort > 0 {
		go func() {
			if err := metrics.Serve(cfg.MetricsPort); err != nil {
				log.Warn("metrics_server_stopped", logger.Err(err))
			}
		}()
	}

	// The paper broker is the built-in execution venue. A live adapter
	// implements executor.Broker against a real account instead.
	broker := executor.NewPaperBroker(10000, 100, types.SymbolInfo{
		Name:       cfg.Symbol,
		PipSize:    0.0001,
		PipValue:   10,
		Digits:     5,
		VolumeMin:  0.01,
		VolumeMax:  100,
		VolumeStep: 0.01,
	})

	b, err := bot.New(cfg, broker, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}

	log.Info("agent_started",
		logger.String("symbol", cfg.Symbol),
		logger.String("data_dir", cfg.DataDir),
		logger.Int("metrics_port", cfg.MetricsPort),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.OnTick()
		case sig := <-stop:
			log.Info("agent_stopping", logger.String("signal", sig.String()))
			return
		}
	}
}
