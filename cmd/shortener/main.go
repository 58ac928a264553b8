package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/MikhailRaia/url-shortcuts/internal/app"
	"github.com/MikhailRaia/url-shortcuts/internal/config"
	"github.com/MikhailRaia/url-shortcuts/internal/logger"
	"github.com/rs/zerolog/log"
)

var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create heap profile")
		return
	}
	defer f.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Error().Err(err).Msg("Failed to write heap profile")
	}
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Msg("Falling back to info level")
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	err = application.Run(ctx)

	if *memprofile != "" {
		writeHeapProfile(*memprofile)
	}

	if err != nil {
		log.Error().Err(err).Msg("Error running application")
		os.Exit(1)
	}
}
