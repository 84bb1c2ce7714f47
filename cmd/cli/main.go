package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/trailkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/trailkeeper/internal/client/cli"
	"github.com/dmitrijs2005/trailkeeper/internal/client/config"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	level := slog.LevelInfo
	var mirror io.Writer
	if cfg.Verbose {
		level = slog.LevelDebug
		mirror = os.Stderr
	}
	logger, closer := logging.NewFileLogger(logging.FileOptions{Path: cfg.LogFile}, level, mirror)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}

	app.Run(ctx)
}
