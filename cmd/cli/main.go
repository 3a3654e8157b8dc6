package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/modelmart/modelmart/internal/buildinfo"
	"github.com/modelmart/modelmart/internal/client/cli"
	"github.com/modelmart/modelmart/internal/client/config"
	"github.com/modelmart/modelmart/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	sl := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := logging.NewSlogLogger(sl)

	app, err := cli.NewApp(cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
