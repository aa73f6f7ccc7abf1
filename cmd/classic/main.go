package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/delaneyj/classic/internal/config"
	"github.com/delaneyj/classic/internal/logging"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	configKey   = "config"
	logLevelKey = "log-level"
)

func main() {
	cmd := &cli.Command{
		Name:  "classic",
		Usage: "Nested partial navigation over plain HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configKey,
				Aliases: []string{"c"},
				Usage:   "Path to classic.toml",
			},
			&cli.StringFlag{
				Name:  logLevelKey,
				Usage: "Override log.level",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			navigateCommand(),
			resolveCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the config named by the root flags and builds the logger.
func setup(cmd *cli.Command) (config.Config, zerolog.Logger, error) {
	cfg := config.Default()
	if path := cmd.String(configKey); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, zerolog.Nop(), err
		}
		cfg = loaded
	}
	if lvl := cmd.String(logLevelKey); lvl != "" {
		cfg.Log.Level = lvl
	}
	logger, err := logging.New("classic", cfg.Log.Level)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}
