package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/delaneyj/classic/devserver"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

const (
	addrKey = "addr"
	siteKey = "site"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a site as full documents, layouts and parts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  addrKey,
				Usage: "Listen address, overrides server.addr",
			},
			&cli.StringFlag{
				Name:  siteKey,
				Usage: "Site TOML file, overrides server.site",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String(addrKey); addr != "" {
		cfg.Server.Addr = addr
	}
	if site := cmd.String(siteKey); site != "" {
		cfg.Server.Site = site
	}

	site := devserver.Demo()
	if cfg.Server.Site != "" {
		if site, err = devserver.LoadSite(cfg.Server.Site); err != nil {
			return err
		}
	}
	pages, err := devserver.New(site,
		devserver.WithMarkers(cfg.Router.LayoutParam, cfg.Router.PartParam),
		devserver.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", pages)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Int("routes", len(site.Routes)).Msg("serving")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
