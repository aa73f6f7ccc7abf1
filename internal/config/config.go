// Package config loads classic.toml, overlaying what the file defines on
// Default.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/delaneyj/classic/route"
	"github.com/rs/zerolog"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Router Router
	Server Server
	Log    Log
}

type Router struct {
	SuspenseDelay time.Duration
	LayoutParam   string
	PartParam     string
}

type Server struct {
	Addr string
	// Site is a site TOML file; empty serves the built-in demo.
	Site string
}

type Log struct {
	Level string
}

func Default() Config {
	return Config{
		Router: Router{
			SuspenseDelay: route.DefaultSuspenseDelay,
			LayoutParam:   route.DefaultLayoutParam,
			PartParam:     route.DefaultPartParam,
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// classic.toml key mapping.
type fileConfig struct {
	Router struct {
		SuspenseDelay string `toml:"suspense_delay"`
		LayoutParam   string `toml:"layout_param"`
		PartParam     string `toml:"part_param"`
	} `toml:"router"`
	Server struct {
		Addr string `toml:"addr"`
		Site string `toml:"site"`
	} `toml:"server"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads path over Default. A relative site path is taken relative to
// the config file.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q: %w", undecoded[0].String(), ErrInvalid)
	}

	if meta.IsDefined("router", "suspense_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Router.SuspenseDelay))
		if err != nil {
			return Config{}, fmt.Errorf("load config: router.suspense_delay: %w", err)
		}
		cfg.Router.SuspenseDelay = d
	}
	if meta.IsDefined("router", "layout_param") {
		cfg.Router.LayoutParam = strings.TrimSpace(raw.Router.LayoutParam)
	}
	if meta.IsDefined("router", "part_param") {
		cfg.Router.PartParam = strings.TrimSpace(raw.Router.PartParam)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "site") {
		site := strings.TrimSpace(raw.Server.Site)
		if site != "" && !filepath.IsAbs(site) {
			site = filepath.Join(filepath.Dir(path), site)
		}
		cfg.Server.Site = site
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(raw.Log.Level))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Router.SuspenseDelay < 0 {
		return fmt.Errorf("router.suspense_delay %v is negative: %w", c.Router.SuspenseDelay, ErrInvalid)
	}
	if c.Router.LayoutParam == "" || c.Router.PartParam == "" {
		return fmt.Errorf("router marker params must be set: %w", ErrInvalid)
	}
	if c.Router.LayoutParam == c.Router.PartParam {
		return fmt.Errorf("router.layout_param and router.part_param are both %q: %w", c.Router.LayoutParam, ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// RouteOptions maps the router section onto route options.
func (c Config) RouteOptions() []route.Option {
	return []route.Option{
		route.WithSuspenseDelay(c.Router.SuspenseDelay),
		route.WithMarkers(c.Router.LayoutParam, c.Router.PartParam),
	}
}
