package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/mediaapi"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	ServerURL  string

	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Backend overrides the HTTP client, mainly for tests.
	Backend gallery.Backend
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mosaic", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mosaic")
}

// config returns the loaded config, or the defaults when the Before hook
// did not run.
func (f *Flags) config() *config.Config {
	if f.Config == nil {
		cfg := config.DefaultConfig()
		cfg.Keys = config.DefaultKeys()
		f.Config = &cfg
	}
	return f.Config
}

// Client returns the backend the commands talk to. --server wins over
// server.url.
func (f *Flags) Client() (gallery.Backend, error) {
	if f.Backend != nil {
		return f.Backend, nil
	}

	cfg := f.config()
	base := cfg.Server.URL
	if f.ServerURL != "" {
		base = f.ServerURL
	}

	c, err := mediaapi.New(base,
		mediaapi.WithTimeout(cfg.Server.Timeout),
		mediaapi.WithLogger(logging.Component("mediaapi")),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// listFlags are the list selection flags shared by browse and ls.
type listFlags struct {
	tag   string
	query string
	seed  string
}

func (lf *listFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "only show items with this tag",
			Destination: &lf.tag,
		},
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "free text search",
			Destination: &lf.query,
		},
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "shuffle seed (defaults to a new one per run)",
			Sources:     cli.EnvVars("MOSAIC_SEED"),
			Destination: &lf.seed,
		},
	}
}

// params builds the list params. A missing seed gets a fresh uuid so every
// session shuffles differently.
func (lf *listFlags) params() media.Params {
	if lf.seed == "" {
		lf.seed = uuid.NewString()
	}
	return media.Params{Seed: lf.seed, Tag: lf.tag, Query: lf.query}
}
