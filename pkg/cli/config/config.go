package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	domainConfig "github.com/secmon-lab/polyconn/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

var (
	ErrConfigNotFound   = goerr.New("config file not found")
	ErrInvalidProvider  = goerr.New("invalid provider in provision source")
	ErrMissingSourceID  = goerr.New("provision source requires source_id")
	ErrDuplicateSource  = goerr.New("duplicate provision source")
	ErrInvalidConfigDoc = goerr.New("invalid config document")
)

// AppConfig points at the optional TOML file holding provisioning defaults
type AppConfig struct {
	path string
}

func (x *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			TakesFile:   true,
			Sources:     cli.EnvVars("POLYCONN_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x AppConfig) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the provisioning settings. Without a config file the
// defaults are used.
func (x *AppConfig) Configure() (*domainConfig.Provision, error) {
	if x.path == "" {
		return &domainConfig.Provision{}, nil
	}
	return LoadProvision(x.path)
}

type fileConfig struct {
	Provision provisionConfig `toml:"provision"`
}

type provisionConfig struct {
	OwnerID string         `toml:"owner_id"`
	Sources []sourceConfig `toml:"sources"`
}

type sourceConfig struct {
	Provider   string `toml:"provider"`
	SourceID   string `toml:"source_id"`
	SourceType string `toml:"source_type"`
	Name       string `toml:"name"`
}

func (c *provisionConfig) validate() error {
	seen := make(map[string]bool)
	for i, s := range c.Sources {
		if _, err := model.ParseProvider(s.Provider); err != nil {
			return goerr.Wrap(ErrInvalidProvider, "invalid provider",
				goerr.V("index", i), goerr.V("provider", s.Provider))
		}
		if s.SourceID == "" {
			return goerr.Wrap(ErrMissingSourceID, "source_id is empty",
				goerr.V("index", i), goerr.V("provider", s.Provider))
		}
		key := s.Provider + "/" + s.SourceID
		if seen[key] {
			return goerr.Wrap(ErrDuplicateSource, "source listed twice",
				goerr.V("provider", s.Provider), goerr.V("source_id", s.SourceID))
		}
		seen[key] = true
	}
	return nil
}

// LoadProvision reads the [provision] table of a TOML config file
func LoadProvision(path string) (*domainConfig.Provision, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfigDoc, "failed to parse TOML config",
			goerr.V("path", path), goerr.V("error", err.Error()))
	}

	if err := cfg.Provision.validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	prov := &domainConfig.Provision{OwnerID: cfg.Provision.OwnerID}
	for _, s := range cfg.Provision.Sources {
		prov.Sources = append(prov.Sources, domainConfig.ProvisionSource{
			Provider:   model.Provider(s.Provider),
			SourceID:   s.SourceID,
			SourceType: s.SourceType,
			Name:       s.Name,
		})
	}
	return prov, nil
}
