// Package rgconfig loads the viewer configuration.
package rgconfig

import (
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// TargetCRS is the CRS every layer is reprojected into at creation
	// time. It is fixed for the lifetime of the store.
	TargetCRS string `yaml:"targetCRS"`
	// DefaultSourceCRS is assumed for inputs that do not name their CRS.
	DefaultSourceCRS string `yaml:"defaultSourceCRS"`
	// TickMillis is the consumer's processing tick in milliseconds.
	TickMillis int `yaml:"tickMillis"`
	// MetricsAddr enables the prometheus listener when non-empty.
	MetricsAddr string `yaml:"metricsAddr"`
}

func Default() Config {
	return Config{
		TargetCRS:        "EPSG:3857",
		DefaultSourceCRS: "EPSG:4326",
		TickMillis:       16,
	}
}

// Tick returns the processing tick interval.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

func getDefaultPath() (string, error) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "fail to get user home dir")
	}

	return path.Join(homedir, ".rgis", "config.yaml"), nil
}

// Load reads the config file at configPath, or the default location when
// configPath is empty. A missing file yields the defaults.
func Load(configPath string) (Config, error) {
	if configPath == "" {
		p, err := getDefaultPath()
		if err != nil {
			return Config{}, errors.Wrap(err, "fail to get default config path")
		}

		configPath = p
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, errors.Wrap(err, "fail to read config file")
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "fail to decode config content")
	}

	err = cfg.validate()
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}
