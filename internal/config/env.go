package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/madara-alliance/madara-cli/internal/common"
)

// DefaultRegistry hosts the prebuilt stack images used in unattended runs
const DefaultRegistry = "ghcr.io/madara-alliance"

// EnvValues holds KEY=value pairs recovered from a rendered .env file
type EnvValues map[string]string

// Get returns a non-empty value for key
func (e EnvValues) Get(key string) (string, bool) {
	v, ok := e[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ReadEnvFile loads a previously rendered .env file. A missing file yields an
// empty set.
func ReadEnvFile(path string) (EnvValues, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return EnvValues{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, common.IOError(path, err)
	}

	values := make(EnvValues, len(v.AllKeys()))
	for _, key := range v.AllKeys() {
		values[strings.ToUpper(key)] = v.GetString(key)
	}
	return values, nil
}

// Overrides are process-level settings read from MADARA_CLI_* variables
type Overrides struct {
	// Registry prefixes image names when registry images are used
	Registry string
	// CI is set when running under a CI system
	CI bool
	// Runtime forces docker or podman instead of auto-detection
	Runtime string
}

// LoadOverrides reads MADARA_CLI_REGISTRY, MADARA_CLI_RUNTIME and CI
func LoadOverrides() Overrides {
	v := viper.New()
	v.SetEnvPrefix("MADARA_CLI")
	v.AutomaticEnv()
	v.SetDefault("registry", DefaultRegistry)
	v.SetDefault("runtime", "")
	_ = v.BindEnv("ci", "CI")

	return Overrides{
		Registry: strings.TrimSuffix(v.GetString("registry"), "/"),
		CI:       v.GetBool("ci"),
		Runtime:  v.GetString("runtime"),
	}
}
