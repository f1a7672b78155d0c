package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pybundle/pybundle/internal/constants"
	"github.com/pybundle/pybundle/internal/errors"
)

// newViperInstance creates a new Viper instance with standard pybundle
// configuration: built-in defaults, the PYBUNDLE_ env prefix, and a key
// replacer so that release.destination maps to PYBUNDLE_RELEASE_DESTINATION.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption supplies mapstructure decode hooks for types viper does
// not handle natively, currently just time.Duration strings like "15m".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error. Missing config files are expected, not a failure.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration for the project rooted at workDir with proper
// precedence. Configuration is loaded in the following order (highest
// precedence first):
//  1. Environment variables (PYBUNDLE_* prefix)
//  2. Project config (<workDir>/.pybundle.yaml)
//  3. Global config (~/.pybundle/config.yaml)
//  4. Built-in defaults
//
// The function returns an error only for actual configuration problems, not
// for missing config files (projects without a .pybundle.yaml just get the
// defaults).
func Load(ctx context.Context, workDir string) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence), project config merges over it.
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v, workDir); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Tilde in the destination is expanded once here so that everything
	// downstream works with absolute paths.
	dest, err := ExpandPath(cfg.Release.Destination)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand destination path")
	}
	cfg.Release.Destination = dest

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("interpreter", cfg.Python.Interpreter).
		Str("venv_dir", cfg.Python.VenvDir).
		Str("destination", cfg.Release.Destination).
		Dur("build.timeout", cfg.Build.Timeout).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file.
// Missing file or undeterminable home directory is not an error.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // no home dir means no global config, proceed with defaults
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrapf(err, "failed to read global config %s", path)
	}
	return nil
}

// loadProjectConfig merges the project config file over whatever is loaded.
// Missing file is not an error.
func loadProjectConfig(v *viper.Viper, workDir string) error {
	path := filepath.Join(workDir, constants.ProjectConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrapf(err, "failed to read project config %s", path)
	}
	return nil
}
