package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pybundle/pybundle/internal/constants"
	"github.com/pybundle/pybundle/internal/errors"
)

// PybundleHome returns the pybundle home directory path.
// If the PYBUNDLE_HOME environment variable is set, it uses that.
// Otherwise, it defaults to ~/.pybundle.
func PybundleHome() (string, error) {
	if home := os.Getenv("PYBUNDLE_HOME"); home != "" {
		return home, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}

	return filepath.Join(home, constants.PybundleHome), nil
}

// GlobalConfigPath returns the path of the global config file.
func GlobalConfigPath() (string, error) {
	home, err := PybundleHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.GlobalConfigFileName), nil
}

// ExpandPath expands a leading ~ or ~/ in path to the user's home directory.
// Paths without a tilde are returned unchanged.
func ExpandPath(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
