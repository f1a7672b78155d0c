// Package config provides configuration management for pybundle.
//
// Configuration is merged from, in increasing precedence: built-in defaults,
// the global config file (~/.pybundle/config.yaml), the project config file
// (.pybundle.yaml in the project root), and PYBUNDLE_* environment variables.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Project ProjectConfig `mapstructure:"project"`
	Python  PythonConfig  `mapstructure:"python"`
	Build   BuildConfig   `mapstructure:"build"`
	Release ReleaseConfig `mapstructure:"release"`
}

// ProjectConfig describes the Python project being packaged.
type ProjectConfig struct {
	// Name is an informational project name used in log output. When empty,
	// the bundle name discovered after packaging is used instead.
	Name string `mapstructure:"name"`

	// SetupScript is the packaging build descriptor, relative to the project
	// root. It is an opaque external input: pybundle never parses it.
	SetupScript string `mapstructure:"setup_script"`

	// Requirements is the pinned dependency manifest, relative to the
	// project root.
	Requirements string `mapstructure:"requirements"`
}

// PythonConfig controls the isolated dependency environment.
type PythonConfig struct {
	// Interpreter is the Python executable used to create the virtualenv.
	Interpreter string `mapstructure:"interpreter"`

	// VenvDir is the project-local virtualenv directory name. It must be a
	// bare directory name, not a path.
	VenvDir string `mapstructure:"venv_dir"`
}

// BuildConfig controls the packaging step's working directories.
type BuildConfig struct {
	// BuildDir is the packaging tool's intermediate directory name.
	BuildDir string `mapstructure:"build_dir"`

	// DistDir is the directory name where the bundle is produced.
	DistDir string `mapstructure:"dist_dir"`

	// Timeout is the ceiling for any single external command.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReleaseConfig controls the archive-and-relocate step.
type ReleaseConfig struct {
	// Destination is the directory release artifacts are moved into.
	// Supports ~ expansion. Treated as a replace-in-place target: a prior
	// entry with the same name is deleted before the new one is moved in.
	Destination string `mapstructure:"destination"`
}
