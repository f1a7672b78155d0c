package config

import (
	"strings"

	"github.com/pybundle/pybundle/internal/errors"
)

// Validate checks a Config for values that would make a pipeline run
// nonsensical or dangerous. It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := requireBareDir("python.venv_dir", cfg.Python.VenvDir); err != nil {
		return err
	}
	if err := requireBareDir("build.build_dir", cfg.Build.BuildDir); err != nil {
		return err
	}
	if err := requireBareDir("build.dist_dir", cfg.Build.DistDir); err != nil {
		return err
	}

	if cfg.Python.Interpreter == "" {
		return errors.Wrap(errors.ErrEmptyValue, "python.interpreter")
	}
	if cfg.Project.SetupScript == "" {
		return errors.Wrap(errors.ErrEmptyValue, "project.setup_script")
	}
	if cfg.Project.Requirements == "" {
		return errors.Wrap(errors.ErrEmptyValue, "project.requirements")
	}
	if cfg.Release.Destination == "" {
		return errors.Wrap(errors.ErrEmptyValue, "release.destination")
	}

	if cfg.Build.Timeout <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "build.timeout must be positive")
	}

	return nil
}

// requireBareDir rejects empty names and names containing path separators.
// The venv, build, and dist directories are removed wholesale during a run;
// restricting them to bare names inside the project keeps an rm -rf from
// ever pointing outside it.
func requireBareDir(key, name string) error {
	if name == "" {
		return errors.Wrap(errors.ErrEmptyValue, key)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Wrapf(errors.ErrConfigInvalid, "%s must be a bare directory name, got %q", key, name)
	}
	return nil
}
