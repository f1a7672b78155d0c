package config

import (
	"github.com/spf13/viper"

	"github.com/pybundle/pybundle/internal/constants"
)

// DefaultConfig returns a Config populated with built-in defaults.
// These match the conventional py2app project layout.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			SetupScript:  constants.DefaultSetupScript,
			Requirements: constants.DefaultRequirementsFile,
		},
		Python: PythonConfig{
			Interpreter: constants.DefaultInterpreter,
			VenvDir:     constants.DefaultVenvDir,
		},
		Build: BuildConfig{
			BuildDir: constants.DefaultBuildDir,
			DistDir:  constants.DefaultDistDir,
			Timeout:  constants.DefaultCommandTimeout,
		},
		Release: ReleaseConfig{
			Destination: constants.DefaultDestination,
		},
	}
}

// setDefaults registers built-in defaults on a viper instance so that
// partially specified config files merge over them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "")
	v.SetDefault("project.setup_script", constants.DefaultSetupScript)
	v.SetDefault("project.requirements", constants.DefaultRequirementsFile)
	v.SetDefault("python.interpreter", constants.DefaultInterpreter)
	v.SetDefault("python.venv_dir", constants.DefaultVenvDir)
	v.SetDefault("build.build_dir", constants.DefaultBuildDir)
	v.SetDefault("build.dist_dir", constants.DefaultDistDir)
	v.SetDefault("build.timeout", constants.DefaultCommandTimeout)
	v.SetDefault("release.destination", constants.DefaultDestination)
}
