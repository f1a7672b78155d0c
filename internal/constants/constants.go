// Package constants provides centralized constant values used throughout pybundle.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by pybundle for its own data.
const (
	// PybundleHome is the hidden directory name where pybundle stores its
	// global config and logs. Created in the user's home directory.
	PybundleHome = ".pybundle"

	// LogsDir is the directory name under PybundleHome where log files live.
	LogsDir = "logs"

	// CLILogFileName is the rotating log file written for every invocation.
	CLILogFileName = "pybundle.log"

	// ProjectConfigFileName is the per-project configuration file, looked up
	// in the project root.
	ProjectConfigFileName = ".pybundle.yaml"

	// GlobalConfigFileName is the config file under PybundleHome.
	GlobalConfigFileName = "config.yaml"
)

// Defaults for the build pipeline. These mirror the conventional layout of a
// py2app project: setup.py at the root, requirements.txt alongside it, and
// the packaging tool writing into build/ and dist/.
const (
	// DefaultInterpreter is the Python interpreter used to create the venv.
	DefaultInterpreter = "python3"

	// DefaultVenvDir is the project-local virtualenv directory. It is
	// ephemeral: created at the start of a run and removed at the end.
	DefaultVenvDir = "venv"

	// DefaultSetupScript is the packaging build descriptor.
	DefaultSetupScript = "setup.py"

	// DefaultRequirementsFile is the pinned dependency manifest.
	DefaultRequirementsFile = "requirements.txt"

	// DefaultBuildDir is the packaging tool's intermediate output directory.
	DefaultBuildDir = "build"

	// DefaultDistDir is where the packaging tool deposits the app bundle.
	DefaultDistDir = "dist"

	// DefaultDestination is where release artifacts are relocated to.
	// Tilde expansion happens at config load time.
	DefaultDestination = "~/Downloads"

	// BundleSuffix is the extension of the application bundle produced by
	// the packaging tool.
	BundleSuffix = ".app"

	// ArchiveSuffix is appended to the bundle name for the release archive.
	ArchiveSuffix = ".tar.gz"
)

// Timeout configuration.
const (
	// DefaultCommandTimeout is the ceiling for any single external command
	// (venv creation, pip install, packaging). Dependency installation on a
	// cold pip cache is the slowest step.
	DefaultCommandTimeout = 15 * time.Minute
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// EnvPrefix is the prefix for environment variable configuration overrides
// (e.g. PYBUNDLE_VERBOSE, PYBUNDLE_RELEASE_DESTINATION).
const EnvPrefix = "PYBUNDLE"
