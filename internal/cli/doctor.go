package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pybundle/pybundle/internal/command"
	"github.com/pybundle/pybundle/internal/config"
	"github.com/pybundle/pybundle/internal/errors"
	"github.com/pybundle/pybundle/internal/relocate"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newDoctorCmd(flags))
}

func newDoctorCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check build prerequisites",
		Long: `Check that everything a pipeline run needs is in place: the Python
interpreter on PATH, the build descriptor and dependency manifest in the
project, and a writable destination directory.

doctor only reads; it never modifies the filesystem (the destination
writability probe creates and removes a temporary file).

Examples:
  pybundle doctor
  pybundle doctor --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), os.Stdout, flags)
		},
	}
}

// doctorCheck is one prerequisite check result.
type doctorCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

func runDoctor(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(ctx, workDir)
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		checkInterpreter(cfg.Python.Interpreter),
		checkProjectFile("build descriptor", filepath.Join(workDir, cfg.Project.SetupScript)),
		checkProjectFile("dependency manifest", filepath.Join(workDir, cfg.Project.Requirements)),
		checkDestination(cfg.Release.Destination),
	}

	healthy := true
	for _, c := range checks {
		if !c.OK {
			healthy = false
		}
	}

	logFile, _ := LogFilePath()

	if flags.Output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Healthy bool          `json:"healthy"`
			Checks  []doctorCheck `json:"checks"`
			LogFile string        `json:"log_file,omitempty"`
		}{healthy, checks, logFile}); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			mark := "ok"
			if !c.OK {
				mark = "FAIL"
			}
			fmt.Fprintf(w, "[%4s] %-20s %s\n", mark, c.Name, c.Detail)
		}
		if logFile != "" {
			fmt.Fprintf(w, "\nlog file: %s\n", logFile)
		}
	}

	if !healthy {
		return errors.ErrMissingPrerequisite
	}
	return nil
}

func checkInterpreter(interpreter string) doctorCheck {
	c := doctorCheck{Name: "python interpreter"}
	path, ok := command.LookPath(interpreter)
	if !ok {
		c.Detail = fmt.Sprintf("%s not found on PATH", interpreter)
		return c
	}
	c.OK = true
	c.Detail = path
	return c
}

func checkProjectFile(name, path string) doctorCheck {
	c := doctorCheck{Name: name}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		c.Detail = fmt.Sprintf("%s not found", path)
	case info.IsDir():
		c.Detail = fmt.Sprintf("%s is a directory", path)
	default:
		c.OK = true
		c.Detail = path
	}
	return c
}

func checkDestination(dest string) doctorCheck {
	c := doctorCheck{Name: "destination"}
	if err := relocate.New(dest).CheckWritable(); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = dest + " (writable)"
	return c
}
