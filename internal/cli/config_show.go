package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pybundle/pybundle/internal/config"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect pybundle configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	root.AddCommand(cmd)
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective merged configuration",
		Long: `Print the configuration the pipeline would run with, after merging
built-in defaults, the global config file, the project config file, and
PYBUNDLE_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), os.Stdout)
		},
	}
}

// effectiveConfig mirrors config.Config with yaml tags for display.
type effectiveConfig struct {
	Project struct {
		Name         string `yaml:"name,omitempty"`
		SetupScript  string `yaml:"setup_script"`
		Requirements string `yaml:"requirements"`
	} `yaml:"project"`
	Python struct {
		Interpreter string `yaml:"interpreter"`
		VenvDir     string `yaml:"venv_dir"`
	} `yaml:"python"`
	Build struct {
		BuildDir string `yaml:"build_dir"`
		DistDir  string `yaml:"dist_dir"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"build"`
	Release struct {
		Destination string `yaml:"destination"`
	} `yaml:"release"`
}

func runConfigShow(ctx context.Context, w io.Writer) error {
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

	var out effectiveConfig
	out.Project.Name = cfg.Project.Name
	out.Project.SetupScript = cfg.Project.SetupScript
	out.Project.Requirements = cfg.Project.Requirements
	out.Python.Interpreter = cfg.Python.Interpreter
	out.Python.VenvDir = cfg.Python.VenvDir
	out.Build.BuildDir = cfg.Build.BuildDir
	out.Build.DistDir = cfg.Build.DistDir
	out.Build.Timeout = cfg.Build.Timeout.String()
	out.Release.Destination = cfg.Release.Destination

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return err
	}
	return enc.Close()
}
