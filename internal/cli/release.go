package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// AddReleaseCommand adds the release command to the root command.
// It is the explicit spelling of "build --release": the two historical build
// scripts differed only in the archive-and-relocate tail, so both variants
// share one pipeline here.
func AddReleaseCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newReleaseCmd(flags))
}

func newReleaseCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Build, archive, and relocate the application bundle",
		Long: `Run the full release pipeline: everything "pybundle build" does, then
compress the bundle to <Bundle>.app.tar.gz and move both the archive and
the raw bundle into the destination directory (default ~/Downloads).

Prior destination entries with the same names are replaced without
confirmation. If relocation fails, the freshly built artifacts are left in
the local dist/ directory for manual recovery.

Examples:
  pybundle release
  pybundle release --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), os.Stdout, flags, true)
		},
	}
}
