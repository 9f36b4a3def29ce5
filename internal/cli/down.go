package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-migrate/internal/runner"
)

var downCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "down [steps]",
	Short: "Reverse the most recently applied migrations",
	Long: `Reverse the most recently applied migrations, newest first, using their
down blocks. steps defaults to 1; a value larger than the number of applied
migrations reverses all of them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDown,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	addDownFlags(downCmd)
	rootCmd.AddCommand(downCmd)
}

func addDownFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "show what would be reverted without executing")
}

func runDown(cmd *cobra.Command, args []string) error {
	steps := 1

	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", runner.ErrInvalidSteps, args[0])
		}

		steps = n
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := commandContext(cmd.Context())
	out := cmd.OutOrStdout()

	r, conn, err := openRunner(ctx, AppConfig,
		runner.WithDryRun(dryRun),
		runner.WithProgress(progressPrinter(out)),
	)
	if err != nil {
		return err
	}
	defer closeConn(ctx, conn)

	if dryRun {
		fmt.Fprintln(out, "--- DRY RUN (no changes will be made) ---")
	}

	res, err := r.Down(ctx, steps)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run complete: %d migration(s) would be reverted.\n", len(res.Migrations))
	} else {
		fmt.Fprintf(out, "Down complete: %d reverted.\n", len(res.Migrations))
	}

	return nil
}
