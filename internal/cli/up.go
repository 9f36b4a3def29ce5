package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/schema-migrate/internal/runner"
)

var upCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply every pending migration in identifier order. Each migration runs in
its own transaction together with its schema_migrations row, and the run stops
at the first failure.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	addUpFlags(upCmd)
	rootCmd.AddCommand(upCmd)
}

func addUpFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "show what would be applied without executing")
	cmd.Flags().Bool("strict-order", false, "fail if a pending migration sorts before an applied one")
	cmd.Flags().Duration("lock-timeout", 0, "override lock timeout (e.g., 10s, 1m)")
	cmd.Flags().Duration("statement-timeout", 0, "override statement timeout (e.g., 30s, 5m)")
}

func runUp(cmd *cobra.Command, _ []string) error {
	cfg := *AppConfig

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if strict, _ := cmd.Flags().GetBool("strict-order"); strict {
		cfg.OutOfOrder = string(runner.OutOfOrderReject)
	}

	if cmd.Flags().Changed("lock-timeout") {
		cfg.LockTimeout, _ = cmd.Flags().GetDuration("lock-timeout")
	}

	if cmd.Flags().Changed("statement-timeout") {
		cfg.StatementTimeout, _ = cmd.Flags().GetDuration("statement-timeout")
	}

	ctx := commandContext(cmd.Context())
	out := cmd.OutOrStdout()

	r, conn, err := openRunner(ctx, &cfg,
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

	res, err := r.Up(ctx)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run complete: %d migration(s) would be applied.\n", len(res.Migrations))
	} else {
		fmt.Fprintf(out, "Up complete: %d applied.\n", len(res.Migrations))
	}

	return nil
}
