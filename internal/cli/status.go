package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errInvalidFormat is returned for an unknown --format value.
var errInvalidFormat = errors.New("invalid output format") //nolint:gochecknoglobals // sentinel error

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display every migration file and whether it is applied or pending.
Applied migrations whose files are gone are listed as missing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	addStatusFlags(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func addStatusFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "output format (text, json)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: %q (want text or json)", errInvalidFormat, format)
	}

	ctx := commandContext(cmd.Context())

	r, conn, err := openRunner(ctx, AppConfig)
	if err != nil {
		return err
	}
	defer closeConn(ctx, conn)

	st, err := r.Status(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(st)
	}

	return st.Render(cmd.OutOrStdout())
}
