package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/aqasim81/schema-migrate/internal/migration"
	"github.com/aqasim81/schema-migrate/internal/parser"
)

// errValidationFailed is returned when at least one migration file is invalid.
var errValidationFailed = errors.New("migration validation failed") //nolint:gochecknoglobals // sentinel error

var validateCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "validate",
	Short: "Check migration files without touching the database",
	Long: `Load every migration file and check that it has non-empty up and down
blocks. With --syntax, both blocks are also parsed with the PostgreSQL parser
and statements that cannot run inside a transaction are reported.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	addValidateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func addValidateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("syntax", false, "also check PostgreSQL syntax of both blocks")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	syntax, _ := cmd.Flags().GetBool("syntax")
	out := cmd.OutOrStdout()

	src := migration.NewDirSource(AppConfig.MigrationsDir)

	ids, err := src.List()
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		fmt.Fprintf(out, "No migration files found in %s.\n", src.Dir())

		return nil
	}

	var invalid int

	for _, id := range ids {
		if err := validateOne(src, id, syntax); err != nil {
			invalid++

			fmt.Fprintf(out, "  ✘ %s\n", id)

			for _, e := range multierr.Errors(err) {
				fmt.Fprintf(out, "      %v\n", e)
			}

			continue
		}

		fmt.Fprintf(out, "  ✔ %s\n", id)
	}

	fmt.Fprintf(out, "\n%d file(s) checked in %s, %d invalid.\n", len(ids), src.Dir(), invalid)

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", errValidationFailed, invalid, len(ids))
	}

	return nil
}

// validateOne returns every problem found in migration id.
func validateOne(src *migration.Source, id string, syntax bool) error {
	m, err := src.Load(id)
	if err != nil {
		return err
	}

	if !syntax {
		return nil
	}

	var errs error

	for _, dir := range []migration.Direction{migration.Up, migration.Down} {
		found, err := parser.NonTransactional(m.Block(dir))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", dir, err))

			continue
		}

		if len(found) > 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: cannot run inside a transaction: %s",
				dir, strings.Join(found, "; ")))
		}
	}

	return errs
}
