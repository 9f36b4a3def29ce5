package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aqasim81/schema-migrate/internal/migration"
	"github.com/aqasim81/schema-migrate/internal/parser"
)

// timestampLayout prefixes new migration files so they sort by creation time.
const timestampLayout = "20060102150405"

// errInvalidName is returned when a migration name has no usable characters.
var errInvalidName = errors.New("invalid migration name") //nolint:gochecknoglobals // sentinel error

// nonWord matches runs of characters not allowed in a migration name.
var nonWord = regexp.MustCompile(`[^a-z0-9]+`) //nolint:gochecknoglobals // compiled once, used by migrationFileName

// nowFunc is replaced in tests.
var nowFunc = time.Now //nolint:gochecknoglobals // test seam

var createCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "create <name>",
	Short: "Create a new migration file",
	Long: `Create <timestamp>_<name>.sql in the migrations directory with empty up
and down blocks. The timestamp is the current UTC time.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, err := migrationFileName(args[0], nowFunc())
	if err != nil {
		return err
	}

	dir := AppConfig.MigrationsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating migrations directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating migration file %s: %w", path, err)
	}

	if _, err := f.WriteString(parser.Template()); err != nil {
		_ = f.Close()

		return fmt.Errorf("writing migration file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("writing migration file %s: %w", path, err)
	}

	logger().Info("Created migration", zap.String("path", path))
	fmt.Fprintln(cmd.OutOrStdout(), path)

	return nil
}

// migrationFileName turns a free-form description into <timestamp>_<name>.sql.
func migrationFileName(desc string, now time.Time) (string, error) {
	name := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(desc), "_"), "_")
	if name == "" {
		return "", fmt.Errorf("%w: %q", errInvalidName, desc)
	}

	return now.UTC().Format(timestampLayout) + "_" + name + migration.Extension, nil
}
