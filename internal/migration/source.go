package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file suffix of migration files.
const Extension = ".sql"

// Source reads migration files from the top level of a file system.
type Source struct {
	fsys fs.FS
	dir  string
}

// NewSource returns a Source over fsys. dir is only used in messages.
func NewSource(fsys fs.FS, dir string) *Source {
	return &Source{fsys: fsys, dir: dir}
}

// NewDirSource returns a Source reading the directory dir on disk.
func NewDirSource(dir string) *Source {
	return NewSource(os.DirFS(dir), dir)
}

// Dir returns the directory the source was created for.
func (s *Source) Dir() string {
	return s.dir
}

// List returns every migration identifier in lexicographic order.
// Subdirectories and files without the .sql extension are skipped.
func (s *Source) List() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSourceUnreadable, s.dir, err)
	}

	seen := make(map[string]string, len(entries))
	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isMigrationFile(entry.Name()) {
			continue
		}

		name := entry.Name()

		folded := strings.ToLower(name)
		if prev, ok := seen[folded]; ok {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateIdentifier, prev, name)
		}

		seen[folded] = name
		ids = append(ids, name)
	}

	sort.Strings(ids)

	return ids, nil
}

// Read returns the raw contents of the migration file id.
func (s *Source) Read(id string) (string, error) {
	if id == "" || id != path.Base(id) || !isMigrationFile(id) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	data, err := fs.ReadFile(s.fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return "", fmt.Errorf("%w: reading %s: %w", ErrSourceUnreadable, id, err)
	}

	return string(data), nil
}

// Load reads and parses the migration file id.
func (s *Source) Load(id string) (Migration, error) {
	raw, err := s.Read(id)
	if err != nil {
		return Migration{}, err
	}

	m, err := FromText(id, raw)
	if err != nil {
		return Migration{}, err
	}

	m.Path = filepath.Join(s.dir, id)

	return m, nil
}

func isMigrationFile(name string) bool {
	return strings.EqualFold(path.Ext(name), Extension)
}
