package migration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionLayout = "20060102150405"
)

const upStub = `-- Migration: {{.Name}}
-- Version: {{.Version}}
-- Created: {{.Timestamp}}{{if .Description}}
-- {{.Description}}{{end}}

-- Apply schema changes below.

`

const downStub = `-- Migration: {{.Name}} (rollback)
-- Version: {{.Version}}
-- Created: {{.Timestamp}}{{if .Description}}
-- Reverts: {{.Description}}{{end}}

-- Revert schema changes below.

`

var (
	upStubTmpl   = template.Must(template.New("up").Parse(upStub))
	downStubTmpl = template.Must(template.New("down").Parse(downStub))
)

// MigrationFile describes a generated up/down migration pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration generates an empty up/down migration pair under
// migrationsDir, versioned by the current timestamp so golang-migrate
// applies pairs in creation order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	mf := &MigrationFile{
		Version:     now.Format(versionLayout),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}
	base := mf.Version + "_" + sanitizeName(name)
	mf.UpPath = filepath.Join(migrationsDir, base+upSuffix)
	mf.DownPath = filepath.Join(migrationsDir, base+downSuffix)

	if err := writeStub(mf.UpPath, upStubTmpl, mf); err != nil {
		return nil, err
	}
	if err := writeStub(mf.DownPath, downStubTmpl, mf); err != nil {
		// Do not leave a half-created pair behind.
		_ = os.Remove(mf.UpPath)
		return nil, err
	}

	return mf, nil
}

func writeStub(path string, tmpl *template.Template, data *MigrationFile) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render migration stub: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases a migration name and squashes separators into
// single underscores so it is safe inside a file name.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteByte(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of all migration pairs in a
// directory, in version order. A missing directory yields an empty list.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	// os.ReadDir already sorts by file name, so version order falls out of
	// the timestamp prefix.
	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), upSuffix); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
