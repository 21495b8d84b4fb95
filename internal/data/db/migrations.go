package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrationName matches NNNN_name.up.sql and NNNN_name.down.sql.
var migrationName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

type migration struct {
	version int
	name    string
	up      string
	down    string
}

// SchemaStatus describes how far the database schema is migrated.
type SchemaStatus struct {
	Version int // highest applied version, 0 when none
	Latest  int // highest version shipped with the binary
	Pending int
}

// Current reports whether every shipped migration is applied.
func (s SchemaStatus) Current() bool {
	return s.Pending == 0
}

// migrator applies the SQL files in source against conn, tracking applied
// versions in schema_migrations.
type migrator struct {
	conn   *sql.DB
	source fs.FS
}

func newMigrator(conn *sql.DB) *migrator {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err) // embed pattern guarantees the directory
	}
	return &migrator{conn: conn, source: sub}
}

func parseMigrationName(filename string) (version int, name, direction string, err error) {
	m := migrationName.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", "", fmt.Errorf("expected NNNN_name.{up,down}.sql, got %q", filename)
	}
	version, _ = strconv.Atoi(m[1])
	if version == 0 {
		return 0, "", "", fmt.Errorf("version must be positive in %q", filename)
	}
	return version, m[2], m[3], nil
}

// load reads every migration in source, sorted by version. Each version
// needs exactly one up and one down file.
func (m *migrator) load() ([]migration, error) {
	files, err := fs.Glob(m.source, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, file := range files {
		version, name, direction, err := parseMigrationName(file)
		if err != nil {
			return nil, err
		}

		content, err := fs.ReadFile(m.source, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		mg, ok := byVersion[version]
		if !ok {
			mg = &migration{version: version, name: name}
			byVersion[version] = mg
		}
		if mg.name != name {
			return nil, fmt.Errorf("migration %04d has mismatched names %q and %q", version, mg.name, name)
		}

		slot := &mg.up
		if direction == "down" {
			slot = &mg.down
		}
		if *slot != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %04d", direction, version)
		}
		*slot = string(content)
	}

	out := make([]migration, 0, len(byVersion))
	for _, mg := range byVersion {
		if mg.up == "" || mg.down == "" {
			return nil, fmt.Errorf("migration %04d (%s) needs both up and down files", mg.version, mg.name)
		}
		out = append(out, *mg)
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		out[v] = true
	}
	return out, rows.Err()
}

// prepare loads the migrations and the applied set.
func (m *migrator) prepare(ctx context.Context) ([]migration, map[int]bool, error) {
	all, err := m.load()
	if err != nil {
		return nil, nil, err
	}
	if err := m.ensureTable(ctx); err != nil {
		return nil, nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, nil, err
	}
	return all, done, nil
}

// up applies pending migrations in order and returns how many ran.
func (m *migrator) up(ctx context.Context) (int, error) {
	all, done, err := m.prepare(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, mg := range all {
		if done[mg.version] {
			continue
		}

		log.Info().Int("version", mg.version).Str("name", mg.name).Msg("applying migration")
		err := withTx(ctx, m.conn, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mg.up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				mg.version, mg.name, time.Now().UnixNano())
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("migration %04d (%s): %w", mg.version, mg.name, err)
		}
		ran++
	}
	return ran, nil
}

// down reverts the newest n applied migrations.
func (m *migrator) down(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	all, done, err := m.prepare(ctx)
	if err != nil {
		return err
	}

	var revert []migration
	for _, mg := range slices.Backward(all) {
		if done[mg.version] {
			revert = append(revert, mg)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("asked to revert %d migrations but only %d are applied", n, len(revert))
	}

	for _, mg := range revert[:n] {
		log.Info().Int("version", mg.version).Str("name", mg.name).Msg("reverting migration")
		err := withTx(ctx, m.conn, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mg.down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", mg.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", mg.version, mg.name, err)
		}
	}
	return nil
}

func (m *migrator) status(ctx context.Context) (SchemaStatus, error) {
	all, done, err := m.prepare(ctx)
	if err != nil {
		return SchemaStatus{}, err
	}

	var s SchemaStatus
	for _, mg := range all {
		s.Latest = mg.version
		if done[mg.version] {
			s.Version = max(s.Version, mg.version)
		} else {
			s.Pending++
		}
	}
	return s, nil
}

// Schema reports the migration state of the database behind conn.
func Schema(ctx context.Context, conn *sql.DB) (SchemaStatus, error) {
	return newMigrator(conn).status(ctx)
}
