package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func tableExists(t *testing.T, conn *sql.DB, table string) bool {
	t.Helper()
	_, err := conn.ExecContext(context.Background(), "SELECT 1 FROM "+table+" LIMIT 0")
	return err == nil
}

func TestOpen_AppliesAllMigrations(t *testing.T) {
	database := openTestDB(t)

	for _, table := range []string{"notifications", "kv_store", "reviews"} {
		assert.True(t, tableExists(t, database.Conn(), table), "%s table should exist", table)
	}

	status, err := Schema(context.Background(), database.Conn())
	require.NoError(t, err)
	assert.True(t, status.Current())
	assert.Equal(t, status.Latest, status.Version)
	assert.Equal(t, 3, status.Latest)
}

func TestOpen_ZeroOptionsUseDefaults(t *testing.T) {
	database, err := Open(t.TempDir(), OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	assert.Equal(t, DefaultOpenOptions().MaxOpenConns, database.Conn().Stats().MaxOpenConnections)
}

func TestMigrator_UpIdempotent(t *testing.T) {
	database := openTestDB(t)

	ran, err := newMigrator(database.Conn()).up(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ran, "second run applies nothing")
}

func TestMigrator_Down(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	conn := database.Conn()
	m := newMigrator(conn)

	_, err := conn.ExecContext(ctx,
		"INSERT INTO notifications (level, message, created_at) VALUES ('info', 'kept', 1)")
	require.NoError(t, err)

	require.NoError(t, m.down(ctx, 1))
	assert.False(t, tableExists(t, conn, "reviews"))

	status, err := Schema(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, SchemaStatus{Version: 2, Latest: 3, Pending: 1}, status)

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&count))
	assert.Equal(t, 1, count)

	ran, err := m.up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.True(t, tableExists(t, conn, "reviews"))
}

func TestMigrator_DownInvalid(t *testing.T) {
	conn := openRawConn(t)
	m := newMigrator(conn)
	ctx := context.Background()

	require.Error(t, m.down(ctx, 0))
	require.Error(t, m.down(ctx, -1))
	require.Error(t, m.down(ctx, 1), "nothing applied yet")
}

func TestMigrator_Load(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted pairs",
			files: fstest.MapFS{
				"0002_b.up.sql":   {Data: []byte("b")},
				"0002_b.down.sql": {Data: []byte("-b")},
				"0001_a.up.sql":   {Data: []byte("a")},
				"0001_a.down.sql": {Data: []byte("-a")},
			},
			want: []int{1, 2},
		},
		{
			name:    "missing down",
			files:   fstest.MapFS{"0001_a.up.sql": {Data: []byte("a")}},
			wantErr: "needs both up and down",
		},
		{
			name: "mismatched names",
			files: fstest.MapFS{
				"0001_a.up.sql":   {Data: []byte("a")},
				"0001_z.down.sql": {Data: []byte("-a")},
			},
			wantErr: "mismatched names",
		},
		{
			name:    "bad filename",
			files:   fstest.MapFS{"initial.sql": {Data: []byte("a")}},
			wantErr: "expected NNNN_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &migrator{source: tt.files}
			got, err := m.load()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			versions := make([]int, len(got))
			for i, mg := range got {
				versions[i] = mg.version
			}
			assert.Equal(t, tt.want, versions)
		})
	}
}

func TestMigrator_LoadEmbedded(t *testing.T) {
	all, err := newMigrator(nil).load()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	for _, mg := range all {
		assert.NotEmpty(t, mg.up, "migration %d up", mg.version)
		assert.NotEmpty(t, mg.down, "migration %d down", mg.version)
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		filename      string
		wantVersion   int
		wantName      string
		wantDirection string
		wantErr       bool
	}{
		{"0001_notifications.up.sql", 1, "notifications", "up", false},
		{"0003_reviews.down.sql", 3, "reviews", "down", false},
		{"0100_big_version.up.sql", 100, "big_version", "up", false},
		{"bad.sql", 0, "", "", true},
		{"0001_initial.sql", 0, "", "", true},
		{"0000_zero.up.sql", 0, "", "", true},
		{"abcd_notnumber.up.sql", 0, "", "", true},
		{"0001_.up.sql", 0, "", "", true},
		{"1_short.up.sql", 0, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, direction, err := parseMigrationName(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantDirection, direction)
		})
	}
}
