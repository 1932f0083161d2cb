package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func schemaVersion(t *testing.T, sqlDB *sql.DB) int {
	t.Helper()
	var version int
	require.NoError(t, sqlDB.QueryRow(`SELECT version FROM schema_version`).Scan(&version))
	return version
}

func hasTable(sqlDB *sql.DB, name string) bool {
	var got string
	err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&got)
	return err == nil
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name        string
		migrations  []string
		passes      int
		wantErr     bool
		wantVersion int
		wantTables  []string
		noTables    []string
	}{
		{
			name:       "no migrations",
			passes:     1,
			wantTables: []string{"schema_version"},
			noTables:   []string{"runs"},
		},
		{
			name:        "applies in order",
			migrations:  []string{`CREATE TABLE a (id INTEGER PRIMARY KEY)`, `CREATE TABLE b (a_id INTEGER REFERENCES a(id))`},
			passes:      1,
			wantVersion: 2,
			wantTables:  []string{"a", "b"},
		},
		{
			name:        "second pass is a no-op",
			migrations:  []string{`CREATE TABLE once (id INTEGER PRIMARY KEY)`},
			passes:      2,
			wantVersion: 1,
			wantTables:  []string{"once"},
		},
		{
			name:        "stops at a broken migration",
			migrations:  []string{`CREATE TABLE kept (id INTEGER PRIMARY KEY)`, `CREATE TABBLE broken`, `CREATE TABLE never (id INTEGER)`},
			passes:      1,
			wantErr:     true,
			wantVersion: 1,
			wantTables:  []string{"kept"},
			noTables:    []string{"never"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := All
			t.Cleanup(func() { All = orig })
			All = tt.migrations

			sqlDB := openTestDB(t)
			var err error
			for i := 0; i < tt.passes; i++ {
				err = Migrate(sqlDB)
			}
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantVersion, schemaVersion(t, sqlDB))
			for _, name := range tt.wantTables {
				assert.True(t, hasTable(sqlDB, name), name)
			}
			for _, name := range tt.noTables {
				assert.False(t, hasTable(sqlDB, name), name)
			}
		})
	}
}

func TestMigrate_HistorySchema(t *testing.T) {
	sqlDB := openTestDB(t)
	require.NoError(t, Migrate(sqlDB))

	assert.Equal(t, len(All), schemaVersion(t, sqlDB))
	assert.True(t, hasTable(sqlDB, "runs"))
	assert.True(t, hasTable(sqlDB, "step_results"))
}

func TestOpen_EnforcesRunReference(t *testing.T) {
	sqlDB, err := Open(filepath.Join(t.TempDir(), "cuke.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	orphan := &RunLog{db: sqlDB, ID: "no-such-run"}
	assert.Error(t, orphan.RecordStep(StepResult{File: "a.feature", Line: 3, Status: "passed"}))
}
