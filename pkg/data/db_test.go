package data

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymetrics/irtsim/pkg/sim"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Init(dbPath))
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func generateTestStudy(t *testing.T, mod func(s *sim.Scenario)) *sim.Study {
	t.Helper()
	s := sim.Scenario{
		Name:       "test",
		Items:      4,
		Persons:    12,
		Categories: 4,
		Sigma:      1,
		Seed:       7,
	}
	if mod != nil {
		mod(&s)
	}
	st, err := sim.Generate(context.Background(), s)
	require.NoError(t, err)
	return st
}

func TestInit_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Init(dbPath))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	require.Error(t, Init(""))
}

func TestInit_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Init(dbPath))
	require.NoError(t, Init(dbPath))
}
