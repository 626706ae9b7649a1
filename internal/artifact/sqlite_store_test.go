package artifact

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_journal=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteStore_SaveGetList(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	s, err := NewSQLiteStore(db)
	require.NoError(t, err)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveArtifact(&Artifact{
		ID:        "a1",
		Name:      "Orders",
		Version:   "1.0.0",
		Archive:   []byte("zipbytes"),
		CreatedAt: created,
	}))
	require.NoError(t, s.SaveArtifact(&Artifact{
		ID:        "a2",
		Name:      "Employees",
		Version:   "2.1.0",
		Archive:   []byte("more"),
		CreatedAt: created.Add(time.Hour),
	}))

	got, err := s.GetArtifact("a1")
	require.NoError(t, err)
	require.Equal(t, "Orders", got.Name)
	require.Equal(t, "1.0.0", got.Version)
	require.Equal(t, []byte("zipbytes"), got.Archive)
	require.True(t, got.CreatedAt.Equal(created))

	_, err = s.GetArtifact("missing")
	require.True(t, errors.Is(err, ErrArtifactNotFound))

	all, err := s.ListArtifacts(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by creation time.
	require.Equal(t, "a1", all[0].ID)
	require.Equal(t, "a2", all[1].ID)

	filtered, err := s.ListArtifacts(Filter{Name: "Employees"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "a2", filtered[0].ID)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	dsn := "file:" + dbPath + "?_journal=WAL"

	db1, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	s1, err := NewSQLiteStore(db1)
	require.NoError(t, err)
	require.NoError(t, s1.SaveArtifact(&Artifact{
		ID:        "a1",
		Name:      "Orders",
		Version:   "1.0.0",
		Archive:   []byte("zipbytes"),
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, db1.Close())

	// Simulated restart: a fresh store on the same file sees the artifact.
	db2, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db2.Close()

	s2, err := NewSQLiteStore(db2)
	require.NoError(t, err)

	got, err := s2.GetArtifact("a1")
	require.NoError(t, err)
	require.Equal(t, []byte("zipbytes"), got.Archive)
}
