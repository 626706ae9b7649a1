package artifact

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLiteStore is a Store backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			archive BLOB,
			created_at TEXT NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveArtifact(a *Artifact) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO artifacts (id, name, version, archive, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID,
		a.Name,
		a.Version,
		a.Archive,
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetArtifact(id string) (*Artifact, error) {
	row := s.db.QueryRow(`
		SELECT id, name, version, archive, created_at
		FROM artifacts
		WHERE id = ?`,
		id,
	)

	a, err := scanArtifact(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *SQLiteStore) ListArtifacts(filter Filter) ([]*Artifact, error) {
	query := `
		SELECT id, name, version, archive, created_at
		FROM artifacts`
	var args []any
	var clauses []string

	if filter.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, filter.Name)
	}

	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}
	query = query + " ORDER BY created_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func scanArtifact(scan func(dest ...any) error) (*Artifact, error) {
	var a Artifact
	var createdAt string

	if err := scan(&a.ID, &a.Name, &a.Version, &a.Archive, &createdAt); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = ts
	return &a, nil
}
