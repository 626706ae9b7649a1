package iflowgen

import (
	"database/sql"

	"github.com/skarpdev/iflowgen/internal/artifact"
	"github.com/skarpdev/iflowgen/internal/converter"
)

// ConversionBundle wires together a Converter and the artifact store it
// records packages in, sharing the same database.
type ConversionBundle struct {
	Converter Converter

	// Artifacts is the store the converter persists packages to. Exposed so
	// callers can list and fetch previously generated packages.
	Artifacts ArtifactStore
}

// NewSQLiteBundle constructs a Converter + artifact store combo sharing the
// same SQLite database.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:iflowgen.db?_journal=WAL")
//	bundle, err := iflowgen.NewSQLiteBundle(db)
//	res, err := bundle.Converter.ConvertJSON(ctx, raw, meta)
//	stored, err := bundle.Artifacts.GetArtifact(res.ArtifactID)
func NewSQLiteBundle(db *sql.DB, opts ...Option) (*ConversionBundle, error) {
	store, err := artifact.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}

	opts = append(opts, converter.WithArtifactStore(store))
	return &ConversionBundle{
		Converter: converter.New(opts...),
		Artifacts: store,
	}, nil
}
