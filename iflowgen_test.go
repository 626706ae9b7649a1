package iflowgen

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

func TestGraphBuilder_BuildAndConvert(t *testing.T) {
	conv := NewConverter()

	builder := NewGraph().
		Endpoint("orders", "Orders").
		ContentModifier("prep", "Prepare").
		Script("transform", "Transform", "println 'x'").
		RequestReply("post", "Post", "https://erp.example.com/orders").
		Flow("prep", "transform", "post")

	graph := builder.Graph()
	if len(graph.Endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(graph.Endpoints))
	}
	if len(graph.Endpoints[0].Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(graph.Endpoints[0].Components))
	}

	res, err := builder.Convert(context.Background(), conv, PackageMeta{Name: "Orders"})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if res.Package.Name != "Orders" {
		t.Fatalf("unexpected package name %q", res.Package.Name)
	}
	if _, ok := res.Package.Files["src/main/resources/script/transform.groovy"]; !ok {
		t.Fatalf("script file missing from package")
	}
	if string(res.Package.Files["src/main/resources/script/transform.groovy"]) != "println 'x'" {
		t.Fatalf("script content lost")
	}
}

func TestGraphBuilder_PanicsWithoutEndpoint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when adding a component before an endpoint")
		}
	}()
	NewGraph().Script("s", "S", "")
}

func TestGraphBuilder_MultipleEndpoints(t *testing.T) {
	graph := NewGraph().
		Endpoint("a", "A").
		Script("s1", "S1", "").
		Endpoint("b", "B").
		Script("s2", "S2", "").
		Graph()

	if len(graph.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(graph.Endpoints))
	}
	if len(graph.Endpoints[0].Components) != 1 || graph.Endpoints[0].Components[0].ID != "s1" {
		t.Fatalf("components attached to wrong endpoint: %+v", graph.Endpoints)
	}
}

func TestSQLiteBundle_RecordsArtifacts(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "iflowgen.db")
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_journal=WAL")
	require.NoError(t, err)
	defer db.Close()

	bundle, err := NewSQLiteBundle(db)
	require.NoError(t, err)

	res, err := NewGraph().
		Endpoint("orders", "Orders").
		Script("s1", "Transform", "").
		Convert(context.Background(), bundle.Converter, PackageMeta{Name: "Orders", Version: "1.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.ArtifactID)

	stored, err := bundle.Artifacts.GetArtifact(res.ArtifactID)
	require.NoError(t, err)
	require.Equal(t, "Orders", stored.Name)
	require.Equal(t, "1.0.1", stored.Version)
	require.Equal(t, res.Package.Archive, stored.Archive)

	all, err := bundle.Artifacts.ListArtifacts(ArtifactFilter{Name: "Orders"})
	require.NoError(t, err)
	require.Len(t, all, 1)
}
