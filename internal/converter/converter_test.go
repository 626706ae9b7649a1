package converter

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skarpdev/iflowgen/internal/artifact"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// docIndex is a structural view of a serialized document built by token
// scanning: every id attribute, and every flow's source/target refs.
type docIndex struct {
	ids      map[string][]string // id -> element local names carrying it
	seqFlows [][2]string
	msgFlows [][2]string
	refs     [][2]string // (element, ref) for every sourceRef/targetRef
	shapes   map[string]bool
	elements map[string]int // local name -> count
}

func indexDocument(t *testing.T, doc []byte) *docIndex {
	t.Helper()

	idx := &docIndex{
		ids:      make(map[string][]string),
		shapes:   make(map[string]bool),
		elements: make(map[string]int),
	}
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		idx.elements[se.Name.Local]++

		var id, src, tgt, element string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "id":
				id = a.Value
			case "sourceRef":
				src = a.Value
			case "targetRef":
				tgt = a.Value
			case "bpmnElement":
				element = a.Value
			}
		}
		if id != "" {
			idx.ids[id] = append(idx.ids[id], se.Name.Local)
		}
		if src != "" {
			idx.refs = append(idx.refs, [2]string{se.Name.Local, src})
		}
		if tgt != "" {
			idx.refs = append(idx.refs, [2]string{se.Name.Local, tgt})
		}
		switch se.Name.Local {
		case "sequenceFlow":
			idx.seqFlows = append(idx.seqFlows, [2]string{src, tgt})
		case "messageFlow":
			idx.msgFlows = append(idx.msgFlows, [2]string{src, tgt})
		case "BPMNShape":
			idx.shapes[element] = true
		}
	}
	return idx
}

// reachable reports whether target is reachable from source through the
// document's sequence flows.
func (idx *docIndex) reachable(source, target string) bool {
	next := make(map[string][]string)
	for _, f := range idx.seqFlows {
		next[f[0]] = append(next[f[0]], f[1])
	}
	visited := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return true
		}
		for _, n := range next[cur] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

func scenarioGraph() *api.ComponentGraph {
	return &api.ComponentGraph{Endpoints: []api.Endpoint{{
		ID: "e1",
		Components: []api.Component{
			{ID: "c1", Type: "enricher", Name: "Prep"},
			{ID: "c2", Type: "request_reply", Name: "Call",
				Config: map[string]any{"endpoint_path": "/api/x", "method": "POST"}},
		},
		Flow: []string{"c1", "c2"},
	}}}
}

func TestConvert_Scenario(t *testing.T) {
	conv := New()
	res, err := conv.Convert(context.Background(), scenarioGraph(), api.PackageMeta{Name: "Scenario"})
	require.NoError(t, err)

	idx := indexDocument(t, res.XML)

	// Exactly 3 sequence flows with the expected pairs.
	require.Len(t, idx.seqFlows, 3)
	pairs := make(map[[2]string]bool)
	for _, p := range idx.seqFlows {
		pairs[p] = true
	}
	require.True(t, pairs[[2]string{api.StartEventID, "c1"}])
	require.True(t, pairs[[2]string{"c1", "c2"}])
	require.True(t, pairs[[2]string{"c2", api.EndEventID}])

	// One call activity, one service task, one participant/message-flow
	// pair beyond the sender and process participants.
	require.Equal(t, 1, idx.elements["callActivity"])
	require.Equal(t, 1, idx.elements["serviceTask"])
	require.Len(t, idx.msgFlows, 1)

	// Matching diagram shapes.
	for _, id := range []string{api.StartEventID, "c1", "c2", api.EndEventID} {
		require.True(t, idx.shapes[id], "missing shape for %s", id)
	}
	receiver := idx.msgFlows[0][1]
	require.True(t, idx.shapes[receiver], "missing shape for receiver %s", receiver)
}

func TestConvert_StructuralProperties(t *testing.T) {
	// A deliberately messy graph: collision, router, local process,
	// exception subprocess, odata with edmx.
	graph := &api.ComponentGraph{Endpoints: []api.Endpoint{
		{
			ID: "orders",
			Components: []api.Component{
				{ID: "script_1", Type: "script", Name: "First"},
				{ID: "script_1", Type: "script", Name: "Second"},
				{ID: "route", Type: "router", Name: "Route", Config: map[string]any{
					"conditions": []any{
						map[string]any{"condition": "${property.kind} = 'x'", "target": "post"},
					},
				}},
				{ID: "post", Type: "request_reply", Name: "Post",
					Config: map[string]any{"address": "https://erp.example.com"}},
			},
		},
		{
			ID: "employees",
			Components: []api.Component{
				{ID: "fetch", Type: "odata", Name: "Fetch",
					Config: map[string]any{"operation": "GET", "edmx": "<edmx/>"}},
				{ID: "lp", Type: "local_integration_process", Name: "Cleanup"},
				{ID: "exc", Type: "exception_subprocess", Name: "On Error"},
			},
		},
	}}

	conv := New()
	res, err := conv.Convert(context.Background(), graph, api.PackageMeta{Name: "Messy"})
	require.NoError(t, err)

	idx := indexDocument(t, res.XML)

	// Uniqueness: every emitted id appears exactly once.
	for id, carriers := range idx.ids {
		require.Len(t, carriers, 1, "id %s emitted by %v", id, carriers)
	}

	// Reference integrity: every sourceRef/targetRef resolves to an id.
	for _, ref := range idx.refs {
		_, ok := idx.ids[ref[1]]
		require.True(t, ok, "%s references unknown id %q", ref[0], ref[1])
	}

	// Connectivity: a path exists from start to end.
	require.True(t, idx.reachable(api.StartEventID, api.EndEventID))

	// The collision was repaired and reported.
	var collision bool
	for _, d := range res.Diagnostics {
		if d.Kind == api.RepairCollisionID {
			collision = true
		}
	}
	require.True(t, collision, "diagnostics: %+v", res.Diagnostics)

	// Both the main process and the nested local process are present.
	require.GreaterOrEqual(t, idx.elements["process"], 2)

	// Bundled files made it into the package.
	require.Contains(t, res.Package.Files, "src/main/resources/edmx/fetch.edmx")
	require.Contains(t, res.Package.Files, "src/main/resources/script/lp.groovy")
}

func TestConvert_EmptyGraph(t *testing.T) {
	conv := New()
	_, err := conv.Convert(context.Background(), &api.ComponentGraph{}, api.PackageMeta{Name: "X"})
	require.ErrorIs(t, err, api.ErrEmptyGraph)
}

func TestConvertJSON_EndToEnd(t *testing.T) {
	raw := []byte(`{
		"endpoints": [
			{
				"id": "e1",
				"components": [
					{"id": "c1", "type": "groovy_script", "name": "Transform"}
				]
			}
		]
	}`)

	conv := New()
	res, err := conv.ConvertJSON(context.Background(), raw, api.PackageMeta{
		Name:      "From JSON",
		SourceDoc: "# Transforms incoming orders into the canonical format used downstream",
	})
	require.NoError(t, err)

	require.Contains(t, res.Package.Files, "src/main/resources/scenarioflows/integrationflow/From_JSON.iflw")
	require.Contains(t, res.Package.Files, "src/main/resources/script/c1.groovy")
	require.NotEmpty(t, res.Package.Archive)

	meta := string(res.Package.Files["metainfo.prop"])
	require.Contains(t, meta, "description=Transforms incoming orders into the canonical format used downstream")
}

func TestConvertJSON_BadInput(t *testing.T) {
	conv := New()
	_, err := conv.ConvertJSON(context.Background(), []byte("nope"), api.PackageMeta{Name: "X"})
	require.Error(t, err)
}

func TestConvertDocument(t *testing.T) {
	conv := New()
	_, err := conv.ConvertDocument(context.Background(), "doc", api.PackageMeta{Name: "X"})
	require.ErrorIs(t, err, api.ErrNoExtractor)

	conv = New(WithExtractor(api.ExtractorFunc(
		func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
			return scenarioGraph(), nil
		})))
	res, err := conv.ConvertDocument(context.Background(), "# Scenario doc heading", api.PackageMeta{Name: "X"})
	require.NoError(t, err)
	require.Contains(t, string(res.Package.Files["metainfo.prop"]), "Scenario doc heading")

	failing := New(WithExtractor(api.ExtractorFunc(
		func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
			return nil, errors.New("oracle down")
		})))
	_, err = failing.ConvertDocument(context.Background(), "doc", api.PackageMeta{Name: "X"})
	require.Error(t, err)
}

func TestConvert_ArtifactStored(t *testing.T) {
	store := artifact.NewMemoryStore()
	conv := New(WithArtifactStore(store))

	res, err := conv.Convert(context.Background(), scenarioGraph(), api.PackageMeta{
		Name:    "Stored",
		Version: "1.2.3",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ArtifactID)

	a, err := store.GetArtifact(res.ArtifactID)
	require.NoError(t, err)
	require.Equal(t, "Stored", a.Name)
	require.Equal(t, "1.2.3", a.Version)
	require.Equal(t, res.Package.Archive, a.Archive)
}

func TestConvert_ObserverLifecycle(t *testing.T) {
	metrics := &api.BasicMetrics{}
	conv := New(WithObserver(metrics))

	// One unknown component type forces a repair event.
	graph := scenarioGraph()
	graph.Endpoints[0].Components = append(graph.Endpoints[0].Components,
		api.Component{ID: "x", Type: "teleporter", Name: "X"})
	graph.Endpoints[0].Flow = nil

	_, err := conv.Convert(context.Background(), graph, api.PackageMeta{Name: "Observed"})
	require.NoError(t, err)

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.Conversions)
	require.Equal(t, int64(1), snap.EndpointCount)
	require.Greater(t, snap.Repairs, int64(0))
	require.Equal(t, int64(0), snap.Failures)
}

func TestValidateGraph(t *testing.T) {
	g := &api.ComponentGraph{Endpoints: []api.Endpoint{{
		ID: "e1",
		Components: []api.Component{
			{ID: "c1", Name: "C1", Type: "script"},
		},
		SequenceFlows: []api.SequenceFlow{
			{ID: "f1", SourceRef: "c1", TargetRef: "ghost"},
		},
		Flow: []string{"c1", "phantom"},
	}}}

	diags := ValidateGraph(g)
	require.Len(t, diags, 2)
	for _, d := range diags {
		require.Equal(t, api.UnresolvedFlowRef, d.Kind)
		require.Equal(t, "validate", d.Stage)
	}
}
