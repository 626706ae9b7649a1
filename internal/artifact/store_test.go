package artifact

import (
	"testing"
	"time"
)

func TestMemoryStore_SaveGetList(t *testing.T) {
	s := NewMemoryStore()

	a := &Artifact{
		ID:        "a1",
		Name:      "Orders",
		Version:   "1.0.0",
		Archive:   []byte{1, 2, 3},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveArtifact(a); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetArtifact("a1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Orders" || len(got.Archive) != 3 {
		t.Fatalf("unexpected artifact: %+v", got)
	}

	// The store keeps its own copy.
	a.Archive[0] = 99
	got, _ = s.GetArtifact("a1")
	if got.Archive[0] == 99 {
		t.Fatalf("stored archive aliases the caller's slice")
	}

	if _, err := s.GetArtifact("missing"); err != ErrArtifactNotFound {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}

	_ = s.SaveArtifact(&Artifact{ID: "a2", Name: "Other", CreatedAt: time.Now().UTC()})

	all, err := s.ListArtifacts(Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(all))
	}

	byName, err := s.ListArtifacts(Filter{Name: "Orders"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "a1" {
		t.Fatalf("filter by name wrong: %+v", byName)
	}
}
