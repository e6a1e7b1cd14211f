package vfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestListDirMergesAcrossOverlays(t *testing.T) {
	stack := NewOverlayStack()
	base, err := stack.Register("lower")
	if err != nil {
		t.Fatal(err)
	}
	feature, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}

	if err := Mkdir(stack, base.ID, "/proj"); err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, base.ID, "/proj/a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, feature.ID, "/proj/b.txt"); err != nil {
		t.Fatal(err)
	}

	entries, err := listDir(stack, []int{base.ID, feature.ID}, "/proj")
	if err != nil {
		t.Fatal(err)
	}

	want := []DirEntry{
		{Name: "a.txt", Kind: KindFile, Overlays: []int{base.ID}},
		{Name: "b.txt", Kind: KindFile, Overlays: []int{feature.ID}},
	}
	if diff := cmp.Diff(want, entries, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("listDir mismatch (-want +got):\n%s", diff)
	}
}

func TestListDirConflictingKinds(t *testing.T) {
	stack := NewOverlayStack()
	base, err := stack.Register("lower")
	if err != nil {
		t.Fatal(err)
	}
	feature, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}

	if err := Mkdir(stack, base.ID, "/proj"); err != nil {
		t.Fatal(err)
	}
	if err := Mkdir(stack, feature.ID, "/proj"); err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, base.ID, "/proj/x"); err != nil {
		t.Fatal(err)
	}
	if err := Mkdir(stack, feature.ID, "/proj/x"); err != nil {
		t.Fatal(err)
	}

	entries, err := listDir(stack, []int{base.ID, feature.ID}, "/proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Kind != KindConflict {
		t.Fatalf("expected a single conflicting entry, got %+v", entries)
	}
}

func TestSelectOverlayManualPolicyConflict(t *testing.T) {
	stack := NewOverlayStack()
	base, err := stack.Register("lower")
	if err != nil {
		t.Fatal(err)
	}
	feature, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, base.ID, "/f.txt"); err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, feature.ID, "/f.txt"); err != nil {
		t.Fatal(err)
	}

	_, _, err = resolve(stack, []int{base.ID, feature.ID}, "/f.txt", ConflictManual, 9999)
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("expected *ConflictError when primary isn't among the candidates, got %v (%T)", err, err)
	}

	id, _, err := resolve(stack, []int{base.ID, feature.ID}, "/f.txt", ConflictManual, feature.ID)
	if err != nil {
		t.Fatal(err)
	}
	if id != feature.ID {
		t.Fatalf("expected resolve to pick the primary overlay %d, got %d", feature.ID, id)
	}
}

func TestSelectOverlayOldestNewestPolicy(t *testing.T) {
	stack := NewOverlayStack()
	base, err := stack.Register("lower")
	if err != nil {
		t.Fatal(err)
	}
	feature, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, base.ID, "/f.txt"); err != nil {
		t.Fatal(err)
	}
	if err := Touch(stack, feature.ID, "/f.txt"); err != nil {
		t.Fatal(err)
	}

	id, _, err := resolve(stack, []int{base.ID, feature.ID}, "/f.txt", ConflictOldest, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id != base.ID {
		t.Fatalf("expected oldest policy to pick overlay %d, got %d", base.ID, id)
	}

	id, _, err = resolve(stack, []int{base.ID, feature.ID}, "/f.txt", ConflictNewest, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id != feature.ID {
		t.Fatalf("expected newest policy to pick overlay %d, got %d", feature.ID, id)
	}
}
