package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAutosaveForceSave(t *testing.T) {
	stack := NewOverlayStack()
	ov, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}
	if err := Mkdir(stack, ov.ID, "/x"); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "feature.vfs")
	ov.setSource(path)

	engine := NewAutosaveEngine(stack, dir)
	if err := engine.ForceSave(ov.ID); err != nil {
		t.Fatal(err)
	}
	if ov.Dirty() {
		t.Fatal("expected overlay to be clean after ForceSave")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected container file to exist: %v", err)
	}
}

func TestAutosaveForceSaveUnboundOverlay(t *testing.T) {
	stack := NewOverlayStack()
	ov, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}
	engine := NewAutosaveEngine(stack, t.TempDir())
	if err := engine.ForceSave(ov.ID); err == nil {
		t.Fatal("expected an error saving an overlay with no bound source")
	}
}

func TestAutosaveTickDebouncesAndSnapshots(t *testing.T) {
	stack := NewOverlayStack()
	ov, err := stack.Register("feature")
	if err != nil {
		t.Fatal(err)
	}
	if err := Mkdir(stack, ov.ID, "/x"); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "feature.vfs")
	ov.setSource(srcPath)
	ov.markDirty()

	engine := NewAutosaveEngine(stack, dir)
	engine.Track(ov.ID)
	engine.SetDebounce(0)
	engine.SetRecoveryInterval(0)

	now := time.Unix(1000, 0)
	engine.nowFunc = func() time.Time { return now }
	engine.lastModification = now.Add(-time.Hour)
	engine.lastRecovery = now.Add(-time.Hour)

	engine.tick()

	if ov.Dirty() {
		t.Fatal("expected the dirty overlay to be saved and marked clean by tick")
	}
	if _, err := os.Stat(srcPath); err != nil {
		t.Fatalf("expected autosave to have written the overlay: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".vfsh", "recovery.vfs")); err != nil {
		t.Fatalf("expected a recovery snapshot: %v", err)
	}
}

func TestAutosaveStartStop(t *testing.T) {
	stack := NewOverlayStack()
	engine := NewAutosaveEngine(stack, t.TempDir())
	engine.Start(context.Background())
	if !engine.Enabled() {
		t.Fatal("expected engine to report enabled after Start")
	}
	engine.Stop()
	if engine.Enabled() {
		t.Fatal("expected engine to report disabled after Stop")
	}
}
