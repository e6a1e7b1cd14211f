package vfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionMountFsAndUnmount(t *testing.T) {
	s := NewSession(nil)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.MountFs(nil, "/host", dir); err != nil {
		t.Fatal(err)
	}
	entries, err := s.ListDir("/host")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "f.txt" {
		t.Fatalf("expected one entry f.txt, got %+v", entries)
	}
	if len(s.Mounts.List()) != 1 {
		t.Fatalf("expected one tracked mount, got %d", len(s.Mounts.List()))
	}

	if err := s.Unmount(nil, "/host"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resolve("/host"); err == nil {
		t.Fatal("expected /host to be gone after unmount")
	}
	if len(s.Mounts.List()) != 0 {
		t.Fatalf("expected no tracked mounts after unmount, got %d", len(s.Mounts.List()))
	}
}

func TestSessionMountDeniedByPolicy(t *testing.T) {
	s := NewSession(nil)
	s.Mounts.SetAllowed(false)

	err := s.MountFs(nil, "/host", t.TempDir())
	if err == nil {
		t.Fatal("expected mounting to be denied")
	}
	if _, ok := err.(*PermissionDeniedError); !ok {
		t.Fatalf("expected *PermissionDeniedError, got %T", err)
	}
}

func TestSessionMountLib(t *testing.T) {
	s := NewSession(nil)
	if err := s.MountLib(nil, "/lib", "/opt/libfoo.so"); err != nil {
		t.Fatal(err)
	}
	n, _, err := s.Resolve("/lib")
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind() != KindLibrary {
		t.Fatalf("expected KindLibrary, got %v", n.Kind())
	}
}
