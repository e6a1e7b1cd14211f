package vfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFsMountReadAndChildren(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewFsMount("host", dir)
	if !m.IsDirectory() {
		t.Fatal("expected directory mount")
	}

	children, err := m.Children()
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	fileChild, ok := children["a.txt"].(*FsMount)
	if !ok {
		t.Fatal("expected a.txt child to be an *FsMount")
	}
	content, err := fileChild.Read()
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", content)
	}

	if _, err := m.Read(); err == nil {
		t.Fatal("expected error reading a directory mount")
	}
	if err := m.Write([]byte("x")); err == nil {
		t.Fatal("expected error writing a directory mount")
	}
}

func TestFsMountWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewFsMount("b.txt", path)
	if err := m.Write([]byte("new")); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "new" {
		t.Fatalf("expected %q, got %q", "new", content)
	}
}
