package vfs

import "testing"

func TestLibMountInfoChild(t *testing.T) {
	m := NewLibMount("libfoo", "/opt/libfoo.so")

	children, err := m.Children()
	if err != nil {
		t.Fatal(err)
	}
	info, ok := children["_info"]
	if !ok {
		t.Fatal("expected an _info pseudo-child")
	}
	content, err := info.Read()
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "/opt/libfoo.so\n" {
		t.Fatalf("unexpected _info content: %q", content)
	}

	if err := m.Write([]byte("x")); err == nil {
		t.Fatal("expected write to a library mount to fail")
	}
}

func TestLibMountIsDirectory(t *testing.T) {
	m := NewLibMount("libfoo", "/opt/libfoo.so")
	if !m.IsDirectory() {
		t.Fatal("expected library mount to report as directory-like")
	}
}
