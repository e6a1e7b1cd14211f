package vfs

import (
	"os"
	"path/filepath"
)

// FsMount is a filesystem mount node (spec §4.6): it holds an absolute host path and exposes the host
// directory or file it names through the four Node operations. Nothing is cached across calls — is_directory
// re-stats the host, and children rebuilds the listing from os.ReadDir on every access (spec §5: "mount
// caches are rebuilt on every access and therefore not shared") — so a host-side change is visible on the
// next descent without any invalidation step.
type FsMount struct {
	nodeBase
	hostPath string
}

// NewFsMount creates a mount named name rooted at hostPath on the local filesystem.
func NewFsMount(name, hostPath string) *FsMount {
	return &FsMount{nodeBase: nodeBase{name: name}, hostPath: hostPath}
}

func (m *FsMount) Kind() Kind { return KindMount }

// HostPath returns the absolute host path this mount is rooted at.
func (m *FsMount) HostPath() string { return m.hostPath }

func (m *FsMount) IsDirectory() bool {
	info, err := os.Stat(m.hostPath)
	return err == nil && info.IsDir()
}

// Read streams the host file's bytes; fails on a directory mount.
func (m *FsMount) Read() ([]byte, error) {
	if m.IsDirectory() {
		return nil, &UnsupportedOperationError{Message: "cannot read a mounted directory: " + m.hostPath}
	}
	content, err := os.ReadFile(m.hostPath)
	if err != nil {
		return nil, &ExternalError{Source: "fs mount read " + m.hostPath, Cause: err}
	}
	return content, nil
}

// Write overwrites the host file's bytes; a mounted host directory is read-only through this node (spec
// §4.6: "directories on the host are read-only through this node's own write").
func (m *FsMount) Write(content []byte) error {
	if m.IsDirectory() {
		return &UnsupportedOperationError{Message: "cannot write a mounted directory: " + m.hostPath}
	}
	if err := os.WriteFile(m.hostPath, content, 0o644); err != nil {
		return &ExternalError{Source: "fs mount write " + m.hostPath, Cause: err}
	}
	return nil
}

// Children lists the host directory, constructing one *FsMount child per entry (grandchildren stay
// unexpanded until descended into — the host is never walked deeper than one level per call).
func (m *FsMount) Children() (map[string]Node, error) {
	out := map[string]Node{}
	if !m.IsDirectory() {
		return out, nil
	}
	entries, err := os.ReadDir(m.hostPath)
	if err != nil {
		return nil, &ExternalError{Source: "fs mount readdir " + m.hostPath, Cause: err}
	}
	for _, e := range entries {
		child := NewFsMount(e.Name(), filepath.Join(m.hostPath, e.Name()))
		child.setParentDir(m.parent)
		out[e.Name()] = child
	}
	return out, nil
}
