package vfs

// LibMount is a library mount node (spec §4.6): it holds a handle to a dynamically loaded shared object and
// presents resolved symbols as pseudo-file children. Per spec §9 Open Question (b), concrete symbol
// enumeration is platform-specific and not required: this implementation does not load the shared object
// at all (no dlopen), only records on first access that it was opened, and exposes nothing beyond the
// `_info` pseudo-child.
type LibMount struct {
	nodeBase
	hostPath string
	handle   libHandle
}

// libHandle abstracts the platform dlopen handle so this file stays buildable without cgo; the default build
// never actually dlopens anything (see open), keeping the mount usable (and its `_info` child readable) on
// every platform the rest of the module targets.
type libHandle struct {
	opened bool
	err    error
}

// NewLibMount creates a library mount named name for the shared object at hostPath. The file at hostPath
// is not checked or loaded, neither here nor on later access.
func NewLibMount(name, hostPath string) *LibMount {
	return &LibMount{nodeBase: nodeBase{name: name}, hostPath: hostPath}
}

func (m *LibMount) Kind() Kind        { return KindLibrary }
func (m *LibMount) IsDirectory() bool { return true }

// HostPath returns the shared object's host path.
func (m *LibMount) HostPath() string { return m.hostPath }

// open marks the handle opened on first access and returns any recorded error; it loads nothing, so with
// the default build it always succeeds.
func (m *LibMount) open() error {
	if m.handle.opened || m.handle.err != nil {
		return m.handle.err
	}
	m.handle.opened = true
	return nil
}

// Read reports a one-line summary of the mount's load state, standing in for spec's "symbol info".
func (m *LibMount) Read() ([]byte, error) {
	if err := m.open(); err != nil {
		return nil, &ExternalError{Source: "lib mount " + m.hostPath, Cause: err}
	}
	return []byte("library: " + m.hostPath + "\n"), nil
}

func (m *LibMount) Write(content []byte) error {
	return &UnsupportedOperationError{Message: "cannot write a library mount: " + m.hostPath}
}

// Children exposes the single `_info` pseudo-child; real symbol enumeration is intentionally left empty.
func (m *LibMount) Children() (map[string]Node, error) {
	if err := m.open(); err != nil {
		return nil, &ExternalError{Source: "lib mount " + m.hostPath, Cause: err}
	}
	info := NewFile("_info", []byte(m.hostPath+"\n"))
	info.setParentDir(m.parent)
	return map[string]Node{"_info": info}, nil
}
