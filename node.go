// Package vfs implements an overlay-structured, in-memory virtual filesystem whose leaves are either
// plain byte blobs, typed abstract-syntax-tree nodes, or lazy host/library/remote mounts, all addressed by
// one path namespace. See SPEC_FULL.md for the full design.
package vfs

import (
	"strings"
)

// Kind identifies which of the closed set of Node variants a given Node is. Every operation of Node is
// defined for every Kind, even if some combinations always fail with UnsupportedOperationError (for
// example, Dir's Read and Write).
type Kind uint8

const (
	KindDir Kind = iota
	KindFile
	KindAst
	KindMount
	KindLibrary
)

// String renders the single-character code used by listDir's type-disagreement marker ('d','f','a','m','l').
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "d"
	case KindFile:
		return "f"
	case KindAst:
		return "a"
	case KindMount:
		return "m"
	case KindLibrary:
		return "l"
	default:
		return "!"
	}
}

// A Node is the universal unit of the tree. Every node has a name (its final path component), a weak
// back-reference to its parent, and a Kind. Non-applicable operations fail with a typed error rather than
// panicking — a Dir's Read fails with *UnsupportedOperationError, not an index-out-of-range.
type Node interface {
	// Name returns the final path component under which this node is registered in its parent's Children.
	Name() string

	// Kind returns the closed-set variant discriminator.
	Kind() Kind

	// Parent returns the directory this node is attached under, or nil for an overlay root.
	Parent() *Dir

	// IsDirectory reports whether Children returns a meaningful (possibly lazily populated) map.
	IsDirectory() bool

	// Read serializes this node's content to bytes. Directories always fail.
	Read() ([]byte, error)

	// Write replaces this node's content from bytes. Directories always fail.
	Write(content []byte) error

	// Children returns the name-to-node mapping owned or lazily produced by this node. Leaves that do not
	// expose children (plain File, most Mount/Library pseudo-entries) return an empty, non-nil map.
	Children() (map[string]Node, error)
}

// setParent is implemented by every concrete Node so the tree can maintain the "every non-root node's
// parent is the directory whose Children maps node.Name() to it" invariant when nodes are attached, moved,
// or aliased.
type setParent interface {
	setParentDir(d *Dir)
}

// nodeBase is embedded by every concrete Node and carries the name/parent bookkeeping shared by all of
// them, mirroring the teacher's habit of factoring identical plumbing into a small embeddable struct.
type nodeBase struct {
	name   string
	parent *Dir
}

func (n *nodeBase) Name() string        { return n.name }
func (n *nodeBase) Parent() *Dir        { return n.parent }
func (n *nodeBase) setParentDir(d *Dir) { n.parent = d }
func (n *nodeBase) setName(name string) { n.name = name }

// renamer is implemented by every concrete Node via its embedded nodeBase; mv uses it to update a node's
// own name when it is moved to a destination with a different basename.
type renamer interface {
	setName(name string)
}

// Dir is a directory node: an ordered-insertion-irrelevant mapping from unique child name to child Node.
type Dir struct {
	nodeBase
	children map[string]Node
}

// NewDir creates a detached, empty directory named name. Attach it to a parent with Dir.Add or via a
// mutation helper such as Session.AddNode.
func NewDir(name string) *Dir {
	return &Dir{nodeBase: nodeBase{name: name}, children: make(map[string]Node)}
}

func (d *Dir) Kind() Kind          { return KindDir }
func (d *Dir) IsDirectory() bool   { return true }

func (d *Dir) Read() ([]byte, error) {
	return nil, &UnsupportedOperationError{Message: "cannot read a directory: " + d.name}
}

func (d *Dir) Write(content []byte) error {
	return &UnsupportedOperationError{Message: "cannot write a directory: " + d.name}
}

func (d *Dir) Children() (map[string]Node, error) {
	out := make(map[string]Node, len(d.children))
	for k, v := range d.children {
		out[k] = v
	}
	return out, nil
}

// ChildByName returns the direct child named name, or nil if none exists.
func (d *Dir) ChildByName(name string) Node {
	if d.children == nil {
		return nil
	}
	return d.children[name]
}

// Add attaches child under name, detaching any previous child with that name. It sets child's parent to d.
func (d *Dir) Add(name string, child Node) {
	if d.children == nil {
		d.children = make(map[string]Node)
	}
	d.children[name] = child
	if sp, ok := child.(setParent); ok {
		sp.setParentDir(d)
	}
}

// Remove detaches and returns the child named name, or nil if none existed.
func (d *Dir) Remove(name string) Node {
	if d.children == nil {
		return nil
	}
	child, ok := d.children[name]
	if !ok {
		return nil
	}
	delete(d.children, name)
	return child
}

// Names returns the child names of d, in no particular order.
func (d *Dir) Names() []string {
	out := make([]string, 0, len(d.children))
	for k := range d.children {
		out = append(out, k)
	}
	return out
}

// File is a plain byte-blob node. Read and Write delegate trivially to an in-memory slice.
type File struct {
	nodeBase
	content []byte
}

// NewFile creates a detached file named name holding content.
func NewFile(name string, content []byte) *File {
	return &File{nodeBase: nodeBase{name: name}, content: content}
}

func (f *File) Kind() Kind        { return KindFile }
func (f *File) IsDirectory() bool { return false }

func (f *File) Read() ([]byte, error) {
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

func (f *File) Write(content []byte) error {
	f.content = append([]byte(nil), content...)
	return nil
}

func (f *File) Children() (map[string]Node, error) {
	return map[string]Node{}, nil
}

// Container is implemented by any Node that can hold named structural children reachable by path descent,
// in addition to whatever Children already reports. Dir is the obvious example, but several Ast nodes
// (a C++ translation unit holding functions, a function holding its body) are simultaneously resident
// VFS nodes and containers: resolver path descent treats anything satisfying Container the same way it
// treats a Dir, regardless of Kind.
type Container interface {
	Node
	AddChild(name string, child Node) error
	RemoveChild(name string) (Node, error)
}

// AddChild attaches child under name, detaching any previous child with that name, and returns nil: Dir
// never rejects a child.
func (d *Dir) AddChild(name string, child Node) error {
	d.Add(name, child)
	return nil
}

// RemoveChild detaches and returns the child named name, or a *NotFoundError if none existed.
func (d *Dir) RemoveChild(name string) (Node, error) {
	child := d.Remove(name)
	if child == nil {
		return nil, &NotFoundError{Path: name}
	}
	return child, nil
}

// pathOf reconstructs the absolute path of n by walking Parent() pointers to the overlay root. Nothing in
// the package calls it; fixup errors and conflict listings carry paths computed during traversal instead.
func pathOf(n Node) string {
	var segs []string
	for cur := n; cur != nil; {
		if cur.Parent() == nil {
			break
		}
		segs = append([]string{cur.Name()}, segs...)
		cur = cur.Parent()
	}
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}
