package vfs

// Every function in this file implements one of spec §4.5's mutation operations. Each takes an explicit
// overlay id and operates only on that overlay's tree; none consult the working directory or conflict
// policy, which are purely a resolver/shell concern layered on top (see Session's wrappers).

// resolveContainer resolves path within ov and requires the result to be a Container (a Dir or a
// directory-like Ast node), failing with *UsageError otherwise.
func resolveContainer(ov *Overlay, path string) (Container, error) {
	n, err := resolveForOverlay(ov, path)
	if err != nil {
		return nil, err
	}
	c, ok := n.(Container)
	if !ok {
		return nil, &UsageError{Message: path + " is not a directory"}
	}
	return c, nil
}

// ensureDir walks comps from root, creating a Dir for any missing component and descending into whatever
// is already there, failing with *UsageError the moment an existing component is not a Container. It is
// the shared intermediate-directory-creation step behind Mkdir, Touch, Write, and AddNode.
func ensureDir(root Node, comps []string) (Container, error) {
	cur, ok := root.(Container)
	if !ok {
		return nil, &UsageError{Message: "overlay root is not a directory"}
	}
	for _, name := range comps {
		children, err := cur.Children()
		if err != nil {
			return nil, err
		}
		child, exists := children[name]
		if !exists {
			nd := NewDir(name)
			if err := cur.AddChild(name, nd); err != nil {
				return nil, err
			}
			cur = nd
			continue
		}
		next, ok := child.(Container)
		if !ok {
			return nil, &UsageError{Message: name + " exists and is not a directory"}
		}
		cur = next
	}
	return cur, nil
}

// Mkdir creates path and any missing intermediate directories in overlay id's tree. Calling it twice on
// the same path is a no-op (ensureDir simply descends into the existing directory).
func Mkdir(stack *OverlayStack, id int, path string) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	if _, err := ensureDir(ov.Root, Split(path)); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// Touch ensures path's parent directory exists and that path itself is a File, creating an empty one if
// absent. It fails if a non-File node already exists there.
func Touch(stack *OverlayStack, id int, path string) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	comps := Split(path)
	if len(comps) == 0 {
		return &UsageError{Message: "cannot touch \"/\""}
	}
	parent, err := ensureDir(ov.Root, comps[:len(comps)-1])
	if err != nil {
		return err
	}
	name := comps[len(comps)-1]
	children, err := parent.Children()
	if err != nil {
		return err
	}
	if existing, ok := children[name]; ok {
		if _, ok := existing.(*File); !ok {
			return &UsageError{Message: name + " exists and is not a file"}
		}
	} else if err := parent.AddChild(name, NewFile(name, nil)); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// WriteNode ensures path's parent exists, creating a File there if path itself is absent, and delegates
// content to the target node's Write — which must be a File or an Ast variant.
func WriteNode(stack *OverlayStack, id int, path string, content []byte) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	comps := Split(path)
	if len(comps) == 0 {
		return &UsageError{Message: "cannot write \"/\""}
	}
	parent, err := ensureDir(ov.Root, comps[:len(comps)-1])
	if err != nil {
		return err
	}
	name := comps[len(comps)-1]
	children, err := parent.Children()
	if err != nil {
		return err
	}
	target, ok := children[name]
	if !ok {
		target = NewFile(name, nil)
		if err := parent.AddChild(name, target); err != nil {
			return err
		}
	} else if target.Kind() != KindFile && target.Kind() != KindAst {
		return &UsageError{Message: name + " is not writable"}
	}
	if err := target.Write(content); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// ReadPath reads path. If overlayID is non-nil, that overlay's node must exist and be readable; otherwise
// the path is resolved across overlayIDs under policy/primary and the winning node is read.
func ReadPath(stack *OverlayStack, overlayIDs []int, path string, overlayID *int, policy ConflictPolicy, primary int) ([]byte, error) {
	if overlayID != nil {
		ov, err := selectOverlayForWrite(stack, *overlayID)
		if err != nil {
			return nil, err
		}
		n, err := resolveForOverlay(ov, path)
		if err != nil {
			return nil, err
		}
		return n.Read()
	}
	n, _, err := resolve(stack, overlayIDs, path, policy, primary)
	if err != nil {
		return nil, err
	}
	return n.Read()
}

// AddNode places a preconstructed node under dirPath in overlay id's tree, creating missing intermediate
// directories first. Used by the container reader, AST builders, and the S-expression/C++ bridges.
func AddNode(stack *OverlayStack, id int, dirPath string, node Node) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	parent, err := ensureDir(ov.Root, Split(dirPath))
	if err != nil {
		return err
	}
	if err := parent.AddChild(node.Name(), node); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// Rm detaches path from its parent's children in overlay id's tree. It always fails on "/".
func Rm(stack *OverlayStack, id int, path string) error {
	comps := Split(path)
	if len(comps) == 0 {
		return &UsageError{Message: "cannot remove \"/\""}
	}
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	parent, err := resolveContainer(ov, Dir(path))
	if err != nil {
		return err
	}
	if _, err := parent.RemoveChild(Base(path)); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// Mv resolves src in overlay id, detaches it from its current parent, ensures dst's parent directory
// exists, renames the node if dst's basename differs from src's, and reattaches it there.
func Mv(stack *OverlayStack, id int, src, dst string) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	srcParent, err := resolveContainer(ov, Dir(src))
	if err != nil {
		return err
	}
	node, err := srcParent.RemoveChild(Base(src))
	if err != nil {
		return err
	}
	dstParent, err := ensureDir(ov.Root, Split(Dir(dst)))
	if err != nil {
		return err
	}
	name := Base(dst)
	if r, ok := node.(renamer); ok {
		r.setName(name)
	}
	if err := dstParent.AddChild(name, node); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}

// Link aliases the node at src under dst: both parents' children maps come to reference the same node
// object. Per spec, names may diverge between the two locations; since a node carries only one parent
// back-reference, pathOf and any mv/rm issued afterward observe whichever attachment happened last.
func Link(stack *OverlayStack, id int, src, dst string) error {
	ov, err := selectOverlayForWrite(stack, id)
	if err != nil {
		return err
	}
	node, err := resolveForOverlay(ov, src)
	if err != nil {
		return err
	}
	dstParent, err := ensureDir(ov.Root, Split(Dir(dst)))
	if err != nil {
		return err
	}
	if err := dstParent.AddChild(Base(dst), node); err != nil {
		return err
	}
	ov.markDirty()
	return nil
}
