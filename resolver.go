package vfs

import (
	"fmt"
	"sort"
)

// resolveForOverlay walks path's components from ov.Root, descending through Container children (a Dir or
// a directory-like Ast node such as a C++ function holding its body). It returns *NotFoundError the moment
// a component is missing or a non-container node is asked to yield a child.
func resolveForOverlay(ov *Overlay, path string) (Node, error) {
	var cur Node = ov.Root
	for _, name := range Split(path) {
		children, err := cur.Children()
		if err != nil {
			return nil, err
		}
		child, ok := children[name]
		if !ok {
			return nil, &NotFoundError{Path: path}
		}
		cur = child
	}
	return cur, nil
}

// resolveMulti resolves path independently against every overlay named in overlayIDs, returning only the
// overlays where it was actually found, keyed by overlay ID.
func resolveMulti(stack *OverlayStack, overlayIDs []int, path string) map[int]Node {
	found := make(map[int]Node)
	for _, id := range overlayIDs {
		ov := stack.ByID(id)
		if ov == nil {
			continue
		}
		if n, err := resolveForOverlay(ov, path); err == nil {
			found[id] = n
		}
	}
	return found
}

// selectOverlay folds a set of candidate overlay IDs down to the single one policy designates, or reports
// why it couldn't, per spec §4.4: Manual returns primary if primary is among the candidates, else
// *ConflictError; Oldest/Newest fold to the lowest/highest candidate ID regardless of primary. An empty
// candidate set is always *NotFoundError, checked before any policy is consulted.
func selectOverlay(stack *OverlayStack, path string, candidates map[int]Node, policy ConflictPolicy, primary int) (int, error) {
	if len(candidates) == 0 {
		return 0, &NotFoundError{Path: path}
	}
	if len(candidates) == 1 {
		for id := range candidates {
			return id, nil
		}
	}

	switch policy {
	case ConflictOldest:
		ids := sortedKeys(candidates)
		return ids[0], nil
	case ConflictNewest:
		ids := sortedKeys(candidates)
		return ids[len(ids)-1], nil
	default: // ConflictManual
		if _, ok := candidates[primary]; ok {
			return primary, nil
		}
		ids := sortedKeys(candidates)
		names := make([]string, len(ids))
		for i, id := range ids {
			if ov := stack.ByID(id); ov != nil {
				names[i] = ov.Name
			}
		}
		return 0, &ConflictError{Path: path, Candidates: names}
	}
}

func sortedKeys(candidates map[int]Node) []int {
	ids := make([]int, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// resolve resolves path against the given overlay set under policy, returning the winning node together
// with the ID of the overlay it was found in. primary is the working directory's primary overlay, consulted
// only by ConflictManual.
func resolve(stack *OverlayStack, overlayIDs []int, path string, policy ConflictPolicy, primary int) (Node, int, error) {
	candidates := resolveMulti(stack, overlayIDs, path)
	id, err := selectOverlay(stack, path, candidates, policy, primary)
	if err != nil {
		return nil, 0, err
	}
	return candidates[id], id, nil
}

// DirEntry is one row of a merged directory listing (spec §4.4's `mapping(name -> {overlays, nodes,
// types})`): a child name, every overlay id that contributes it (ascending), and the single-character Kind
// code shared by all of them, or KindConflict if they disagree.
type DirEntry struct {
	Name     string
	Kind     Kind
	Overlays []int
}

// KindConflict is the synthesized '!' kind listDir reports for a name whose contributing overlays disagree
// on what kind of node it is; Kind.String() already falls through to "!" for any value outside the closed
// set in node.go, so no separate rendering path is needed.
const KindConflict Kind = 255

// listDir unions the child listings of path across every overlay in overlayIDs; it never picks a single
// winner the way resolve does; that selection belongs to whatever command renders the listing (e.g. `ls`
// marking the primary overlay with '*'). Entries are returned sorted by name.
func listDir(stack *OverlayStack, overlayIDs []int, path string) ([]DirEntry, error) {
	dirCandidates := resolveMulti(stack, overlayIDs, path)
	if len(dirCandidates) == 0 {
		return nil, &NotFoundError{Path: path}
	}

	kindsByName := make(map[string]map[int]Kind)
	for id, n := range dirCandidates {
		if !n.IsDirectory() {
			continue
		}
		children, err := n.Children()
		if err != nil {
			return nil, err
		}
		for name, child := range children {
			m, ok := kindsByName[name]
			if !ok {
				m = make(map[int]Kind)
				kindsByName[name] = m
			}
			m[id] = child.Kind()
		}
	}

	entries := make([]DirEntry, 0, len(kindsByName))
	for name, kinds := range kindsByName {
		ids := make([]int, 0, len(kinds))
		for id := range kinds {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		kind := kinds[ids[0]]
		for _, id := range ids[1:] {
			if kinds[id] != kind {
				kind = KindConflict
				break
			}
		}
		entries = append(entries, DirEntry{Name: name, Kind: kind, Overlays: ids})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// selectOverlayForWrite is the mutation-path counterpart of selectOverlay: writers never fold across
// overlays, they target exactly one (the working directory's primary overlay), so this simply validates
// that the chosen overlay still exists.
func selectOverlayForWrite(stack *OverlayStack, id int) (*Overlay, error) {
	ov := stack.ByID(id)
	if ov == nil {
		return nil, &NotFoundError{Path: fmt.Sprintf("overlay#%d", id)}
	}
	return ov, nil
}
