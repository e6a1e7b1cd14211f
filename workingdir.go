package vfs

// WorkingDir is the cursor a Session's command pipeline operates relative to: an absolute path, the set of
// overlays that currently intersect it (contain a directory at that path), a primary overlay that mutating
// commands without an explicit overlay target apply to, and the conflict policy governing reads through it.
type WorkingDir struct {
	Path           string
	OverlayIDs     []int
	PrimaryOverlay int
	Policy         ConflictPolicy
}

// NewWorkingDir returns the initial working directory: "/", intersecting every overlay in stack, primary
// overlay 0, manual conflict policy (spec default; an ambiguous read must be disambiguated explicitly until
// the user picks otherwise with overlay.policy).
func NewWorkingDir(stack *OverlayStack) *WorkingDir {
	wd := &WorkingDir{Path: "/", Policy: ConflictManual}
	wd.recomputeIntersection(stack)
	return wd
}

// recomputeIntersection refreshes OverlayIDs and PrimaryOverlay from scratch against stack's current
// membership, called whenever the working directory itself changes or an overlay is unregistered out from
// under it.
func (wd *WorkingDir) recomputeIntersection(stack *OverlayStack) {
	var ids []int
	for _, ov := range stack.All() {
		if _, err := resolveForOverlay(ov, wd.Path); err == nil {
			ids = append(ids, ov.ID)
		}
	}
	wd.OverlayIDs = ids
	wd.recomputePrimary(stack)
}

// recomputePrimary chooses the highest-ID overlay still intersecting the working directory as the implicit
// mutation target, falling back to overlay 0 (always present, always intersecting "/") when nothing else
// does. This keeps "cd into an overlay-only subtree, then touch a file" targeting that overlay without
// requiring an explicit -o flag, while still always having a valid fallback.
func (wd *WorkingDir) recomputePrimary(stack *OverlayStack) {
	best := 0
	for _, id := range wd.OverlayIDs {
		if id > best {
			best = id
		}
	}
	wd.PrimaryOverlay = best
}

// Cd moves the working directory to Normalize(wd.Path, operand), verifying the target resolves to a
// directory-like node in at least one intersecting overlay before committing.
func (wd *WorkingDir) Cd(stack *OverlayStack, operand string) error {
	target := Normalize(wd.Path, operand)
	candidates := resolveMulti(stack, stack.idsOf(), target)
	found := false
	for _, n := range candidates {
		if n.IsDirectory() {
			found = true
			break
		}
	}
	if !found {
		return &NotFoundError{Path: target}
	}
	wd.Path = target
	wd.recomputeIntersection(stack)
	return nil
}

// idsOf returns the IDs of every currently registered overlay, used by Cd to probe the full stack rather
// than only whatever the working directory already intersected before the move.
func (s *OverlayStack) idsOf() []int {
	ids := make([]int, len(s.overlays))
	for i, ov := range s.overlays {
		ids[i] = ov.ID
	}
	return ids
}
