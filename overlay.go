package vfs

import "fmt"

// ConflictPolicy selects how resolveMulti disambiguates a path that exists in more than one overlay.
type ConflictPolicy uint8

const (
	// ConflictManual leaves the ambiguity to the caller: resolution fails with *ConflictError.
	ConflictManual ConflictPolicy = iota
	// ConflictOldest picks the lowest-id (earliest registered, i.e. closest to the base) overlay among the
	// candidates.
	ConflictOldest
	// ConflictNewest picks the highest-id (most recently registered) overlay among the candidates.
	ConflictNewest
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictManual:
		return "manual"
	case ConflictOldest:
		return "oldest"
	case ConflictNewest:
		return "newest"
	default:
		return "unknown"
	}
}

// Overlay is one layer of the overlay stack: a named root directory, a dirty flag tracking whether it
// holds unsaved mutations, and an optional bound source file it was loaded from or will be saved to.
// Overlay 0 is the base layer: it is never dirty-tracked, never unmountable, and has no source file.
type Overlay struct {
	ID     int
	Name   string
	Root   *Dir
	dirty  bool
	source string // absolute host path this overlay was loaded from / autosaves to; "" if unbound

	// staleSourceWarning is set by ReadContainer when a v3 H line's recorded hash no longer matches the
	// current content of the file it names; per spec this is a warning, not a load failure.
	staleSourceWarning string
}

// StaleSourceWarning returns the warning recorded by the last load if the v3 container's hash line no
// longer matched its named source file's current content, or "" otherwise.
func (o *Overlay) StaleSourceWarning() string {
	return o.staleSourceWarning
}

func newOverlay(id int, name string) *Overlay {
	return &Overlay{ID: id, Name: name, Root: NewDir("/")}
}

// Dirty reports whether this overlay has unsaved mutations. Overlay 0 is always reported clean: the base
// layer is not tracked for autosave or exit-time save prompts.
func (o *Overlay) Dirty() bool {
	if o.ID == 0 {
		return false
	}
	return o.dirty
}

// Source returns the bound host path, or "" if this overlay has never been saved to or loaded from one.
func (o *Overlay) Source() string {
	return o.source
}

func (o *Overlay) setSource(path string) {
	o.source = path
}

func (o *Overlay) markDirty() {
	if o.ID == 0 {
		return
	}
	o.dirty = true
}

func (o *Overlay) markClean() {
	o.dirty = false
}

// OverlayStack is the ordered collection of overlays a Session mutates and resolves paths through. Ids are
// contiguous 0..N-1 at all times: Unregister shifts every higher id down by one to close the gap, so any
// session state that holds an id across an Unregister call must re-derive it afterward.
type OverlayStack struct {
	overlays []*Overlay // overlays[i].ID == i, always
}

// NewOverlayStack creates a stack containing only overlay 0, named "base".
func NewOverlayStack() *OverlayStack {
	s := &OverlayStack{}
	s.overlays = append(s.overlays, newOverlay(0, "base"))
	return s
}

// Base returns overlay 0.
func (s *OverlayStack) Base() *Overlay {
	return s.overlays[0]
}

// All returns every currently registered overlay, in ascending ID order.
func (s *OverlayStack) All() []*Overlay {
	out := make([]*Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// ByID returns the overlay with the given id, or nil if it is not currently registered.
func (s *OverlayStack) ByID(id int) *Overlay {
	if id < 0 || id >= len(s.overlays) {
		return nil
	}
	return s.overlays[id]
}

// ByName returns the first registered overlay with the given name, or nil.
func (s *OverlayStack) ByName(name string) *Overlay {
	for _, o := range s.overlays {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Register appends a new overlay named name at the next contiguous id, returning it, or fails if name is
// already in use by a registered overlay.
func (s *OverlayStack) Register(name string) (*Overlay, error) {
	if s.ByName(name) != nil {
		return nil, &UsageError{Message: "overlay name already in use: " + name}
	}
	o := newOverlay(len(s.overlays), name)
	s.overlays = append(s.overlays, o)
	return o, nil
}

// Unregister removes the overlay with the given id from the active set and shifts every overlay above it
// down by one id, preserving the 0..N-1 contiguity invariant. Overlay 0 can never be unregistered.
func (s *OverlayStack) Unregister(id int) error {
	if id == 0 {
		return &UsageError{Message: "overlay 0 cannot be unmounted"}
	}
	if id < 0 || id >= len(s.overlays) {
		return &NotFoundError{Path: fmt.Sprintf("overlay#%d", id)}
	}
	s.overlays = append(s.overlays[:id], s.overlays[id+1:]...)
	for i := id; i < len(s.overlays); i++ {
		s.overlays[i].ID = i
	}
	return nil
}
