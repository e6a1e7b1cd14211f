package vfs

import (
	"github.com/sirupsen/logrus"
)

// Session is the composition root a command pipeline, REPL, or daemon connection is handed: the overlay
// stack, the working directory cursor, the autosave engine, the AI provider bridge, and a shared logger.
// It replaces a package-level global with an explicit value threaded through callers; Default/SetDefault
// below remain only as a last-resort shim for code paths that cannot take a Session parameter.
type Session struct {
	Overlays *OverlayStack
	WD       *WorkingDir
	Log      *logrus.Logger

	Autosave *AutosaveEngine
	AI       *AICache
	Mounts   *MountRegistry

	solutionOverlay int // -1 if no solution is loaded
	solutionPath    string
	solutionState   SolutionState
}

// NewSession creates a Session with a fresh single-overlay stack, the given logger (or, when log is nil, a
// new one at Warn level), and no solution loaded.
func NewSession(log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	overlays := NewOverlayStack()
	return &Session{
		Overlays:        overlays,
		WD:              NewWorkingDir(overlays),
		Log:             log,
		Autosave:        NewAutosaveEngine(overlays, "."),
		AI:              NewAICache(nil, 0),
		Mounts:          NewMountRegistry(),
		solutionOverlay: -1,
		solutionState:   SolutionAbsent,
	}
}

// Resolve resolves path against the working directory's intersecting overlays under its conflict policy.
func (s *Session) Resolve(path string) (Node, int, error) {
	return resolve(s.Overlays, s.WD.OverlayIDs, Normalize(s.WD.Path, path), s.WD.Policy, s.WD.PrimaryOverlay)
}

// ListDir unions path's children across the working directory's intersecting overlays.
func (s *Session) ListDir(path string) ([]DirEntry, error) {
	return listDir(s.Overlays, s.WD.OverlayIDs, Normalize(s.WD.Path, path))
}

// writeOverlay defaults to the working directory's primary overlay when id is nil: every mutating builtin
// targets "the" overlay a bare path write lands in unless the caller passes an explicit overlay id.
func (s *Session) writeOverlay(id *int) int {
	if id != nil {
		return *id
	}
	return s.WD.PrimaryOverlay
}

// afterMutation runs the bookkeeping every successful mutation owes spec §4.9/§4.11: resetting the autosave
// debounce clock and, if the touched overlay is the loaded solution, transitioning it to Dirty.
func (s *Session) afterMutation(overlayID int) {
	s.NoteSolutionMutation(overlayID)
	if s.Autosave != nil {
		s.Autosave.Track(overlayID)
		s.Autosave.NoteModification()
	}
}

// Mkdir creates path (and any missing intermediates) in the given overlay, or the working directory's
// primary overlay if id is nil.
func (s *Session) Mkdir(id *int, path string) error {
	ov := s.writeOverlay(id)
	if err := Mkdir(s.Overlays, ov, Normalize(s.WD.Path, path)); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// Touch creates an empty file at path if absent, in the given overlay or the working directory's primary.
func (s *Session) Touch(id *int, path string) error {
	ov := s.writeOverlay(id)
	if err := Touch(s.Overlays, ov, Normalize(s.WD.Path, path)); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// Write replaces path's content, in the given overlay or the working directory's primary.
func (s *Session) Write(id *int, path string, content []byte) error {
	ov := s.writeOverlay(id)
	if err := WriteNode(s.Overlays, ov, Normalize(s.WD.Path, path), content); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// Rm removes path, in the given overlay or the working directory's primary.
func (s *Session) Rm(id *int, path string) error {
	ov := s.writeOverlay(id)
	if err := Rm(s.Overlays, ov, Normalize(s.WD.Path, path)); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// Mv moves src to dst, in the given overlay or the working directory's primary.
func (s *Session) Mv(id *int, src, dst string) error {
	ov := s.writeOverlay(id)
	if err := Mv(s.Overlays, ov, Normalize(s.WD.Path, src), Normalize(s.WD.Path, dst)); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// Link aliases src under dst, in the given overlay or the working directory's primary.
func (s *Session) Link(id *int, src, dst string) error {
	ov := s.writeOverlay(id)
	if err := Link(s.Overlays, ov, Normalize(s.WD.Path, src), Normalize(s.WD.Path, dst)); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// AddNode places a preconstructed node (an AST builder result) under dirPath, in the given overlay or the
// working directory's primary.
func (s *Session) AddNode(id *int, dirPath string, node Node) error {
	ov := s.writeOverlay(id)
	if err := AddNode(s.Overlays, ov, Normalize(s.WD.Path, dirPath), node); err != nil {
		return err
	}
	s.afterMutation(ov)
	return nil
}

// AppendCppStmt appends stmt to the body compound resolved at bodyPath (as built by the cpp.func/cpp.tu
// builder bridge), in the given overlay or the working directory's primary. A statement is a plain value
// living inside CppCompound.Items, not a node of its own, so it cannot go through AddNode; this is the
// equivalent mutation for the one AST shape that needs it.
func (s *Session) AppendCppStmt(id *int, bodyPath string, stmt CppStmt) error {
	ov := s.writeOverlay(id)
	node, _, err := resolve(s.Overlays, []int{ov}, Normalize(s.WD.Path, bodyPath), ConflictManual, ov)
	if err != nil {
		return err
	}
	compound, ok := node.(*CppCompound)
	if !ok {
		return &UsageError{Message: bodyPath + " is not a cpp compound block"}
	}
	compound.Items = append(compound.Items, cppCompoundItem{stmt: stmt})
	s.afterMutation(ov)
	return nil
}

// Read reads path: if overlayID is non-nil, it must resolve within that exact overlay; otherwise it
// resolves across the working directory's intersecting overlays under its conflict policy.
func (s *Session) Read(overlayID *int, path string) ([]byte, error) {
	return ReadPath(s.Overlays, s.WD.OverlayIDs, Normalize(s.WD.Path, path), overlayID, s.WD.Policy, s.WD.PrimaryOverlay)
}

var defaultSession *Session

// Default returns the process-wide Session, if one has been installed with SetDefault. It exists only for
// embedded-interpreter builtins that cannot thread a Session argument through; every other caller should
// take an explicit *Session.
func Default() *Session {
	return defaultSession
}

// SetDefault installs s as the process-wide Session returned by Default.
func SetDefault(s *Session) {
	defaultSession = s
}
