package vfs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SolutionState is the lifecycle state of the session's designated "solution" overlay (spec §4.11).
type SolutionState uint8

const (
	SolutionAbsent SolutionState = iota
	SolutionLoadedAutoDetected
	SolutionLoadedExplicit
	SolutionDirty
	SolutionSaved
)

func (s SolutionState) String() string {
	switch s {
	case SolutionAbsent:
		return "absent"
	case SolutionLoadedAutoDetected:
		return "loaded-autodetected"
	case SolutionLoadedExplicit:
		return "loaded-explicit"
	case SolutionDirty:
		return "dirty"
	case SolutionSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// solutionExtensions are the recognized overlay-file extensions that make a bare positional argument or a
// beside-the-cwd file eligible for auto-detection, per spec §4.7/§6.
var solutionExtensions = []string{".vfs", ".cxpkg", ".cxasm"}

// HasSolutionExtension reports whether path ends in a recognized solution extension.
func HasSolutionExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range solutionExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// SolutionState reports the session's current solution lifecycle state.
func (s *Session) SolutionState() SolutionState {
	return s.solutionState
}

// SolutionOverlay returns the overlay id bound as the solution, or -1 if none is loaded.
func (s *Session) SolutionOverlay() int {
	return s.solutionOverlay
}

// SolutionPath returns the bound host path of the solution overlay, or "" if none is loaded.
func (s *Session) SolutionPath() string {
	return s.solutionPath
}

// LoadSolution reads path through the container codec into a freshly registered overlay named "solution",
// binds it as the session's solution, and transitions to explicit (explicit == true, e.g. --solution or
// solution.load) or auto-detected (explicit == false, e.g. a startup sniff) loaded state.
func (s *Session) LoadSolution(path string, explicit bool) error {
	ov, err := s.Overlays.Register(solutionOverlayName(s))
	if err != nil {
		return err
	}
	if err := ReadContainerFile(path, ov); err != nil {
		_ = s.Overlays.Unregister(ov.ID)
		return err
	}
	ov.setSource(path)
	ov.markClean()
	s.WD.recomputeIntersection(s.Overlays)
	s.solutionOverlay = ov.ID
	s.solutionPath = path
	if explicit {
		s.solutionState = SolutionLoadedExplicit
	} else {
		s.solutionState = SolutionLoadedAutoDetected
	}
	return nil
}

func solutionOverlayName(s *Session) string {
	base := "solution"
	if s.Overlays.ByName(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s-%d", base, i)
		if s.Overlays.ByName(name) == nil {
			return name
		}
	}
}

// NoteSolutionMutation transitions the solution to Dirty if a mutation just landed in its overlay. It is a
// no-op if no solution is loaded or the mutated overlay isn't the solution's.
func (s *Session) NoteSolutionMutation(overlayID int) {
	if s.solutionOverlay < 0 || overlayID != s.solutionOverlay {
		return
	}
	s.solutionState = SolutionDirty
}

// SaveSolution writes the solution overlay to its bound source path via the container writer and
// transitions Dirty -> Saved. It fails if no solution is loaded or bound to a path.
func (s *Session) SaveSolution() error {
	if s.solutionOverlay < 0 {
		return &UsageError{Message: "no solution is loaded"}
	}
	ov := s.Overlays.ByID(s.solutionOverlay)
	if ov == nil || ov.Source() == "" {
		return &UsageError{Message: "solution overlay has no bound source file"}
	}
	if err := WriteContainerFile(ov.Source(), ov, nil); err != nil {
		return err
	}
	ov.markClean()
	s.solutionState = SolutionSaved
	return nil
}
