package vfs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Default tuning for the autosave worker (spec §4.9): debounce between a dirty overlay's last modification
// and the next write-out, and the interval between unconditional base-overlay recovery snapshots.
const (
	DefaultAutosaveDebounce        = 10 * time.Second
	DefaultAutosaveRecoveryInterval = 180 * time.Second

	autosaveTick = 1 * time.Second
)

// AutosaveEngine is the single background worker described in spec §4.9/§5: it ticks once a second,
// debounce-saves dirty tracked overlays to their bound source files, and periodically snapshots overlay 0
// to a crash-recovery file regardless of dirty bits. A single mutex guards the autosave record (the
// modification/recovery timestamps and tracked-overlay set) and doubles as the "about to bulk-traverse an
// overlay for writing" lock, since the worker only ever reads node content and the foreground only ever
// writes it.
type AutosaveEngine struct {
	stack *OverlayStack

	mu               sync.Mutex
	enabled          bool
	debounce         time.Duration
	recoveryInterval time.Duration
	lastModification time.Time
	lastRecovery     time.Time
	tracked          map[int]bool

	recoveryDir string
	nowFunc     func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutosaveEngine creates a disabled engine over stack. recoveryDir is the directory ".vfsh" is resolved
// relative to (normally the process's working directory); Start must be called to begin ticking.
func NewAutosaveEngine(stack *OverlayStack, recoveryDir string) *AutosaveEngine {
	return &AutosaveEngine{
		stack:            stack,
		debounce:         DefaultAutosaveDebounce,
		recoveryInterval: DefaultAutosaveRecoveryInterval,
		tracked:          make(map[int]bool),
		recoveryDir:      recoveryDir,
	}
}

// Track marks overlay id as autosave-eligible: it is considered by the debounced-save check once dirty.
// Untracked overlays (and overlay 0, which is never dirty per spec §4.3) are never written by the worker.
func (a *AutosaveEngine) Track(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracked[id] = true
}

// Untrack stops considering overlay id for debounced saves, e.g. once it is unregistered.
func (a *AutosaveEngine) Untrack(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tracked, id)
}

// NoteModification resets the debounce clock; mutation helpers call this whenever they mark an overlay
// dirty so the debounce window restarts from the most recent edit rather than the first one.
func (a *AutosaveEngine) NoteModification() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastModification = a.now()
}

// Enabled reports whether the worker is currently ticking.
func (a *AutosaveEngine) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetDebounce and SetRecoveryInterval override the defaults, e.g. from a config file or test harness.
func (a *AutosaveEngine) SetDebounce(d time.Duration)         { a.mu.Lock(); a.debounce = d; a.mu.Unlock() }
func (a *AutosaveEngine) SetRecoveryInterval(d time.Duration) { a.mu.Lock(); a.recoveryInterval = d; a.mu.Unlock() }

func (a *AutosaveEngine) now() time.Time {
	if a.nowFunc != nil {
		return a.nowFunc()
	}
	return time.Now()
}

// Start begins the one-second tick loop in a background goroutine. Calling Start on an already-started
// engine is a no-op. Stop (or cancelling ctx) ends the loop; Stop blocks until the worker goroutine exits.
func (a *AutosaveEngine) Start(ctx context.Context) {
	a.mu.Lock()
	if a.enabled {
		a.mu.Unlock()
		return
	}
	a.enabled = true
	a.lastModification = a.now()
	a.lastRecovery = a.now()
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(ctx)
}

// Stop ends the tick loop and waits for the worker goroutine to return.
func (a *AutosaveEngine) Stop() {
	a.mu.Lock()
	if !a.enabled {
		a.mu.Unlock()
		return
	}
	a.enabled = false
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (a *AutosaveEngine) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(autosaveTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick is the body of one autosave beat: a debounced save pass over dirty tracked overlays, then an
// independent periodic recovery snapshot. Both halves swallow every error (spec §4.9: "write failures are
// swallowed silently so interactive sessions are not disrupted; the next tick retries").
func (a *AutosaveEngine) tick() {
	now := a.now()

	a.mu.Lock()
	due := now.Sub(a.lastModification) >= a.debounce
	var dirtyIDs []int
	if due {
		for id := range a.tracked {
			ov := a.stack.ByID(id)
			if ov != nil && ov.Dirty() {
				dirtyIDs = append(dirtyIDs, id)
			}
		}
	}
	recoveryDue := now.Sub(a.lastRecovery) >= a.recoveryInterval
	a.mu.Unlock()

	for _, id := range dirtyIDs {
		a.saveOverlay(id)
	}
	if due {
		a.mu.Lock()
		a.lastModification = now
		a.mu.Unlock()
	}

	if recoveryDue {
		a.writeRecoverySnapshot()
		a.mu.Lock()
		a.lastRecovery = now
		a.mu.Unlock()
	}
}

func (a *AutosaveEngine) saveOverlay(id int) {
	ov := a.stack.ByID(id)
	if ov == nil || ov.Source() == "" {
		return
	}
	if err := WriteContainerFile(ov.Source(), ov, a.nowFunc); err != nil {
		return
	}
	ov.markClean()
}

// writeRecoverySnapshot writes a full snapshot of overlay 0 to .vfsh/recovery.vfs, independent of any dirty
// bit and without touching overlay 0's (nonexistent) source binding.
func (a *AutosaveEngine) writeRecoverySnapshot() {
	path := filepath.Join(a.recoveryDir, ".vfsh", "recovery.vfs")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = WriteContainerFile(path, a.stack.Base(), a.nowFunc)
}

// ForceSave writes overlay id's content to its bound source file immediately, out of the debounce cadence.
// This backs the REPL's F3 / ESC-O-R terminal shortcut (spec §4.9/§4.10) for the active solution overlay.
func (a *AutosaveEngine) ForceSave(id int) error {
	ov := a.stack.ByID(id)
	if ov == nil {
		return &NotFoundError{Path: "overlay"}
	}
	if ov.Source() == "" {
		return &UsageError{Message: "overlay has no bound source file"}
	}
	if err := WriteContainerFile(ov.Source(), ov, a.nowFunc); err != nil {
		return err
	}
	ov.markClean()
	a.mu.Lock()
	a.lastModification = a.now()
	a.mu.Unlock()
	return nil
}

// Status reports the engine's current bookkeeping for the `autosave.status` builtin.
type AutosaveStatus struct {
	Enabled          bool
	Debounce         time.Duration
	RecoveryInterval time.Duration
	LastModification time.Time
	LastRecovery     time.Time
	Tracked          []int
}

func (a *AutosaveEngine) Status() AutosaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]int, 0, len(a.tracked))
	for id := range a.tracked {
		ids = append(ids, id)
	}
	return AutosaveStatus{
		Enabled:          a.enabled,
		Debounce:         a.debounce,
		RecoveryInterval: a.recoveryInterval,
		LastModification: a.lastModification,
		LastRecovery:     a.lastRecovery,
		Tracked:          ids,
	}
}
