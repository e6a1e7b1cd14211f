package vfs

import "strconv"

// mountEntry records one active mount for the `unmount` command and for introspection: the overlay and
// path it was attached at, and the kind so unmount can report what it removed.
type mountEntry struct {
	overlayID int
	path      string
	kind      Kind
}

// MountRegistry tracks every alias a Session has mounted, gated by a single allowed flag (spec §4.6: "policy
// flag mount_allowed gates every mount command"). It does not own the mounted nodes themselves — those live
// in the overlay tree like any other node — it only remembers where they were attached so unmount can find
// and detach them.
type MountRegistry struct {
	allowed bool
	entries map[string]mountEntry // key: fmt "<overlayID>:<path>"
}

// NewMountRegistry creates a registry with mounting allowed by default.
func NewMountRegistry() *MountRegistry {
	return &MountRegistry{allowed: true, entries: make(map[string]mountEntry)}
}

func (r *MountRegistry) Allowed() bool    { return r.allowed }
func (r *MountRegistry) SetAllowed(v bool) { r.allowed = v }

func mountKey(overlayID int, path string) string {
	return Path(path).String() + "\x00" + strconv.Itoa(overlayID)
}

func (r *MountRegistry) record(overlayID int, path string, kind Kind) {
	r.entries[mountKey(overlayID, path)] = mountEntry{overlayID: overlayID, path: path, kind: kind}
}

func (r *MountRegistry) forget(overlayID int, path string) {
	delete(r.entries, mountKey(overlayID, path))
}

// List returns every currently tracked mount, for the `mount.list`-style introspection surface.
func (r *MountRegistry) List() []mountEntry {
	out := make([]mountEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// MountFs attaches a filesystem mount named Base(path) under Dir(path) in overlay id, rooted at hostPath.
func (s *Session) MountFs(id *int, path, hostPath string) error {
	if !s.Mounts.Allowed() {
		return &PermissionDeniedError{Message: "mounting is disabled (mount_allowed=false)"}
	}
	overlayID := s.writeOverlay(id)
	normPath := Normalize(s.WD.Path, path)
	node := NewFsMount(Base(normPath), hostPath)
	if err := AddNode(s.Overlays, overlayID, Dir(normPath), node); err != nil {
		return err
	}
	s.Mounts.record(overlayID, normPath, KindMount)
	return nil
}

// MountLib attaches a library mount named Base(path) under Dir(path) in overlay id, for the shared object
// at hostPath.
func (s *Session) MountLib(id *int, path, hostPath string) error {
	if !s.Mounts.Allowed() {
		return &PermissionDeniedError{Message: "mounting is disabled (mount_allowed=false)"}
	}
	overlayID := s.writeOverlay(id)
	normPath := Normalize(s.WD.Path, path)
	node := NewLibMount(Base(normPath), hostPath)
	if err := AddNode(s.Overlays, overlayID, Dir(normPath), node); err != nil {
		return err
	}
	s.Mounts.record(overlayID, normPath, KindLibrary)
	return nil
}

// MountRemote attaches a remote mount named Base(path) under Dir(path) in overlay id, against addr rooted
// at remotePath on the peer.
func (s *Session) MountRemote(id *int, path, addr, remotePath string) error {
	if !s.Mounts.Allowed() {
		return &PermissionDeniedError{Message: "mounting is disabled (mount_allowed=false)"}
	}
	overlayID := s.writeOverlay(id)
	normPath := Normalize(s.WD.Path, path)
	node := NewRemoteMount(Base(normPath), addr, remotePath)
	if err := AddNode(s.Overlays, overlayID, Dir(normPath), node); err != nil {
		return err
	}
	s.Mounts.record(overlayID, normPath, KindMount)
	return nil
}

// Unmount detaches the mount at path in overlay id (or the working directory's primary overlay) and drops
// its registry entry.
func (s *Session) Unmount(id *int, path string) error {
	overlayID := s.writeOverlay(id)
	normPath := Normalize(s.WD.Path, path)
	if err := Rm(s.Overlays, overlayID, normPath); err != nil {
		return err
	}
	s.Mounts.forget(overlayID, normPath)
	return nil
}
