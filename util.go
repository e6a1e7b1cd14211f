package vfs

import (
	"io"

	"github.com/sirupsen/logrus"
)

// silentClose closes closer and logs any error instead of propagating it, for the common case of a
// deferred close whose failure cannot change the outcome of the calling operation.
func silentClose(closer io.Closer) {
	if err := closer.Close(); err != nil {
		logrus.WithError(err).Debug("vfs: failed to close")
	}
}

// WalkFunc is invoked once per node visited by Walk, with the node's absolute path. Returning an error
// stops the walk and is propagated out of Walk unchanged.
type WalkFunc func(path string, n Node) error

// Walk visits root and, if it is directory-like, every descendant reachable through Children, calling fn
// in pre-order (a directory is visited before its children). path is root's own absolute path; descendants
// are reported relative to it via Path.Child. Children are visited in map order, not sorted. The tree
// builtin uses it; the container writer has its own name-sorted traversal (writeContainerChildren).
func Walk(path string, root Node, fn WalkFunc) error {
	if err := fn(path, root); err != nil {
		return err
	}
	if !root.IsDirectory() {
		return nil
	}
	children, err := root.Children()
	if err != nil {
		return err
	}
	for name, child := range children {
		if err := Walk(Path(path).Child(name).String(), child, fn); err != nil {
			return err
		}
	}
	return nil
}
