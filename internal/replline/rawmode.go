package replline

import (
	"os"

	"golang.org/x/term"
)

// rawSession is a scoped termios acquisition: it swaps fd into raw mode and restores the previous state on
// release. Bypassed entirely when fd isn't a terminal (spec §4.10's "on non-tty input, bypass the raw-mode
// path and use line-buffered reads").
type rawSession struct {
	fd    int
	state *term.State
}

func acquireRaw(f *os.File) (*rawSession, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return &rawSession{fd: fd}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &rawSession{fd: fd, state: state}, nil
}

func (r *rawSession) release() {
	if r.state == nil {
		return
	}
	_ = term.Restore(r.fd, r.state)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
