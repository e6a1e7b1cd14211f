// Package daemon implements the server side of spec §6's remote-exec framing: a TCP listener accepting
// line-terminated `EXEC <shell-command>\n` requests and replying with exactly one `OK <payload>\n` or
// `ERR <message>\n` line per request. mount_remote.go in the root package implements the client side of
// this same protocol; this package is grounded on it for the wire format and on
// original_source/VfsShell/web_server.cpp for the accept-loop/per-connection-goroutine shape.
package daemon

import (
	"bufio"
	"encoding/base64"
	"net"
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/OuluBSD/VfsBoot-sub001/internal/shell"
	"github.com/sirupsen/logrus"
)

// Server accepts connections on one listener, dispatching each request to a dedicated Shell built over a
// shared Session (spec: "the VFS tree is single-writer" — every connection sees the same overlay stack).
type Server struct {
	Session *vfs.Session
	Log     *logrus.Logger

	listener net.Listener
}

// Listen opens addr ("host:port") for accepting connections; it does not yet serve them (call Serve).
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &vfs.ExternalError{Source: "daemon listen " + addr, Cause: err}
	}
	s.listener = ln
	return nil
}

// Addr returns the listener's bound address, useful when addr was "host:0".
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed, handling each on its own goroutine. It returns
// nil on a clean Close, any other accept error otherwise.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return &vfs.ExternalError{Source: "daemon accept", Cause: err}
		}
		go s.handleConn(conn)
	}
}

// Close stops Serve's accept loop.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) log() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// handleConn reads EXEC requests off conn until it closes, answering a malformed line with an ERR reply
// and reading on. Each connection runs its requests through its own Shell, so command history is kept per
// connection; the working directory, primary overlay and conflict policy live in the shared session's
// WorkingDir, so cd/overlay.use/overlay.policy issued on one connection are seen by every other, and all
// connections mutate the same overlay stack.
func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			s.log().WithError(err).Debug("daemon: failed to close connection")
		}
	}()

	sh := shell.New(s.Session)
	rd := bufio.NewReader(conn)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		cmd, ok := strings.CutPrefix(line, "EXEC ")
		if !ok {
			writeLine(conn, "ERR malformed request: expected EXEC <shell-command>")
			continue
		}

		result, err := sh.Execute(cmd)
		if err != nil {
			writeLine(conn, "ERR "+err.Error())
			continue
		}
		if !result.Success {
			writeLine(conn, "ERR "+strings.TrimSpace(result.Output))
			continue
		}
		writeLine(conn, "OK "+base64.StdEncoding.EncodeToString([]byte(result.Output)))
	}
}

func writeLine(conn net.Conn, line string) {
	_, _ = conn.Write([]byte(line + "\n"))
}
