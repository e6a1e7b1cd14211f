package vfs

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// dialFunc abstracts net.Dial so tests can substitute an in-process pipe instead of a real TCP connection.
type dialFunc func(addr string) (net.Conn, error)

func dialTCP(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

// remoteConn is the single TCP connection a mount point and every node descended from it share (spec §4.6:
// "maintains a single TCP connection, serialized by a per-node lock" — "per-node" here means the lock is
// owned by the mount point's node graph, not redialed per descendant). mu also doubles as the single-writer
// serialization point for the socket.
type remoteConn struct {
	addr string
	dial dialFunc

	mu   sync.Mutex
	conn net.Conn
	rd   *bufio.Reader
}

func newRemoteConn(addr string, dial dialFunc) *remoteConn {
	if dial == nil {
		dial = dialTCP
	}
	return &remoteConn{addr: addr, dial: dial}
}

// ensureConn dials the peer if no connection is currently open. Caller must hold mu.
func (c *remoteConn) ensureConn() error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.dial(c.addr)
	if err != nil {
		return &ExternalError{Source: "remote mount dial " + c.addr, Cause: err}
	}
	c.conn = conn
	c.rd = bufio.NewReader(conn)
	return nil
}

// invalidate drops the cached connection so the next call redials; it is called whenever an I/O error
// suggests the peer's state (and therefore ours) can no longer be trusted.
func (c *remoteConn) invalidate() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.rd = nil
}

// exec sends "EXEC <cmd>\n" and returns the decoded payload of a single "OK <payload>\n" response, or an
// *ExternalError wrapping an "ERR <message>\n" response or any I/O failure.
func (c *remoteConn) exec(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConn(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(c.conn, "EXEC %s\n", cmd); err != nil {
		c.invalidate()
		return "", &ExternalError{Source: "remote mount write " + c.addr, Cause: err}
	}
	line, err := c.rd.ReadString('\n')
	if err != nil {
		c.invalidate()
		return "", &ExternalError{Source: "remote mount read " + c.addr, Cause: err}
	}
	line = strings.TrimRight(line, "\r\n")

	switch {
	case strings.HasPrefix(line, "OK "):
		return strings.TrimPrefix(line, "OK "), nil
	case strings.HasPrefix(line, "ERR "):
		c.invalidate()
		return "", &ExternalError{Source: "remote mount " + c.addr, Cause: fmt.Errorf("%s", strings.TrimPrefix(line, "ERR "))}
	default:
		c.invalidate()
		return "", &ExternalError{Source: "remote mount " + c.addr, Cause: fmt.Errorf("malformed response: %q", line)}
	}
}

// RemoteMount is a remote mount node (spec §4.6): a path within a remoteConn. File content and directory
// listings are base64-framed within the single response line so arbitrary bytes (binary file content,
// filenames with embedded control characters) survive the one-line wire format intact; EXEC itself is plain
// text since shell commands built from remotePath never need to carry raw binary.
type RemoteMount struct {
	nodeBase
	remotePath string
	connID     string
	conn       *remoteConn
}

// NewRemoteMount creates a mount named name against addr ("host:port"), rooted at remotePath on the peer.
func NewRemoteMount(name, addr, remotePath string) *RemoteMount {
	return &RemoteMount{
		nodeBase:   nodeBase{name: name},
		remotePath: remotePath,
		connID:     uuid.NewString(),
		conn:       newRemoteConn(addr, dialTCP),
	}
}

func (m *RemoteMount) Kind() Kind { return KindMount }

// ConnID returns the uuid tagging this mount's connection for log correlation (SPEC_FULL.md §B).
func (m *RemoteMount) ConnID() string { return m.connID }

func (m *RemoteMount) exec(cmd string) (string, error) { return m.conn.exec(cmd) }

func (m *RemoteMount) execBase64(cmd string) (string, error) {
	payload, err := m.exec(cmd)
	if err != nil {
		return "", err
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", &ExternalError{Source: "remote mount " + m.conn.addr, Cause: fmt.Errorf("malformed base64 payload: %w", err)}
	}
	return string(decoded), nil
}

// quoteArg double-quotes s for embedding as a single EXEC argument, escaping backslashes and double quotes
// so the peer's shell.Tokenize reconstructs it as one token regardless of its content (spaces, quotes, or
// the base64 alphabet Read/Write route through it).
func quoteArg(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// IsDirectory asks the peer's own `kind` builtin, since this project's daemon dispatches EXEC payloads
// through its internal VFS shell (spec §6), not a POSIX shell with a `test` builtin.
func (m *RemoteMount) IsDirectory() bool {
	out, err := m.execBase64("kind " + quoteArg(m.remotePath))
	return err == nil && strings.TrimSpace(out) == "d"
}

// Read shells out to the peer's `cat` builtin; execBase64 undoes the daemon's own base64 response framing
// (every EXEC result is base64-framed on the wire, spec §6), which is all that is needed to recover
// arbitrary file bytes intact.
func (m *RemoteMount) Read() ([]byte, error) {
	out, err := m.execBase64("cat " + quoteArg(m.remotePath))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Write base64-encodes content locally and hands it to the peer's `write` builtin, which decodes and
// stores it exactly: the EXEC protocol is line-oriented, so content is never sent as a literal argument
// (a raw newline or control byte inside it would otherwise corrupt the request line itself).
func (m *RemoteMount) Write(content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	_, err := m.execBase64("write " + quoteArg(m.remotePath) + " " + encoded)
	return err
}

// Children shells out to the peer's `ls` builtin, one *RemoteMount child per listed entry (ls's own kind
// column is ignored here; IsDirectory is re-derived lazily per child like any other Node).
func (m *RemoteMount) Children() (map[string]Node, error) {
	if !m.IsDirectory() {
		return map[string]Node{}, nil
	}
	out, err := m.execBase64("ls " + quoteArg(m.remotePath))
	if err != nil {
		return nil, err
	}
	result := map[string]Node{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[1]
		result[name] = &RemoteMount{
			nodeBase:   nodeBase{name: name, parent: m.parent},
			remotePath: path.Join(m.remotePath, name),
			connID:     m.connID,
			conn:       m.conn,
		}
	}
	return result, nil
}
