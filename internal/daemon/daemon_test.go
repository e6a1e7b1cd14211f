package daemon

import (
	"bufio"
	"encoding/base64"
	"net"
	"strings"
	"testing"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (net.Conn, *bufio.Reader) {
	t.Helper()
	s := &Server{Session: vfs.NewSession(nil)}
	require.NoError(t, s.Listen("127.0.0.1:0"))
	go func() { _ = s.Serve() }()
	t.Cleanup(func() { _ = s.Close() })

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, bufio.NewReader(conn)
}

func exec(t *testing.T, conn net.Conn, rd *bufio.Reader, cmd string) string {
	t.Helper()
	_, err := conn.Write([]byte("EXEC " + cmd + "\n"))
	require.NoError(t, err)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func TestDaemonExecOk(t *testing.T) {
	conn, rd := startTestServer(t)

	resp := exec(t, conn, rd, "echo hello")
	require.True(t, strings.HasPrefix(resp, "OK "))
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(resp, "OK "))
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(payload))
}

func TestDaemonExecFailure(t *testing.T) {
	conn, rd := startTestServer(t)

	resp := exec(t, conn, rd, "cat /does-not-exist")
	require.True(t, strings.HasPrefix(resp, "ERR "))
}

func TestDaemonMalformedRequest(t *testing.T) {
	conn, rd := startTestServer(t)

	_, err := conn.Write([]byte("NOT-EXEC foo\n"))
	require.NoError(t, err)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimRight(line, "\r\n"), "ERR "))
}

func TestDaemonSharedSessionState(t *testing.T) {
	conn, rd := startTestServer(t)

	resp := exec(t, conn, rd, "mkdir /shared")
	require.True(t, strings.HasPrefix(resp, "OK "))

	resp = exec(t, conn, rd, "ls /")
	require.True(t, strings.HasPrefix(resp, "OK "))
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(resp, "OK "))
	require.NoError(t, err)
	require.Contains(t, string(payload), "shared")
}
