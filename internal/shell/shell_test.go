package shell

import (
	"os"
	"path/filepath"
	"testing"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	return New(vfs.NewSession(nil))
}

func TestShellMkdirTouchLs(t *testing.T) {
	sh := newTestShell(t)

	res, err := sh.Execute("mkdir /proj")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = sh.Execute("touch /proj/main.go")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = sh.Execute("ls /proj")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.Output, "main.go")
}

func TestShellEchoRedirectAndCat(t *testing.T) {
	sh := newTestShell(t)

	res, err := sh.Execute(`echo hello world > /greeting.txt`)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = sh.Execute("cat /greeting.txt")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "hello world\n", res.Output)
}

func TestShellAppendRedirect(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Execute(`echo one > /log.txt`)
	require.NoError(t, err)
	_, err = sh.Execute(`echo two >> /log.txt`)
	require.NoError(t, err)

	res, err := sh.Execute("cat /log.txt")
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\n", res.Output)
}

func TestShellPipeline(t *testing.T) {
	sh := newTestShell(t)

	_, err := sh.Execute(`echo apple > /fruit.txt`)
	require.NoError(t, err)
	_, err = sh.Execute(`echo banana >> /fruit.txt`)
	require.NoError(t, err)
	_, err = sh.Execute(`echo cherry >> /fruit.txt`)
	require.NoError(t, err)

	res, err := sh.Execute(`cat /fruit.txt | grep an`)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "banana\n", res.Output)
}

func TestShellGrepNoMatchFails(t *testing.T) {
	sh := newTestShell(t)
	_, _ = sh.Execute(`echo apple > /fruit.txt`)

	res, err := sh.Execute(`cat /fruit.txt | grep zzz`)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Empty(t, res.Output)
}

func TestShellChainConnectors(t *testing.T) {
	sh := newTestShell(t)

	res, err := sh.Execute(`mkdir /a && touch /a/f && echo made`)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "made\n", res.Output)

	res, err = sh.Execute(`rm /does-not-exist || echo recovered`)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "recovered\n", res.Output)
}

func TestShellCdAndPwd(t *testing.T) {
	sh := newTestShell(t)
	_, _ = sh.Execute("mkdir /a/b")

	res, err := sh.Execute("cd /a/b")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = sh.Execute("pwd")
	require.NoError(t, err)
	require.Equal(t, "/a/b\n", res.Output)
}

func TestShellOverlayCommands(t *testing.T) {
	sh := newTestShell(t)
	_, err := sh.Session.Overlays.Register("feature")
	require.NoError(t, err)

	res, err := sh.Execute("overlay.list")
	require.NoError(t, err)
	require.Contains(t, res.Output, "feature")

	res, err = sh.Execute("overlay.use feature")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 1, sh.Session.WD.PrimaryOverlay)

	res, err = sh.Execute("overlay.policy newest")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, vfs.ConflictNewest, sh.Session.WD.Policy)
}

func TestShellMountFsAndUnmount(t *testing.T) {
	sh := newTestShell(t)
	hostDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(hostDir, "hi.txt"), []byte("hi\n"), 0o644))

	res, err := sh.Execute("mount.fs /host " + hostDir)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = sh.Execute("ls /host")
	require.NoError(t, err)
	require.Contains(t, res.Output, "hi.txt")

	res, err = sh.Execute("unmount /host")
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestShellMountDeniedByPolicy(t *testing.T) {
	sh := newTestShell(t)
	sh.Session.Mounts.SetAllowed(false)

	res, err := sh.Execute("mount.fs /host " + t.TempDir())
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestShellHistory(t *testing.T) {
	sh := newTestShell(t)
	_, _ = sh.Execute("true")
	_, _ = sh.Execute("false")
	_, _ = sh.Execute("echo hi")

	res, err := sh.Execute("history")
	require.NoError(t, err)
	require.Contains(t, res.Output, "true")
	require.Contains(t, res.Output, "false")
	require.Contains(t, res.Output, "echo hi")
}

func TestShellAiAskEcho(t *testing.T) {
	sh := newTestShell(t)
	sh.Session.AI.SetProvider(vfs.EchoProvider{})

	res, err := sh.Execute("ai.ask what is this")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "what is this\n", res.Output)
}

func TestShellUnknownCommand(t *testing.T) {
	sh := newTestShell(t)
	res, err := sh.Execute("definitely-not-a-command")
	require.NoError(t, err)
	require.False(t, res.Success)
}
