package shell

import (
	"testing"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/stretchr/testify/require"
)

func seedLines(t *testing.T, sh *Shell, path string, lines ...string) {
	t.Helper()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, sh.Session.Touch(nil, path))
	require.NoError(t, sh.Session.Write(nil, path, []byte(content)))
}

func TestCmdHead(t *testing.T) {
	sh := newTestShell(t)
	seedLines(t, sh, "/lines.txt", "1", "2", "3", "4", "5")

	res, err := sh.Execute("head -n 2 /lines.txt")
	require.NoError(t, err)
	require.Equal(t, "1\n2\n", res.Output)
}

func TestCmdTail(t *testing.T) {
	sh := newTestShell(t)
	seedLines(t, sh, "/lines.txt", "1", "2", "3", "4", "5")

	res, err := sh.Execute("tail -n 2 /lines.txt")
	require.NoError(t, err)
	require.Equal(t, "4\n5\n", res.Output)
}

func TestCmdUniq(t *testing.T) {
	sh := newTestShell(t)
	seedLines(t, sh, "/dup.txt", "a", "a", "b", "b", "b", "c")

	res, err := sh.Execute("uniq /dup.txt")
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\n", res.Output)
}

func TestCmdCount(t *testing.T) {
	sh := newTestShell(t)
	seedLines(t, sh, "/lines.txt", "1", "2", "3")

	res, err := sh.Execute("count /lines.txt")
	require.NoError(t, err)
	require.Equal(t, "3\n", res.Output)
}

func TestCmdGrepCaseInsensitive(t *testing.T) {
	sh := newTestShell(t)
	seedLines(t, sh, "/words.txt", "Apple", "banana", "Cherry")

	res, err := sh.Execute("grep -i apple /words.txt")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "Apple\n", res.Output)
}

func TestSolutionSaveLoadRoundTrip(t *testing.T) {
	sh := newTestShell(t)
	path := t.TempDir() + "/sol.vfs"

	require.NoError(t, sh.Session.Mkdir(nil, "/proj"))
	require.NoError(t, sh.Session.Touch(nil, "/proj/a.txt"))
	require.NoError(t, sh.Session.Write(nil, "/proj/a.txt", []byte("hello")))
	require.NoError(t, vfs.WriteContainerFile(path, sh.Session.Overlays.Base(), nil))

	res, err := sh.Execute("solution.load " + path)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.GreaterOrEqual(t, sh.Session.SolutionOverlay(), 1)

	res, err = sh.Execute("solution.save")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "saved", sh.Session.SolutionState().String())
}

func TestCmdAutosaveStatus(t *testing.T) {
	sh := newTestShell(t)
	res, err := sh.Execute("autosave.status")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.Output, "enabled=")
}
