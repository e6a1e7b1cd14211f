package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCmdExecCapturesOutput(t *testing.T) {
	sh := newTestShell(t)
	result, err := sh.Execute("exec echo hi-from-subprocess")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, strings.Contains(result.Output, "hi-from-subprocess"))
}

func TestCmdExecReportsNonZeroExit(t *testing.T) {
	sh := newTestShell(t)
	result, err := sh.Execute("exec false")
	require.NoError(t, err)
	require.False(t, result.Success)
}

func TestCmdExecRequiresArgs(t *testing.T) {
	sh := newTestShell(t)
	result, err := sh.Execute("exec")
	require.NoError(t, err)
	require.False(t, result.Success)
}
