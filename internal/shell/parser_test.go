package shell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingleCommand(t *testing.T) {
	chain, err := Parse([]string{"ls", "/tmp"})
	require.NoError(t, err)
	require.Len(t, chain, 1)
	require.Equal(t, "", chain[0].Connector)
	require.Equal(t, []Command{{Name: "ls", Args: []string{"/tmp"}}}, chain[0].Pipeline.Commands)
	require.Nil(t, chain[0].Pipeline.Redirect)
}

func TestParsePipeline(t *testing.T) {
	chain, err := Parse([]string{"cat", "foo", "|", "grep", "bar", "|", "head", "-n", "3"})
	require.NoError(t, err)
	require.Len(t, chain, 1)
	require.Len(t, chain[0].Pipeline.Commands, 3)
	require.Equal(t, "head", chain[0].Pipeline.Commands[2].Name)
}

func TestParseChainConnectors(t *testing.T) {
	chain, err := Parse([]string{"mkdir", "a", "&&", "touch", "a/b", "||", "echo", "fail"})
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, "", chain[0].Connector)
	require.Equal(t, "&&", chain[1].Connector)
	require.Equal(t, "||", chain[2].Connector)
}

func TestParseRedirect(t *testing.T) {
	chain, err := Parse([]string{"echo", "hi", ">", "out.txt"})
	require.NoError(t, err)
	require.Len(t, chain, 1)
	require.NotNil(t, chain[0].Pipeline.Redirect)
	require.Equal(t, "out.txt", chain[0].Pipeline.Redirect.Path)
	require.False(t, chain[0].Pipeline.Redirect.Append)
}

func TestParseAppendRedirect(t *testing.T) {
	chain, err := Parse([]string{"echo", "hi", ">>", "out.txt"})
	require.NoError(t, err)
	require.True(t, chain[0].Pipeline.Redirect.Append)
}

func TestParseTrailingPipeIsError(t *testing.T) {
	_, err := Parse([]string{"cat", "foo", "|"})
	require.Error(t, err)
}

func TestParseDanglingConnectorIsError(t *testing.T) {
	_, err := Parse([]string{"echo", "hi", "&&"})
	require.Error(t, err)
}

func TestParseRedirectMustEndPipeline(t *testing.T) {
	_, err := Parse([]string{"echo", "hi", ">", "out.txt", "|", "cat"})
	require.Error(t, err)
}
