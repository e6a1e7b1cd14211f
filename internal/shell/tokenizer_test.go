package shell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeBasic(t *testing.T) {
	toks, err := Tokenize(`ls /tmp/foo`)
	require.NoError(t, err)
	require.Equal(t, []string{"ls", "/tmp/foo"}, toks)
}

func TestTokenizeQuotes(t *testing.T) {
	toks, err := Tokenize(`echo "hello world" 'a b' plain`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "hello world", "a b", "plain"}, toks)
}

func TestTokenizeEscape(t *testing.T) {
	toks, err := Tokenize(`echo a\ b`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "a b"}, toks)
}

func TestTokenizeEscapeInDoubleQuotes(t *testing.T) {
	toks, err := Tokenize(`echo "a\"b"`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", `a"b`}, toks)
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize(`cat foo | grep bar && echo ok || echo fail > out.txt`)
	require.NoError(t, err)
	require.Equal(t, []string{
		"cat", "foo", "|", "grep", "bar", "&&", "echo", "ok",
		"||", "echo", "fail", ">", "out.txt",
	}, toks)
}

func TestTokenizeAppendRedirect(t *testing.T) {
	toks, err := Tokenize(`echo hi >> log.txt`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "hi", ">>", "log.txt"}, toks)
}

func TestTokenizeUnterminatedSingleQuote(t *testing.T) {
	_, err := Tokenize(`echo 'oops`)
	require.Error(t, err)
}

func TestTokenizeUnterminatedDoubleQuote(t *testing.T) {
	_, err := Tokenize(`echo "oops`)
	require.Error(t, err)
}

func TestTokenizeTrailingBackslash(t *testing.T) {
	_, err := Tokenize(`echo oops\`)
	require.Error(t, err)
}

func TestTokenizeLoneAmpersand(t *testing.T) {
	_, err := Tokenize(`echo hi &`)
	require.Error(t, err)
}
