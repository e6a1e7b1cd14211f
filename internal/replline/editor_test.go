package replline

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newPipeEditor(t *testing.T) (*Editor, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })

	var out bytes.Buffer
	e := &Editor{
		In:          r,
		Out:         &out,
		HistoryPath: filepath.Join(t.TempDir(), "history"),
		HistoryMax:  100,
	}
	e.reader = bufio.NewReader(r)
	return e, w
}

func TestEditorNotInteractiveOverPipe(t *testing.T) {
	e, w := newPipeEditor(t)
	defer w.Close()
	if e.IsInteractive() {
		t.Fatal("expected a pipe to report as non-interactive")
	}
}

func TestEditorReadLineFallbackOverPipe(t *testing.T) {
	e, w := newPipeEditor(t)
	go func() {
		_, _ = io.WriteString(w, "mkdir /x\n")
		w.Close()
	}()

	line, err := e.ReadLine("codexvfs> ")
	if err != nil {
		t.Fatal(err)
	}
	if line != "mkdir /x" {
		t.Fatalf("expected %q, got %q", "mkdir /x", line)
	}
	if len(e.history) != 1 || e.history[0] != "mkdir /x" {
		t.Fatalf("expected history to record the line, got %v", e.history)
	}
}

func TestEditorReadLineEOFOverPipe(t *testing.T) {
	e, w := newPipeEditor(t)
	w.Close()

	_, err := e.ReadLine("codexvfs> ")
	if err == nil {
		t.Fatal("expected an error reading from a closed pipe")
	}
}

func TestEditorCloseSavesHistory(t *testing.T) {
	e, w := newPipeEditor(t)
	defer w.Close()
	e.history = []string{"ls /", "pwd"}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	got := loadHistory(e.HistoryPath)
	if len(got) != 2 || got[0] != "ls /" || got[1] != "pwd" {
		t.Fatalf("expected saved history to round-trip, got %v", got)
	}
}
