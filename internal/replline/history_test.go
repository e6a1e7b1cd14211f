package replline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	entries := []string{"mkdir /x", "ls /", "cat /x/a.txt"}
	if err := saveHistory(path, entries, 0); err != nil {
		t.Fatal(err)
	}
	got := loadHistory(path)
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i, e := range entries {
		if got[i] != e {
			t.Fatalf("entry %d: expected %q, got %q", i, e, got[i])
		}
	}
}

func TestHistorySaveTruncatesToLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	entries := []string{"a", "b", "c", "d", "e"}
	if err := saveHistory(path, entries, 2); err != nil {
		t.Fatal(err)
	}
	got := loadHistory(path)
	if len(got) != 2 || got[0] != "d" || got[1] != "e" {
		t.Fatalf("expected last two entries, got %v", got)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	got := loadHistory(filepath.Join(t.TempDir(), "nonexistent"))
	if got != nil {
		t.Fatalf("expected nil history for a missing file, got %v", got)
	}
}

func TestDefaultHistoryPathHonorsEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom_history")
	t.Setenv("CODEX_HISTORY_FILE", want)
	if got := defaultHistoryPath(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	_ = os.Getenv("CODEX_HISTORY_FILE")
}
