package replline

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultHistoryPath lets an explicit env var win, as aicache.go does for CODEX_AI_CACHE_DIR, but falls
// back to a dotfile in the user's home directory (or the working directory if home is unknown) rather than
// aicache.go's relative cache/ai.
func defaultHistoryPath() string {
	if p := os.Getenv("CODEX_HISTORY_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codexvfs_history"
	}
	return filepath.Join(home, ".codexvfs_history")
}

// loadHistory reads one entry per line, skipping blanks, silently returning nil on a missing file (first
// run).
func loadHistory(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// saveHistory persists entries one per line, truncating to the last limit entries when limit > 0.
func saveHistory(path string, entries []string, limit int) error {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return os.WriteFile(path, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
}
