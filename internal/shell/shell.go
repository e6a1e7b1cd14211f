package shell

import (
	"os"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
)

// Result is the (success, exit-request, captured-output) tuple spec §4.10 requires of every built-in.
type Result struct {
	Success bool
	Exit    bool
	Output  string
}

// Handler is a built-in command's implementation: args are the command's own tokens (name excluded), stdin
// is the previous pipeline stage's captured output (empty for the first stage).
type Handler func(sh *Shell, args []string, stdin string) Result

// Shell is the command-pipeline driver bound to one *vfs.Session: it owns the built-in registry, the
// in-process command history the `history` builtin reports, and the snippet directory the AI bridge
// commands read from.
type Shell struct {
	Session    *vfs.Session
	History    []string
	SnippetDir string

	registry map[string]Handler
}

// New creates a Shell over session with the default built-in table installed.
func New(session *vfs.Session) *Shell {
	sh := &Shell{
		Session:    session,
		SnippetDir: os.Getenv("CODEX_SNIPPET_DIR"),
	}
	sh.registry = defaultRegistry()
	return sh
}

// Register installs or overrides a single built-in, for embedders that want to extend the command table.
func (sh *Shell) Register(name string, h Handler) {
	sh.registry[name] = h
}

// Execute tokenizes, parses, and runs one input line, appending it to History first regardless of outcome
// (spec §4.10: history is persisted independent of whether the line ran cleanly).
func (sh *Shell) Execute(line string) (Result, error) {
	sh.History = append(sh.History, line)

	tokens, err := Tokenize(line)
	if err != nil {
		return Result{}, err
	}
	if len(tokens) == 0 {
		return Result{Success: true}, nil
	}
	chain, err := Parse(tokens)
	if err != nil {
		return Result{}, err
	}

	last := Result{Success: true}
	for _, entry := range chain {
		if entry.Connector == "&&" && !last.Success {
			continue
		}
		if entry.Connector == "||" && last.Success {
			continue
		}
		last = sh.runPipeline(entry.Pipeline)
		if last.Exit {
			return last, nil
		}
	}
	return last, nil
}

// runPipeline runs every command in p in sequence, threading each stage's captured output into the next
// as "stdin", and finally honoring p.Redirect if set. A failed last stage skips the redirect, so its
// error text reaches the caller instead of the target file.
func (sh *Shell) runPipeline(p Pipeline) Result {
	stdin := ""
	result := Result{Success: true}
	for _, cmd := range p.Commands {
		handler, ok := sh.registry[cmd.Name]
		if !ok {
			return Result{Success: false, Output: "unknown command: " + cmd.Name + "\n"}
		}
		result = handler(sh, cmd.Args, stdin)
		stdin = result.Output
	}

	if p.Redirect != nil && result.Success {
		if err := sh.writeRedirect(*p.Redirect, result.Output); err != nil {
			return Result{Success: false, Output: err.Error() + "\n"}
		}
		result.Output = ""
	}
	return result
}

func (sh *Shell) writeRedirect(r Redirect, captured string) error {
	content := []byte(captured)
	if r.Append {
		if existing, err := sh.Session.Read(nil, r.Path); err == nil {
			content = append(existing, content...)
		}
	}
	return sh.Session.Write(nil, r.Path, content)
}

func errResult(err error) Result {
	return Result{Success: false, Output: err.Error() + "\n"}
}

func okResult(output string) Result {
	return Result{Success: true, Output: output}
}
