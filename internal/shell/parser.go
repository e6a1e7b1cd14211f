package shell

import vfs "github.com/OuluBSD/VfsBoot-sub001"

// Command is one name-plus-arguments invocation within a Pipeline.
type Command struct {
	Name string
	Args []string
}

// Redirect is a pipeline's trailing `>`/`>>` target, normalized against the working directory at parse
// time is deliberately NOT done here: the executor resolves it against whatever overlay/path state holds
// at the moment the pipeline actually runs.
type Redirect struct {
	Path   string
	Append bool
}

// Pipeline is an ordered list of commands joined by `|`, plus an optional output redirect.
type Pipeline struct {
	Commands []Command
	Redirect *Redirect
}

// ChainEntry is one pipeline plus the logical connector ("", "&&", "||") that decides, relative to the
// previous entry's outcome, whether the executor runs it at all.
type ChainEntry struct {
	Connector string
	Pipeline  Pipeline
}

// Parse consumes tokens produced by Tokenize and returns the ordered chain of pipelines described in spec
// §4.10. A trailing `|` or a `&&`/`||` with nothing following it is a *vfs.UsageError.
func Parse(tokens []string) ([]ChainEntry, error) {
	var entries []ChainEntry
	connector := ""
	i := 0
	for i < len(tokens) {
		pipeline, next, err := parsePipeline(tokens, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ChainEntry{Connector: connector, Pipeline: pipeline})
		i = next
		if i >= len(tokens) {
			break
		}
		switch tokens[i] {
		case "&&", "||":
			connector = tokens[i]
			i++
			if i >= len(tokens) {
				return nil, &vfs.UsageError{Message: "'" + connector + "' must be followed by a command"}
			}
		default:
			return nil, &vfs.UsageError{Message: "unexpected token " + tokens[i]}
		}
	}
	return entries, nil
}

// parsePipeline reads one pipeline starting at tokens[start]: a run of `|`-joined commands, optionally
// terminated by a `>`/`>>` redirect, stopping at the first `&&`/`||` or end of input. It returns the index
// of the first unconsumed token.
func parsePipeline(tokens []string, start int) (Pipeline, int, error) {
	var pl Pipeline
	i := start
	for {
		var words []string
		for i < len(tokens) && !isOperator(tokens[i]) {
			words = append(words, tokens[i])
			i++
		}
		if len(words) == 0 {
			return pl, i, &vfs.UsageError{Message: "expected a command"}
		}
		pl.Commands = append(pl.Commands, Command{Name: words[0], Args: words[1:]})

		if i >= len(tokens) {
			return pl, i, nil
		}

		switch tokens[i] {
		case "|":
			i++
			if i >= len(tokens) || isOperator(tokens[i]) {
				return pl, i, &vfs.UsageError{Message: "trailing '|'"}
			}
		case ">", ">>":
			appendMode := tokens[i] == ">>"
			i++
			if i >= len(tokens) {
				return pl, i, &vfs.UsageError{Message: "missing redirect target"}
			}
			target := tokens[i]
			i++
			pl.Redirect = &Redirect{Path: target, Append: appendMode}
			if i < len(tokens) && (tokens[i] == "|" || tokens[i] == ">" || tokens[i] == ">>") {
				return pl, i, &vfs.UsageError{Message: "redirect must end the pipeline"}
			}
			return pl, i, nil
		default: // "&&" or "||"
			return pl, i, nil
		}
	}
}
