// Package shell implements the command pipeline of spec §4.10: a tokenizer, a chain/pipeline parser, an
// executor, and the built-in command table, all driving a *vfs.Session.
package shell

import (
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
)

// operators are the unquoted multi- and single-character tokens the tokenizer recognizes outside of quotes.
var operators = []string{"||", "&&", ">>", "|", ">"}

// Tokenize splits line into tokens following spec §4.10: single and double quotes group whitespace and
// operator characters into one token, a backslash escapes exactly the next character outside single
// quotes, and `|`, `||`, `&&`, `>`, `>>` are tokens in their own right when they appear unquoted. An
// unterminated quote or a trailing backslash is a *vfs.UsageError.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var buf strings.Builder
	hasToken := false
	runes := []rune(line)
	i := 0

	flush := func() {
		if hasToken {
			tokens = append(tokens, buf.String())
			buf.Reset()
			hasToken = false
		}
	}

	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '\'':
			hasToken = true
			i++
			for {
				if i >= len(runes) {
					return nil, &vfs.UsageError{Message: "unterminated single quote"}
				}
				if runes[i] == '\'' {
					i++
					break
				}
				buf.WriteRune(runes[i])
				i++
			}
		case c == '"':
			hasToken = true
			i++
			for {
				if i >= len(runes) {
					return nil, &vfs.UsageError{Message: "unterminated double quote"}
				}
				if runes[i] == '"' {
					i++
					break
				}
				if runes[i] == '\\' {
					i++
					if i >= len(runes) {
						return nil, &vfs.UsageError{Message: "trailing backslash"}
					}
					buf.WriteRune(runes[i])
					i++
					continue
				}
				buf.WriteRune(runes[i])
				i++
			}
		case c == '\\':
			i++
			if i >= len(runes) {
				return nil, &vfs.UsageError{Message: "trailing backslash"}
			}
			buf.WriteRune(runes[i])
			hasToken = true
			i++
		case c == ' ' || c == '\t':
			flush()
			i++
		case c == '|':
			flush()
			if i+1 < len(runes) && runes[i+1] == '|' {
				tokens = append(tokens, "||")
				i += 2
			} else {
				tokens = append(tokens, "|")
				i++
			}
		case c == '&':
			flush()
			if i+1 < len(runes) && runes[i+1] == '&' {
				tokens = append(tokens, "&&")
				i += 2
			} else {
				return nil, &vfs.UsageError{Message: "unsupported operator '&'"}
			}
		case c == '>':
			flush()
			if i+1 < len(runes) && runes[i+1] == '>' {
				tokens = append(tokens, ">>")
				i += 2
			} else {
				tokens = append(tokens, ">")
				i++
			}
		default:
			buf.WriteRune(c)
			hasToken = true
			i++
		}
	}
	flush()
	return tokens, nil
}

func isOperator(tok string) bool {
	for _, op := range operators {
		if tok == op {
			return true
		}
	}
	return false
}
