package shell

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/dustin/go-humanize"
)

// defaultRegistry builds the built-in command table of spec §4.10, plus the overlay/mount/autosave/AI/
// solution bridges SPEC_FULL.md §C adds on top of it.
func defaultRegistry() map[string]Handler {
	return map[string]Handler{
		"pwd":     cmdPwd,
		"cd":      cmdCd,
		"ls":      cmdLs,
		"tree":    cmdTree,
		"mkdir":   cmdMkdir,
		"touch":   cmdTouch,
		"rm":      cmdRm,
		"mv":      cmdMv,
		"link":    cmdLink,
		"cat":     cmdCat,
		"echo":    cmdEcho,
		"write":   cmdWrite,
		"kind":    cmdKind,
		"grep":    cmdGrep,
		"head":    cmdHead,
		"tail":    cmdTail,
		"uniq":    cmdUniq,
		"count":   cmdCount,
		"history": cmdHistory,
		"true":    cmdTrue,
		"false":   cmdFalse,
		"exec":    cmdExec,

		"cpp.tu":       cmdCppTu,
		"cpp.func":     cmdCppFunc,
		"cpp.print":    cmdCppPrint,
		"cpp.returni":  cmdCppReturni,
		"cpp.return":   cmdCppReturn,
		"cpp.vardecl":  cmdCppVardecl,
		"cpp.rangefor": cmdCppRangefor,
		"sexpr.new":    cmdSexprNew,

		"overlay.list":   cmdOverlayList,
		"overlay.use":    cmdOverlayUse,
		"overlay.policy": cmdOverlayPolicy,

		"mount.fs":     cmdMountFs,
		"mount.lib":    cmdMountLib,
		"mount.remote": cmdMountRemote,
		"unmount":      cmdUnmount,

		"autosave.status": cmdAutosaveStatus,
		"autosave.now":    cmdAutosaveNow,

		"ai.ask": cmdAiAsk,

		"snippet.list": cmdSnippetList,
		"snippet.get":  cmdSnippetGet,

		"solution.save": cmdSolutionSave,
		"solution.load": cmdSolutionLoad,
	}
}

func cmdPwd(sh *Shell, args []string, stdin string) Result {
	return okResult(sh.Session.WD.Path + "\n")
}

func cmdCd(sh *Shell, args []string, stdin string) Result {
	target := "/"
	if len(args) > 0 {
		target = args[0]
	}
	if err := sh.Session.WD.Cd(sh.Session.Overlays, target); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdLs renders listDir's overlay union: one line per entry, its Kind code, and the contributing overlay
// ids with the working directory's primary overlay marked '*'.
func cmdLs(sh *Shell, args []string, stdin string) Result {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	entries, err := sh.Session.ListDir(path)
	if err != nil {
		return errResult(err)
	}
	var b strings.Builder
	for _, e := range entries {
		ids := make([]string, len(e.Overlays))
		for i, id := range e.Overlays {
			if id == sh.Session.WD.PrimaryOverlay {
				ids[i] = strconv.Itoa(id) + "*"
			} else {
				ids[i] = strconv.Itoa(id)
			}
		}
		size := ""
		if e.Kind == vfs.KindFile {
			childPath := strings.TrimSuffix(path, "/") + "/" + e.Name
			if content, err := sh.Session.Read(nil, childPath); err == nil {
				size = humanize.Bytes(uint64(len(content)))
			}
		}
		fmt.Fprintf(&b, "%s %-24s %8s [%s]\n", e.Kind.String(), e.Name, size, strings.Join(ids, ","))
	}
	return okResult(b.String())
}

// cmdTree walks path's resolved node (the winning overlay under the current conflict policy) and renders
// one line per descendant, indented by depth, via the shared vfs.Walk traversal.
func cmdTree(sh *Shell, args []string, stdin string) Result {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	node, _, err := sh.Session.Resolve(path)
	if err != nil {
		return errResult(err)
	}
	normPath := vfs.Normalize(sh.Session.WD.Path, path)
	var b strings.Builder
	err = vfs.Walk(normPath, node, func(p string, n vfs.Node) error {
		depth := strings.Count(strings.TrimPrefix(p, normPath), "/")
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), n.Name())
		return nil
	})
	if err != nil {
		return errResult(err)
	}
	return okResult(b.String())
}

func cmdMkdir(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "mkdir: missing path"})
	}
	for _, p := range args {
		if err := sh.Session.Mkdir(nil, p); err != nil {
			return errResult(err)
		}
	}
	return okResult("")
}

func cmdTouch(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "touch: missing path"})
	}
	for _, p := range args {
		if err := sh.Session.Touch(nil, p); err != nil {
			return errResult(err)
		}
	}
	return okResult("")
}

func cmdRm(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "rm: missing path"})
	}
	for _, p := range args {
		if err := sh.Session.Rm(nil, p); err != nil {
			return errResult(err)
		}
	}
	return okResult("")
}

func cmdMv(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "mv: expected <src> <dst>"})
	}
	if err := sh.Session.Mv(nil, args[0], args[1]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdLink(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "link: expected <src> <dst>"})
	}
	if err := sh.Session.Link(nil, args[0], args[1]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCat reads zero or more paths, concatenating their content; with no paths it passes stdin through
// unchanged, per spec §4.10.
func cmdCat(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return okResult(stdin)
	}
	var b strings.Builder
	for _, p := range args {
		content, err := sh.Session.Read(nil, p)
		if err != nil {
			return errResult(err)
		}
		b.Write(content)
	}
	return okResult(b.String())
}

func cmdEcho(sh *Shell, args []string, stdin string) Result {
	return okResult(strings.Join(args, " ") + "\n")
}

// cmdWrite overwrites path with exactly the base64-decoded content, with no implicit trailing newline the
// way `echo ... > path` always adds one. It exists so a caller that must frame arbitrary bytes — including
// raw newlines or binary data — as a single EXEC argument (mount_remote.go's Write, which cannot rely on
// the line-oriented EXEC protocol to carry a literal newline byte) can round-trip content exactly.
func cmdWrite(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "write: expected <path> <base64-content>"})
	}
	content, err := base64.StdEncoding.DecodeString(args[1])
	if err != nil {
		return errResult(&vfs.UsageError{Message: "write: invalid base64 content"})
	}
	if err := sh.Session.Write(nil, args[0], content); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdKind reports path's resolved Kind as a single letter ('d','f','a','m','l'), letting a caller that
// cannot walk a local Node (mount_remote.go's IsDirectory, across an EXEC round trip) discriminate a path
// without listing its parent directory and hoping the entry is there.
func cmdKind(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "kind: expected <path>"})
	}
	node, _, err := sh.Session.Resolve(args[0])
	if err != nil {
		return errResult(err)
	}
	return okResult(node.Kind().String() + "\n")
}

// cmdGrep filters stdin (or the named path) to lines containing pattern, case-sensitively unless -i is
// given. A filter that matches nothing reports success=false with empty output, per spec's grep convention.
func cmdGrep(sh *Shell, args []string, stdin string) Result {
	insensitive := false
	if len(args) > 0 && args[0] == "-i" {
		insensitive = true
		args = args[1:]
	}
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "grep: missing pattern"})
	}
	pattern := args[0]
	text := stdin
	if len(args) > 1 {
		content, err := sh.Session.Read(nil, args[1])
		if err != nil {
			return errResult(err)
		}
		text = string(content)
	}
	needle := pattern
	if insensitive {
		needle = strings.ToLower(needle)
	}
	var out []string
	for _, line := range splitLines(text) {
		hay := line
		if insensitive {
			hay = strings.ToLower(hay)
		}
		if strings.Contains(hay, needle) {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return Result{Success: false}
	}
	return okResult(strings.Join(out, "\n") + "\n")
}

func cmdHead(sh *Shell, args []string, stdin string) Result {
	n, rest, err := parseDashN(args, 10)
	if err != nil {
		return errResult(err)
	}
	text := stdin
	if len(rest) > 0 {
		content, rerr := sh.Session.Read(nil, rest[0])
		if rerr != nil {
			return errResult(rerr)
		}
		text = string(content)
	}
	lines := splitLines(text)
	if n > len(lines) {
		n = len(lines)
	}
	return okResult(strings.Join(lines[:n], "\n") + terminatorIfAny(lines[:n]))
}

func cmdTail(sh *Shell, args []string, stdin string) Result {
	n, rest, err := parseDashN(args, 10)
	if err != nil {
		return errResult(err)
	}
	text := stdin
	if len(rest) > 0 {
		content, rerr := sh.Session.Read(nil, rest[0])
		if rerr != nil {
			return errResult(rerr)
		}
		text = string(content)
	}
	lines := splitLines(text)
	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	return okResult(strings.Join(lines[start:], "\n") + terminatorIfAny(lines[start:]))
}

func parseDashN(args []string, def int) (int, []string, error) {
	n := def
	rest := args
	if len(args) > 0 && args[0] == "-n" {
		if len(args) < 2 {
			return 0, nil, &vfs.UsageError{Message: "-n requires a count"}
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, nil, &vfs.UsageError{Message: "-n: invalid count " + args[1]}
		}
		n = v
		rest = args[2:]
	}
	return n, rest, nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func terminatorIfAny(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return "\n"
}

func cmdUniq(sh *Shell, args []string, stdin string) Result {
	text := stdin
	if len(args) > 0 {
		content, err := sh.Session.Read(nil, args[0])
		if err != nil {
			return errResult(err)
		}
		text = string(content)
	}
	lines := splitLines(text)
	var out []string
	for i, l := range lines {
		if i == 0 || l != lines[i-1] {
			out = append(out, l)
		}
	}
	return okResult(strings.Join(out, "\n") + terminatorIfAny(out))
}

func cmdCount(sh *Shell, args []string, stdin string) Result {
	text := stdin
	if len(args) > 0 {
		content, err := sh.Session.Read(nil, args[0])
		if err != nil {
			return errResult(err)
		}
		text = string(content)
	}
	return okResult(strconv.Itoa(len(splitLines(text))) + "\n")
}

// cmdHistory reports the shell's in-process command history: -a for everything, -n N for the last N
// entries, bare for everything (the same default as -a).
func cmdHistory(sh *Shell, args []string, stdin string) Result {
	entries := sh.History
	if len(args) > 0 && args[0] == "-n" {
		if len(args) < 2 {
			return errResult(&vfs.UsageError{Message: "-n requires a count"})
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errResult(&vfs.UsageError{Message: "-n: invalid count " + args[1]})
		}
		start := len(entries) - n
		if start < 0 {
			start = 0
		}
		entries = entries[start:]
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return okResult(b.String())
}

func cmdTrue(sh *Shell, args []string, stdin string) Result  { return Result{Success: true} }
func cmdFalse(sh *Shell, args []string, stdin string) Result { return Result{Success: false} }

func cmdOverlayList(sh *Shell, args []string, stdin string) Result {
	var b strings.Builder
	for _, ov := range sh.Session.Overlays.All() {
		dirty := " "
		if ov.Dirty() {
			dirty = "*"
		}
		fmt.Fprintf(&b, "%d %s%s %s\n", ov.ID, ov.Name, dirty, ov.Source())
	}
	return okResult(b.String())
}

// cmdOverlayUse pins the working directory's primary overlay to the named overlay, overriding the
// highest-id default recomputeIntersection picks until the next cd.
func cmdOverlayUse(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "overlay.use: expected <name>"})
	}
	ov := sh.Session.Overlays.ByName(args[0])
	if ov == nil {
		return errResult(&vfs.NotFoundError{Path: "overlay:" + args[0]})
	}
	sh.Session.WD.PrimaryOverlay = ov.ID
	return okResult("")
}

func cmdOverlayPolicy(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "overlay.policy: expected manual|oldest|newest"})
	}
	switch args[0] {
	case "manual":
		sh.Session.WD.Policy = vfs.ConflictManual
	case "oldest":
		sh.Session.WD.Policy = vfs.ConflictOldest
	case "newest":
		sh.Session.WD.Policy = vfs.ConflictNewest
	default:
		return errResult(&vfs.UsageError{Message: "overlay.policy: unknown policy " + args[0]})
	}
	return okResult("")
}

func cmdMountFs(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "mount.fs: expected <path> <host-path>"})
	}
	if err := sh.Session.MountFs(nil, args[0], args[1]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdMountLib(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "mount.lib: expected <path> <host-path>"})
	}
	if err := sh.Session.MountLib(nil, args[0], args[1]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdMountRemote(sh *Shell, args []string, stdin string) Result {
	if len(args) != 3 {
		return errResult(&vfs.UsageError{Message: "mount.remote: expected <path> <host:port> <remote-path>"})
	}
	if err := sh.Session.MountRemote(nil, args[0], args[1], args[2]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdUnmount(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "unmount: expected <path>"})
	}
	if err := sh.Session.Unmount(nil, args[0]); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdAutosaveStatus(sh *Shell, args []string, stdin string) Result {
	st := sh.Session.Autosave.Status()
	ids := make([]string, len(st.Tracked))
	for i, id := range st.Tracked {
		ids[i] = strconv.Itoa(id)
	}
	sort.Strings(ids)
	out := fmt.Sprintf("enabled=%t debounce=%s recovery=%s tracked=[%s]\n",
		st.Enabled, st.Debounce, st.RecoveryInterval, strings.Join(ids, ","))
	return okResult(out)
}

func cmdAutosaveNow(sh *Shell, args []string, stdin string) Result {
	id := sh.Session.WD.PrimaryOverlay
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return errResult(&vfs.UsageError{Message: "autosave.now: invalid overlay id " + args[0]})
		}
		id = v
	}
	if err := sh.Session.Autosave.ForceSave(id); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdAiAsk sends prompt (joined args, or the content of -f <path>) through the session's AI cache.
func cmdAiAsk(sh *Shell, args []string, stdin string) Result {
	var prompt string
	if len(args) >= 2 && args[0] == "-f" {
		content, err := sh.Session.Read(nil, args[1])
		if err != nil {
			return errResult(err)
		}
		prompt = string(content)
	} else if len(args) > 0 {
		prompt = strings.Join(args, " ")
	} else {
		prompt = stdin
	}
	resp, err := sh.Session.AI.Ask(prompt)
	if err != nil {
		return errResult(err)
	}
	return okResult(resp + "\n")
}

func cmdSnippetList(sh *Shell, args []string, stdin string) Result {
	if sh.SnippetDir == "" {
		return errResult(&vfs.UsageError{Message: "CODEX_SNIPPET_DIR is not set"})
	}
	entries, err := os.ReadDir(sh.SnippetDir)
	if err != nil {
		return errResult(&vfs.ExternalError{Source: "snippet dir " + sh.SnippetDir, Cause: err})
	}
	var b strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b.WriteString(e.Name())
		b.WriteByte('\n')
	}
	return okResult(b.String())
}

func cmdSnippetGet(sh *Shell, args []string, stdin string) Result {
	if sh.SnippetDir == "" {
		return errResult(&vfs.UsageError{Message: "CODEX_SNIPPET_DIR is not set"})
	}
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "snippet.get: expected <name>"})
	}
	content, err := os.ReadFile(filepath.Join(sh.SnippetDir, args[0]))
	if err != nil {
		return errResult(&vfs.ExternalError{Source: "snippet " + args[0], Cause: err})
	}
	return okResult(string(content))
}

func cmdSolutionSave(sh *Shell, args []string, stdin string) Result {
	if err := sh.Session.SaveSolution(); err != nil {
		return errResult(err)
	}
	return okResult("")
}

func cmdSolutionLoad(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "solution.load: expected <path>"})
	}
	if err := sh.Session.LoadSolution(args[0], true); err != nil {
		return errResult(err)
	}
	return okResult("")
}
