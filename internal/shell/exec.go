package shell

import (
	"io"
	"os/exec"
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/creack/pty"
)

// cmdExec is spec.md's "subprocess capture" leaf adapter: it runs args joined as a host shell command
// through a pty (so line-buffered tools behave as they would in an interactive terminal) and captures
// everything written until the process exits, grounded on original_source/VfsShell/utils.cpp's
// exec_capture and on riverlytech-art/pkg/supervisor/supervisor.go's pty.Start/io.Copy pattern. Per spec
// §4.10's cancellation note, a running exec cannot be interrupted mid-flight from this shell.
func cmdExec(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "usage: exec <command> [args...]"})
	}
	cmd := exec.Command("sh", "-c", strings.Join(args, " "))
	f, err := pty.Start(cmd)
	if err != nil {
		return errResult(&vfs.ExternalError{Source: "exec " + args[0], Cause: err})
	}
	defer f.Close()

	var out strings.Builder
	_, _ = io.Copy(&out, f)
	err = cmd.Wait()
	if err != nil {
		return Result{Success: false, Output: out.String()}
	}
	return Result{Success: true, Output: out.String()}
}
