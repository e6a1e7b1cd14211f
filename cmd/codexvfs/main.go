// Command codexvfs is the REPL/script driver of spec §6: it boots a session, optionally loads a solution
// overlay or runs a script, optionally serves the remote-exec daemon, and otherwise reads commands from the
// terminal until EOF or an explicit exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
	"github.com/OuluBSD/VfsBoot-sub001/internal/daemon"
	"github.com/OuluBSD/VfsBoot-sub001/internal/replline"
	"github.com/OuluBSD/VfsBoot-sub001/internal/shell"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	solutionFlag string
	daemonAddr   string
	scriptFlag   string
)

// errScriptFailed signals a non-interactive script run whose last chain entry failed, per spec §6's exit
// code rule ("nonzero... if the process was invoked as a script and the last chain entry failed").
var errScriptFailed = fmt.Errorf("script: last chain entry failed")

var rootCmd = &cobra.Command{
	Use:   "codexvfs [solution-or-script]",
	Short: "codexvfs: overlay-structured virtual filesystem shell",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&solutionFlag, "solution", "", "solution overlay file to load (.vfs/.cxpkg/.cxasm)")
	rootCmd.Flags().StringVar(&daemonAddr, "daemon", "", "host:port to serve the remote-exec daemon on")
	rootCmd.Flags().StringVar(&scriptFlag, "script", "", "host script file to run before any interactive input")
}

func run(args []string) error {
	log := logrus.New()

	// A .env file beside the binary/cwd can set CODEX_AI_CACHE_DIR, CODEX_SNIPPET_DIR, CODEX_HISTORY_FILE
	// etc. without polluting the real environment; absence is not an error.
	_ = godotenv.Load()

	solutionPath := solutionFlag
	scriptPath := scriptFlag
	fallThrough := false

	// A bare positional argument is sniffed per spec §6: a recognized solution extension makes it
	// --solution, otherwise it is treated as --script.
	if len(args) > 0 {
		positional := args[0]
		if positional == "-" {
			fallThrough = true
		} else if vfs.HasSolutionExtension(positional) {
			if solutionPath == "" {
				solutionPath = positional
			}
		} else if scriptPath == "" {
			scriptPath = positional
		}
	}

	session := vfs.NewSession(log)
	session.Autosave.Start(context.Background())
	defer session.Autosave.Stop()

	if solutionPath != "" {
		if err := session.LoadSolution(solutionPath, true); err != nil {
			return fmt.Errorf("loading solution %s: %w", solutionPath, err)
		}
	} else if autodetected := detectSolutionBesideCwd(); autodetected != "" {
		if err := session.LoadSolution(autodetected, false); err != nil {
			log.WithError(err).Warn("codexvfs: failed to auto-load detected solution file")
		}
	}

	sh := shell.New(session)

	if daemonAddr != "" {
		srv := &daemon.Server{Session: session, Log: log}
		if err := srv.Listen(daemonAddr); err != nil {
			return err
		}
		log.Infof("codexvfs: daemon listening on %s", srv.Addr())
		go func() {
			if err := srv.Serve(); err != nil {
				log.WithError(err).Error("codexvfs: daemon stopped")
			}
		}()
	}

	if scriptPath != "" {
		ok, err := runScript(sh, scriptPath)
		if err != nil {
			return err
		}
		if !fallThrough {
			promptSaveIfDirty(session, os.Stdin)
			if !ok {
				return errScriptFailed
			}
			return nil
		}
	}

	runInteractive(session, sh, os.Stdin, os.Stdout)
	promptSaveIfDirty(session, os.Stdin)
	return nil
}

// detectSolutionBesideCwd implements spec §4.11's startup auto-detect: the first file in the current
// directory whose extension matches a recognized solution extension.
func detectSolutionBesideCwd() string {
	entries, err := os.ReadDir(".")
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if vfs.HasSolutionExtension(e.Name()) {
			return filepath.Join(".", e.Name())
		}
	}
	return ""
}

// runScript reads path line by line and executes each through sh, stopping (and reporting failure) at the
// first chain entry whose Result reports success=false, per spec §6's exit-code rule for scripted runs.
func runScript(sh *shell.Shell, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading script %s: %w", path, err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result, err := sh.Execute(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false, nil
		}
		fmt.Print(result.Output)
		if result.Exit {
			return true, nil
		}
		if !result.Success {
			return false, nil
		}
	}
	return true, nil
}

// runInteractive drives the REPL loop through internal/replline's Editor, which on a terminal provides the
// raw-mode editor (history navigation, in-line editing, the F3/ESC-O-R save shortcut) and on piped or
// redirected stdin transparently falls back to line-buffered reads (spec §4.10).
func runInteractive(session *vfs.Session, sh *shell.Shell, in *os.File, out *os.File) {
	ed := replline.New(in, out)
	defer func() {
		if err := ed.Close(); err != nil {
			fmt.Fprintln(out, err)
		}
	}()
	ed.OnShortcut = func() error { return session.SaveSolution() }

	for {
		line, err := ed.ReadLine("codexvfs> ")
		if err != nil {
			return
		}
		result, err := sh.Execute(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprint(out, result.Output)
		if result.Exit {
			return
		}
	}
}

// promptSaveIfDirty implements spec §4.11's exit-time prompt for a dirty solution overlay.
func promptSaveIfDirty(session *vfs.Session, in *os.File) {
	if session.SolutionState().String() != "dirty" {
		return
	}
	fmt.Fprint(os.Stdout, "Save changes? [y/N] ")
	reader := bufio.NewReader(in)
	answer, _ := reader.ReadString('\n')
	if strings.EqualFold(strings.TrimSpace(answer), "y") {
		if err := session.SaveSolution(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
