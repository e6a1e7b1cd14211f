package vfs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	digest "github.com/opencontainers/go-digest"
)

const containerVersion = 3

// WriteContainer serializes ov to w in container format v3 (spec §4.7): a header line, an optional hash
// line, then one record per Dir/File/Ast node in depth-first, name-sorted order. Mount and Library nodes
// are not persisted; they are re-established by remounting.
func WriteContainer(w io.Writer, ov *Overlay) error {
	var body bytes.Buffer
	if err := writeContainerChildren(&body, ov.Root, "/"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "# codex-vfs-overlay %d\n", containerVersion); err != nil {
		return err
	}
	if ov.Source() != "" {
		h := digest.FromBytes(body.Bytes())
		if _, err := fmt.Fprintf(w, "H %s %s\n", ov.Source(), h.Encoded()); err != nil {
			return err
		}
	}
	_, err := w.Write(body.Bytes())
	return err
}

// writeContainerChildren emits records for every child of dir (which may be a Dir or any other Container),
// in name order, recursing depth-first. The container root itself never gets a record: only its children
// and deeper descendants do, since path "/" always implicitly exists.
func writeContainerChildren(buf *bytes.Buffer, dir Node, path string) error {
	children, err := dir.Children()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := children[name]
		childPath := Path(path).Child(name).String()
		if err := writeContainerNode(buf, child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func writeContainerNode(buf *bytes.Buffer, n Node, path string) error {
	switch n.Kind() {
	case KindDir:
		fmt.Fprintf(buf, "D %s\n", path)
		return writeContainerChildren(buf, n, path)
	case KindFile:
		content, err := n.Read()
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "F %s %d\n", path, len(content))
		buf.Write(content)
		buf.WriteByte('\n')
		return nil
	case KindAst:
		an, ok := n.(astNode)
		if !ok {
			return &FormatError{Detail: fmt.Sprintf("%s: Ast node does not implement astNode", path)}
		}
		payload := an.encodeAst(path)
		fmt.Fprintf(buf, "A %s %s %d\n", path, an.astTypeTag(), len(payload))
		buf.Write(payload)
		buf.WriteByte('\n')
		return writeContainerChildren(buf, n, path)
	default:
		// Mount and Library nodes are transient; skip.
		return nil
	}
}

// WriteContainerFile writes ov to path, first copying any existing file at path into a timestamped backup
// under a ".vfsh" sibling directory, then writing the new content to a temporary file and renaming it into
// place so a crash mid-write never leaves path partially overwritten.
func WriteContainerFile(path string, ov *Overlay, nowFunc func() time.Time) error {
	if _, err := os.Stat(path); err == nil {
		if err := backupContainerFile(path, nowFunc); err != nil {
			return &ExternalError{Source: "container backup", Cause: err}
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".vfs-write-*")
	if err != nil {
		return &ExternalError{Source: "container write", Cause: err}
	}
	tmpName := tmp.Name()
	if err := WriteContainer(tmp, ov); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExternalError{Source: "container write", Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExternalError{Source: "container write", Cause: err}
	}
	return nil
}

func backupContainerFile(path string, nowFunc func() time.Time) error {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	vfshDir := filepath.Join(filepath.Dir(path), ".vfsh")
	if err := os.MkdirAll(vfshDir, 0o755); err != nil {
		return err
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stamp := nowFunc().Format("2006-01-02-150405")
	backupName := fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp)
	return os.WriteFile(filepath.Join(vfshDir, backupName), existing, 0o644)
}

// ReadContainerFile reads the container at path into ov's root (which must be empty), running the full
// two-phase structural-then-fixup algorithm of spec §4.7.
func ReadContainerFile(path string, ov *Overlay) error {
	f, err := os.Open(path)
	if err != nil {
		return &ExternalError{Source: "container read", Cause: err}
	}
	defer silentClose(f)
	return ReadContainer(f, ov)
}

// ReadContainer parses r as a container and populates ov.Root in place.
func ReadContainer(r io.Reader, ov *Overlay) error {
	cr := &containerReader{br: bufio.NewReader(r)}

	version, err := cr.readHeader()
	if err != nil {
		return err
	}

	var hashPath, hashHex string
	if version >= 3 {
		hashPath, hashHex, err = cr.maybeReadHashLine()
		if err != nil {
			return err
		}
	}

	nodesByPath := map[string]Node{"/": ov.Root}
	var fixups []astFixup

	for {
		tag, rest, ok, err := cr.readRecordHeader()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch tag {
		case "D":
			path, err := parseDirHeader(rest)
			if err != nil {
				return cr.formatErr(err.Error())
			}
			if err := containerEnsureDir(ov.Root, path, nodesByPath); err != nil {
				return err
			}
		case "F":
			path, size, err := parseSizedHeader(rest)
			if err != nil {
				return cr.formatErr(err.Error())
			}
			content, err := cr.readPayload(size)
			if err != nil {
				return err
			}
			f := NewFile(Base(path), content)
			if err := containerAttach(ov.Root, path, f, nodesByPath); err != nil {
				return err
			}
		case "A":
			path, typeTag, size, err := parseAstHeader(rest)
			if err != nil {
				return cr.formatErr(err.Error())
			}
			if size == 0 {
				return cr.formatErr(fmt.Sprintf("%s: zero-byte AST payload", path))
			}
			payload, err := cr.readPayload(size)
			if err != nil {
				return err
			}
			ctor, ok := astDecoders[typeTag]
			if !ok {
				return cr.formatErr(fmt.Sprintf("%s: unknown AST type tag %q", path, typeTag))
			}
			an := ctor(Base(path))
			nodeFixups, err := an.decodeAst(path, payload)
			if err != nil {
				return err
			}
			if err := containerAttach(ov.Root, path, an, nodesByPath); err != nil {
				return err
			}
			fixups = append(fixups, nodeFixups...)
		default:
			return cr.formatErr(fmt.Sprintf("unknown record tag %q", tag))
		}
	}

	lookup := func(path string) (Node, bool) {
		n, ok := nodesByPath[path]
		return n, ok
	}
	for _, fx := range fixups {
		if err := fx.apply(lookup); err != nil {
			return err
		}
	}

	if hashPath != "" {
		if current, err := os.ReadFile(hashPath); err == nil {
			// The recorded hash covers only the records, so skip the file's header and H lines.
			for i := 0; i < 2; i++ {
				if nl := bytes.IndexByte(current, '\n'); nl >= 0 {
					current = current[nl+1:]
				}
			}
			if digest.FromBytes(current).Encoded() != hashHex {
				ov.staleSourceWarning = fmt.Sprintf("source file %s has changed since this overlay recorded its hash", hashPath)
			}
		}
	}

	return nil
}

// containerEnsureDir creates every missing intermediate directory down to and including path, recording
// each in nodesByPath.
func containerEnsureDir(root *Dir, path string, nodesByPath map[string]Node) error {
	comps := Split(path)
	cur := Container(root)
	curPath := "/"
	for _, name := range comps {
		curPath = Path(curPath).Child(name).String()
		if existing, ok := nodesByPath[curPath]; ok {
			c, ok := existing.(Container)
			if !ok {
				return &FormatError{Detail: curPath + ": expected directory, found a leaf node"}
			}
			cur = c
			continue
		}
		nd := NewDir(name)
		if err := cur.AddChild(name, nd); err != nil {
			return err
		}
		nodesByPath[curPath] = nd
		cur = nd
	}
	return nil
}

// containerAttach ensures path's parent directory exists and attaches leaf under it, recording it in
// nodesByPath.
func containerAttach(root *Dir, path string, leaf Node, nodesByPath map[string]Node) error {
	parentPath := Dir(path)
	if err := containerEnsureDir(root, parentPath, nodesByPath); err != nil {
		return err
	}
	parent, ok := nodesByPath[parentPath].(Container)
	if !ok {
		return &FormatError{Detail: parentPath + ": expected directory"}
	}
	if err := parent.AddChild(Base(path), leaf); err != nil {
		return err
	}
	nodesByPath[path] = leaf
	return nil
}

// containerReader is a small line/payload scanner tracking byte offset for FormatError reporting.
type containerReader struct {
	br      *bufio.Reader
	offset  int64
	pending *string // one line read ahead by maybeReadHashLine when it wasn't an H line
}

func (cr *containerReader) formatErr(detail string) error {
	return &FormatError{Offset: cr.offset, Detail: detail}
}

// readLine reads up to and including the next '\n', stripping both the '\n' and an optional preceding
// '\r' (spec: readers must accept both terminators).
func (cr *containerReader) readLine() (string, error) {
	line, err := cr.br.ReadString('\n')
	cr.offset += int64(len(line))
	if err != nil {
		if err == io.EOF && line == "" {
			return "", io.EOF
		}
		if err != io.EOF {
			return "", cr.formatErr("read error: " + err.Error())
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (cr *containerReader) readHeader() (int, error) {
	line, err := cr.readLine()
	if err != nil {
		return 0, cr.formatErr("missing header line")
	}
	const prefix = "# codex-vfs-overlay "
	if !strings.HasPrefix(line, prefix) {
		return 0, cr.formatErr("unrecognized header: " + line)
	}
	version, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix)))
	if err != nil || version < 1 || version > containerVersion {
		return 0, cr.formatErr("unsupported container version in header: " + line)
	}
	return version, nil
}

// maybeReadHashLine peeks for an "H " line immediately following the header. If present it is consumed and
// returned; otherwise the reader is left positioned at the following record line (bufio.Reader has no
// built-in unread-line, so this works by reading one line and, if it isn't an H line, routing it back
// through a pending-line buffer consulted by readRecordHeader).
func (cr *containerReader) maybeReadHashLine() (path, hexHash string, err error) {
	line, err := cr.readLine()
	if err == io.EOF {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	if strings.HasPrefix(line, "H ") {
		fields := strings.SplitN(strings.TrimPrefix(line, "H "), " ", 2)
		if len(fields) != 2 {
			return "", "", cr.formatErr("malformed H line: " + line)
		}
		return fields[0], fields[1], nil
	}
	cr.pending = &line
	return "", "", nil
}

func (cr *containerReader) readRecordHeader() (tag string, rest string, ok bool, err error) {
	var line string
	if cr.pending != nil {
		line = *cr.pending
		cr.pending = nil
	} else {
		line, err = cr.readLine()
		if err == io.EOF {
			return "", "", false, nil
		}
		if err != nil {
			return "", "", false, err
		}
	}
	if line == "" {
		return cr.readRecordHeader()
	}
	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		return "", "", false, cr.formatErr("malformed record header: " + line)
	}
	return line[:sp], line[sp+1:], true, nil
}

// readPayload reads exactly n bytes followed by a line terminator ('\n' or '\r\n').
func (cr *containerReader) readPayload(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(cr.br, buf); err != nil {
		return nil, cr.formatErr(fmt.Sprintf("truncated payload: wanted %d bytes: %v", n, err))
	}
	cr.offset += int64(n)
	b, err := cr.br.ReadByte()
	if err != nil {
		return nil, cr.formatErr("missing payload terminator")
	}
	cr.offset++
	if b == '\r' {
		b, err = cr.br.ReadByte()
		if err != nil {
			return nil, cr.formatErr("missing payload terminator")
		}
		cr.offset++
	}
	if b != '\n' {
		return nil, cr.formatErr("malformed payload terminator")
	}
	return buf, nil
}

func parseDirHeader(rest string) (path string, err error) {
	path = strings.TrimSpace(rest)
	return path, validateContainerPath(path)
}

func parseSizedHeader(rest string) (path string, size int, err error) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("malformed record: expected path and size, got %q", rest)
	}
	size, err = strconv.Atoi(fields[1])
	if err != nil || size < 0 {
		return "", 0, fmt.Errorf("malformed size in record: %q", rest)
	}
	return fields[0], size, validateContainerPath(fields[0])
}

func parseAstHeader(rest string) (path, typeTag string, size int, err error) {
	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return "", "", 0, fmt.Errorf("malformed AST record: expected path, type tag, and size, got %q", rest)
	}
	size, err = strconv.Atoi(fields[2])
	if err != nil || size < 0 {
		return "", "", 0, fmt.Errorf("malformed size in AST record: %q", rest)
	}
	return fields[0], fields[1], size, validateContainerPath(fields[0])
}

func validateContainerPath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must be absolute: %q", path)
	}
	for _, comp := range Split(path) {
		if comp == ".." {
			return fmt.Errorf("path must not contain \"..\": %q", path)
		}
	}
	return nil
}
