package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// astEncoder accumulates the binary payload for a single AST record (spec §4.7/§4.8). The wire layout is
// deliberately hand-rolled over encoding/binary rather than reaching for a general-purpose serialization
// library: the format needs exact control over byte order, no padding, and a stream position a decoder can
// report in a FormatError, none of which a generic codec (protobuf, msgpack, gob) is a good fit for without
// fighting its own framing. See DESIGN.md for why this one corner of the wire layer stays stdlib-only.
type astEncoder struct {
	buf bytes.Buffer
}

func (e *astEncoder) u8(v uint8) { e.buf.WriteByte(v) }

func (e *astEncoder) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.buf.Write(tmp[:])
}

func (e *astEncoder) i64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	e.buf.Write(tmp[:])
}

func (e *astEncoder) str(v string) {
	e.u32(uint32(len(v)))
	e.buf.WriteString(v)
}

func (e *astEncoder) bytes() []byte {
	return e.buf.Bytes()
}

// astDecoder reads the primitives written by astEncoder back out of a fixed payload, tracking how many
// bytes remain so the caller can detect a truncated or over-long record per spec §4.8 ("every decoder must
// end exactly at payload boundary; excess or shortfall bytes are hard errors").
type astDecoder struct {
	r   *bytes.Reader
	typ string // type tag, for error messages
}

func newAstDecoder(typ string, payload []byte) *astDecoder {
	return &astDecoder{r: bytes.NewReader(payload), typ: typ}
}

func (d *astDecoder) u8() (uint8, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.truncated("u8")
	}
	return b, nil
}

func (d *astDecoder) u32() (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
		return 0, d.truncated("u32")
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func (d *astDecoder) i64() (int64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
		return 0, d.truncated("i64")
	}
	return int64(binary.LittleEndian.Uint64(tmp[:])), nil
}

func (d *astDecoder) str() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", d.truncated("string")
	}
	return string(buf), nil
}

func (d *astDecoder) truncated(what string) error {
	return &FormatError{Offset: int64(d.r.Size()) - int64(d.r.Len()), Detail: fmt.Sprintf("%s: truncated reading %s", d.typ, what)}
}

// finish must be called after a decoder has consumed what it believes is the entire payload; any leftover
// bytes are a hard FormatError (spec §4.8's "excess... is a hard error").
func (d *astDecoder) finish() error {
	if d.r.Len() != 0 {
		return &FormatError{Offset: int64(d.r.Size()) - int64(d.r.Len()), Detail: fmt.Sprintf("%s: %d trailing byte(s) after payload", d.typ, d.r.Len())}
	}
	return nil
}

// astFixup is a deferred action queued during the structural pass of the container reader (spec §4.7) and
// run, in FIFO order, once every node named in the snapshot has been instantiated. Each fixup closure
// resolves one or more absolute paths against the structural pass's path→node map and patches references
// that the payload could only name by path (a translation unit's functions, a function's body, a
// range-for's body).
type astFixup struct {
	// referringPath is the node that asked for the fixup, used in the error message if a target is missing
	// or of the wrong type.
	referringPath string
	apply         func(lookup func(path string) (Node, bool)) error
}

// astNode is implemented by every concrete AST variant. Besides the plain Node contract, it knows its own
// container type tag (the `type_tag` field of an `A` record) and can encode/decode its binary payload.
type astNode interface {
	Node
	astTypeTag() string
	// encodeAst serializes the receiver's payload; selfPath is its own absolute path, needed by any variant
	// that must record a structural child's path as a cross-reference (a function's body, a translation
	// unit's functions) — computed as a child of selfPath rather than by walking Parent() pointers, since an
	// Ast container's children report their Parent() as the container's own parent directory, not the
	// container itself (Node.Parent() can only ever name a *Dir).
	encodeAst(selfPath string) []byte
	// decodeAst populates the receiver from payload and returns any fixups it must queue; selfPath is the
	// absolute path this node is being instantiated at, used to build the fixup's referringPath.
	decodeAst(selfPath string, payload []byte) ([]astFixup, error)
}

// astDecoders maps a container record's type_tag to a constructor producing a zero-value astNode ready for
// decodeAst. Registered by each ast_*.go file's init().
var astDecoders = map[string]func(name string) astNode{}

func registerAstDecoder(tag string, ctor func(name string) astNode) {
	astDecoders[tag] = ctor
}
