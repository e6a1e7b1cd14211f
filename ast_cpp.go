package vfs

import (
	"fmt"
	"strings"
)

// CppExpr is a C++ expression value. Expressions are pure values, not resident nodes: they live entirely
// inside the payload of whichever statement or declaration holds them.
type CppExpr interface{ cppExprTag() string }

type CppIdentifier struct{ Name string }
type CppStringLit struct{ Value string }
type CppIntLit struct{ Value int64 }
type CppCall struct {
	Callee CppExpr
	Args   []CppExpr
}
type CppBinary struct {
	Op          string
	Left, Right CppExpr
}

// CppStreamOut models a chained `std::cout << a << b << ...` expression, the one construct the builder
// treats specially rather than folding into CppBinary.
type CppStreamOut struct{ Args []CppExpr }

// CppRaw is an escape hatch: text emitted verbatim, for constructs the builder does not otherwise model.
type CppRaw struct{ Text string }

func (CppIdentifier) cppExprTag() string { return "id" }
func (CppStringLit) cppExprTag() string  { return "str" }
func (CppIntLit) cppExprTag() string     { return "int" }
func (CppCall) cppExprTag() string       { return "call" }
func (CppBinary) cppExprTag() string     { return "bin" }
func (CppStreamOut) cppExprTag() string  { return "stream" }
func (CppRaw) cppExprTag() string        { return "raw" }

// CppStmt is a C++ statement value, inline inside a CppCompound's payload except for a nested range-for,
// which is a resident Container node referenced by path instead (see CppRangeFor).
type CppStmt interface{ cppStmtTag() string }

type CppExprStmt struct{ Expr CppExpr }
type CppReturnStmt struct{ Expr CppExpr } // Expr may be nil for a bare `return;`
type CppRawStmt struct{ Text string }
type CppVarDecl struct {
	Type string
	Name string
	Init CppExpr // may be nil
}

func (CppExprStmt) cppStmtTag() string { return "expr" }
func (CppReturnStmt) cppStmtTag() string { return "return" }
func (CppRawStmt) cppStmtTag() string   { return "raw" }
func (CppVarDecl) cppStmtTag() string   { return "vardecl" }

const (
	cppExprTagID = iota
	cppExprTagStr
	cppExprTagInt
	cppExprTagCall
	cppExprTagBinary
	cppExprTagStream
	cppExprTagRaw
)

const (
	cppStmtTagExpr = iota
	cppStmtTagReturn
	cppStmtTagRaw
	cppStmtTagVarDecl
)

func encodeCppExpr(e *astEncoder, v CppExpr) {
	switch t := v.(type) {
	case CppIdentifier:
		e.u8(cppExprTagID)
		e.str(t.Name)
	case CppStringLit:
		e.u8(cppExprTagStr)
		e.str(t.Value)
	case CppIntLit:
		e.u8(cppExprTagInt)
		e.i64(t.Value)
	case CppCall:
		e.u8(cppExprTagCall)
		encodeCppExpr(e, t.Callee)
		e.u32(uint32(len(t.Args)))
		for _, a := range t.Args {
			encodeCppExpr(e, a)
		}
	case CppBinary:
		e.u8(cppExprTagBinary)
		e.str(t.Op)
		encodeCppExpr(e, t.Left)
		encodeCppExpr(e, t.Right)
	case CppStreamOut:
		e.u8(cppExprTagStream)
		e.u32(uint32(len(t.Args)))
		for _, a := range t.Args {
			encodeCppExpr(e, a)
		}
	case CppRaw:
		e.u8(cppExprTagRaw)
		e.str(t.Text)
	default:
		panic(fmt.Sprintf("vfs: unencodable CppExpr %T", v))
	}
}

func decodeCppExpr(d *astDecoder) (CppExpr, error) {
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case cppExprTagID:
		s, err := d.str()
		return CppIdentifier{Name: s}, err
	case cppExprTagStr:
		s, err := d.str()
		return CppStringLit{Value: s}, err
	case cppExprTagInt:
		n, err := d.i64()
		return CppIntLit{Value: n}, err
	case cppExprTagCall:
		callee, err := decodeCppExpr(d)
		if err != nil {
			return nil, err
		}
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		args := make([]CppExpr, n)
		for i := range args {
			args[i], err = decodeCppExpr(d)
			if err != nil {
				return nil, err
			}
		}
		return CppCall{Callee: callee, Args: args}, nil
	case cppExprTagBinary:
		op, err := d.str()
		if err != nil {
			return nil, err
		}
		left, err := decodeCppExpr(d)
		if err != nil {
			return nil, err
		}
		right, err := decodeCppExpr(d)
		if err != nil {
			return nil, err
		}
		return CppBinary{Op: op, Left: left, Right: right}, nil
	case cppExprTagStream:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		args := make([]CppExpr, n)
		for i := range args {
			args[i], err = decodeCppExpr(d)
			if err != nil {
				return nil, err
			}
		}
		return CppStreamOut{Args: args}, nil
	case cppExprTagRaw:
		s, err := d.str()
		return CppRaw{Text: s}, err
	default:
		return nil, &FormatError{Detail: fmt.Sprintf("cpp: unknown expr tag %d", tag)}
	}
}

func encodeCppStmt(e *astEncoder, v CppStmt) {
	switch t := v.(type) {
	case CppExprStmt:
		e.u8(cppStmtTagExpr)
		encodeCppExpr(e, t.Expr)
	case CppReturnStmt:
		e.u8(cppStmtTagReturn)
		if t.Expr == nil {
			e.u8(0)
		} else {
			e.u8(1)
			encodeCppExpr(e, t.Expr)
		}
	case CppRawStmt:
		e.u8(cppStmtTagRaw)
		e.str(t.Text)
	case CppVarDecl:
		e.u8(cppStmtTagVarDecl)
		e.str(t.Type)
		e.str(t.Name)
		if t.Init == nil {
			e.u8(0)
		} else {
			e.u8(1)
			encodeCppExpr(e, t.Init)
		}
	default:
		panic(fmt.Sprintf("vfs: unencodable CppStmt %T", v))
	}
}

func decodeCppStmt(d *astDecoder) (CppStmt, error) {
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case cppStmtTagExpr:
		e, err := decodeCppExpr(d)
		return CppExprStmt{Expr: e}, err
	case cppStmtTagReturn:
		has, err := d.u8()
		if err != nil {
			return nil, err
		}
		if has == 0 {
			return CppReturnStmt{}, nil
		}
		e, err := decodeCppExpr(d)
		return CppReturnStmt{Expr: e}, err
	case cppStmtTagRaw:
		s, err := d.str()
		return CppRawStmt{Text: s}, err
	case cppStmtTagVarDecl:
		typ, err := d.str()
		if err != nil {
			return nil, err
		}
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		has, err := d.u8()
		if err != nil {
			return nil, err
		}
		if has == 0 {
			return CppVarDecl{Type: typ, Name: name}, nil
		}
		init, err := decodeCppExpr(d)
		return CppVarDecl{Type: typ, Name: name, Init: init}, err
	default:
		return nil, &FormatError{Detail: fmt.Sprintf("cpp: unknown stmt tag %d", tag)}
	}
}

// CppParam is a function parameter declaration.
type CppParam struct {
	Type string
	Name string
}

// cppCompoundItem is one entry of a CppCompound's body: either an inline statement value or a reference to
// a nested CppRangeFor node, resolved by path during the fixup pass because a range-for is itself resident
// in the tree (spec's "range-for" structural node) rather than a plain value.
type cppCompoundItem struct {
	stmt        CppStmt
	rangeForRef string
	rangeFor    *CppRangeFor
}

// CppCompound is a `{ ... }` block: a resident Ast node holding an ordered list of statements and nested
// range-for blocks. It implements Container so a range-for child can be addressed, replaced, or removed by
// path like any other tree entry.
type CppCompound struct {
	nodeBase
	Items []cppCompoundItem
}

func NewCppCompound(name string) *CppCompound {
	return &CppCompound{nodeBase: nodeBase{name: name}}
}

func (n *CppCompound) Kind() Kind        { return KindAst }
func (n *CppCompound) IsDirectory() bool { return true }

func (n *CppCompound) Children() (map[string]Node, error) {
	out := map[string]Node{}
	for _, it := range n.Items {
		if it.rangeFor != nil {
			out[it.rangeFor.Name()] = it.rangeFor
		}
	}
	return out, nil
}

// AddChild wires rf into whichever Items slot was reserved for it at decode time (matched by the reserved
// slot's rangeForRef basename), so attaching a range-for read from a container file lands in its original
// interleaved position instead of appending a duplicate entry. A range-for attached outside of container
// decoding (e.g. built programmatically) has no reserved slot and is simply appended.
func (n *CppCompound) AddChild(name string, child Node) error {
	rf, ok := child.(*CppRangeFor)
	if !ok {
		return &UsageError{Message: "compound block children must be range-for blocks: " + name}
	}
	rf.setParentDir(n.parent)
	for i := range n.Items {
		if n.Items[i].rangeFor == nil && n.Items[i].rangeForRef != "" && Base(n.Items[i].rangeForRef) == name {
			n.Items[i].rangeFor = rf
			return nil
		}
	}
	n.Items = append(n.Items, cppCompoundItem{rangeFor: rf})
	return nil
}

func (n *CppCompound) RemoveChild(name string) (Node, error) {
	for i, it := range n.Items {
		if it.rangeFor != nil && it.rangeFor.Name() == name {
			n.Items = append(n.Items[:i], n.Items[i+1:]...)
			return it.rangeFor, nil
		}
	}
	return nil, &NotFoundError{Path: name}
}

func (n *CppCompound) Read() ([]byte, error) {
	return []byte(renderCppCompound(n, 0)), nil
}

func (n *CppCompound) Write(content []byte) error {
	return &UsageError{Message: "cpp compound blocks are built, not parsed, from text"}
}

func (n *CppCompound) astTypeTag() string { return "cpp.compound" }

func (n *CppCompound) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	e.u32(uint32(len(n.Items)))
	for _, it := range n.Items {
		if it.rangeFor != nil {
			e.u8(1)
			e.str(Path(selfPath).Child(it.rangeFor.Name()).String())
		} else {
			e.u8(0)
			encodeCppStmt(e, it.stmt)
		}
	}
	return e.bytes()
}

func (n *CppCompound) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder(n.astTypeTag(), payload)
	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	n.Items = make([]cppCompoundItem, count)
	var fixups []astFixup
	for i := uint32(0); i < count; i++ {
		tag, err := d.u8()
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			stmt, err := decodeCppStmt(d)
			if err != nil {
				return nil, err
			}
			n.Items[i] = cppCompoundItem{stmt: stmt}
			continue
		}
		refPath, err := d.str()
		if err != nil {
			return nil, err
		}
		n.Items[i] = cppCompoundItem{rangeForRef: refPath}
		idx := i
		fixups = append(fixups, astFixup{
			referringPath: selfPath,
			apply: func(lookup func(string) (Node, bool)) error {
				if n.Items[idx].rangeFor != nil {
					return nil // AddChild already wired this slot during the structural pass
				}
				target, ok := lookup(refPath)
				if !ok {
					return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.compound %s: range-for target %s not found", selfPath, refPath)}
				}
				rf, ok := target.(*CppRangeFor)
				if !ok {
					return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.compound %s: %s is not a range-for", selfPath, refPath)}
				}
				n.Items[idx].rangeFor = rf
				return nil
			},
		})
	}
	return fixups, d.finish()
}

// CppRangeFor models `for (VarType VarName : RangeExpr) { Body }`. Its body is a separate resident
// CppCompound node, referenced by path and resolved during the fixup pass.
type CppRangeFor struct {
	nodeBase
	VarType   string
	VarName   string
	RangeExpr CppExpr
	bodyPath  string
	Body      *CppCompound
}

func NewCppRangeFor(name, varType, varName string, rangeExpr CppExpr, body *CppCompound) *CppRangeFor {
	return &CppRangeFor{nodeBase: nodeBase{name: name}, VarType: varType, VarName: varName, RangeExpr: rangeExpr, Body: body}
}

func (n *CppRangeFor) Kind() Kind        { return KindAst }
func (n *CppRangeFor) IsDirectory() bool { return true }

func (n *CppRangeFor) Children() (map[string]Node, error) {
	if n.Body == nil {
		return map[string]Node{}, nil
	}
	return map[string]Node{n.Body.Name(): n.Body}, nil
}

func (n *CppRangeFor) AddChild(name string, child Node) error {
	body, ok := child.(*CppCompound)
	if !ok {
		return &UsageError{Message: "a range-for's only child is its body compound: " + name}
	}
	n.Body = body
	body.setParentDir(n.parent)
	return nil
}

func (n *CppRangeFor) RemoveChild(name string) (Node, error) {
	if n.Body == nil || n.Body.Name() != name {
		return nil, &NotFoundError{Path: name}
	}
	body := n.Body
	n.Body = nil
	return body, nil
}

func (n *CppRangeFor) Read() ([]byte, error) {
	return []byte(renderCppRangeFor(n, 0)), nil
}

func (n *CppRangeFor) Write(content []byte) error {
	return &UsageError{Message: "cpp range-for blocks are built, not parsed, from text"}
}

func (n *CppRangeFor) astTypeTag() string { return "cpp.rangefor" }

func (n *CppRangeFor) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	e.str(n.VarType)
	e.str(n.VarName)
	encodeCppExpr(e, n.RangeExpr)
	bodyPath := ""
	if n.Body != nil {
		bodyPath = Path(selfPath).Child(n.Body.Name()).String()
	}
	e.str(bodyPath)
	return e.bytes()
}

func (n *CppRangeFor) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder(n.astTypeTag(), payload)
	var err error
	if n.VarType, err = d.str(); err != nil {
		return nil, err
	}
	if n.VarName, err = d.str(); err != nil {
		return nil, err
	}
	if n.RangeExpr, err = decodeCppExpr(d); err != nil {
		return nil, err
	}
	if n.bodyPath, err = d.str(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	if n.bodyPath == "" {
		return nil, nil
	}
	return []astFixup{{
		referringPath: selfPath,
		apply: func(lookup func(string) (Node, bool)) error {
			target, ok := lookup(n.bodyPath)
			if !ok {
				return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.rangefor %s: body %s not found", selfPath, n.bodyPath)}
			}
			body, ok := target.(*CppCompound)
			if !ok {
				return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.rangefor %s: body %s is not a compound", selfPath, n.bodyPath)}
			}
			n.Body = body
			return nil
		},
	}}, nil
}

// CppFunction is a function definition: a resident Ast node holding a return type, parameter list, and a
// body referenced by path and resolved during the fixup pass.
type CppFunction struct {
	nodeBase
	ReturnType string
	Params     []CppParam
	bodyPath   string
	Body       *CppCompound
}

func NewCppFunction(name, returnType string, params []CppParam, body *CppCompound) *CppFunction {
	return &CppFunction{nodeBase: nodeBase{name: name}, ReturnType: returnType, Params: params, Body: body}
}

func (n *CppFunction) Kind() Kind        { return KindAst }
func (n *CppFunction) IsDirectory() bool { return true }

func (n *CppFunction) Children() (map[string]Node, error) {
	if n.Body == nil {
		return map[string]Node{}, nil
	}
	return map[string]Node{n.Body.Name(): n.Body}, nil
}

func (n *CppFunction) AddChild(name string, child Node) error {
	body, ok := child.(*CppCompound)
	if !ok {
		return &UsageError{Message: "a function's only child is its body compound: " + name}
	}
	n.Body = body
	body.setParentDir(n.parent)
	return nil
}

func (n *CppFunction) RemoveChild(name string) (Node, error) {
	if n.Body == nil || n.Body.Name() != name {
		return nil, &NotFoundError{Path: name}
	}
	body := n.Body
	n.Body = nil
	return body, nil
}

func (n *CppFunction) Read() ([]byte, error) {
	return []byte(renderCppFunction(n)), nil
}

func (n *CppFunction) Write(content []byte) error {
	return &UsageError{Message: "cpp functions are built, not parsed, from text"}
}

func (n *CppFunction) astTypeTag() string { return "cpp.function" }

func (n *CppFunction) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	e.str(n.ReturnType)
	e.u32(uint32(len(n.Params)))
	for _, p := range n.Params {
		e.str(p.Type)
		e.str(p.Name)
	}
	bodyPath := ""
	if n.Body != nil {
		bodyPath = Path(selfPath).Child(n.Body.Name()).String()
	}
	e.str(bodyPath)
	return e.bytes()
}

func (n *CppFunction) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder(n.astTypeTag(), payload)
	var err error
	if n.ReturnType, err = d.str(); err != nil {
		return nil, err
	}
	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	n.Params = make([]CppParam, count)
	for i := range n.Params {
		if n.Params[i].Type, err = d.str(); err != nil {
			return nil, err
		}
		if n.Params[i].Name, err = d.str(); err != nil {
			return nil, err
		}
	}
	if n.bodyPath, err = d.str(); err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	if n.bodyPath == "" {
		return nil, nil
	}
	return []astFixup{{
		referringPath: selfPath,
		apply: func(lookup func(string) (Node, bool)) error {
			target, ok := lookup(n.bodyPath)
			if !ok {
				return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.function %s: body %s not found", selfPath, n.bodyPath)}
			}
			body, ok := target.(*CppCompound)
			if !ok {
				return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.function %s: body %s is not a compound", selfPath, n.bodyPath)}
			}
			n.Body = body
			return nil
		},
	}}, nil
}

// CppTranslationUnit is the root of a single generated .cpp file: an ordered list of top-level functions,
// referenced by path and resolved during the fixup pass so their order survives a container round trip
// independent of however the underlying map iterates.
type CppTranslationUnit struct {
	nodeBase
	Includes     []string
	functionPaths []string
	Functions    []*CppFunction
}

func NewCppTranslationUnit(name string, includes []string) *CppTranslationUnit {
	return &CppTranslationUnit{nodeBase: nodeBase{name: name}, Includes: includes}
}

func (n *CppTranslationUnit) Kind() Kind        { return KindAst }
func (n *CppTranslationUnit) IsDirectory() bool { return true }

func (n *CppTranslationUnit) Children() (map[string]Node, error) {
	out := make(map[string]Node, len(n.Functions))
	for _, fn := range n.Functions {
		out[fn.Name()] = fn
	}
	return out, nil
}

func (n *CppTranslationUnit) AddChild(name string, child Node) error {
	fn, ok := child.(*CppFunction)
	if !ok {
		return &UsageError{Message: "a translation unit only holds functions as children: " + name}
	}
	fn.setParentDir(n.parent)
	n.Functions = append(n.Functions, fn)
	return nil
}

func (n *CppTranslationUnit) RemoveChild(name string) (Node, error) {
	for i, fn := range n.Functions {
		if fn.Name() == name {
			n.Functions = append(n.Functions[:i], n.Functions[i+1:]...)
			return fn, nil
		}
	}
	return nil, &NotFoundError{Path: name}
}

func (n *CppTranslationUnit) Read() ([]byte, error) {
	return []byte(renderCppTranslationUnit(n)), nil
}

func (n *CppTranslationUnit) Write(content []byte) error {
	return &UsageError{Message: "cpp translation units are built, not parsed, from text"}
}

func (n *CppTranslationUnit) astTypeTag() string { return "cpp.translationunit" }

func (n *CppTranslationUnit) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	e.u32(uint32(len(n.Includes)))
	for _, inc := range n.Includes {
		e.str(inc)
	}
	e.u32(uint32(len(n.Functions)))
	for _, fn := range n.Functions {
		e.str(Path(selfPath).Child(fn.Name()).String())
	}
	return e.bytes()
}

func (n *CppTranslationUnit) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder(n.astTypeTag(), payload)
	incCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	n.Includes = make([]string, incCount)
	for i := range n.Includes {
		if n.Includes[i], err = d.str(); err != nil {
			return nil, err
		}
	}
	fnCount, err := d.u32()
	if err != nil {
		return nil, err
	}
	n.functionPaths = make([]string, fnCount)
	for i := range n.functionPaths {
		if n.functionPaths[i], err = d.str(); err != nil {
			return nil, err
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	// n.Functions is left nil here, not preallocated: the structural pass attaches each function to this
	// translation unit via AddChild (in whatever order the container file lists them, which is the same
	// depth-first order the writer used), and this fixup then replaces the slice wholesale with the
	// canonical order recorded in functionPaths. Preallocating here would double-count the AddChild
	// appends that land between decodeAst running and this closure firing.
	return []astFixup{{
		referringPath: selfPath,
		apply: func(lookup func(string) (Node, bool)) error {
			ordered := make([]*CppFunction, len(n.functionPaths))
			for i, p := range n.functionPaths {
				target, ok := lookup(p)
				if !ok {
					return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.translationunit %s: function %s not found", selfPath, p)}
				}
				fn, ok := target.(*CppFunction)
				if !ok {
					return &FormatError{Offset: -1, Detail: fmt.Sprintf("cpp.translationunit %s: %s is not a function", selfPath, p)}
				}
				ordered[i] = fn
			}
			n.Functions = ordered
			return nil
		},
	}}, nil
}

func init() {
	registerAstDecoder("cpp.translationunit", func(name string) astNode { return &CppTranslationUnit{nodeBase: nodeBase{name: name}} })
	registerAstDecoder("cpp.function", func(name string) astNode { return &CppFunction{nodeBase: nodeBase{name: name}} })
	registerAstDecoder("cpp.compound", func(name string) astNode { return &CppCompound{nodeBase: nodeBase{name: name}} })
	registerAstDecoder("cpp.rangefor", func(name string) astNode { return &CppRangeFor{nodeBase: nodeBase{name: name}} })
}

// --- human-readable emission ---
//
// The renderers below are a best-effort pretty-printer sufficient to inspect a built translation unit
// through cat/tree; they are not a general C++ code generator and make no attempt to cover every
// expressible construct. escapeCppString follows the one escaping rule the builder actually needs: control
// bytes become octal triplets (\NNN, always three digits so a following digit can't extend the escape),
// quotes and backslashes are escaped, and every "?" that directly follows another "?" is escaped, so no
// "??" pair (and hence no trigraph) reaches the output.

func escapeCppString(s string) string {
	var b strings.Builder
	qmarks := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
			qmarks = 0
		case c == '?':
			qmarks++
			if qmarks >= 2 {
				b.WriteString(`\?`)
			} else {
				b.WriteByte(c)
			}
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, "\\%03o", c)
			qmarks = 0
		default:
			b.WriteByte(c)
			qmarks = 0
		}
	}
	return b.String()
}

func renderCppExpr(e CppExpr) string {
	switch t := e.(type) {
	case CppIdentifier:
		return t.Name
	case CppStringLit:
		return `"` + escapeCppString(t.Value) + `"`
	case CppIntLit:
		return fmt.Sprintf("%d", t.Value)
	case CppCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = renderCppExpr(a)
		}
		return fmt.Sprintf("%s(%s)", renderCppExpr(t.Callee), strings.Join(args, ", "))
	case CppBinary:
		return fmt.Sprintf("%s %s %s", renderCppExpr(t.Left), t.Op, renderCppExpr(t.Right))
	case CppStreamOut:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = renderCppExpr(a)
		}
		return "std::cout << " + strings.Join(parts, " << ")
	case CppRaw:
		return t.Text
	default:
		return ""
	}
}

func renderCppStmt(s CppStmt, indent int) string {
	pad := strings.Repeat("    ", indent)
	switch t := s.(type) {
	case CppExprStmt:
		return pad + renderCppExpr(t.Expr) + ";"
	case CppReturnStmt:
		if t.Expr == nil {
			return pad + "return;"
		}
		return pad + "return " + renderCppExpr(t.Expr) + ";"
	case CppRawStmt:
		return pad + t.Text
	case CppVarDecl:
		if t.Init == nil {
			return fmt.Sprintf("%s%s %s;", pad, t.Type, t.Name)
		}
		return fmt.Sprintf("%s%s %s = %s;", pad, t.Type, t.Name, renderCppExpr(t.Init))
	default:
		return pad + "/* unknown statement */"
	}
}

func renderCppCompound(c *CppCompound, indent int) string {
	pad := strings.Repeat("    ", indent)
	var b strings.Builder
	b.WriteString("{\n")
	for _, it := range c.Items {
		if it.rangeFor != nil {
			b.WriteString(renderCppRangeForInline(it.rangeFor, indent+1))
		} else {
			b.WriteString(renderCppStmt(it.stmt, indent+1))
		}
		b.WriteString("\n")
	}
	b.WriteString(pad + "}")
	return b.String()
}

func renderCppRangeForInline(rf *CppRangeFor, indent int) string {
	pad := strings.Repeat("    ", indent)
	header := fmt.Sprintf("%sfor (%s %s : %s) ", pad, rf.VarType, rf.VarName, renderCppExpr(rf.RangeExpr))
	if rf.Body == nil {
		return header + "{ }"
	}
	return header + renderCppCompound(rf.Body, indent)
}

func renderCppRangeFor(rf *CppRangeFor, indent int) string {
	return renderCppRangeForInline(rf, indent)
}

func renderCppFunction(fn *CppFunction) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type + " " + p.Name
	}
	header := fmt.Sprintf("%s %s(%s) ", fn.ReturnType, fn.Name(), strings.Join(params, ", "))
	if fn.Body == nil {
		return header + "{ }"
	}
	return header + renderCppCompound(fn.Body, 0)
}

func renderCppTranslationUnit(tu *CppTranslationUnit) string {
	var b strings.Builder
	for _, inc := range tu.Includes {
		fmt.Fprintf(&b, "#include %s\n", inc)
	}
	if len(tu.Includes) > 0 {
		b.WriteString("\n")
	}
	for i, fn := range tu.Functions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderCppFunction(fn))
	}
	return b.String()
}
