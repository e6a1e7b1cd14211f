package vfs

import (
	"fmt"
	"strconv"
	"strings"
)

// SExprValue is the tagged union the tiny S-expression interpreter's values and syntax trees are built
// from. The lexer, parser, and evaluator that produce and consume these values are deliberately out of
// scope (spec §1); this type only needs to carry enough structure for the VFS to store, browse, and
// round-trip a value through the container codec.
type SExprValue interface {
	sexprTag() string
}

type SExprInt struct{ Value int64 }
type SExprBool struct{ Value bool }
type SExprString struct{ Value string }
type SExprSymbol struct{ Name string }

// SExprIf is the three-armed conditional: (if Cond Then Else).
type SExprIf struct{ Cond, Then, Else SExprValue }

// SExprLambda is an unevaluated function literal: (lambda (params...) Body).
type SExprLambda struct {
	Params []string
	Body   SExprValue
}

// SExprCall is an unevaluated application: (Callee Args...).
type SExprCall struct {
	Callee SExprValue
	Args   []SExprValue
}

func (SExprInt) sexprTag() string     { return "int" }
func (SExprBool) sexprTag() string    { return "bool" }
func (SExprString) sexprTag() string  { return "string" }
func (SExprSymbol) sexprTag() string  { return "symbol" }
func (SExprIf) sexprTag() string      { return "if" }
func (SExprLambda) sexprTag() string  { return "lambda" }
func (SExprCall) sexprTag() string    { return "call" }

// SExprAst is the "holder" AST node variant: it wraps a single SExprValue tree as a resident VFS node.
// Its Read/Write serialize to/from the interpreter's human-readable textual form (a thin S-expression
// printer/reader implemented alongside the codec below — not the full lexer/parser, which stays external).
type SExprAst struct {
	nodeBase
	Value SExprValue
}

// NewSExprAst creates a detached S-expression AST node named name wrapping value.
func NewSExprAst(name string, value SExprValue) *SExprAst {
	return &SExprAst{nodeBase: nodeBase{name: name}, Value: value}
}

func (n *SExprAst) Kind() Kind        { return KindAst }
func (n *SExprAst) IsDirectory() bool { return false }

func (n *SExprAst) Children() (map[string]Node, error) {
	return map[string]Node{}, nil
}

// Read renders Value in the printed human form, e.g. (+ 1 2).
func (n *SExprAst) Read() ([]byte, error) {
	return []byte(printSExpr(n.Value)), nil
}

// Write re-parses content as a single printed S-expression and replaces Value. Per DESIGN.md's resolution
// of spec §9 Open Question (a), this variant documents itself as accepting the same byte-stream path as a
// plain File.
func (n *SExprAst) Write(content []byte) error {
	v, err := parseSExpr(string(content))
	if err != nil {
		return &FormatError{Offset: -1, Detail: "sexpr: " + err.Error()}
	}
	n.Value = v
	return nil
}

func (n *SExprAst) astTypeTag() string { return "sexpr" }

func (n *SExprAst) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	encodeSExprValue(e, n.Value)
	return e.bytes()
}

func (n *SExprAst) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder("sexpr", payload)
	v, err := decodeSExprValue(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	n.Value = v
	return nil, nil
}

func init() {
	registerAstDecoder("sexpr", func(name string) astNode {
		return &SExprAst{nodeBase: nodeBase{name: name}}
	})
}

const (
	sexprTagInt = iota
	sexprTagBool
	sexprTagString
	sexprTagSymbol
	sexprTagIf
	sexprTagLambda
	sexprTagCall
)

func encodeSExprValue(e *astEncoder, v SExprValue) {
	switch t := v.(type) {
	case SExprInt:
		e.u8(sexprTagInt)
		e.i64(t.Value)
	case SExprBool:
		e.u8(sexprTagBool)
		if t.Value {
			e.u8(1)
		} else {
			e.u8(0)
		}
	case SExprString:
		e.u8(sexprTagString)
		e.str(t.Value)
	case SExprSymbol:
		e.u8(sexprTagSymbol)
		e.str(t.Name)
	case SExprIf:
		e.u8(sexprTagIf)
		encodeSExprValue(e, t.Cond)
		encodeSExprValue(e, t.Then)
		encodeSExprValue(e, t.Else)
	case SExprLambda:
		e.u8(sexprTagLambda)
		e.u32(uint32(len(t.Params)))
		for _, p := range t.Params {
			e.str(p)
		}
		encodeSExprValue(e, t.Body)
	case SExprCall:
		e.u8(sexprTagCall)
		encodeSExprValue(e, t.Callee)
		e.u32(uint32(len(t.Args)))
		for _, a := range t.Args {
			encodeSExprValue(e, a)
		}
	default:
		panic(fmt.Sprintf("sexpr: unencodable value %T", v))
	}
}

func decodeSExprValue(d *astDecoder) (SExprValue, error) {
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case sexprTagInt:
		v, err := d.i64()
		return SExprInt{Value: v}, err
	case sexprTagBool:
		v, err := d.u8()
		return SExprBool{Value: v != 0}, err
	case sexprTagString:
		v, err := d.str()
		return SExprString{Value: v}, err
	case sexprTagSymbol:
		v, err := d.str()
		return SExprSymbol{Name: v}, err
	case sexprTagIf:
		cond, err := decodeSExprValue(d)
		if err != nil {
			return nil, err
		}
		then, err := decodeSExprValue(d)
		if err != nil {
			return nil, err
		}
		els, err := decodeSExprValue(d)
		if err != nil {
			return nil, err
		}
		return SExprIf{Cond: cond, Then: then, Else: els}, nil
	case sexprTagLambda:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		params := make([]string, n)
		for i := range params {
			params[i], err = d.str()
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeSExprValue(d)
		if err != nil {
			return nil, err
		}
		return SExprLambda{Params: params, Body: body}, nil
	case sexprTagCall:
		callee, err := decodeSExprValue(d)
		if err != nil {
			return nil, err
		}
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		args := make([]SExprValue, n)
		for i := range args {
			args[i], err = decodeSExprValue(d)
			if err != nil {
				return nil, err
			}
		}
		return SExprCall{Callee: callee, Args: args}, nil
	default:
		return nil, &FormatError{Detail: fmt.Sprintf("sexpr: unknown value tag %d", tag)}
	}
}

// printSExpr renders a value tree in the printed form SExprAst.Read produces and SExprAst.Write/parseSExpr
// accept. This is a minimal printer for the value tree itself, not the full S-expression language (whose
// lexer/parser/evaluator is external per spec §1); it exists only so an Ast node's Read/Write have a human
// form to round-trip through.
func printSExpr(v SExprValue) string {
	switch t := v.(type) {
	case SExprInt:
		return strconv.FormatInt(t.Value, 10)
	case SExprBool:
		if t.Value {
			return "#t"
		}
		return "#f"
	case SExprString:
		return strconv.Quote(t.Value)
	case SExprSymbol:
		return t.Name
	case SExprIf:
		return fmt.Sprintf("(if %s %s %s)", printSExpr(t.Cond), printSExpr(t.Then), printSExpr(t.Else))
	case SExprLambda:
		return fmt.Sprintf("(lambda (%s) %s)", strings.Join(t.Params, " "), printSExpr(t.Body))
	case SExprCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = printSExpr(a)
		}
		return fmt.Sprintf("(%s %s)", printSExpr(t.Callee), strings.Join(args, " "))
	default:
		return ""
	}
}

// parseSExpr parses the printed form produced by printSExpr back into a value tree.
func parseSExpr(src string) (SExprValue, error) {
	toks := sexprTokenize(src)
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	v, rest, err := sexprParseOne(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing tokens after expression: %v", rest)
	}
	return v, nil
}

func sexprTokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	inStr := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inStr:
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				cur.WriteByte(src[i])
			} else if c == '"' {
				inStr = false
				flush()
			}
		case c == '"':
			flush()
			cur.WriteByte(c)
			inStr = true
		case c == '(' || c == ')':
			flush()
			toks = append(toks, string(c))
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return toks
}

func sexprParseOne(toks []string) (SExprValue, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of expression")
	}
	head, rest := toks[0], toks[1:]
	switch head {
	case "(":
		return sexprParseList(rest)
	case ")":
		return nil, nil, fmt.Errorf("unexpected )")
	case "#t":
		return SExprBool{Value: true}, rest, nil
	case "#f":
		return SExprBool{Value: false}, rest, nil
	default:
		if strings.HasPrefix(head, `"`) {
			s, err := strconv.Unquote(head)
			if err != nil {
				return nil, nil, fmt.Errorf("bad string literal %q: %w", head, err)
			}
			return SExprString{Value: s}, rest, nil
		}
		if n, err := strconv.ParseInt(head, 10, 64); err == nil {
			return SExprInt{Value: n}, rest, nil
		}
		return SExprSymbol{Name: head}, rest, nil
	}
}

// sexprParseList parses the body of a parenthesized form, dispatching on its leading keyword for the
// special forms (if/lambda) and treating anything else as a call.
func sexprParseList(toks []string) (SExprValue, []string, error) {
	if len(toks) > 0 && toks[0] == "if" {
		cond, rest, err := sexprParseOne(toks[1:])
		if err != nil {
			return nil, nil, err
		}
		then, rest, err := sexprParseOne(rest)
		if err != nil {
			return nil, nil, err
		}
		els, rest, err := sexprParseOne(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, err = sexprExpectClose(rest)
		if err != nil {
			return nil, nil, err
		}
		return SExprIf{Cond: cond, Then: then, Else: els}, rest, nil
	}
	if len(toks) > 0 && toks[0] == "lambda" {
		if len(toks) < 2 || toks[1] != "(" {
			return nil, nil, fmt.Errorf("lambda: expected parameter list")
		}
		var params []string
		rest := toks[2:]
		for len(rest) > 0 && rest[0] != ")" {
			params = append(params, rest[0])
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return nil, nil, fmt.Errorf("lambda: unterminated parameter list")
		}
		rest = rest[1:] // consume ")"
		body, rest, err := sexprParseOne(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, err = sexprExpectClose(rest)
		if err != nil {
			return nil, nil, err
		}
		return SExprLambda{Params: params, Body: body}, rest, nil
	}

	callee, rest, err := sexprParseOne(toks)
	if err != nil {
		return nil, nil, err
	}
	var args []SExprValue
	for len(rest) > 0 && rest[0] != ")" {
		var a SExprValue
		a, rest, err = sexprParseOne(rest)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, a)
	}
	rest, err = sexprExpectClose(rest)
	if err != nil {
		return nil, nil, err
	}
	return SExprCall{Callee: callee, Args: args}, rest, nil
}

func sexprExpectClose(toks []string) ([]string, error) {
	if len(toks) == 0 || toks[0] != ")" {
		return nil, fmt.Errorf("expected )")
	}
	return toks[1:], nil
}
