package shell

import (
	"strconv"
	"strings"

	vfs "github.com/OuluBSD/VfsBoot-sub001"
)

// This file is the S-expression/C++ builder bridge spec.md §4.10 lists alongside the overlay/mount/autosave
// controls as part of the minimal command set: a thin, verb-dotted command surface over ast_cpp.go's and
// ast_sexpr.go's typed Go constructors. It deliberately does not reimplement a parser for either language
// (spec §1 keeps the lexer/parser/evaluator for both out of scope); it only gives the shell a way to call
// the constructors that already exist.

// cmdCppTu creates a translation unit node at path with the given #include names, grounded on
// ast_cpp.go's NewCppTranslationUnit.
func cmdCppTu(sh *Shell, args []string, stdin string) Result {
	if len(args) == 0 {
		return errResult(&vfs.UsageError{Message: "cpp.tu: expected <path> [include...]"})
	}
	path, includes := args[0], args[1:]
	tu := vfs.NewCppTranslationUnit(vfs.Base(path), includes)
	if err := sh.Session.AddNode(nil, vfs.Dir(path), tu); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppFunc creates a function under an existing translation unit at path, with an empty body compound
// ready for cpp.print/cpp.returni/cpp.vardecl/cpp.rangefor to append into. Params are given as
// "type:name" pairs.
func cmdCppFunc(sh *Shell, args []string, stdin string) Result {
	if len(args) < 2 {
		return errResult(&vfs.UsageError{Message: "cpp.func: expected <path> <return-type> [type:name...]"})
	}
	path, returnType, paramArgs := args[0], args[1], args[2:]
	params := make([]vfs.CppParam, 0, len(paramArgs))
	for _, p := range paramArgs {
		typ, name, ok := strings.Cut(p, ":")
		if !ok {
			return errResult(&vfs.UsageError{Message: "cpp.func: bad parameter " + p + ", expected type:name"})
		}
		params = append(params, vfs.CppParam{Type: typ, Name: name})
	}
	body := vfs.NewCppCompound("body")
	fn := vfs.NewCppFunction(vfs.Base(path), returnType, params, body)
	if err := sh.Session.AddNode(nil, vfs.Dir(path), fn); err != nil {
		return errResult(err)
	}
	if err := sh.Session.AddNode(nil, path, body); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppPrint appends a `std::cout << "text"` statement to the body compound at bodyPath, joining the
// remaining arguments as the printed text (matching echo's own argument-joining convention).
func cmdCppPrint(sh *Shell, args []string, stdin string) Result {
	if len(args) < 2 {
		return errResult(&vfs.UsageError{Message: "cpp.print: expected <body-path> <text...>"})
	}
	bodyPath := args[0]
	text := strings.Join(args[1:], " ")
	stmt := vfs.CppExprStmt{Expr: vfs.CppStreamOut{Args: []vfs.CppExpr{vfs.CppStringLit{Value: text}}}}
	if err := sh.Session.AppendCppStmt(nil, bodyPath, stmt); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppReturni appends `return <n>;` to the body compound at bodyPath.
func cmdCppReturni(sh *Shell, args []string, stdin string) Result {
	if len(args) != 2 {
		return errResult(&vfs.UsageError{Message: "cpp.returni: expected <body-path> <int>"})
	}
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errResult(&vfs.UsageError{Message: "cpp.returni: invalid integer " + args[1]})
	}
	stmt := vfs.CppReturnStmt{Expr: vfs.CppIntLit{Value: n}}
	if err := sh.Session.AppendCppStmt(nil, args[0], stmt); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppReturn appends a bare `return;` to the body compound at bodyPath.
func cmdCppReturn(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "cpp.return: expected <body-path>"})
	}
	if err := sh.Session.AppendCppStmt(nil, args[0], vfs.CppReturnStmt{}); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppVardecl appends a variable declaration to the body compound at bodyPath, with an optional
// initializer (parsed as an integer literal if it parses as one, an identifier reference otherwise).
func cmdCppVardecl(sh *Shell, args []string, stdin string) Result {
	if len(args) != 3 && len(args) != 4 {
		return errResult(&vfs.UsageError{Message: "cpp.vardecl: expected <body-path> <type> <name> [init]"})
	}
	decl := vfs.CppVarDecl{Type: args[1], Name: args[2]}
	if len(args) == 4 {
		if n, err := strconv.ParseInt(args[3], 10, 64); err == nil {
			decl.Init = vfs.CppIntLit{Value: n}
		} else {
			decl.Init = vfs.CppIdentifier{Name: args[3]}
		}
	}
	if err := sh.Session.AppendCppStmt(nil, args[0], decl); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdCppRangefor creates a nested `for (VarType VarName : RangeExpr) { ... }` block inside the compound at
// bodyPath, with its own empty body compound addressable afterward at <bodyPath>/<name>/body for further
// cpp.print/cpp.returni/cpp.vardecl calls.
func cmdCppRangefor(sh *Shell, args []string, stdin string) Result {
	if len(args) != 5 {
		return errResult(&vfs.UsageError{Message: "cpp.rangefor: expected <body-path> <name> <var-type> <var-name> <range-expr>"})
	}
	bodyPath, name, varType, varName, rangeExpr := args[0], args[1], args[2], args[3], args[4]
	inner := vfs.NewCppCompound("body")
	rf := vfs.NewCppRangeFor(name, varType, varName, vfs.CppIdentifier{Name: rangeExpr}, inner)
	if err := sh.Session.AddNode(nil, bodyPath, rf); err != nil {
		return errResult(err)
	}
	if err := sh.Session.AddNode(nil, strings.TrimSuffix(bodyPath, "/")+"/"+name, inner); err != nil {
		return errResult(err)
	}
	return okResult("")
}

// cmdSexprNew creates an S-expression holder node at path, seeded with the integer 0. Its value is then
// set the same way any
// plain file's content is, via `echo <printed-form> > path` — SExprAst.Write re-parses the printed form
// generically, so no separate "set" builtin is needed.
func cmdSexprNew(sh *Shell, args []string, stdin string) Result {
	if len(args) != 1 {
		return errResult(&vfs.UsageError{Message: "sexpr.new: expected <path>"})
	}
	node := vfs.NewSExprAst(vfs.Base(args[0]), vfs.SExprInt{Value: 0})
	if err := sh.Session.AddNode(nil, vfs.Dir(args[0]), node); err != nil {
		return errResult(err)
	}
	return okResult("")
}
