package vfs

import (
	"bytes"
	"testing"
)

// TestContainerRoundTripsCppAst exercises the two-phase container codec (spec §4.7) against an actual,
// multiply-nested AST node tree: a translation unit holding a function holding a body with a print
// statement, a return statement, and a nested range-for whose own body holds a bare return. This is the
// shape spec §8's scenario 2 builds through the cpp.* shell bridge, and the one container.go had no direct
// test for before this.
func TestContainerRoundTripsCppAst(t *testing.T) {
	stack := NewOverlayStack()
	base := stack.Base()

	tu := NewCppTranslationUnit("tu", []string{"<iostream>"})
	if err := AddNode(stack, base.ID, "/", tu); err != nil {
		t.Fatal(err)
	}
	body := NewCppCompound("body")
	fn := NewCppFunction("main", "int", nil, body)
	if err := AddNode(stack, base.ID, "/tu", fn); err != nil {
		t.Fatal(err)
	}
	if err := AddNode(stack, base.ID, "/tu/main", body); err != nil {
		t.Fatal(err)
	}
	body.Items = append(body.Items,
		cppCompoundItem{stmt: CppExprStmt{Expr: CppStreamOut{Args: []CppExpr{CppStringLit{Value: "x"}}}}},
		cppCompoundItem{stmt: CppReturnStmt{Expr: CppIntLit{Value: 0}}},
	)

	inner := NewCppCompound("body")
	rf := NewCppRangeFor("loop", "int", "it", CppIdentifier{Name: "items"}, inner)
	if err := AddNode(stack, base.ID, "/tu/main/body", rf); err != nil {
		t.Fatal(err)
	}
	if err := AddNode(stack, base.ID, "/tu/main/body/loop", inner); err != nil {
		t.Fatal(err)
	}
	inner.Items = append(inner.Items, cppCompoundItem{stmt: CppReturnStmt{}})

	var buf bytes.Buffer
	if err := WriteContainer(&buf, base); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	readStack := NewOverlayStack()
	readBase := readStack.Base()
	if err := ReadContainer(&buf, readBase); err != nil {
		t.Fatalf("ReadContainer: %v", err)
	}

	node, _, err := resolve(readStack, []int{readBase.ID}, "/tu/main", ConflictManual, readBase.ID)
	if err != nil {
		t.Fatalf("resolve /tu/main: %v", err)
	}
	fn2, ok := node.(*CppFunction)
	if !ok {
		t.Fatalf("expected *CppFunction at /tu/main, got %T", node)
	}
	if fn2.Body == nil {
		t.Fatal("round-tripped function has no body")
	}
	if len(fn2.Body.Items) != 3 {
		t.Fatalf("expected 3 body items (print, return, rangefor), got %d: %+v", len(fn2.Body.Items), fn2.Body.Items)
	}
	if fn2.Body.Items[2].rangeFor == nil {
		t.Fatal("expected the third body item to be the resolved range-for, got an unfixed-up reference")
	}
	if len(fn2.Body.Items[2].rangeFor.Body.Items) != 1 {
		t.Fatalf("expected the range-for's body to hold its one bare return statement, got %+v", fn2.Body.Items[2].rangeFor.Body.Items)
	}

	got, err := fn2.Read()
	if err != nil {
		t.Fatalf("round-tripped fn.Read: %v", err)
	}
	want, err := fn.Read()
	if err != nil {
		t.Fatalf("original fn.Read: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("round-tripped function rendering mismatch:\ngot:  %s\nwant: %s", got, want)
	}

	tuNode, _, err := resolve(readStack, []int{readBase.ID}, "/tu", ConflictManual, readBase.ID)
	if err != nil {
		t.Fatalf("resolve /tu: %v", err)
	}
	tu2, ok := tuNode.(*CppTranslationUnit)
	if !ok {
		t.Fatalf("expected *CppTranslationUnit at /tu, got %T", tuNode)
	}
	if len(tu2.Includes) != 1 || tu2.Includes[0] != "<iostream>" {
		t.Fatalf("expected includes to survive the round trip, got %v", tu2.Includes)
	}
	if len(tu2.Functions) != 1 || tu2.Functions[0].Name() != "main" {
		t.Fatalf("expected the translation unit's ordered function list to survive, got %v", tu2.Functions)
	}
}
