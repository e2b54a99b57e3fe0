package vdom

import (
	"reflect"
	"testing"
)

func ops(patches []Patch) []PatchOp {
	out := make([]PatchOp, len(patches))
	for i, p := range patches {
		out[i] = p.Op
	}
	return out
}

func TestDiffIdenticalTrees(t *testing.T) {
	a := Div(Class("x"), Span("hi"))
	b := Div(Class("x"), Span("hi"))
	if patches := Diff(a, b); len(patches) != 0 {
		t.Errorf("expected no patches, got %v", patches)
	}
}

func TestDiffText(t *testing.T) {
	a := Div(Span("old"))
	b := Div(Span("new"))

	patches := Diff(a, b)
	if len(patches) != 1 {
		t.Fatalf("patches = %v", patches)
	}
	p := patches[0]
	if p.Op != PatchSetText || p.Value != "new" || !reflect.DeepEqual(p.Path, []int{0, 0}) {
		t.Errorf("unexpected patch %+v", p)
	}
}

func TestDiffAttrs(t *testing.T) {
	a := Div(Class("x"), Title("t"))
	b := Div(Class("y"), ID("z"))

	patches := Diff(a, b)
	want := []Patch{
		{Op: PatchSetAttr, Key: "class", Value: "y"},
		{Op: PatchSetAttr, Key: "id", Value: "z"},
		{Op: PatchRemoveAttr, Key: "title"},
	}
	if len(patches) != len(want) {
		t.Fatalf("patches = %+v", patches)
	}
	for i, w := range want {
		if patches[i].Op != w.Op || patches[i].Key != w.Key || patches[i].Value != w.Value {
			t.Errorf("patch %d = %+v, want %+v", i, patches[i], w)
		}
	}
}

func TestDiffReplaceOnTagChange(t *testing.T) {
	patches := Diff(Div(Span("a")), Div(P("a")))
	if got := ops(patches); !reflect.DeepEqual(got, []PatchOp{PatchReplaceNode}) {
		t.Errorf("ops = %v", got)
	}
	if patches[0].Node == nil || patches[0].Node.Tag != "p" {
		t.Error("replace patch should carry the new node")
	}
}

func TestDiffUnkeyedInsertAndRemove(t *testing.T) {
	grow := Diff(Ul(Li("a")), Ul(Li("a"), Li("b"), Li("c")))
	if got := ops(grow); !reflect.DeepEqual(got, []PatchOp{PatchInsertNode, PatchInsertNode}) {
		t.Errorf("grow ops = %v", got)
	}
	if grow[0].Index != 1 || grow[1].Index != 2 {
		t.Errorf("insert indices = %d, %d", grow[0].Index, grow[1].Index)
	}

	shrink := Diff(Ul(Li("a"), Li("b"), Li("c")), Ul(Li("a")))
	if got := ops(shrink); !reflect.DeepEqual(got, []PatchOp{PatchRemoveNode, PatchRemoveNode}) {
		t.Errorf("shrink ops = %v", got)
	}
	if !reflect.DeepEqual(shrink[0].Path, []int{2}) || !reflect.DeepEqual(shrink[1].Path, []int{1}) {
		t.Errorf("removals should run last first: %+v", shrink)
	}
}

func TestDiffKeyedReorder(t *testing.T) {
	prev := Ul(Li(Key("a"), "A"), Li(Key("b"), "B"), Li(Key("c"), "C"))
	next := Ul(Li(Key("c"), "C"), Li(Key("a"), "A2"), Li(Key("b"), "B"))

	patches := Diff(prev, next)
	var moves, texts int
	for _, p := range patches {
		switch p.Op {
		case PatchMoveNode:
			moves++
		case PatchSetText:
			texts++
			if p.Value != "A2" {
				t.Errorf("unexpected text patch %+v", p)
			}
		case PatchRemoveNode, PatchInsertNode, PatchReplaceNode:
			t.Errorf("unexpected structural patch %+v", p)
		}
	}
	if moves != 1 {
		t.Errorf("moves = %d, want 1", moves)
	}
	if texts != 1 {
		t.Errorf("text patches = %d, want 1", texts)
	}
}

func TestDiffKeyedAddRemove(t *testing.T) {
	prev := Ul(Li(Key("a"), "A"), Li(Key("b"), "B"))
	next := Ul(Li(Key("b"), "B"), Li(Key("d"), "D"))

	got := ops(Diff(prev, next))
	want := []PatchOp{PatchRemoveNode, PatchInsertNode}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestDiffNilRoots(t *testing.T) {
	if len(Diff(nil, nil)) != 0 {
		t.Error("nil/nil should produce nothing")
	}
	if got := ops(Diff(nil, Div())); !reflect.DeepEqual(got, []PatchOp{PatchReplaceNode}) {
		t.Errorf("nil prev ops = %v", got)
	}
	if got := ops(Diff(Div(), nil)); !reflect.DeepEqual(got, []PatchOp{PatchRemoveNode}) {
		t.Errorf("nil next ops = %v", got)
	}
}

func TestPatchOpTextRoundTrip(t *testing.T) {
	for op := PatchSetText; op <= PatchReplaceNode; op++ {
		text, err := op.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got PatchOp
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if got != op {
			t.Errorf("round trip %v = %v", op, got)
		}
	}

	var op PatchOp
	if err := op.UnmarshalText([]byte("Bogus")); err == nil {
		t.Error("expected error for unknown op")
	}
}
