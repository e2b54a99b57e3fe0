package vdom

import "testing"

func TestElBuildsTree(t *testing.T) {
	n := Div(Class("a", "b"), ID("root"), Key("k1"), nil,
		Span("hello"),
		[]*VNode{Li(), nil, Li()},
	)

	if n.Tag != "div" || n.Kind != KindElement {
		t.Fatalf("unexpected node %+v", n)
	}
	if n.Attrs["class"] != "a b" || n.Attrs["id"] != "root" {
		t.Errorf("attrs = %v", n.Attrs)
	}
	if _, ok := n.Attrs["key"]; ok {
		t.Error("key must not be rendered as an attribute")
	}
	if n.Key != "k1" {
		t.Errorf("Key = %q, want k1", n.Key)
	}
	if len(n.Children) != 3 {
		t.Errorf("children = %d, want 3", len(n.Children))
	}
}

func TestVoidElementDropsChildren(t *testing.T) {
	n := El("input", Text("ignored"))
	if len(n.Children) != 0 {
		t.Error("void element should not keep children")
	}
}

func TestHiddenFalseIsOmitted(t *testing.T) {
	n := Div(Hidden(false))
	if n.Attrs != nil {
		t.Errorf("expected no attrs, got %v", n.Attrs)
	}
}

func TestMapAndTextContent(t *testing.T) {
	n := Ul(Map([]string{"a", "b", "c"}, func(s string) *VNode {
		if s == "b" {
			return nil
		}
		return Li(Text(s))
	}))
	if got := n.TextContent(); got != "ac" {
		t.Errorf("TextContent() = %q, want ac", got)
	}
}

func TestFragmentFlattensSlices(t *testing.T) {
	f := Fragment("x", []*VNode{Text("y")}, nil, Text("z"))
	if len(f.Children) != 3 || f.TextContent() != "xyz" {
		t.Errorf("unexpected fragment %+v", f)
	}
}

func TestKindString(t *testing.T) {
	if KindRaw.String() != "Raw" || VKind(99).String() != "Unknown" {
		t.Error("unexpected VKind strings")
	}
}
