package vdom

import "sort"

// Diff compares two VNode trees and returns the patches needed to
// transform prev into next.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, nil, &patches)
	return patches
}

func childPath(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}

func diff(prev, next *VNode, path []int, patches *[]Patch) {
	switch {
	case prev == nil && next == nil:
		return
	case prev == nil:
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: path, Node: next})
		return
	case next == nil:
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: path})
		return
	}

	if prev.Kind != next.Kind || prev.Tag != next.Tag || prev.Key != next.Key {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: path, Node: next})
		return
	}

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchSetText, Path: path, Value: next.Text})
		}
	case KindRaw:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: path, Node: next})
		}
	case KindElement:
		diffAttrs(prev, next, path, patches)
		diffChildren(prev.Children, next.Children, path, patches)
	case KindFragment:
		diffChildren(prev.Children, next.Children, path, patches)
	}
}

// diffAttrs emits attribute patches in key order so output is stable.
func diffAttrs(prev, next *VNode, path []int, patches *[]Patch) {
	keys := make([]string, 0, len(prev.Attrs)+len(next.Attrs))
	seen := make(map[string]bool, cap(keys))
	for k := range prev.Attrs {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range next.Attrs {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		pv, inPrev := prev.Attrs[k]
		nv, inNext := next.Attrs[k]
		switch {
		case inPrev && !inNext:
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, Path: path, Key: k})
		case !inPrev || pv != nv:
			*patches = append(*patches, Patch{Op: PatchSetAttr, Path: path, Key: k, Value: nv})
		}
	}
}

func hasKeys(nodes []*VNode) bool {
	for _, n := range nodes {
		if n != nil && n.Key != "" {
			return true
		}
	}
	return false
}

func diffChildren(prev, next []*VNode, path []int, patches *[]Patch) {
	if hasKeys(prev) || hasKeys(next) {
		diffKeyedChildren(prev, next, path, patches)
		return
	}

	// Removals run from the end so earlier indices stay valid.
	for i := len(prev) - 1; i >= len(next); i-- {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: childPath(path, i)})
	}
	for i, n := range next {
		if i < len(prev) {
			diff(prev[i], n, childPath(path, i), patches)
			continue
		}
		*patches = append(*patches, Patch{Op: PatchInsertNode, Path: path, Index: i, Node: n})
	}
}

// diffKeyedChildren matches children by key. Unkeyed children on either
// side are treated as distinct nodes.
func diffKeyedChildren(prev, next []*VNode, path []int, patches *[]Patch) {
	nextKeys := make(map[string]bool, len(next))
	for _, n := range next {
		if n.Key != "" {
			nextKeys[n.Key] = true
		}
	}

	// Remove prev children that have no keyed counterpart, last first.
	var kept []*VNode
	for i := len(prev) - 1; i >= 0; i-- {
		p := prev[i]
		if p.Key == "" || !nextKeys[p.Key] {
			*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: childPath(path, i)})
			continue
		}
		kept = append([]*VNode{p}, kept...)
	}

	current := make(map[string]int, len(kept))
	for i, p := range kept {
		current[p.Key] = i
	}
	order := kept

	for i, n := range next {
		if n.Key == "" {
			order = insertAt(order, i, n)
			reindex(order, current)
			*patches = append(*patches, Patch{Op: PatchInsertNode, Path: path, Index: i, Node: n})
			continue
		}

		at, ok := current[n.Key]
		if !ok {
			order = insertAt(order, i, n)
			reindex(order, current)
			*patches = append(*patches, Patch{Op: PatchInsertNode, Path: path, Index: i, Node: n})
			continue
		}

		if at != i {
			moved := order[at]
			order = append(order[:at:at], order[at+1:]...)
			order = insertAt(order, i, moved)
			reindex(order, current)
			*patches = append(*patches, Patch{Op: PatchMoveNode, Path: path, Key: n.Key, Index: i})
		}
		diff(order[i], n, childPath(path, i), patches)
	}
}

func insertAt(nodes []*VNode, i int, n *VNode) []*VNode {
	if i >= len(nodes) {
		return append(nodes, n)
	}
	out := make([]*VNode, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}

func reindex(nodes []*VNode, idx map[string]int) {
	for i, n := range nodes {
		if n.Key != "" {
			idx[n.Key] = i
		}
	}
}
