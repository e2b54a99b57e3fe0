package view

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/vdom"
)

// Props is the property bag passed to a component.
type Props map[string]any

// Clone returns a shallow copy of the bag.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Component renders props into a tree.
type Component func(props Props) *vdom.VNode

// Frame is one rendered state of a mounted node.
type Frame struct {
	// Seq increases by one per frame, starting at 1 for the mount frame.
	Seq uint64 `json:"seq"`

	// HTML is the full rendered markup.
	HTML string `json:"html"`

	// Patches transform the previous frame's tree into this one.
	// Empty for the mount frame.
	Patches []vdom.Patch `json:"patches,omitempty"`
}

// Target receives frames from a mounted node.
type Target interface {
	Mount(frame Frame) error
	Update(frame Frame) error
	Unmount() error
}

// Option configures a mounted node.
type Option func(*Node)

// WithRenderer sets the HTML renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(n *Node) {
		if r != nil {
			n.renderer = r
		}
	}
}

// Node is a mounted component.
type Node struct {
	mu        sync.Mutex
	component Component
	target    Target
	renderer  *render.Renderer
	props     Props
	tree      *vdom.VNode
	seq       uint64
	unmounted bool
}

// Mount renders component with props and sends the first frame to target.
func Mount(component Component, props Props, target Target, opts ...Option) (*Node, error) {
	if component == nil {
		return nil, fmt.Errorf("view: nil component")
	}
	if target == nil {
		return nil, fmt.Errorf("view: nil target")
	}

	n := &Node{
		component: component,
		target:    target,
		renderer:  render.NewRenderer(render.RendererConfig{}),
		props:     props.Clone(),
	}
	for _, opt := range opts {
		opt(n)
	}

	tree, err := n.build(n.props)
	if err != nil {
		return nil, err
	}
	html, err := n.renderer.RenderToString(tree)
	if err != nil {
		return nil, err
	}

	n.tree = tree
	n.seq = 1
	if err := target.Mount(Frame{Seq: n.seq, HTML: html}); err != nil {
		return nil, fmt.Errorf("view: mount: %w", err)
	}
	return n, nil
}

// build runs the component, converting a panic into an error.
func (n *Node) build(props Props) (tree *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("view: component panic: %v\n%s", r, debug.Stack())
		}
	}()
	return n.component(props), nil
}

// SetProps replaces the props, re-renders and sends an update frame.
// Nothing is sent when the tree did not change.
func (n *Node) SetProps(props Props) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.unmounted {
		return fmt.Errorf("view: node unmounted")
	}

	next := props.Clone()
	tree, err := n.build(next)
	if err != nil {
		return err
	}
	n.props = next

	patches := vdom.Diff(n.tree, tree)
	if len(patches) == 0 {
		return nil
	}
	for i := range patches {
		if patches[i].Node == nil {
			continue
		}
		html, err := n.renderer.RenderToString(patches[i].Node)
		if err != nil {
			return err
		}
		patches[i].HTML = html
	}

	html, err := n.renderer.RenderToString(tree)
	if err != nil {
		return err
	}

	n.tree = tree
	n.seq++
	return n.target.Update(Frame{Seq: n.seq, HTML: html, Patches: patches})
}

// Props returns a copy of the current props.
func (n *Node) Props() Props {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.props.Clone()
}

// Tree returns the last rendered tree.
func (n *Node) Tree() *vdom.VNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tree
}

// Seq returns the sequence number of the last frame sent.
func (n *Node) Seq() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

// Unmount detaches the node from its target. Later SetProps calls fail.
func (n *Node) Unmount() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.unmounted {
		return nil
	}
	n.unmounted = true
	return n.target.Unmount()
}
