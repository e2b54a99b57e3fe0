// Package render converts vdom trees into HTML.
//
// Output is deterministic: attributes are written in key order, text and
// attribute values are escaped, void elements are self-contained, and
// boolean attributes (an empty value) are written as a bare name.
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// RenderPage wraps a body in a complete HTML document.
package render
