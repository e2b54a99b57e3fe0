package render

import (
	"io"

	"github.com/vango-dev/appstore/pkg/vdom"
)

// PageData describes a complete HTML document.
type PageData struct {
	// Title is the document title.
	Title string

	// Lang is the html lang attribute (default: "en").
	Lang string

	// Body is rendered inside a <div id="app"> mount element.
	Body *vdom.VNode

	// Scripts are inline scripts appended to the body, unescaped.
	Scripts []string
}

// RenderPage writes a complete HTML5 document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	ew := &errWriter{w: w}
	ew.WriteString("<!DOCTYPE html>\n")
	ew.WriteString(`<html lang="` + escapeAttr(lang) + `">`)
	ew.WriteString(`<head><meta charset="utf-8">`)
	ew.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	ew.WriteString("<title>" + escapeHTML(page.Title) + "</title></head>")
	ew.WriteString(`<body><div id="app">`)
	r.renderNode(ew, page.Body, 0)
	ew.WriteString("</div>")
	for _, s := range page.Scripts {
		ew.WriteString("<script>")
		ew.WriteString(s)
		ew.WriteString("</script>")
	}
	ew.WriteString("</body></html>")
	return ew.err
}
