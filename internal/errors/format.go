package errors

import (
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// Colorize wraps text in an ANSI code unless colors are disabled.
func Colorize(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns the error formatted for terminal display, including the
// registered explanation for its code.
func (e *Error) Format() string {
	var b strings.Builder

	header := "ERROR"
	if e.Code != "" {
		header += " " + e.Code
	}
	b.WriteString(Colorize(colorRed, Colorize(colorBold, header+": ")))
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("\n  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("\n  caused by: ")
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}
	if t, ok := registry[e.Code]; ok && t.Detail != "" {
		b.WriteString("\n  ")
		b.WriteString(Colorize(colorGray, "Hint: "+t.Detail))
		b.WriteString("\n")
	}

	return b.String()
}
