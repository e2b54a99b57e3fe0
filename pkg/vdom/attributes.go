package vdom

import (
	"strconv"
	"strings"
)

func attr(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Style sets the style attribute.
func Style(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Title sets the title attribute.
func Title(title string) Attr { return attr("title", title) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// Hidden sets or omits the boolean hidden attribute.
func Hidden(hidden bool) Attr {
	if !hidden {
		return Attr{}
	}
	return attr("hidden", "")
}

// AttrInt creates an attribute with an integer value.
func AttrInt(key string, value int) Attr { return attr(key, strconv.Itoa(value)) }

// AttrString creates an arbitrary attribute.
func AttrString(key, value string) Attr { return attr(key, value) }

// Key sets the reconciliation key of the element it is passed to.
func Key(key string) Attr { return attr(keyAttr, key) }
