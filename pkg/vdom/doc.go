// Package vdom provides the virtual node tree rendered by view components.
//
// A tree is built from element helpers:
//
//	tree := vdom.Div(vdom.Class("users"),
//	    vdom.H1(vdom.Text("Users")),
//	    vdom.Ul(vdom.Map(users, func(u record.Record) *vdom.VNode {
//	        return vdom.Li(vdom.Key(u.ID()), vdom.Text(u["name"].(string)))
//	    })),
//	)
//
// Diff compares two trees and returns the patches that transform one into
// the other. Patches address nodes by their child-index path from the root.
// Keyed children are matched by key; unkeyed children by position.
package vdom
