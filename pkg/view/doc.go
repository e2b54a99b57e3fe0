// Package view mounts components on targets and re-renders them when
// their props change.
//
// A Component is a pure function from props to a vdom tree. Mount renders
// it once and sends the initial Frame to a Target; SetProps renders again,
// diffs against the previous tree and sends an update Frame carrying the
// patches together with the full HTML:
//
//	node, err := view.Mount(App, view.Props{"users": users}, view.NewWriterTarget(os.Stdout))
//	...
//	err = node.SetProps(view.Props{"users": updated})
//
// Targets decide what to do with frames: WriterTarget writes HTML
// snapshots, Recorder keeps them in memory, and live.Hub streams them to
// browsers.
package view
