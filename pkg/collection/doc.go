// Package collection provides the per-type record collections the store
// keeps for every registered model.
//
// A Collection owns the records of one model type. It supports
// insert-or-merge by id, lookup, serialization to plain records, and two
// server round trips that go through its Source:
//
//   - Save writes fields and commits them locally only after the server
//     acknowledges the write.
//   - Reload replaces a record with the server's canonical state.
//
// Memory is the default implementation. Custom implementations are
// plugged into the store through a Constructor.
package collection
