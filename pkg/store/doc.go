// Package store implements the application store: a registry of model
// collections that fetches records by id with de-duplication, caches them,
// writes updates through to the server, and re-renders a mounted root view
// whenever data changes.
//
// # Lifecycle
//
//	s, err := store.New(store.Config{
//	    Models: []store.ModelSpec{
//	        {Name: "users", Endpoint: "https://api.example.com/users"},
//	    },
//	})
//	err = s.ResetData(ctx, map[string][]record.Record{"users": initial}, App, target)
//
// Components receive the store in their props under AppStoreKey and call
// back into it:
//
//	s, _ := store.FromProps(props)
//	s.FetchAsync("users", []string{"7"}, nil)
//
// # Fetching
//
// Fetch issues one GET per id against the model's endpoint. An id that is
// already being fetched, by this call or a concurrent one, is not fetched
// again: callers share the outstanding request. Pending ids are cleared
// on success and on failure. When every id has returned the root is
// re-rendered once.
//
// # Updating
//
// Set writes fields to the server and commits them locally only after the
// server acknowledges; it then refreshes the record from the server and
// re-renders. Set returns once that refresh has completed, so its result
// always reflects server-confirmed state.
//
// # Concurrency
//
// Every model has its own lock. Fetches for different ids, and operations
// on different models, proceed in parallel. Renders are serialized.
package store
