// Package errors provides the coded error kinds used across appstore.
//
// Every error carries a code (e.g. "E101") that maps to a registered
// template with a kind, a short message and a longer explanation:
//
//	err := errors.New(errors.CodeUnregisteredType).
//	    WithDetailf("model %q is not registered", "users")
//
//	errors.Is(err, errors.KindError(errors.KindUnregisteredType)) // true
//
// # Kinds
//
//   - unregistered_type: a model name was used before registration
//   - network_failure: a read or write against the server failed
//   - record_not_found: the server or the cache has no record for an id
//   - invalid_argument: a caller passed an unusable value
//   - not_mounted: a render was requested without a mounted root
//   - config: configuration could not be loaded or is invalid
//
// Format renders an error for terminal output in the CLI.
package errors
