// Package rest is the JSON-over-HTTP transport used to read and write
// records.
//
// A Client performs GET and PUT requests that carry a single JSON object.
// Transient failures (connection errors, 429 and 5xx responses) are retried
// with a fixed delay; other non-2xx responses fail immediately. Every
// failure is reported as a network_failure error; a 404 additionally wraps
// a record_not_found error.
//
// Endpoint binds a base URL to a Client and implements collection.Source:
//
//	client := rest.New(rest.WithRetry(3, 200*time.Millisecond))
//	users := client.Endpoint("https://api.example.com/users")
//	rec, err := users.Read(ctx, "42") // GET https://api.example.com/users/42
package rest
