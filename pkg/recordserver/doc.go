// Package recordserver is a reference REST backend for store models.
//
// Routes:
//
//	GET    /{model}       list records as a JSON array
//	GET    /{model}/{id}  one record as a JSON object
//	PUT    /{model}/{id}  merge the JSON body into the record, creating it
//	                      if needed, and reply with the stored record
//	DELETE /{model}/{id}  remove the record
//	GET    /metrics       Prometheus metrics, when a handler is configured
//
// Records are kept by a Backend: MemoryBackend for tests and demos, or
// S3Backend for records stored as JSON objects in a bucket.
package recordserver
