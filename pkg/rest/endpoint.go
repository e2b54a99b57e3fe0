package rest

import (
	"context"
	"net/url"
	"strings"

	"github.com/vango-dev/appstore/pkg/collection"
	"github.com/vango-dev/appstore/pkg/record"
)

// Endpoint is a base URL for one model type.
type Endpoint struct {
	client *Client
	base   string
}

var _ collection.Source = (*Endpoint)(nil)

// Endpoint binds base to the client. A trailing slash on base is ignored.
func (c *Client) Endpoint(base string) *Endpoint {
	return &Endpoint{client: c, base: strings.TrimRight(base, "/")}
}

// Base returns the endpoint's base URL.
func (e *Endpoint) Base() string {
	return e.base
}

// URL returns base + "/" + id with id path-escaped.
func (e *Endpoint) URL(id string) string {
	return e.base + "/" + url.PathEscape(id)
}

// Read fetches the record for id.
func (e *Endpoint) Read(ctx context.Context, id string) (record.Record, error) {
	return e.client.Get(ctx, e.URL(id))
}

// Write sends fields for id and returns the stored record.
func (e *Endpoint) Write(ctx context.Context, id string, fields record.Record) (record.Record, error) {
	return e.client.Put(ctx, e.URL(id), fields)
}
