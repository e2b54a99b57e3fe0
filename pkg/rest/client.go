package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	apperrors "github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/record"
)

const tracerName = "github.com/vango-dev/appstore/pkg/rest"

// maxBodyBytes caps response bodies read by the client.
const maxBodyBytes = 4 << 20

// Client sends JSON record requests.
type Client struct {
	http       *http.Client
	header     http.Header
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:       http.DefaultClient,
		header:     make(http.Header),
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches the JSON object at url.
func (c *Client) Get(ctx context.Context, url string) (record.Record, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// Put sends body as JSON to url and returns the JSON object in the reply.
func (c *Client) Put(ctx context.Context, url string, body record.Record) (record.Record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument).WithDetail("encode body").Wrap(err)
	}
	return c.do(ctx, http.MethodPut, url, payload)
}

// statusError carries a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %d", e.code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) (record.Record, error) {
	ctx, span := c.tracer.Start(ctx, "rest."+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", url),
	)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request", "method", method, "url", url, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, c.fail(span, method, url, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		rec, err := c.attempt(ctx, method, url, payload)
		if err == nil {
			span.SetAttributes(attribute.Int("http.attempts", attempt+1))
			span.SetStatus(codes.Ok, "")
			return rec, nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return nil, c.fail(span, method, url, lastErr)
}

func (c *Client) fail(span trace.Span, method, url string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	e := apperrors.New(apperrors.CodeNetworkFailure).WithDetailf("%s %s", method, url)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return e.Wrap(apperrors.New(apperrors.CodeRecordNotFound).Wrap(err))
	}
	return e.Wrap(err)
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte) (record.Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRequest(method, "error", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	c.metrics.RecordRequest(method, strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(data))}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return record.Record{}, nil
	}
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if rec == nil {
		rec = record.Record{}
	}
	return rec, nil
}
