package recordserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/record"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	backend.Seed("users",
		record.Record{"id": "1", "name": "Ada"},
		record.Record{"id": "2", "name": "Grace"},
	)
	srv := httptest.NewServer(New(backend, opts...))
	t.Cleanup(srv.Close)
	return srv, backend
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestGetRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users/1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	got := decode[record.Record](t, resp)
	want := record.Record{"id": "1", "name": "Ada"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissingRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/users/404", "/nobody/1"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestListRecords(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users")
	if err != nil {
		t.Fatal(err)
	}
	got := decode[[]record.Record](t, resp)
	want := []record.Record{
		{"id": "1", "name": "Ada"},
		{"id": "2", "name": "Grace"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	resp, err = http.Get(srv.URL + "/empty")
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[[]record.Record](t, resp); len(got) != 0 {
		t.Errorf("empty list = %v", got)
	}
}

func TestPutMergesAndCreates(t *testing.T) {
	srv, backend := newTestServer(t)

	put := func(path, body string) *http.Response {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	got := decode[record.Record](t, put("/users/1", `{"role":"admin"}`))
	want := record.Record{"id": "1", "name": "Ada", "role": "admin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged record mismatch (-want +got):\n%s", diff)
	}

	got = decode[record.Record](t, put("/users/3", `{"name":"Linus"}`))
	if got["id"] != "3" || got["name"] != "Linus" {
		t.Errorf("created record = %v", got)
	}
	stored, err := backend.Get(context.Background(), "users", "3")
	if err != nil || stored["name"] != "Linus" {
		t.Errorf("backend record = %v, %v", stored, err)
	}

	resp := put("/users/1", `not json`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	del := func(path string) int {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := del("/users/1"); code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", code)
	}
	if code := del("/users/1"); code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}

	resp, err := http.Get(srv.URL + "/users")
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[[]record.Record](t, resp); len(got) != 1 || got[0]["id"] != "2" {
		t.Errorf("list after delete = %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	srv, _ := newTestServer(t,
		WithMetrics(m),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	resp, err := http.Get(srv.URL + "/users/1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if n := testutil.CollectAndCount(reg, "appstore_http_requests_total"); n != 1 {
		t.Errorf("request series = %d, want 1", n)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
}

func TestChangeHook(t *testing.T) {
	type change struct {
		model, id string
		deleted   bool
	}
	changes := make(chan change, 4)
	srv, _ := newTestServer(t, WithChangeHook(func(model, id string, deleted bool) {
		changes <- change{model, id, deleted}
	}))

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/users/2", strings.NewReader(`{"x":1}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/users/1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	want := []change{{"users", "2", false}, {"users", "1", true}}
	for _, w := range want {
		select {
		case got := <-changes:
			if got != w {
				t.Errorf("change = %+v, want %+v", got, w)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("missing change %+v", w)
		}
	}
}
