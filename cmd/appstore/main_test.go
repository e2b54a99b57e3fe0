package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/appstore/internal/config"
	"github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/recordserver"
	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/view"
)

// testEnv starts a record server and writes a config pointing at it.
func testEnv(t *testing.T) (configPath string) {
	t.Helper()

	backend := recordserver.NewMemoryBackend()
	backend.Seed("users",
		record.Record{"id": "1", "name": "Ada"},
		record.Record{"id": "2", "name": "Grace"},
	)
	srv := httptest.NewServer(recordserver.New(backend))
	t.Cleanup(srv.Close)

	cfg := config.New()
	cfg.LogLevel = "error"
	retries := 0
	cfg.Transport.Retries = &retries
	cfg.Models = []config.ModelConfig{
		{Name: "users", Endpoint: srv.URL + "/users", IDAttribute: "id"},
	}
	configPath = filepath.Join(t.TempDir(), "appstore.json")
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	configPath := testEnv(t)

	out, err := execute(t, "fetch", "users", "2", "1", "2", "--config", configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var got []record.Record
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].ID() < got[j].ID() })
	want := []record.Record{
		{"id": "1", "name": "Ada"},
		{"id": "2", "name": "Grace"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchCommandPartialFailure(t *testing.T) {
	configPath := testEnv(t)

	out, err := execute(t, "fetch", "users", "1", "missing", "--config", configPath)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("fetch error = %v, want failure naming the missing id", err)
	}
	if !strings.Contains(out, "Ada") {
		t.Errorf("successful records not printed: %q", out)
	}
}

func TestFetchCommandUnknownModel(t *testing.T) {
	configPath := testEnv(t)

	if _, err := execute(t, "fetch", "posts", "1", "--config", configPath); err == nil {
		t.Error("expected error for an unconfigured model")
	}
}

func TestGetCommand(t *testing.T) {
	configPath := testEnv(t)

	out, err := execute(t, "get", "users", "1", "--pretty=false", "--config", configPath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := `<table data-model="users"><tr><th>id</th><td>1</td></tr><tr><th>name</th><td>Ada</td></tr></table>` + "\n"
	if out != want {
		t.Errorf("get output = %q, want %q", out, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func TestModelsView(t *testing.T) {
	models := []config.ModelConfig{
		{Name: "users", IDAttribute: "id"},
		{Name: "posts", IDAttribute: "slug", Endpoint: "/records/posts"},
	}
	props := view.Props{
		"users": []record.Record{{"id": "1", "name": "Ada", "tags": []any{"x"}}},
		"posts": []record.Record{},
	}

	html, err := render.NewRenderer(render.RendererConfig{}).RenderToString(modelsView(models)(props))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<section data-model="users"><h2>users</h2><table><tr><th>id</th><th>name</th><th>tags</th></tr>`,
		`<td>1</td><td>Ada</td><td>[&quot;x&quot;]</td>`,
		`<section data-model="posts"><h2>posts</h2><p class="endpoint">/records/posts</p><p class="empty">no records</p></section>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
}

func TestClientConfigEndpointOverride(t *testing.T) {
	configPath := testEnv(t)
	flags := &globalFlags{configPath: configPath}

	cfg, err := clientConfig(flags, &clientFlags{endpoint: "http://other/users"}, "users")
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := cfg.Model("users"); m.Endpoint != "http://other/users" {
		t.Errorf("endpoint = %q", m.Endpoint)
	}

	cfg, err = clientConfig(flags, &clientFlags{endpoint: "http://other/posts"}, "posts")
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := cfg.Model("posts"); !ok || m.IDAttribute != "id" {
		t.Errorf("added model = %+v, %v", m, ok)
	}

	if _, err := clientConfig(&globalFlags{configPath: filepath.Join(os.TempDir(), "nope.json")}, &clientFlags{endpoint: "http://x"}, "users"); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir, "--format", "yaml")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(dir, config.YAMLFileName)
	if !strings.Contains(out, path) {
		t.Errorf("init output = %q, want it to name %s", out, path)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(starterConfig().Models, cfg.Models); diff != "" {
		t.Errorf("Models mismatch (-want +got):\n%s", diff)
	}
	if n := len(cfg.Backend.Seed["users"]); n != 2 {
		t.Errorf("seed users = %d, want 2", n)
	}

	if _, err := execute(t, "init", dir); err == nil {
		t.Error("init over an existing config should fail without --force")
	}
	if _, err := execute(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if _, err := execute(t, "init", dir, "--format", "toml", "--force"); err == nil {
		t.Error("init with unknown format should fail")
	}
}

func TestPrintError(t *testing.T) {
	errors.DisableColors()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "coded",
			err:  errors.New(errors.CodeConfigNotFound).WithDetail("No appstore.json"),
			want: []string{"ERROR E202: ", "No appstore.json", "Hint: "},
		},
		{
			name: "plain",
			err:  os.ErrNotExist,
			want: []string{"Error: file does not exist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
			if strings.Contains(buf.String(), "\033[") {
				t.Errorf("colors not disabled:\n%s", buf.String())
			}
		})
	}
}
