package live

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/vdom"
	"github.com/vango-dev/appstore/pkg/view"
)

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Routes(hub, "Test"))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.Clients(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLateClientReceivesLastFrame(t *testing.T) {
	hub := NewHub(nil)
	srv := startServer(t, hub)

	if err := hub.Mount(view.Frame{Seq: 1, HTML: "<p>one</p>"}); err != nil {
		t.Fatal(err)
	}
	if err := hub.Update(view.Frame{Seq: 2, HTML: "<p>two</p>"}); err != nil {
		t.Fatal(err)
	}

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	if msg.Type != TypeMount || msg.Frame == nil || msg.Frame.Seq != 2 || msg.Frame.HTML != "<p>two</p>" {
		t.Errorf("first message = %+v", msg)
	}
}

func TestBroadcastToClients(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(&Config{Metrics: metrics.New(metrics.WithRegistry(reg))})
	srv := startServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	waitClients(t, hub, 2)

	if err := hub.Update(view.Frame{Seq: 5, HTML: "<p>hi</p>"}); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Type != TypeUpdate || msg.Frame.HTML != "<p>hi</p>" {
			t.Errorf("message = %+v", msg)
		}
	}

	if n := testutil.CollectAndCount(reg, "appstore_live_clients"); n != 1 {
		t.Errorf("live_clients series = %d", n)
	}

	if err := hub.Unmount(); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, a); msg.Type != TypeUnmount || msg.Frame != nil {
		t.Errorf("unmount message = %+v", msg)
	}
	if _, ok := hub.Last(); ok {
		t.Error("Last should be empty after unmount")
	}
}

func TestClientDisconnectIsRemoved(t *testing.T) {
	hub := NewHub(nil)
	srv := startServer(t, hub)

	conn := dial(t, srv)
	waitClients(t, hub, 1)
	conn.Close()
	waitClients(t, hub, 0)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	c := &client{send: make(chan []byte), remote: "test"}
	hub.clients[c] = struct{}{}

	if err := hub.Update(view.Frame{Seq: 1}); err != nil {
		t.Fatal(err)
	}
	if hub.Clients() != 0 {
		t.Errorf("clients = %d, want 0", hub.Clients())
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestPublishAfterClose(t *testing.T) {
	hub := NewHub(nil)
	if err := hub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := hub.Mount(view.Frame{Seq: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Mount after Close = %v, want ErrClosed", err)
	}
}

func TestPageShell(t *testing.T) {
	hub := NewHub(nil)
	srv := startServer(t, hub)

	if err := hub.Mount(view.Frame{Seq: 1, HTML: "<ul><li>Ada</li></ul>"}); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	page := string(body)

	for _, want := range []string{
		"<title>Test</title>",
		`<div id="app"><ul><li>Ada</li></ul></div>`,
		"new WebSocket(",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestMountedViewStreamsPatches(t *testing.T) {
	hub := NewHub(nil)
	srv := startServer(t, hub)
	conn := dial(t, srv)
	waitClients(t, hub, 1)

	counter := func(p view.Props) *vdom.VNode {
		return vdom.P(vdom.Textf("count %v", p["n"]))
	}
	node, err := view.Mount(counter, view.Props{"n": 1}, hub)
	if err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != TypeMount || msg.Frame.HTML != "<p>count 1</p>" {
		t.Errorf("mount message = %+v", msg)
	}

	if err := node.SetProps(view.Props{"n": 2}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != TypeUpdate || msg.Frame.HTML != "<p>count 2</p>" || len(msg.Frame.Patches) == 0 {
		t.Errorf("update message = %+v", msg)
	}
}
