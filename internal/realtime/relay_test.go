package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vegalabs/voicegate/internal/config"
	"github.com/vegalabs/voicegate/pkg/Logger"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newTestBridge(t *testing.T, endpoint string, reg toolsystem.Registry) *Bridge {
	t.Helper()
	settings := &config.Settings{
		Upstream: config.UpstreamConfig{
			Endpoint:   endpoint,
			Deployment: "gpt-4o-realtime",
			APIVersion: "2024-10-01",
			APIKey:     "secret",
		},
		Session: testSessionConfig(),
	}
	bridge, err := NewBridge(settings, reg, Logger.New(true))
	if err != nil {
		t.Fatalf("bridge construction failed: %v", err)
	}
	return bridge
}

// startRelayServer runs one relay per incoming connection and reports
// Run's result on the returned channel.
func startRelayServer(t *testing.T, bridge *Bridge) (*httptest.Server, *Relay, chan error) {
	t.Helper()
	relay := bridge.NewRelay("test-session")
	runErr := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("client upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		runErr <- relay.Run(context.Background(), conn)
	}))
	return srv, relay, runErr
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("client dial failed: %v", err)
	}
	return conn
}

func waitErr(t *testing.T, ch chan error, what string) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return nil
	}
}

func TestRelayEnrichesSessionAndTearsDownOnClientClose(t *testing.T) {
	upstreamMsgs := make(chan map[string]any, 8)
	upstreamClosed := make(chan struct{})

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/realtime" {
			t.Errorf("unexpected upstream path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api-version") != "2024-10-01" ||
			r.URL.Query().Get("deployment") != "gpt-4o-realtime" {
			t.Errorf("missing upstream query params: %s", r.URL.RawQuery)
		}
		if r.Header.Get("api-key") != "secret" {
			t.Error("missing api-key header on upstream handshake")
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upstream upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		defer close(upstreamClosed)
		for {
			var m map[string]any
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			upstreamMsgs <- m
		}
	}))
	defer upstream.Close()

	bridge := newTestBridge(t, upstream.URL, registryWith("get_weather", "show_map"))
	srv, relay, runErr := startRelayServer(t, bridge)
	defer srv.Close()

	client := dialWS(t, srv)
	defer client.Close()

	update := `{"type":"session.update","session":{"voice":"alloy","extra":"kept"}}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(update)); err != nil {
		t.Fatalf("client write failed: %v", err)
	}

	var enriched map[string]any
	select {
	case enriched = <-upstreamMsgs:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received the session update")
	}

	session := enriched["session"].(map[string]any)
	if session["voice"] != "shimmer" {
		t.Errorf("expected enforced voice, got %v", session["voice"])
	}
	if session["extra"] != "kept" {
		t.Error("client-supplied session fields must survive enrichment")
	}
	if session["tool_choice"] != "auto" {
		t.Errorf("expected tool_choice auto, got %v", session["tool_choice"])
	}
	tools, ok := session["tools"].([]any)
	if !ok || len(tools) != 2 {
		t.Fatalf("expected 2 published tools, got %v", session["tools"])
	}

	// Graceful client close must cancel the sibling pump and close upstream.
	deadline := time.Now().Add(time.Second)
	_ = client.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	if err := waitErr(t, runErr, "relay teardown"); err != nil {
		t.Errorf("clean client close must not error: %v", err)
	}
	select {
	case <-upstreamClosed:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream connection was not closed on teardown")
	}
	if relay.State() != "closed" {
		t.Errorf("expected closed state, got %q", relay.State())
	}
}

func TestRelayToolCallRoundTrip(t *testing.T) {
	toolOutputs := make(chan map[string]any, 2)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		created := map[string]any{
			"type":             "conversation.item.created",
			"previous_item_id": "item_0",
			"item":             map[string]any{"type": "function_call", "call_id": "call_7", "name": "get_weather"},
		}
		done := map[string]any{
			"type": "response.output_item.done",
			"item": map[string]any{
				"type": "function_call", "call_id": "call_7",
				"name": "get_weather", "arguments": `{"location":"Bogotá"}`,
			},
		}
		if err := conn.WriteJSON(created); err != nil {
			return
		}
		if err := conn.WriteJSON(done); err != nil {
			return
		}
		for i := 0; i < 2; i++ {
			var m map[string]any
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			toolOutputs <- m
		}
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	}))
	defer upstream.Close()

	reg := toolsystem.NewMemoryRegistry()
	reg.Register(toolsystem.Tool{
		Name: "get_weather",
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return "Sunny in " + args["location"].(string), nil
		},
	})

	bridge := newTestBridge(t, upstream.URL, reg)
	srv, _, runErr := startRelayServer(t, bridge)
	defer srv.Close()

	client := dialWS(t, srv)
	defer client.Close()

	var create, cont map[string]any
	select {
	case create = <-toolOutputs:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received the tool output")
	}
	select {
	case cont = <-toolOutputs:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream never received the continuation request")
	}

	if create["type"] != "conversation.item.create" {
		t.Errorf("expected item create first, got %v", create["type"])
	}
	item := create["item"].(map[string]any)
	if item["type"] != "function_call_output" || item["call_id"] != "call_7" {
		t.Errorf("unexpected output item: %v", item)
	}
	if !strings.Contains(item["output"].(string), "Bogotá") {
		t.Errorf("unexpected tool output: %v", item["output"])
	}
	if cont["type"] != "response.create" {
		t.Errorf("expected continuation request second, got %v", cont["type"])
	}

	// Upstream close after the round trip ends the session cleanly.
	if err := waitErr(t, runErr, "relay teardown"); err != nil {
		t.Errorf("upstream-initiated close must not error: %v", err)
	}
}

func TestRelayHandshakeFailureIsFatal(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no realtime here", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	bridge := newTestBridge(t, upstream.URL, registryWith())
	srv, relay, runErr := startRelayServer(t, bridge)
	defer srv.Close()

	client := dialWS(t, srv)
	defer client.Close()

	err := waitErr(t, runErr, "handshake failure")
	if !errors.Is(err, ErrUpstreamConnect) {
		t.Errorf("expected ErrUpstreamConnect, got %v", err)
	}
	if relay.State() != "closed" {
		t.Errorf("expected closed state after abort, got %q", relay.State())
	}
}

func TestRelayClosesClientWhenUpstreamDies(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the connection without a close handshake.
		conn.Close()
	}))
	defer upstream.Close()

	bridge := newTestBridge(t, upstream.URL, registryWith())
	srv, _, runErr := startRelayServer(t, bridge)
	defer srv.Close()

	client := dialWS(t, srv)
	defer client.Close()

	waitErr(t, runErr, "relay teardown")

	// The client read must unblock within bounded time.
	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("expected client connection to be closed after upstream death")
	}
}
