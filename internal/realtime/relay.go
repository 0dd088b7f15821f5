package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"

	"github.com/vegalabs/voicegate/internal/config"
	"github.com/vegalabs/voicegate/pkg/Logger"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// ErrUpstreamConnect marks a failed upstream handshake. It is fatal for the
// session and never retried by the relay.
var ErrUpstreamConnect = errors.New("upstream realtime connect failed")

const (
	upstreamPath = "/openai/realtime"

	// How long teardown waits for the cancelled sibling pump.
	siblingShutdownWait = 5 * time.Second
)

// Relay lifecycle states.
const (
	stateConnecting         = "connecting"
	stateOpen               = "open"
	stateClosingClientFirst = "closing_client_first"
	stateClosingServerFirst = "closing_upstream_first"
	stateClosed             = "closed"
)

const (
	eventOpened         = "opened"
	eventClientClosed   = "client_closed"
	eventUpstreamClosed = "upstream_closed"
	eventTeardown       = "teardown"
	eventAbort          = "abort"
)

// Bridge is the per-configuration object shared by all connections: session
// policy, tool registry and upstream connection parameters. It is built once
// at startup and read-only afterwards.
type Bridge struct {
	upstream config.UpstreamConfig
	policy   *SessionPolicy
	registry toolsystem.Registry
	logger   *Logger.Logger
	dialer   *websocket.Dialer
}

func NewBridge(settings *config.Settings, registry toolsystem.Registry, logger *Logger.Logger) (*Bridge, error) {
	policy, err := NewSessionPolicy(settings.Session, registry)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		upstream: settings.Upstream,
		policy:   policy,
		registry: registry,
		logger:   logger,
		dialer:   websocket.DefaultDialer,
	}, nil
}

// NewRelay creates the relay for one client connection. Each relay owns its
// client and upstream stream handles exclusively for its lifetime.
func (b *Bridge) NewRelay(sessionID string) *Relay {
	logger := b.logger.Named("relay." + sessionID)
	return &Relay{
		bridge:     b,
		logger:     logger,
		dispatcher: NewDispatcher(NewInvoker(b.registry, logger), logger),
		lifecycle: fsm.NewFSM(
			stateConnecting,
			fsm.Events{
				{Name: eventOpened, Src: []string{stateConnecting}, Dst: stateOpen},
				{Name: eventClientClosed, Src: []string{stateOpen}, Dst: stateClosingClientFirst},
				{Name: eventUpstreamClosed, Src: []string{stateOpen}, Dst: stateClosingServerFirst},
				{Name: eventTeardown, Src: []string{stateClosingClientFirst, stateClosingServerFirst}, Dst: stateClosed},
				{Name: eventAbort, Src: []string{stateConnecting}, Dst: stateClosed},
			},
			fsm.Callbacks{},
		),
	}
}

// Relay supervises one session: it dials upstream, runs the two pumps and
// enforces fail-fast teardown when either side ends.
type Relay struct {
	bridge        *Bridge
	logger        *Logger.Logger
	dispatcher    *Dispatcher
	lifecycle     *fsm.FSM
	closeUpstream sync.Once
}

// State exposes the current lifecycle state, mainly for logging.
func (r *Relay) State() string {
	return r.lifecycle.Current()
}

// Run drives the session until either stream ends. It returns nil on a
// clean close from either side; only connection-lifecycle failures escape.
// The client connection is left for the caller to close.
func (r *Relay) Run(ctx context.Context, client *websocket.Conn) error {
	upstreamConn, err := r.dial(ctx)
	if err != nil {
		_ = r.lifecycle.Event(ctx, eventAbort)
		return fmt.Errorf("%w: %v", ErrUpstreamConnect, err)
	}
	_ = r.lifecycle.Event(ctx, eventOpened)
	r.logger.Infof("upstream realtime connection open")

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	clientSink := NewSink(client)
	upstreamSink := NewSink(upstreamConn)

	clientDone := make(chan error, 1)
	upstreamDone := make(chan error, 1)

	go func() {
		clientDone <- r.pumpClientToUpstream(pumpCtx, client, upstreamSink)
	}()
	go func() {
		upstreamDone <- r.pumpUpstreamToClient(pumpCtx, upstreamConn, clientSink, upstreamSink)
	}()

	// First pump to finish wins; the sibling is cancelled by closing both
	// sockets, which unblocks its pending read.
	var first error
	var sibling <-chan error
	select {
	case first = <-clientDone:
		_ = r.lifecycle.Event(ctx, eventClientClosed)
		sibling = upstreamDone
	case first = <-upstreamDone:
		_ = r.lifecycle.Event(ctx, eventUpstreamClosed)
		sibling = clientDone
	}

	cancel()
	r.shutdownUpstream(upstreamConn)
	_ = client.Close()

	select {
	case <-sibling:
		// Cancellation-induced errors are swallowed.
	case <-time.After(siblingShutdownWait):
		r.logger.Warnf("sibling pump did not stop within %s", siblingShutdownWait)
	}

	_ = r.lifecycle.Event(ctx, eventTeardown)
	r.logger.Infof("session closed (%s)", r.lifecycle.Current())
	return first
}

// dial opens the upstream realtime socket with the deployment and version
// query parameters and the credential header.
func (r *Relay) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(r.bridge.upstream.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream endpoint: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + upstreamPath

	q := u.Query()
	q.Set("api-version", r.bridge.upstream.APIVersion)
	q.Set("deployment", r.bridge.upstream.Deployment)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("api-key", r.bridge.upstream.APIKey)

	conn, resp, err := r.bridge.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake rejected with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return conn, nil
}

// pumpClientToUpstream reads client frames, applies the session policy and
// forwards the result upstream. Malformed frames are dropped.
func (r *Relay) pumpClientToUpstream(ctx context.Context, client *websocket.Conn, upstream Sink) error {
	for {
		msgType, raw, err := client.ReadMessage()
		if err != nil {
			return r.filterPumpErr(ctx, "client", err)
		}
		if msgType != websocket.TextMessage {
			r.logger.Debugf("ignoring non-text client frame (type %d)", msgType)
			continue
		}

		var msg any
		if err := json.Unmarshal(raw, &msg); err != nil {
			r.logger.Errorf("dropping malformed client frame (%d bytes): %v", len(raw), err)
			continue
		}
		if obj, ok := msg.(map[string]any); ok {
			msg = r.bridge.policy.Transform(obj)
		}

		if err := upstream.Send(msg); err != nil {
			return r.filterPumpErr(ctx, "client", err)
		}
	}
}

// pumpUpstreamToClient reads upstream frames and hands each one to the
// dispatcher, which writes to the client and, for tool calls, back upstream.
func (r *Relay) pumpUpstreamToClient(ctx context.Context, upstreamConn *websocket.Conn, client, upstream Sink) error {
	for {
		msgType, raw, err := upstreamConn.ReadMessage()
		if err != nil {
			return r.filterPumpErr(ctx, "upstream", err)
		}
		if msgType != websocket.TextMessage {
			r.logger.Debugf("ignoring non-text upstream frame (type %d)", msgType)
			continue
		}

		if err := r.dispatcher.Dispatch(ctx, raw, client, upstream); err != nil {
			return r.filterPumpErr(ctx, "upstream", err)
		}
	}
}

// filterPumpErr turns expected terminations (peer close, cancellation) into
// nil so only genuine transport failures propagate out of Run.
func (r *Relay) filterPumpErr(ctx context.Context, side string, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		r.logger.Infof("%s connection closed", side)
		return nil
	}
	r.logger.Errorf("%s pump terminated: %v", side, err)
	return err
}

func (r *Relay) shutdownUpstream(conn *websocket.Conn) {
	r.closeUpstream.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	})
}
