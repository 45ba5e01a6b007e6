package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/careloop/voicebridge/internal/model/persona"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Frame types of the bridge-local client protocol. Everything else on the
// client leg is payload for the upstream service.
const (
	frameSetPersona   = "set_persona"
	frameConnected    = "connected"
	frameError        = "error"
	frameDisconnected = "disconnected"
)

// controlFrame is the client→bridge control envelope.
type controlFrame struct {
	Type    string `json:"type"`
	Persona string `json:"persona"`
}

// statusFrame is the bridge→client status envelope.
type statusFrame struct {
	Type   string `json:"type"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// wsConn serializes writes; gorilla/websocket allows only one concurrent
// writer per connection.
type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

func (c *wsConn) close() {
	_ = c.ws.Close()
}

// Session couples one client connection with one upstream connection. The
// two legs share a lifecycle: once either closes or fails, the session
// closes the other and is never reused.
type Session struct {
	id       string
	svc      *Service
	client   *wsConn
	upstream *wsConn

	mu       sync.Mutex
	selected persona.Persona
	ready    bool // upstream announced session.created

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(svc *Service, client *websocket.Conn) *Session {
	return &Session{
		id:       uuid.NewString(),
		svc:      svc,
		client:   &wsConn{ws: client},
		selected: svc.personas.Resolve(persona.DefaultID),
		done:     make(chan struct{}),
	}
}

// run dials upstream and pumps frames in both directions until either leg
// terminates. It blocks for the lifetime of the session.
func (s *Session) run(ctx context.Context) {
	log.Printf("[relay] session open id=%s persona=%s", s.id, s.selected.ID)

	up, err := s.svc.DialUpstream(ctx)
	if err != nil {
		log.Printf("[relay] upstream dial failed id=%s: %v", s.id, err)
		msg := "failed to reach realtime service"
		if errors.Is(err, ErrNotConfigured) {
			msg = "realtime service not configured"
		}
		s.sendClientError(msg)
		s.client.close()
		return
	}
	s.upstream = &wsConn{ws: up}

	if err := s.client.writeJSON(statusFrame{Type: frameConnected}); err != nil {
		log.Printf("[relay] connected ack failed id=%s: %v", s.id, err)
		s.teardown(true, "")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.client.ws.SetReadDeadline(time.Now().Add(readTimeout))
	s.client.ws.SetPongHandler(func(string) error {
		s.client.ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	go s.pingLoop(ctx)

	go s.upstreamLoop()
	s.clientLoop()
	<-s.done
}

// clientLoop pumps client frames toward upstream, intercepting the
// bridge-local control protocol.
func (s *Session) clientLoop() {
	defer s.teardown(true, "")
	for {
		msgType, data, err := s.client.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[relay] client read error id=%s: %v", s.id, err)
			}
			return
		}
		s.client.ws.SetReadDeadline(time.Now().Add(readTimeout))

		if err := s.handleClientFrame(msgType, data); err != nil {
			log.Printf("[relay] upstream write failed id=%s: %v", s.id, err)
			s.teardown(false, "upstream connection lost")
			return
		}
	}
}

// handleClientFrame intercepts set_persona control frames; every other
// frame passes through verbatim. A text frame that fails to parse as a
// control frame is treated as payload, never dropped.
func (s *Session) handleClientFrame(msgType int, data []byte) error {
	if msgType == websocket.TextMessage {
		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err == nil && frame.Type == frameSetPersona {
			return s.applyPersona(frame.Persona)
		}
	}
	return s.upstream.writeMessage(msgType, data)
}

// applyPersona switches the active persona and, once the upstream session
// exists, pushes the updated configuration. Unknown ids resolve to the
// default persona; reselecting the active persona is a no-op.
func (s *Session) applyPersona(id string) error {
	next := s.svc.personas.Resolve(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if next.ID == s.selected.ID {
		log.Printf("[relay] persona unchanged id=%s persona=%s", s.id, next.ID)
		return nil
	}
	s.selected = next

	log.Printf("[relay] persona switched id=%s persona=%s voice=%s", s.id, next.ID, next.VoiceID)
	if !s.ready {
		// Stored selection is picked up by the pending first-time injection.
		return nil
	}
	// Written under the session lock so the first-time injection can never
	// land after a newer selection.
	return s.upstream.writeJSON(SessionUpdateFor(next))
}

// upstreamLoop pumps upstream frames toward the client, watching for the
// session.created event that triggers configuration injection.
func (s *Session) upstreamLoop() {
	for {
		msgType, data, err := s.upstream.ws.ReadMessage()
		if err != nil {
			s.teardown(false, upstreamCloseReason(err))
			return
		}

		if msgType == websocket.TextMessage && !s.isReady() {
			var event struct {
				Type string `json:"type"`
			}
			// Unparseable frames are still relayed below.
			if err := json.Unmarshal(data, &event); err == nil && event.Type == eventSessionCreated {
				s.injectConfig()
			}
		}

		if err := s.client.writeMessage(msgType, data); err != nil {
			s.teardown(true, "")
			return
		}
	}
}

// injectConfig sends the initial session configuration at most once,
// regardless of how many session.created events arrive. The readiness flip
// and the write happen under the session lock, so a persona switch on the
// client pump either lands before the injection or strictly after it.
func (s *Session) injectConfig() {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return
	}
	s.ready = true
	p := s.selected
	err := s.upstream.writeJSON(SessionUpdateFor(p))
	s.mu.Unlock()

	if err != nil {
		log.Printf("[relay] config injection failed id=%s: %v", s.id, err)
		s.teardown(false, "upstream connection lost")
		return
	}
	log.Printf("[relay] session configured id=%s persona=%s voice=%s", s.id, p.ID, p.VoiceID)
}

func (s *Session) isReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// teardown closes both legs exactly once. When the closure did not
// originate client-side, the client is told why before its socket closes.
func (s *Session) teardown(fromClient bool, reason string) {
	s.closeOnce.Do(func() {
		if !fromClient && reason != "" {
			_ = s.client.writeJSON(statusFrame{Type: frameDisconnected, Reason: reason})
		}
		if s.upstream != nil {
			s.upstream.close()
		}
		s.client.close()
		close(s.done)
		log.Printf("[relay] session closed id=%s fromClient=%t reason=%q", s.id, fromClient, reason)
	})
}

func (s *Session) sendClientError(msg string) {
	if err := s.client.writeJSON(statusFrame{Type: frameError, Error: msg}); err != nil {
		log.Printf("[relay] write error frame failed id=%s: %v", s.id, err)
	}
}

// pingLoop 定期向客户端发送ping消息。
func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.client.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// upstreamCloseReason maps an upstream read error to the reason reported
// to the client.
func upstreamCloseReason(err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Text != "" {
			return closeErr.Text
		}
		return "upstream closed"
	}
	return "upstream connection lost"
}
