package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/careloop/voicebridge/internal/config"
	"github.com/careloop/voicebridge/internal/model/persona"
)

// ErrNotConfigured 表示缺少上游服务密钥。
var ErrNotConfigured = errors.New("realtime credential not configured")

// Service owns the upstream dial configuration and the shared persona
// registry; it runs one Session per accepted client connection.
type Service struct {
	cfg      config.RealtimeConfig
	personas persona.Store
}

// NewService 创建实时语音中继服务。
func NewService(cfg config.RealtimeConfig, personas persona.Store) *Service {
	return &Service{cfg: cfg, personas: personas}
}

// Configured reports whether the upstream credential is present.
func (s *Service) Configured() bool {
	return s.cfg.Enabled()
}

// DialUpstream opens the authenticated socket to the realtime endpoint.
// The credential never leaves the server side.
func (s *Service) DialUpstream(ctx context.Context) (*websocket.Conn, error) {
	if !s.cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := dialer.DialContext(ctx, s.cfg.Endpoint(), header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("realtime dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("realtime dial failed: %w", err)
	}

	return conn, nil
}

// Bridge runs a full relay session over an accepted client connection and
// blocks until the session ends. The client connection is always closed by
// the time Bridge returns.
func (s *Service) Bridge(ctx context.Context, client *websocket.Conn) {
	newSession(s, client).run(ctx)
}
