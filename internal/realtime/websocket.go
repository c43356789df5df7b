package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/metrics"
	"github.com/frahmantamala/teamchat/internal/transport"
	"github.com/frahmantamala/teamchat/pkg/logger"
)

// Verifier authenticates the handshake.
type Verifier interface {
	Verify(ctx context.Context, token string) (*account.Account, error)
	Touch(ctx context.Context, accountID int64) error
}

// Server upgrades GET /ws and runs one reader and one writer goroutine per connection.
type Server struct {
	*transport.BaseHandler
	manager  *Manager
	verifier Verifier
	cfg      internal.RealtimeConfig
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewServer(manager *Manager, verifier Verifier, cfg internal.RealtimeConfig, origins []string, m *metrics.Metrics) *Server {
	withDefaults := internal.Config{Realtime: cfg}
	withDefaults.ApplyDefaults()
	cfg = withDefaults.Realtime

	s := &Server{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		manager:     manager,
		verifier:    verifier,
		cfg:         cfg,
		metrics:     m,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}
	return s
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimRight(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := s.ExtractTokenFromHeader(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	actor, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		s.HandleServiceError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.Logger.Warn("websocket upgrade failed", "actor_id", actor.ID, "error", err)
		return
	}

	if err := s.verifier.Touch(r.Context(), actor.ID); err != nil {
		s.Logger.Warn("failed to update last seen", "actor_id", actor.ID, "error", err)
	}

	sess := NewSession(actor, s.cfg.SendBuffer)
	ctx := logger.With(r.Context(), "session_id", sess.ID, "actor_id", actor.ID, "company_id", actor.CompanyID)

	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()

	s.manager.Connect(sess)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(sess, conn)
	}()

	s.readPump(ctx, sess, conn)

	s.manager.Disconnect(sess)
	<-writerDone
}

func (s *Server) readPump(ctx context.Context, sess *Session, conn *websocket.Conn) {
	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.From(ctx).Debug("websocket read failed", "error", err)
			}
			return
		}
		if sess.Closed() {
			return
		}
		s.manager.Dispatch(ctx, sess, frame)
	}
}

func (s *Server) writePump(sess *Session, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-sess.Outbound():
			if err := s.write(conn, websocket.TextMessage, frame); err != nil {
				sess.Close()
				return
			}
		case <-ticker.C:
			if err := s.write(conn, websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}
		case <-sess.Done():
			s.flush(sess, conn)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.cfg.WriteWait))
			return
		}
	}
}

// flush writes whatever is still queued, so a final error frame reaches the client before close.
func (s *Server) flush(sess *Session, conn *websocket.Conn) {
	for {
		select {
		case frame := <-sess.Outbound():
			if err := s.write(conn, websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	return conn.WriteMessage(messageType, data)
}
