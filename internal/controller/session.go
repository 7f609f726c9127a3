package controller

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// unknownVersion is reported when the OBS version cannot be retrieved.
const unknownVersion = "Unknown"

// Session owns at most one live websocket connection to OBS and gates every
// session-dependent operation on two preconditions, checked in order: the
// OBS process is alive, then a connection exists. Connectivity is always
// derived from the owned handle, never cached separately.
//
// A Session is not safe for concurrent use; callers that share one across
// goroutines must serialize Connect, Disconnect, and Use externally.
type Session struct {
	host     string
	port     int
	password string

	dialer     Dialer
	supervisor Supervisor
	log        *slog.Logger

	conn Conn   // nil when disconnected
	id   string // minted per live connection, carried in logs
}

// NewSession returns a disconnected session for the given endpoint.
func NewSession(host string, port int, password string, dialer Dialer, supervisor Supervisor, log *slog.Logger) *Session {
	return &Session{
		host:       host,
		port:       port,
		password:   password,
		dialer:     dialer,
		supervisor: supervisor,
		log:        log,
	}
}

// Connect opens a new websocket session. It fails fast with
// ErrProcessNotRunning when OBS is not alive, and with a wrapped
// ErrConnectionFailed on any protocol error; in both cases the session stays
// disconnected.
func (s *Session) Connect() error {
	if !s.supervisor.IsRunning() {
		return ErrProcessNotRunning
	}

	conn, err := s.dialer.Dial(s.host, s.port, s.password)
	if err != nil {
		s.log.Error("failed to connect to obs websocket",
			slog.String("host", s.host),
			slog.Int("port", s.port),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	s.conn = conn
	s.id = uuid.NewString()
	s.log.Info("connected to obs websocket",
		slog.String("host", s.host),
		slog.Int("port", s.port),
		slog.String("session_id", s.id),
	)
	return nil
}

// Disconnect closes the session handle if present. The handle is cleared
// even when the close fails so the session can never stay stuck connected.
func (s *Session) Disconnect() error {
	if s.conn == nil {
		s.log.Debug("no active session to disconnect")
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		s.log.Error("failed to disconnect from obs websocket",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	s.log.Info("disconnected from obs websocket", slog.String("session_id", s.id))
	return nil
}

// IsConnected reports whether a live connection handle exists.
func (s *Session) IsConnected() bool {
	return s.conn != nil
}

// ProcessRunning reports whether the supervised OBS process is alive.
func (s *Session) ProcessRunning() bool {
	return s.supervisor.IsRunning()
}

// Use runs fn against the live connection after verifying the process and
// connection preconditions, in that order.
func (s *Session) Use(fn func(Conn) error) error {
	if !s.supervisor.IsRunning() {
		return ErrProcessNotRunning
	}
	if s.conn == nil {
		return ErrNotConnected
	}
	return fn(s.conn)
}

// HealthCheck opens a throwaway session with the configured credentials,
// closes it again, and reports whether the connect succeeded. The
// pre-existing session, if any, is not disturbed.
func (s *Session) HealthCheck() bool {
	conn, err := s.dialer.Dial(s.host, s.port, s.password)
	if err != nil {
		s.log.Warn("health check failed", slog.String("error", err.Error()))
		return false
	}
	if err := conn.Close(); err != nil {
		s.log.Debug("health check close failed", slog.String("error", err.Error()))
	}
	s.log.Debug("health check succeeded")
	return true
}

// Version retrieves the OBS version over a throwaway session, returning
// "Unknown" when the session or the request fails.
func (s *Session) Version() string {
	conn, err := s.dialer.Dial(s.host, s.port, s.password)
	if err != nil {
		s.log.Warn("failed to retrieve obs version", slog.String("error", err.Error()))
		return unknownVersion
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Debug("version probe close failed", slog.String("error", err.Error()))
		}
	}()

	version, err := conn.Version()
	if err != nil {
		s.log.Warn("failed to retrieve obs version", slog.String("error", err.Error()))
		return unknownVersion
	}
	return version
}
