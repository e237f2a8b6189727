// session.go: one connection's command loop.
//
// The panic-isolation behavior here is grounded on
// original_source/pycached's connection handler, which wraps each command
// dispatch so one bad command cannot tear down the whole session — see
// SPEC_FULL.md §10. Buffered I/O is protocol.Framer's job; Session only
// owns the net.Conn lifecycle and per-read/write deadlines.
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/agilira/memline"
	"github.com/agilira/memline/protocol"
)

// Session drives one accepted connection's command loop until the peer
// disconnects or an I/O error that isn't "clean EOF" occurs.
type Session struct {
	conn   net.Conn
	engine *protocol.Engine
	logger memline.Logger
	opts   Options
}

// NewSession constructs a Session for conn, sharing store and clock with
// every other Session on the same Listener.
func NewSession(conn net.Conn, store *memline.Store, clock memline.Clock, logger memline.Logger, opts Options) *Session {
	if logger == nil {
		logger = memline.NoOpLogger{}
	}
	framer := protocol.NewFramer(conn, conn)
	return &Session{
		conn:   conn,
		engine: protocol.NewEngine(store, clock, framer, logger),
		logger: logger,
		opts:   opts,
	}
}

// Run loops HandleOne until the connection closes, then closes conn. A
// panic recovered from a single command is logged and reported to the
// client as SERVER_ERROR; it does not end the session (SPEC_FULL.md §10).
func (s *Session) Run() {
	defer s.conn.Close()

	for {
		s.applyDeadlines()

		err := s.handleOneSafely()
		if err != nil {
			if !isCleanDisconnect(err) {
				s.logger.Warn("session ended with error", "error", err.Error())
			}
			return
		}
	}
}

// handleOneSafely calls engine.HandleOne, converting any recovered panic
// into a logged SERVER_ERROR reply with the session kept alive for the
// next command.
func (s *Session) handleOneSafely() (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("recovered panic handling command", "panic", fmt.Sprintf("%v", r))
			if writeErr := s.engine.WriteServerError("internal error"); writeErr != nil {
				err = writeErr
			}
		}
	}()
	return s.engine.HandleOne()
}

func (s *Session) applyDeadlines() {
	if s.opts.ReadTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}
	if s.opts.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
}

func isCleanDisconnect(err error) bool {
	return errors.Is(err, io.EOF)
}
