package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/protocol"
)

const sessionWriteWait = 10 * time.Second

// Session is a client-side game connection
type Session struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the game endpoint. The connection is closed when ctx ends.
func Dial(ctx context.Context, url string) (*Session, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	s := &Session{
		conn: conn,
		done: make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Send encodes and writes one request
func (s *Session) Send(p protocol.Payload) error {
	frame, err := protocol.Encode(p)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Next blocks until the server sends a message
func (s *Session) Next() (*protocol.Envelope, error) {
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		env, err := protocol.ParseEnvelope(frame)
		if err != nil {
			// Skip frames that are not protocol messages
			continue
		}
		return env, nil
	}
}

// Close sends a close frame and releases the connection
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// IsClosed reports whether err means the connection ended normally
func IsClosed(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
