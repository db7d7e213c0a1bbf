package testutil

import (
	"sync"

	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/protocol"
)

// FakeConn is an in-memory connection handle that records every frame sent to it
type FakeConn struct {
	id string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

// Ensure FakeConn implements Conn
var _ notify.Conn = (*FakeConn)(nil)

// NewFakeConn creates a FakeConn with the given id
func NewFakeConn(id string) *FakeConn {
	return &FakeConn{id: id}
}

func (c *FakeConn) ID() string {
	return c.id
}

func (c *FakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return notify.ErrConnClosed
	}
	c.frames = append(c.frames, frame)
	return nil
}

// Close makes further sends fail with ErrConnClosed
func (c *FakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Envelopes returns every recorded frame, parsed
func (c *FakeConn) Envelopes() []*protocol.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	envs := make([]*protocol.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := protocol.ParseEnvelope(f)
		if err != nil {
			continue
		}
		envs = append(envs, env)
	}
	return envs
}

// Types returns the message types received, in order
func (c *FakeConn) Types() []protocol.MessageType {
	envs := c.Envelopes()
	types := make([]protocol.MessageType, len(envs))
	for i, env := range envs {
		types[i] = env.Type
	}
	return types
}

// Last returns the most recent message of the given type, or nil
func (c *FakeConn) Last(t protocol.MessageType) *protocol.Envelope {
	envs := c.Envelopes()
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == t {
			return envs[i]
		}
	}
	return nil
}

// Reset forgets recorded frames
func (c *FakeConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}
