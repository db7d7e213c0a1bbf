package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/seabattle/internal/model"
)

// MessageType discriminates envelopes on the wire
type MessageType string

const (
	// Client to server
	TypeReg           MessageType = "reg"
	TypeCreateRoom    MessageType = "create_room"
	TypeAddUserToRoom MessageType = "add_user_to_room"
	TypeAddShips      MessageType = "add_ships"
	TypeAttack        MessageType = "attack"
	TypeRandomAttack  MessageType = "randomAttack"

	// Server to client (reg and attack are shared with requests)
	TypeUpdateRoom    MessageType = "update_room"
	TypeUpdateWinners MessageType = "update_winners"
	TypeCreateGame    MessageType = "create_game"
	TypeStartGame     MessageType = "start_game"
	TypeTurn          MessageType = "turn"
	TypeFinish        MessageType = "finish"
	TypeError         MessageType = "error"
)

// Message is the wire envelope. Data carries the payload JSON-encoded as a string.
type Message struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
	ID   int         `json:"id"`
}

// Envelope is a parsed message with its payload unwrapped to raw JSON
type Envelope struct {
	Type MessageType
	Data json.RawMessage
}

// Payload is anything that can be sent as a message body
type Payload interface {
	MessageType() MessageType
}

// Encode wraps a payload into a wire frame. The payload is serialized first
// and embedded as the data string; id is always 0.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.MessageType(), err)
	}
	return json.Marshal(Message{
		Type: p.MessageType(),
		Data: string(data),
		ID:   0,
	})
}

// ParseEnvelope reads a wire frame. The data field may be a JSON string
// holding the payload or the payload object itself; an empty data field
// reads as an empty object.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var msg struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", model.ErrMalformedMessage)
	}

	data := bytes.TrimSpace(msg.Data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
		}
		data = bytes.TrimSpace([]byte(inner))
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}

	return &Envelope{Type: msg.Type, Data: data}, nil
}

// Unmarshal decodes the envelope payload into v
func (e *Envelope) Unmarshal(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrMalformedMessage, e.Type, err)
	}
	return nil
}
