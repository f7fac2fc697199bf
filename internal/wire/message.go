// Package wire defines the messages exchanged with the adder websocket
// endpoint: JSON envelopes for text frames and a fixed-size binary codec.
package wire

import (
	"encoding/json"
	"fmt"
)

// Message types carried in the "type" field of JSON envelopes.
const (
	TypeAdd    = "add"
	TypeResult = "result"
	TypeError  = "error"
)

// AddRequest asks the server for the sum of A and B.
type AddRequest struct {
	Type string `json:"type"` // "add"
	ID   string `json:"id,omitempty"`
	A    int32  `json:"a"`
	B    int32  `json:"b"`
}

// ResultMessage answers an AddRequest.
type ResultMessage struct {
	Type     string `json:"type"` // "result"
	ID       string `json:"id,omitempty"`
	Sum      int32  `json:"sum"`
	Overflow bool   `json:"overflow"`
}

// ErrorMessage reports a request the server could not evaluate.
type ErrorMessage struct {
	Type  string `json:"type"` // "error"
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// envelope is used to peek at the type before decoding the full message.
type envelope struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DecodeAddRequest parses a text frame into an AddRequest. The returned id is
// set whenever the envelope carried one, even if decoding then failed, so the
// caller can correlate the error reply.
func DecodeAddRequest(data []byte) (req AddRequest, id string, err error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return AddRequest{}, "", fmt.Errorf("parse message: %w", err)
	}
	if env.Type != TypeAdd {
		return AddRequest{}, env.ID, fmt.Errorf("unsupported message type %q", env.Type)
	}

	// Operands are required; decode through pointers to tell 0 from missing.
	var raw struct {
		A *int32 `json:"a"`
		B *int32 `json:"b"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return AddRequest{}, env.ID, fmt.Errorf("parse operands: %w", err)
	}
	if raw.A == nil || raw.B == nil {
		return AddRequest{}, env.ID, fmt.Errorf("operands a and b are required")
	}

	return AddRequest{Type: TypeAdd, ID: env.ID, A: *raw.A, B: *raw.B}, env.ID, nil
}

// DecodeReply parses a server reply. Exactly one of the returned pointers is
// non-nil on success.
func DecodeReply(data []byte) (*ResultMessage, *ErrorMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("parse reply: %w", err)
	}

	switch env.Type {
	case TypeResult:
		var msg ResultMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, nil, fmt.Errorf("parse result: %w", err)
		}
		return &msg, nil, nil
	case TypeError:
		var msg ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, nil, fmt.Errorf("parse error reply: %w", err)
		}
		return nil, &msg, nil
	default:
		return nil, nil, fmt.Errorf("unexpected reply type %q", env.Type)
	}
}
