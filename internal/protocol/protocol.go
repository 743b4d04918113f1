// Package protocol defines the viewer wire protocol: JSON messages over a
// websocket, routed by type. Schemas under configs/schemas mirror these
// structs and are validated in tests.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello = "hello"
	TypeWorld = "world"
	TypeError = "error"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
