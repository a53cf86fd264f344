package datasync

import (
	"context"
)

type ConnectionState int64

const (
	DISCONNECTED ConnectionState = iota
	CONNECTING
	CONNECTED
)

func (s ConnectionState) String() string {
	switch s {
	case DISCONNECTED:
		return "disconnected"
	case CONNECTING:
		return "connecting"
	case CONNECTED:
		return "connected"
	}
	return "undefined"
}

// KeyRequestId carries the idempotency token of every outbound request.
const KeyRequestId = "uuid"

type Payload map[string]interface{}

type Request struct {
	Path      string
	Payload   Payload
	RequestId string
}

type Message struct {
	Path    string
	Payload Payload
}

type Handler func(message Message)

// Transport opens links to the paired peer.
//
// Dial blocks until the handshake completes, fails, or ctx is cancelled.
// onLost may be called once, from any goroutine, when an established link drops.
type Transport interface {
	Dial(ctx context.Context, onLost func(err error)) (Link, error)
}

// Link is an established connection. All methods block until the transport
// acknowledges the operation.
type Link interface {
	Subscribe(topic string, onMessage func(topic string, payload []byte)) error
	Unsubscribe(topics ...string) error
	Publish(topic string, payload []byte) error
	Close()
}

// Codec turns payloads into wire bytes and back.
type Codec interface {
	Encode(payload Payload) ([]byte, error)
	Decode(data []byte) (Payload, error)
}

type Stats struct {
	State      ConnectionState
	Handshakes uint64
	Sent       uint64
	Failed     uint64
	Pending    int
	Coalesced  uint64
	Evicted    uint64
	Received   uint64
	Dropped    uint64
}
