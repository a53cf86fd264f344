package datasync

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackCodec keeps value types on the wire, so an integer icon id and a
// string temperature stay distinguishable after decoding.
type MsgpackCodec struct{}

func (MsgpackCodec) Encode(payload Payload) ([]byte, error) {
	data, err := msgpack.Marshal(map[string]interface{}(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal msgpack payload: %w", err)
	}
	return data, nil
}

func (MsgpackCodec) Decode(data []byte) (Payload, error) {
	var payload map[string]interface{}
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal msgpack payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("empty msgpack payload")
	}
	return payload, nil
}
