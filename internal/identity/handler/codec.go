package handler

import (
	"encoding/json"
)

// CodecName is the gRPC content-subtype served by JSONCodec ("application/grpc+json").
const CodecName = "json"

// JSONCodec marshals AccountService messages as JSON. The messages are plain Go structs,
// so the default protobuf codec cannot carry them.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string { return CodecName }
