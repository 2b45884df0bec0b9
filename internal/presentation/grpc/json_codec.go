package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype clients select with
// grpc.CallContentSubtype.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec carries the DTO messages as JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string {
	return CodecName
}
