// Package opengev1 contains the wire messages and gRPC service definitions
// shared by the dispatcher, the workers and the preprocessor cache daemon.
package opengev1

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content subtype every OpenGE service is served with.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec encodes messages as JSON. Well-known protobuf messages go through protojson.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, m)
	}
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return CodecName
}

// CallOption selects the OpenGE codec for client calls.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
