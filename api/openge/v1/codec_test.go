package opengev1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodec_Registered(t *testing.T) {
	codec := encoding.GetCodec(opengev1.CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, "json", codec.Name())
}

func TestCodec_ExecutionRequest(t *testing.T) {
	codec := encoding.GetCodec(opengev1.CodecName)

	in := &opengev1.ExecutionRequest{
		ExecuteTask: &opengev1.ExecuteTaskRequest{
			Descriptor: domain.NewCopyDescriptor(&domain.CopyTaskDescriptor{
				FromAbsolutePath: "/a",
				ToAbsolutePath:   "/b",
			}),
		},
	}
	data, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "reserveCore", "unset union members are omitted")

	out := new(opengev1.ExecutionRequest)
	require.NoError(t, codec.Unmarshal(data, out))
	assert.Equal(t, in, out)
}

func TestCodec_WellKnownTypes(t *testing.T) {
	codec := encoding.GetCodec(opengev1.CodecName)

	data, err := codec.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, codec.Unmarshal(data, &emptypb.Empty{}))
}
