package opengev1

import (
	"context"

	"go.trai.ch/openge/internal/core/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ExecutionRequest is a message sent by the dispatcher over a core reservation stream.
// Exactly one field is set.
type ExecutionRequest struct {
	ReserveCore         *ReserveCoreRequest         `json:"reserveCore,omitempty"`
	QueryTool           *QueryToolRequest           `json:"queryTool,omitempty"`
	HasToolBlobs        *HasToolBlobsRequest        `json:"hasToolBlobs,omitempty"`
	WriteToolBlob       *WriteToolBlobRequest       `json:"writeToolBlob,omitempty"`
	ConstructTool       *ConstructToolRequest       `json:"constructTool,omitempty"`
	QueryMissingBlobs   *QueryMissingBlobsRequest   `json:"queryMissingBlobs,omitempty"`
	SendCompressedBlobs *SendCompressedBlobsRequest `json:"sendCompressedBlobs,omitempty"`
	ExecuteTask         *ExecuteTaskRequest         `json:"executeTask,omitempty"`
	ReceiveOutputBlobs  *ReceiveOutputBlobsRequest  `json:"receiveOutputBlobs,omitempty"`
}

// ExecutionResponse is a message sent by the worker over a core reservation stream.
// Exactly one field is set.
type ExecutionResponse struct {
	ReserveCore         *ReserveCoreResponse         `json:"reserveCore,omitempty"`
	QueryTool           *QueryToolResponse           `json:"queryTool,omitempty"`
	HasToolBlobs        *HasToolBlobsResponse        `json:"hasToolBlobs,omitempty"`
	WriteToolBlob       *WriteToolBlobResponse       `json:"writeToolBlob,omitempty"`
	ConstructTool       *ConstructToolResponse       `json:"constructTool,omitempty"`
	QueryMissingBlobs   *QueryMissingBlobsResponse   `json:"queryMissingBlobs,omitempty"`
	SendCompressedBlobs *SendCompressedBlobsResponse `json:"sendCompressedBlobs,omitempty"`
	ExecuteTask         *ExecuteTaskResponse         `json:"executeTask,omitempty"`
	ReceiveOutputBlobs  *ReceiveOutputBlobsResponse  `json:"receiveOutputBlobs,omitempty"`
}

// ReserveCoreRequest asks the worker for a core.
type ReserveCoreRequest struct {
	RequestID string `json:"requestId"`
}

// ReserveCoreResponse is sent once the core is held for the stream.
type ReserveCoreResponse struct {
	WorkerMachineName string `json:"workerMachineName"`
	WorkerCoreNumber  int32  `json:"workerCoreNumber"`
}

// QueryToolRequest asks whether a tool tree exists.
type QueryToolRequest struct {
	ToolXxHash64 uint64 `json:"toolXxHash64"`
}

// QueryToolResponse answers QueryToolRequest.
type QueryToolResponse struct {
	Present bool `json:"present"`
}

// HasToolBlobsRequest asks which tool blobs exist.
type HasToolBlobsRequest struct {
	ToolXxHash64 uint64            `json:"toolXxHash64"`
	ToolBlobs    []domain.ToolBlob `json:"toolBlobs"`
}

// ToolBlobExistence reports whether a single tool blob exists.
type ToolBlobExistence struct {
	XxHash64 uint64 `json:"xxHash64"`
	Exists   bool   `json:"exists"`
}

// HasToolBlobsResponse answers HasToolBlobsRequest.
type HasToolBlobsResponse struct {
	Existence []ToolBlobExistence `json:"existence"`
}

// WriteToolBlobRequest carries one chunk of a tool blob. The first chunk names the blob.
type WriteToolBlobRequest struct {
	ToolBlobXxHash64 uint64 `json:"toolBlobXxHash64,omitempty"`
	Data             []byte `json:"data,omitempty"`
	FinishWrite      bool   `json:"finishWrite,omitempty"`
}

// WriteToolBlobResponse is sent once the whole blob was committed.
type WriteToolBlobResponse struct {
	CommittedSize int64 `json:"committedSize"`
}

// ConstructToolRequest asks the worker to assemble a tool tree.
type ConstructToolRequest struct {
	ToolXxHash64 uint64            `json:"toolXxHash64"`
	Files        map[string]uint64 `json:"files"`
}

// ConstructToolResponse answers ConstructToolRequest.
type ConstructToolResponse struct {
	ToolXxHash64 uint64 `json:"toolXxHash64"`
}

// QueryMissingBlobsRequest asks which input blobs the worker lacks.
type QueryMissingBlobsRequest struct {
	BlobXxHash64 []uint64 `json:"blobXxHash64"`
}

// QueryMissingBlobsResponse answers QueryMissingBlobsRequest.
type QueryMissingBlobsResponse struct {
	MissingBlobXxHash64 []uint64 `json:"missingBlobXxHash64"`
}

// CompressedBlob is the zstd compressed content of a single blob.
type CompressedBlob struct {
	XxHash64 uint64 `json:"xxHash64"`
	Data     []byte `json:"data"`
}

// SendCompressedBlobsRequest carries input blobs. The last message sets FinishWrite.
type SendCompressedBlobsRequest struct {
	Blobs       []CompressedBlob `json:"blobs,omitempty"`
	FinishWrite bool             `json:"finishWrite,omitempty"`
}

// SendCompressedBlobsResponse is sent once every blob was stored.
type SendCompressedBlobsResponse struct{}

// ExecuteTaskRequest asks the worker to run a descriptor on the reserved core.
type ExecuteTaskRequest struct {
	Descriptor domain.TaskDescriptor `json:"descriptor"`
}

// ExecuteTaskResponse carries one process event. The exit event is the last response for a task.
type ExecuteTaskResponse struct {
	Event domain.ProcessEvent `json:"event"`
}

// ReceiveOutputBlobsRequest asks the worker for output blobs.
type ReceiveOutputBlobsRequest struct {
	BlobXxHash64 []uint64 `json:"blobXxHash64"`
}

// ReceiveOutputBlobsResponse carries output blobs. The last message sets Final.
type ReceiveOutputBlobsResponse struct {
	Blobs []CompressedBlob `json:"blobs,omitempty"`
	Final bool             `json:"final,omitempty"`
}

const (
	WorkerService_ReserveCore_FullMethodName = "/openge.v1.WorkerService/ReserveCore"
)

// WorkerServiceClient is the client API for WorkerService.
type WorkerServiceClient interface {
	ReserveCore(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[ExecutionRequest, ExecutionResponse], error)
}

type workerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWorkerServiceClient creates a WorkerService client.
func NewWorkerServiceClient(cc grpc.ClientConnInterface) WorkerServiceClient {
	return &workerServiceClient{cc}
}

func (c *workerServiceClient) ReserveCore(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[ExecutionRequest, ExecutionResponse], error) {
	stream, err := c.cc.NewStream(ctx, &WorkerService_ServiceDesc.Streams[0], WorkerService_ReserveCore_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[ExecutionRequest, ExecutionResponse]{ClientStream: stream}, nil
}

// WorkerService_ReserveCoreServer is the server side of a core reservation stream.
type WorkerService_ReserveCoreServer = grpc.BidiStreamingServer[ExecutionRequest, ExecutionResponse]

// WorkerServiceServer is the server API for WorkerService.
// Implementations must embed UnimplementedWorkerServiceServer.
type WorkerServiceServer interface {
	ReserveCore(WorkerService_ReserveCoreServer) error
	mustEmbedUnimplementedWorkerServiceServer()
}

// UnimplementedWorkerServiceServer must be embedded for forward compatibility.
type UnimplementedWorkerServiceServer struct{}

func (UnimplementedWorkerServiceServer) ReserveCore(WorkerService_ReserveCoreServer) error {
	return status.Error(codes.Unimplemented, "method ReserveCore not implemented")
}

func (UnimplementedWorkerServiceServer) mustEmbedUnimplementedWorkerServiceServer() {}

// RegisterWorkerServiceServer registers srv with s.
func RegisterWorkerServiceServer(s grpc.ServiceRegistrar, srv WorkerServiceServer) {
	s.RegisterService(&WorkerService_ServiceDesc, srv)
}

func _WorkerService_ReserveCore_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(WorkerServiceServer).ReserveCore(&grpc.GenericServerStream[ExecutionRequest, ExecutionResponse]{ServerStream: stream})
}

// WorkerService_ServiceDesc is the grpc.ServiceDesc for WorkerService.
var WorkerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "openge.v1.WorkerService",
	HandlerType: (*WorkerServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ReserveCore",
			Handler:       _WorkerService_ReserveCore_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "api/openge/v1/worker.go",
}
