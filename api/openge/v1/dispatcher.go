package opengev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SubmitJobRequest submits a build set for execution.
type SubmitJobRequest struct {
	JobXML               string            `json:"jobXml"`
	WorkingDirectory     string            `json:"workingDirectory"`
	BuildNodeName        string            `json:"buildNodeName,omitempty"`
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty"`
}

// JobResponse is one event of a running job. Exactly one field is set.
type JobResponse struct {
	JobParsed     *JobParsedResponse     `json:"jobParsed,omitempty"`
	TaskStarted   *TaskStartedResponse   `json:"taskStarted,omitempty"`
	TaskOutput    *TaskOutputResponse    `json:"taskOutput,omitempty"`
	TaskCompleted *TaskCompletedResponse `json:"taskCompleted,omitempty"`
	JobComplete   *JobCompleteResponse   `json:"jobComplete,omitempty"`
}

// JobParsedResponse is sent once the build set was parsed.
type JobParsedResponse struct {
	TotalTasks int32 `json:"totalTasks"`
}

// TaskStartedResponse is sent when a task starts or is skipped.
type TaskStartedResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WorkerName  string `json:"workerName,omitempty"`
	CoreNumber  int32  `json:"coreNumber"`
}

// TaskOutputResponse carries one output line of a task.
type TaskOutputResponse struct {
	ID         string `json:"id"`
	StdoutLine string `json:"stdoutLine,omitempty"`
	StderrLine string `json:"stderrLine,omitempty"`
	IsStderr   bool   `json:"isStderr,omitempty"`
}

// TaskCompletedResponse is sent when a task reaches a terminal state.
type TaskCompletedResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ExitCode       int32  `json:"exitCode"`
	Message        string `json:"message,omitempty"`
	DurationMillis int64  `json:"durationMillis"`
}

// JobCompleteResponse is the last event of a job.
type JobCompleteResponse struct {
	Status         string `json:"status"`
	DurationMillis int64  `json:"durationMillis"`
}

const (
	DispatcherService_SubmitJob_FullMethodName = "/openge.v1.DispatcherService/SubmitJob"
)

// DispatcherServiceClient is the client API for DispatcherService.
type DispatcherServiceClient interface {
	SubmitJob(ctx context.Context, in *SubmitJobRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[JobResponse], error)
}

type dispatcherServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDispatcherServiceClient creates a DispatcherService client.
func NewDispatcherServiceClient(cc grpc.ClientConnInterface) DispatcherServiceClient {
	return &dispatcherServiceClient{cc}
}

func (c *dispatcherServiceClient) SubmitJob(ctx context.Context, in *SubmitJobRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[JobResponse], error) {
	stream, err := c.cc.NewStream(ctx, &DispatcherService_ServiceDesc.Streams[0], DispatcherService_SubmitJob_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubmitJobRequest, JobResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// DispatcherService_SubmitJobServer is the server side of a job stream.
type DispatcherService_SubmitJobServer = grpc.ServerStreamingServer[JobResponse]

// DispatcherServiceServer is the server API for DispatcherService.
// Implementations must embed UnimplementedDispatcherServiceServer.
type DispatcherServiceServer interface {
	SubmitJob(*SubmitJobRequest, DispatcherService_SubmitJobServer) error
	mustEmbedUnimplementedDispatcherServiceServer()
}

// UnimplementedDispatcherServiceServer must be embedded for forward compatibility.
type UnimplementedDispatcherServiceServer struct{}

func (UnimplementedDispatcherServiceServer) SubmitJob(*SubmitJobRequest, DispatcherService_SubmitJobServer) error {
	return status.Error(codes.Unimplemented, "method SubmitJob not implemented")
}

func (UnimplementedDispatcherServiceServer) mustEmbedUnimplementedDispatcherServiceServer() {}

// RegisterDispatcherServiceServer registers srv with s.
func RegisterDispatcherServiceServer(s grpc.ServiceRegistrar, srv DispatcherServiceServer) {
	s.RegisterService(&DispatcherService_ServiceDesc, srv)
}

func _DispatcherService_SubmitJob_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubmitJobRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DispatcherServiceServer).SubmitJob(m, &grpc.GenericServerStream[SubmitJobRequest, JobResponse]{ServerStream: stream})
}

// DispatcherService_ServiceDesc is the grpc.ServiceDesc for DispatcherService.
var DispatcherService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "openge.v1.DispatcherService",
	HandlerType: (*DispatcherServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubmitJob",
			Handler:       _DispatcherService_SubmitJob_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "api/openge/v1/dispatcher.go",
}
