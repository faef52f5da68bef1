package opengev1

import (
	"context"

	"go.trai.ch/openge/internal/core/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// PingResponse reports how long the daemon stays up without further requests.
type PingResponse struct {
	IdleRemainingMillis int64 `json:"idleRemainingMillis"`
}

// GetUnresolvedDependenciesRequest asks for the scan result of a single file.
type GetUnresolvedDependenciesRequest struct {
	Path string `json:"path"`
}

// GetUnresolvedDependenciesResponse carries a scan result.
type GetUnresolvedDependenciesResponse struct {
	Result      *domain.ScanResult `json:"result"`
	CacheStatus domain.CacheStatus `json:"cacheStatus"`
}

// GetResolvedDependenciesRequest asks for the transitive include closure of a file.
type GetResolvedDependenciesRequest struct {
	Request domain.ResolveRequest `json:"request"`
}

// GetResolvedDependenciesResponse carries the transitive include closure of a file.
type GetResolvedDependenciesResponse struct {
	DependsOnPaths       []string `json:"dependsOnPaths"`
	ResolutionTimeMillis int64    `json:"resolutionTimeMillis"`
}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Pid                    int32 `json:"pid"`
	UptimeMillis           int64 `json:"uptimeMillis"`
	LastActivityUnixMillis int64 `json:"lastActivityUnixMillis"`
	IdleRemainingMillis    int64 `json:"idleRemainingMillis"`
	CacheHits              int64 `json:"cacheHits"`
	CacheMisses            int64 `json:"cacheMisses"`
}

const (
	PreprocessorCacheService_Ping_FullMethodName                      = "/openge.v1.PreprocessorCacheService/Ping"
	PreprocessorCacheService_GetUnresolvedDependencies_FullMethodName = "/openge.v1.PreprocessorCacheService/GetUnresolvedDependencies"
	PreprocessorCacheService_GetResolvedDependencies_FullMethodName   = "/openge.v1.PreprocessorCacheService/GetResolvedDependencies"
	PreprocessorCacheService_Status_FullMethodName                    = "/openge.v1.PreprocessorCacheService/Status"
	PreprocessorCacheService_Shutdown_FullMethodName                  = "/openge.v1.PreprocessorCacheService/Shutdown"
)

// PreprocessorCacheServiceClient is the client API for PreprocessorCacheService.
type PreprocessorCacheServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error)
	GetUnresolvedDependencies(ctx context.Context, in *GetUnresolvedDependenciesRequest, opts ...grpc.CallOption) (*GetUnresolvedDependenciesResponse, error)
	GetResolvedDependencies(ctx context.Context, in *GetResolvedDependenciesRequest, opts ...grpc.CallOption) (*GetResolvedDependenciesResponse, error)
	Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*StatusResponse, error)
	Shutdown(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type preprocessorCacheServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPreprocessorCacheServiceClient creates a PreprocessorCacheService client.
func NewPreprocessorCacheServiceClient(cc grpc.ClientConnInterface) PreprocessorCacheServiceClient {
	return &preprocessorCacheServiceClient{cc}
}

func (c *preprocessorCacheServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, PreprocessorCacheService_Ping_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *preprocessorCacheServiceClient) GetUnresolvedDependencies(ctx context.Context, in *GetUnresolvedDependenciesRequest, opts ...grpc.CallOption) (*GetUnresolvedDependenciesResponse, error) {
	out := new(GetUnresolvedDependenciesResponse)
	if err := c.cc.Invoke(ctx, PreprocessorCacheService_GetUnresolvedDependencies_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *preprocessorCacheServiceClient) GetResolvedDependencies(ctx context.Context, in *GetResolvedDependenciesRequest, opts ...grpc.CallOption) (*GetResolvedDependenciesResponse, error) {
	out := new(GetResolvedDependenciesResponse)
	if err := c.cc.Invoke(ctx, PreprocessorCacheService_GetResolvedDependencies_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *preprocessorCacheServiceClient) Status(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.cc.Invoke(ctx, PreprocessorCacheService_Status_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *preprocessorCacheServiceClient) Shutdown(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, PreprocessorCacheService_Shutdown_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// PreprocessorCacheServiceServer is the server API for PreprocessorCacheService.
// Implementations must embed UnimplementedPreprocessorCacheServiceServer.
type PreprocessorCacheServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	GetUnresolvedDependencies(context.Context, *GetUnresolvedDependenciesRequest) (*GetUnresolvedDependenciesResponse, error)
	GetResolvedDependencies(context.Context, *GetResolvedDependenciesRequest) (*GetResolvedDependenciesResponse, error)
	Status(context.Context, *emptypb.Empty) (*StatusResponse, error)
	Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	mustEmbedUnimplementedPreprocessorCacheServiceServer()
}

// UnimplementedPreprocessorCacheServiceServer must be embedded for forward compatibility.
type UnimplementedPreprocessorCacheServiceServer struct{}

func (UnimplementedPreprocessorCacheServiceServer) Ping(context.Context, *emptypb.Empty) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedPreprocessorCacheServiceServer) GetUnresolvedDependencies(context.Context, *GetUnresolvedDependenciesRequest) (*GetUnresolvedDependenciesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUnresolvedDependencies not implemented")
}

func (UnimplementedPreprocessorCacheServiceServer) GetResolvedDependencies(context.Context, *GetResolvedDependenciesRequest) (*GetResolvedDependenciesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetResolvedDependencies not implemented")
}

func (UnimplementedPreprocessorCacheServiceServer) Status(context.Context, *emptypb.Empty) (*StatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Status not implemented")
}

func (UnimplementedPreprocessorCacheServiceServer) Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Shutdown not implemented")
}

func (UnimplementedPreprocessorCacheServiceServer) mustEmbedUnimplementedPreprocessorCacheServiceServer() {}

// RegisterPreprocessorCacheServiceServer registers srv with s.
func RegisterPreprocessorCacheServiceServer(s grpc.ServiceRegistrar, srv PreprocessorCacheServiceServer) {
	s.RegisterService(&PreprocessorCacheService_ServiceDesc, srv)
}

func _PreprocessorCacheService_Ping_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PreprocessorCacheServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreprocessorCacheService_Ping_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PreprocessorCacheServiceServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _PreprocessorCacheService_GetUnresolvedDependencies_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUnresolvedDependenciesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PreprocessorCacheServiceServer).GetUnresolvedDependencies(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreprocessorCacheService_GetUnresolvedDependencies_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PreprocessorCacheServiceServer).GetUnresolvedDependencies(ctx, req.(*GetUnresolvedDependenciesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PreprocessorCacheService_GetResolvedDependencies_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetResolvedDependenciesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PreprocessorCacheServiceServer).GetResolvedDependencies(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreprocessorCacheService_GetResolvedDependencies_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PreprocessorCacheServiceServer).GetResolvedDependencies(ctx, req.(*GetResolvedDependenciesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PreprocessorCacheService_Status_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PreprocessorCacheServiceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreprocessorCacheService_Status_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PreprocessorCacheServiceServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _PreprocessorCacheService_Shutdown_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PreprocessorCacheServiceServer).Shutdown(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreprocessorCacheService_Shutdown_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PreprocessorCacheServiceServer).Shutdown(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// PreprocessorCacheService_ServiceDesc is the grpc.ServiceDesc for PreprocessorCacheService.
var PreprocessorCacheService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "openge.v1.PreprocessorCacheService",
	HandlerType: (*PreprocessorCacheServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _PreprocessorCacheService_Ping_Handler},
		{MethodName: "GetUnresolvedDependencies", Handler: _PreprocessorCacheService_GetUnresolvedDependencies_Handler},
		{MethodName: "GetResolvedDependencies", Handler: _PreprocessorCacheService_GetResolvedDependencies_Handler},
		{MethodName: "Status", Handler: _PreprocessorCacheService_Status_Handler},
		{MethodName: "Shutdown", Handler: _PreprocessorCacheService_Shutdown_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/openge/v1/cache.go",
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{CallOption()}, opts...)
}
