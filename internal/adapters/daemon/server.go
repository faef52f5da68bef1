package daemon

import (
	"context"
	"errors"
	"math"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// StatsCache is a preprocessor cache that reports hit and miss counters.
type StatsCache interface {
	ports.PreprocessorCache
	Stats() domain.CacheStats
}

// Server hosts the preprocessor cache over gRPC on a Unix socket.
type Server struct {
	opengev1.UnimplementedPreprocessorCacheServiceServer
	lifecycle  *Lifecycle
	cache      StatsCache
	logger     ports.Logger
	dataDir    string
	grpcServer *grpc.Server
}

// NewServer creates a new cache daemon server for the cache data directory dataDir.
func NewServer(lifecycle *Lifecycle, cache StatsCache, logger ports.Logger, dataDir string) *Server {
	s := &Server{
		lifecycle: lifecycle,
		cache:     cache,
		logger:    logger,
		dataDir:   dataDir,
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.touch))
	opengev1.RegisterPreprocessorCacheServiceServer(s.grpcServer, s)
	return s
}

// Serve initializes the cache and serves it until ctx ends, the idle timeout
// fires or Shutdown is called. When another process already owns the cache
// Serve returns nil without listening.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.cache.Ensure(ctx); err != nil {
		if errors.Is(err, domain.ErrCacheAlreadyRunning) {
			s.logger.Info("preprocessor cache is already served by another process")
			return nil
		}
		return err
	}
	defer func() { _ = s.cache.Close() }()

	socketPath := domain.CacheSocketPath(s.dataDir)
	if err := os.MkdirAll(filepath.Dir(socketPath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create daemon directory")
	}
	// The cache reservation is held, so any socket left behind is stale.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove stale socket")
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return zerr.Wrap(err, "failed to listen on UDS")
	}
	if err := os.Chmod(socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to set socket permissions")
	}

	pidPath := domain.CachePIDPath(s.dataDir)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), domain.PrivateFilePerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to write PID file")
	}
	defer func() {
		_ = os.Remove(socketPath)
		_ = os.Remove(pidPath)
	}()

	s.logger.Info("preprocessor cache daemon listening on " + socketPath)
	return s.serve(ctx, lis)
}

func (s *Server) serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.GracefulStop()
		return ctx.Err()
	case <-s.lifecycle.Done():
		s.logger.Info("preprocessor cache daemon shutting down")
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// touch resets the inactivity timer for every request.
func (s *Server) touch(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	s.lifecycle.Touch()
	return handler(ctx, req)
}

// Ping implements PreprocessorCacheService.Ping.
func (s *Server) Ping(_ context.Context, _ *emptypb.Empty) (*opengev1.PingResponse, error) {
	return &opengev1.PingResponse{IdleRemainingMillis: s.lifecycle.IdleRemaining().Milliseconds()}, nil
}

// GetUnresolvedDependencies implements PreprocessorCacheService.GetUnresolvedDependencies.
func (s *Server) GetUnresolvedDependencies(
	ctx context.Context,
	req *opengev1.GetUnresolvedDependenciesRequest,
) (*opengev1.GetUnresolvedDependenciesResponse, error) {
	res, err := s.cache.GetUnresolvedDependencies(ctx, req.Path)
	if err != nil {
		return nil, toStatus(err)
	}
	return &opengev1.GetUnresolvedDependenciesResponse{Result: res.Result, CacheStatus: res.CacheStatus}, nil
}

// GetResolvedDependencies implements PreprocessorCacheService.GetResolvedDependencies.
func (s *Server) GetResolvedDependencies(
	ctx context.Context,
	req *opengev1.GetResolvedDependenciesRequest,
) (*opengev1.GetResolvedDependenciesResponse, error) {
	res, err := s.cache.GetResolvedDependencies(ctx, req.Request)
	if err != nil {
		return nil, toStatus(err)
	}
	return &opengev1.GetResolvedDependenciesResponse{
		DependsOnPaths:       res.DependsOnPaths,
		ResolutionTimeMillis: res.ResolutionTime.Milliseconds(),
	}, nil
}

// Status implements PreprocessorCacheService.Status.
func (s *Server) Status(_ context.Context, _ *emptypb.Empty) (*opengev1.StatusResponse, error) {
	pid := min(os.Getpid(), math.MaxInt32)
	stats := s.cache.Stats()
	return &opengev1.StatusResponse{
		Pid:                    int32(pid), //nolint:gosec // capped above
		UptimeMillis:           s.lifecycle.Uptime().Milliseconds(),
		LastActivityUnixMillis: s.lifecycle.LastActivity().UnixMilli(),
		IdleRemainingMillis:    s.lifecycle.IdleRemaining().Milliseconds(),
		CacheHits:              stats.Hits,
		CacheMisses:            stats.Misses,
	}, nil
}

// Shutdown implements PreprocessorCacheService.Shutdown.
func (s *Server) Shutdown(_ context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	// Let the response go out before the server stops.
	time.AfterFunc(10*time.Millisecond, s.lifecycle.Shutdown)
	return &emptypb.Empty{}, nil
}

// toStatus maps cache errors to gRPC status codes.
func toStatus(err error) error {
	var (
		notFound   *domain.IncludeNotFoundError
		notDefined *domain.IdentifierNotDefinedError
		resolution *domain.ResolutionError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &notFound), errors.As(err, &notDefined), errors.As(err, &resolution),
		errors.Is(err, domain.ErrPathNotAbsolute):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrCacheAlreadyRunning):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
