package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// buildSetErrors are the errors that make a submitted job invalid.
var buildSetErrors = []error{
	domain.ErrInvalidBuildSet,
	domain.ErrUnsupportedBuildSetVersion,
	domain.ErrEnvironmentAlreadyExists,
	domain.ErrToolAlreadyExists,
	domain.ErrTaskAlreadyExists,
	domain.ErrMissingEnvironment,
	domain.ErrMissingTool,
	domain.ErrMissingDependency,
	domain.ErrCycleDetected,
}

// Server exposes a JobDispatcher as DispatcherService.
type Server struct {
	opengev1.UnimplementedDispatcherServiceServer

	dispatcher ports.JobDispatcher
	logger     ports.Logger
}

// NewServer creates a Server that hands submitted jobs to dispatcher.
func NewServer(dispatcher ports.JobDispatcher, logger ports.Logger) *Server {
	return &Server{dispatcher: dispatcher, logger: logger}
}

// Serve accepts jobs on lis until ctx ends. Running jobs are cancelled on shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	opengev1.RegisterDispatcherServiceServer(srv, s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	s.logger.Info(fmt.Sprintf("dispatcher listening on %s", lis.Addr()))

	select {
	case <-ctx.Done():
		srv.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// SubmitJob implements DispatcherService.SubmitJob. A job whose tasks fail
// still completes the stream normally; the outcome is in JobComplete.
func (s *Server) SubmitJob(req *opengev1.SubmitJobRequest, stream opengev1.DispatcherService_SubmitJobServer) error {
	spec := domain.JobSpec{
		JobXML:           req.JobXML,
		WorkingDirectory: req.WorkingDirectory,
		BuildNodeName:    req.BuildNodeName,
		Environment:      req.EnvironmentVariables,
	}

	err := s.dispatcher.Submit(stream.Context(), spec, func(ev domain.JobResponse) error {
		return stream.Send(toWire(ev))
	})
	switch {
	case err == nil, errors.Is(err, domain.ErrBuildExecutionFailed):
		return nil
	case isBuildSetError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.Error(err)
		return status.Error(codes.Internal, err.Error())
	}
}

func isBuildSetError(err error) bool {
	for _, target := range buildSetErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
