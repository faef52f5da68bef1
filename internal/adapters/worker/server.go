// Package worker implements the worker side of the core reservation protocol
// and the dispatcher side client that drives it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/adapters/daemon"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

const (
	// maxMessageSize bounds a single stream message. Blob batches stay below it.
	maxMessageSize = 64 << 20

	// blobBatchSize is the compressed payload size at which a blob batch is sent.
	blobBatchSize = 16 << 20

	// toolBlobChunkSize is the size of a single WriteToolBlob chunk.
	toolBlobChunkSize = 1 << 20
)

// Server serves core reservations to dispatchers.
type Server struct {
	opengev1.UnimplementedWorkerServiceServer

	name        string
	idleTimeout time.Duration
	slots       *semaphore.Weighted

	mu   sync.Mutex
	free []int

	tools    ports.ToolManager
	blobs    ports.BlobStore
	executor ports.TaskExecutor
	logger   ports.Logger
}

// NewServer creates a worker named name that offers cores reservations.
// A reservation that receives no message for idleTimeout is cancelled.
func NewServer(
	name string,
	cores int,
	idleTimeout time.Duration,
	tools ports.ToolManager,
	blobs ports.BlobStore,
	executor ports.TaskExecutor,
	logger ports.Logger,
) *Server {
	cores = max(cores, 1)
	free := make([]int, cores)
	for i := range free {
		free[i] = cores - 1 - i
	}
	return &Server{
		name:        name,
		idleTimeout: idleTimeout,
		slots:       semaphore.NewWeighted(int64(cores)),
		free:        free,
		tools:       tools,
		blobs:       blobs,
		executor:    executor,
		logger:      logger,
	}
}

// Serve accepts reservations on lis until ctx ends.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	opengev1.RegisterWorkerServiceServer(srv, s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	s.logger.Info(fmt.Sprintf("worker %s listening on %s", s.name, lis.Addr()))

	select {
	case <-ctx.Done():
		// Reservation streams live as long as the dispatcher holds the core,
		// so they are cut instead of drained.
		srv.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// ReserveCore implements WorkerService.ReserveCore. The core stays reserved
// for the lifetime of the stream.
func (s *Server) ReserveCore(stream opengev1.WorkerService_ReserveCoreServer) error {
	ctx := stream.Context()

	req, err := stream.Recv()
	if err != nil {
		return err
	}
	if req.ReserveCore == nil {
		return status.Error(codes.InvalidArgument, "the first message must reserve a core")
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return status.FromContextError(err).Err()
	}
	core := s.takeCore()
	defer s.releaseCore(core)

	s.logger.Info(fmt.Sprintf("core %d reserved by request %s", core, req.ReserveCore.RequestID))

	if err := stream.Send(&opengev1.ExecutionResponse{ReserveCore: &opengev1.ReserveCoreResponse{
		WorkerMachineName: s.name,
		WorkerCoreNumber:  int32(core), //nolint:gosec // bounded by the core count
	}}); err != nil {
		return err
	}

	err = s.serveReservation(ctx, stream)
	s.logger.Info(fmt.Sprintf("core %d released", core))
	return err
}

func (s *Server) takeCore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	core := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	return core
}

func (s *Server) releaseCore(core int) {
	s.mu.Lock()
	s.free = append(s.free, core)
	s.mu.Unlock()
	s.slots.Release(1)
}

// serveReservation handles requests in order until the stream ends or the
// reservation goes idle.
func (s *Server) serveReservation(ctx context.Context, stream opengev1.WorkerService_ReserveCoreServer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	idle := daemon.NewLifecycle(s.idleTimeout)
	defer idle.Shutdown()

	reqs := make(chan *opengev1.ExecutionRequest)
	recvErr := make(chan error, 1)
	go func() {
		for {
			req, err := stream.Recv()
			if err != nil {
				recvErr <- err
				return
			}
			select {
			case reqs <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	sess := &session{server: s, stream: stream}
	defer sess.close()

	for {
		select {
		case <-idle.Done():
			s.logger.Warn("reservation idle timeout expired")
			return status.Error(codes.DeadlineExceeded, "reservation idle timeout expired")
		case err := <-recvErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case req := <-reqs:
			idle.Pause()
			if err := sess.handle(ctx, req); err != nil {
				return toStatus(err)
			}
			idle.Touch()
		}
	}
}

// toStatus maps handler errors to gRPC status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrBlobHashMismatch), errors.Is(err, domain.ErrBlobNotFound):
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, zerr.Wrap(err, "reservation failed").Error())
	}
}
