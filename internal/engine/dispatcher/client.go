package dispatcher

import (
	"context"
	"errors"
	"io"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client implements ports.JobDispatcher against a remote DispatcherService.
type Client struct {
	conn   *grpc.ClientConn
	client opengev1.DispatcherServiceClient
}

// Dial creates a client for the dispatcher at address. The connection is made lazily.
func Dial(address string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "dispatcher client creation failed"), "address", address)
	}
	return &Client{conn: conn, client: opengev1.NewDispatcherServiceClient(conn)}, nil
}

// Submit implements ports.JobDispatcher. Its result matches the in-process
// dispatcher: ErrBuildExecutionFailed when a task did not succeed.
func (c *Client) Submit(ctx context.Context, spec domain.JobSpec, sink ports.JobEventSink) error {
	stream, err := c.client.SubmitJob(ctx, &opengev1.SubmitJobRequest{
		JobXML:               spec.JobXML,
		WorkingDirectory:     spec.WorkingDirectory,
		BuildNodeName:        spec.BuildNodeName,
		EnvironmentVariables: spec.Environment,
	})
	if err != nil {
		return fromStatus(err)
	}

	var final *domain.JobResponse
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fromStatus(err)
		}
		ev, err := fromWire(resp)
		if err != nil {
			return err
		}
		if err := sink(ev); err != nil {
			return zerr.Wrap(err, "failed to deliver job event")
		}
		if ev.Kind == domain.JobCompleteEvent {
			final = &ev
		}
	}

	switch {
	case final == nil:
		return zerr.Wrap(domain.ErrWorkerStreamClosed, "job stream ended before completion")
	case final.JobStatus == domain.JobFailure:
		return domain.ErrBuildExecutionFailed
	case final.JobStatus == domain.JobCancelled:
		return context.Canceled
	default:
		return nil
	}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return zerr.With(domain.ErrInvalidBuildSet, "cause", st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return zerr.Wrap(err, "job submission failed")
	}
}
