package worker

import (
	"context"
	"errors"
	"io"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/adapters/blobs"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Connector implements ports.WorkerConnector over gRPC.
type Connector struct{}

// NewConnector creates a new worker connector.
func NewConnector() *Connector {
	return &Connector{}
}

// Connect implements ports.WorkerConnector.
func (*Connector) Connect(endpoint domain.WorkerEndpoint) (ports.WorkerClient, error) {
	return Dial(endpoint)
}

// Client implements ports.WorkerClient.
type Client struct {
	endpoint domain.WorkerEndpoint
	conn     *grpc.ClientConn
	client   opengev1.WorkerServiceClient
}

// Dial creates a client for the worker at endpoint.Address.
// grpc.NewClient returns immediately; the connection is made lazily on the first reservation.
func Dial(endpoint domain.WorkerEndpoint, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
	}, opts...)

	conn, err := grpc.NewClient(endpoint.Address, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "worker client creation failed"), "worker", endpoint.Name)
	}
	return &Client{
		endpoint: endpoint,
		conn:     conn,
		client:   opengev1.NewWorkerServiceClient(conn),
	}, nil
}

// Name implements ports.WorkerClient.
func (c *Client) Name() string {
	return c.endpoint.Name
}

// Cores implements ports.WorkerClient.
func (c *Client) Cores() int {
	return c.endpoint.Cores
}

// Close implements ports.WorkerClient.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReserveCore implements ports.WorkerClient. ctx bounds the wait for the
// grant; the reservation itself lasts until Release.
func (c *Client) ReserveCore(ctx context.Context) (ports.RemoteCore, error) {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)

	core, err := c.reserve(streamCtx, cancel)
	if !stop() || err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return core, nil
}

func (c *Client) reserve(ctx context.Context, cancel context.CancelFunc) (*remoteCore, error) {
	stream, err := c.client.ReserveCore(ctx)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWorkerReservationFailed.Error()), "worker", c.Name())
	}

	if err := stream.Send(&opengev1.ExecutionRequest{ReserveCore: &opengev1.ReserveCoreRequest{
		RequestID: uuid.NewString(),
	}}); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWorkerReservationFailed.Error()), "worker", c.Name())
	}

	resp, err := stream.Recv()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWorkerReservationFailed.Error()), "worker", c.Name())
	}
	if resp.ReserveCore == nil {
		return nil, zerr.With(domain.ErrUnexpectedResponse, "worker", c.Name())
	}

	return &remoteCore{
		worker:     c.Name(),
		coreNumber: int(resp.ReserveCore.WorkerCoreNumber),
		stream:     stream,
		cancel:     cancel,
	}, nil
}

// remoteCore implements ports.RemoteCore over a reservation stream. Requests
// on a core are strictly sequential.
type remoteCore struct {
	worker     string
	coreNumber int
	stream     grpc.BidiStreamingClient[opengev1.ExecutionRequest, opengev1.ExecutionResponse]
	cancel     context.CancelFunc

	mu sync.Mutex
}

func (r *remoteCore) CoreNumber() int {
	return r.coreNumber
}

func (r *remoteCore) Release() {
	r.cancel()
}

func (r *remoteCore) send(req *opengev1.ExecutionRequest) error {
	if err := r.stream.Send(req); err != nil {
		return r.streamError(err)
	}
	return nil
}

func (r *remoteCore) recv() (*opengev1.ExecutionResponse, error) {
	resp, err := r.stream.Recv()
	if err != nil {
		return nil, r.streamError(err)
	}
	return resp, nil
}

func (r *remoteCore) streamError(err error) error {
	if errors.Is(err, io.EOF) {
		err = domain.ErrWorkerStreamClosed
	}
	return zerr.With(zerr.With(err, "worker", r.worker), "core", r.coreNumber)
}

// roundTrip sends req and returns the next response, running both under ctx.
func (r *remoteCore) roundTrip(ctx context.Context, req *opengev1.ExecutionRequest) (*opengev1.ExecutionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()

	if err := r.send(req); err != nil {
		return nil, r.contextError(ctx, err)
	}
	resp, err := r.recv()
	if err != nil {
		return nil, r.contextError(ctx, err)
	}
	return resp, nil
}

func (r *remoteCore) contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (r *remoteCore) SyncTool(ctx context.Context, manifest *domain.ToolManifest) (domain.ToolExecutionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := domain.ToolExecutionInfo{
		ToolXxHash64:       manifest.ToolXxHash64,
		ToolExecutableName: manifest.ToolExecutableName,
	}

	resp, err := r.roundTrip(ctx, &opengev1.ExecutionRequest{QueryTool: &opengev1.QueryToolRequest{
		ToolXxHash64: manifest.ToolXxHash64,
	}})
	if err != nil {
		return info, err
	}
	if resp.QueryTool == nil {
		return info, domain.ErrUnexpectedResponse
	}
	if resp.QueryTool.Present {
		return info, nil
	}

	// One local file per distinct blob.
	sources := make(map[uint64]string, len(manifest.Files))
	for _, rel := range slices.Sorted(maps.Keys(manifest.Files)) {
		hash := manifest.Files[rel]
		if _, ok := sources[hash]; !ok {
			sources[hash] = filepath.Join(manifest.LocalBasePath, filepath.FromSlash(rel))
		}
	}
	toolBlobs := make([]domain.ToolBlob, 0, len(sources))
	for _, hash := range slices.Sorted(maps.Keys(sources)) {
		toolBlobs = append(toolBlobs, domain.ToolBlob{XxHash64: hash, LocalHintPath: sources[hash]})
	}

	resp, err = r.roundTrip(ctx, &opengev1.ExecutionRequest{HasToolBlobs: &opengev1.HasToolBlobsRequest{
		ToolXxHash64: manifest.ToolXxHash64,
		ToolBlobs:    toolBlobs,
	}})
	if err != nil {
		return info, err
	}
	if resp.HasToolBlobs == nil {
		return info, domain.ErrUnexpectedResponse
	}

	for _, existence := range resp.HasToolBlobs.Existence {
		if existence.Exists {
			continue
		}
		if err := r.writeToolBlob(ctx, existence.XxHash64, sources[existence.XxHash64]); err != nil {
			return info, err
		}
	}

	resp, err = r.roundTrip(ctx, &opengev1.ExecutionRequest{ConstructTool: &opengev1.ConstructToolRequest{
		ToolXxHash64: manifest.ToolXxHash64,
		Files:        manifest.Files,
	}})
	if err != nil {
		return info, err
	}
	if resp.ConstructTool == nil {
		return info, domain.ErrUnexpectedResponse
	}
	return info, nil
}

// writeToolBlob uploads the file at path in chunks.
func (r *remoteCore) writeToolBlob(ctx context.Context, hash uint64, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from the hashed tool directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open tool file"), "path", path)
	}
	defer func() { _ = f.Close() }()

	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()

	buf := make([]byte, toolBlobChunkSize)
	for {
		n, readErr := io.ReadFull(f, buf)
		last := errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF)
		if readErr != nil && !last {
			return zerr.With(zerr.Wrap(readErr, "failed to read tool file"), "path", path)
		}
		if err := r.send(&opengev1.ExecutionRequest{WriteToolBlob: &opengev1.WriteToolBlobRequest{
			ToolBlobXxHash64: hash,
			Data:             buf[:n],
			FinishWrite:      last,
		}}); err != nil {
			return r.contextError(ctx, err)
		}
		if last {
			break
		}
	}

	resp, err := r.recv()
	if err != nil {
		return r.contextError(ctx, err)
	}
	if resp.WriteToolBlob == nil {
		return domain.ErrUnexpectedResponse
	}
	return nil
}

func (r *remoteCore) SyncInputBlobs(ctx context.Context, manifest *domain.BlobManifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hashes := slices.Sorted(maps.Keys(manifest.HashesToPaths))
	resp, err := r.roundTrip(ctx, &opengev1.ExecutionRequest{QueryMissingBlobs: &opengev1.QueryMissingBlobsRequest{
		BlobXxHash64: hashes,
	}})
	if err != nil {
		return err
	}
	if resp.QueryMissingBlobs == nil {
		return domain.ErrUnexpectedResponse
	}
	missing := resp.QueryMissingBlobs.MissingBlobXxHash64
	if len(missing) == 0 {
		return nil
	}

	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()

	var (
		batch []opengev1.CompressedBlob
		size  int
	)
	for _, hash := range missing {
		path := manifest.HashesToPaths[hash]
		data, err := os.ReadFile(path) //nolint:gosec // path is a declared task input
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read input"), "path", path)
		}
		compressed := blobs.Compress(data)
		if size > 0 && size+len(compressed) > blobBatchSize {
			if err := r.send(&opengev1.ExecutionRequest{SendCompressedBlobs: &opengev1.SendCompressedBlobsRequest{
				Blobs: batch,
			}}); err != nil {
				return r.contextError(ctx, err)
			}
			batch, size = nil, 0
		}
		batch = append(batch, opengev1.CompressedBlob{XxHash64: hash, Data: compressed})
		size += len(compressed)
	}
	if err := r.send(&opengev1.ExecutionRequest{SendCompressedBlobs: &opengev1.SendCompressedBlobsRequest{
		Blobs:       batch,
		FinishWrite: true,
	}}); err != nil {
		return r.contextError(ctx, err)
	}

	resp, err = r.recv()
	if err != nil {
		return r.contextError(ctx, err)
	}
	if resp.SendCompressedBlobs == nil {
		return domain.ErrUnexpectedResponse
	}
	return nil
}

// ExecuteTask streams the events of desc. Cancelling ctx releases the core,
// which stops the process on the worker.
func (r *remoteCore) ExecuteTask(ctx context.Context, desc domain.TaskDescriptor) iter.Seq2[domain.ProcessEvent, error] {
	return func(yield func(domain.ProcessEvent, error) bool) {
		r.mu.Lock()
		defer r.mu.Unlock()

		stop := context.AfterFunc(ctx, r.cancel)
		defer stop()

		if err := r.send(&opengev1.ExecutionRequest{ExecuteTask: &opengev1.ExecuteTaskRequest{Descriptor: desc}}); err != nil {
			yield(domain.ProcessEvent{}, r.contextError(ctx, err))
			return
		}
		for {
			resp, err := r.recv()
			if err != nil {
				yield(domain.ProcessEvent{}, r.contextError(ctx, err))
				return
			}
			if resp.ExecuteTask == nil {
				yield(domain.ProcessEvent{}, domain.ErrUnexpectedResponse)
				return
			}
			ev := resp.ExecuteTask.Event
			if !yield(ev, nil) || ev.Kind == domain.ProcessExit {
				return
			}
		}
	}
}

// ReceiveOutputBlobs downloads the blobs of outputs and writes every path that refers to them.
func (r *remoteCore) ReceiveOutputBlobs(ctx context.Context, outputs map[string]domain.BlobRef) error {
	if len(outputs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make(map[uint64][]string)
	for _, path := range slices.Sorted(maps.Keys(outputs)) {
		hash := outputs[path].XxHash64
		paths[hash] = append(paths[hash], path)
	}

	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()

	if err := r.send(&opengev1.ExecutionRequest{ReceiveOutputBlobs: &opengev1.ReceiveOutputBlobsRequest{
		BlobXxHash64: slices.Sorted(maps.Keys(paths)),
	}}); err != nil {
		return r.contextError(ctx, err)
	}

	for {
		resp, err := r.recv()
		if err != nil {
			return r.contextError(ctx, err)
		}
		if resp.ReceiveOutputBlobs == nil {
			return domain.ErrUnexpectedResponse
		}
		for _, blob := range resp.ReceiveOutputBlobs.Blobs {
			data, err := blobs.Decompress(blob.Data)
			if err != nil {
				return zerr.With(err, "blob", blobs.HexString(blob.XxHash64))
			}
			for _, path := range paths[blob.XxHash64] {
				if err := writeOutput(path, data); err != nil {
					return err
				}
			}
		}
		if resp.ReceiveOutputBlobs.Final {
			return nil
		}
	}
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", path)
	}
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output"), "path", path)
	}
	return nil
}
