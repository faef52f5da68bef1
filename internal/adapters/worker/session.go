package worker

import (
	"bytes"
	"context"
	"io"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/adapters/blobs"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// session is the request state of a single reservation stream.
type session struct {
	server *Server
	stream opengev1.WorkerService_ReserveCoreServer

	toolBlob *toolBlobWrite
}

// toolBlobWrite streams WriteToolBlob chunks into the tool manager.
type toolBlobWrite struct {
	hash uint64
	pw   *io.PipeWriter
	done chan toolBlobResult
}

type toolBlobResult struct {
	size int64
	err  error
}

func (s *session) send(resp *opengev1.ExecutionResponse) error {
	return s.stream.Send(resp)
}

func (s *session) handle(ctx context.Context, req *opengev1.ExecutionRequest) error {
	switch {
	case req.QueryTool != nil:
		present := s.server.tools.QueryTool(req.QueryTool.ToolXxHash64)
		return s.send(&opengev1.ExecutionResponse{QueryTool: &opengev1.QueryToolResponse{Present: present}})
	case req.HasToolBlobs != nil:
		return s.hasToolBlobs(ctx, req.HasToolBlobs)
	case req.WriteToolBlob != nil:
		return s.writeToolBlob(ctx, req.WriteToolBlob)
	case req.ConstructTool != nil:
		if err := s.server.tools.ConstructTool(ctx, req.ConstructTool.ToolXxHash64, req.ConstructTool.Files); err != nil {
			return err
		}
		return s.send(&opengev1.ExecutionResponse{ConstructTool: &opengev1.ConstructToolResponse{
			ToolXxHash64: req.ConstructTool.ToolXxHash64,
		}})
	case req.QueryMissingBlobs != nil:
		missing := s.server.blobs.Missing(req.QueryMissingBlobs.BlobXxHash64)
		return s.send(&opengev1.ExecutionResponse{QueryMissingBlobs: &opengev1.QueryMissingBlobsResponse{
			MissingBlobXxHash64: missing,
		}})
	case req.SendCompressedBlobs != nil:
		return s.receiveBlobs(req.SendCompressedBlobs)
	case req.ExecuteTask != nil:
		return s.executeTask(ctx, req.ExecuteTask.Descriptor)
	case req.ReceiveOutputBlobs != nil:
		return s.sendBlobs(req.ReceiveOutputBlobs.BlobXxHash64)
	case req.ReserveCore != nil:
		return status.Error(codes.FailedPrecondition, "the stream already holds a core")
	default:
		return status.Error(codes.InvalidArgument, "empty execution request")
	}
}

func (s *session) hasToolBlobs(ctx context.Context, req *opengev1.HasToolBlobsRequest) error {
	present, err := s.server.tools.HasToolBlobs(ctx, req.ToolBlobs)
	if err != nil {
		return err
	}
	existence := make([]opengev1.ToolBlobExistence, 0, len(req.ToolBlobs))
	for _, blob := range req.ToolBlobs {
		existence = append(existence, opengev1.ToolBlobExistence{XxHash64: blob.XxHash64, Exists: present[blob.XxHash64]})
	}
	return s.send(&opengev1.ExecutionResponse{HasToolBlobs: &opengev1.HasToolBlobsResponse{Existence: existence}})
}

// writeToolBlob appends a chunk to the pending tool blob. The first chunk of a
// blob opens the write and the chunk with FinishWrite commits it.
func (s *session) writeToolBlob(ctx context.Context, req *opengev1.WriteToolBlobRequest) error {
	if s.toolBlob == nil {
		pr, pw := io.Pipe()
		w := &toolBlobWrite{hash: req.ToolBlobXxHash64, pw: pw, done: make(chan toolBlobResult, 1)}
		go func() {
			size, err := s.server.tools.WriteToolBlob(ctx, w.hash, pr)
			_ = pr.CloseWithError(err)
			w.done <- toolBlobResult{size: size, err: err}
		}()
		s.toolBlob = w
	}

	w := s.toolBlob
	if len(req.Data) > 0 {
		if _, err := w.pw.Write(req.Data); err != nil {
			s.toolBlob = nil
			res := <-w.done
			if res.err != nil {
				return res.err
			}
			return zerr.Wrap(err, "failed to write tool blob")
		}
	}
	if !req.FinishWrite {
		return nil
	}

	s.toolBlob = nil
	_ = w.pw.Close()
	res := <-w.done
	if res.err != nil {
		return res.err
	}
	return s.send(&opengev1.ExecutionResponse{WriteToolBlob: &opengev1.WriteToolBlobResponse{CommittedSize: res.size}})
}

// receiveBlobs stores a batch of compressed input blobs. Only the batch that
// finishes the write is answered.
func (s *session) receiveBlobs(req *opengev1.SendCompressedBlobsRequest) error {
	for _, blob := range req.Blobs {
		data, err := blobs.Decompress(blob.Data)
		if err != nil {
			return zerr.With(err, "blob", blobs.HexString(blob.XxHash64))
		}
		if err := s.server.blobs.Write(blob.XxHash64, bytes.NewReader(data)); err != nil {
			return err
		}
	}
	if !req.FinishWrite {
		return nil
	}
	return s.send(&opengev1.ExecutionResponse{SendCompressedBlobs: &opengev1.SendCompressedBlobsResponse{}})
}

// executeTask streams the events of a task. A task that cannot run fails with
// exit code 1 and leaves the reservation usable.
func (s *session) executeTask(ctx context.Context, desc domain.TaskDescriptor) error {
	for ev, err := range s.server.executor.Execute(ctx, desc) {
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.server.logger.Error(err)
			if sendErr := s.sendEvent(domain.StderrLine(err.Error())); sendErr != nil {
				return sendErr
			}
			return s.sendEvent(domain.ExitCode(1))
		}
		if err := s.sendEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) sendEvent(ev domain.ProcessEvent) error {
	return s.send(&opengev1.ExecutionResponse{ExecuteTask: &opengev1.ExecuteTaskResponse{Event: ev}})
}

// sendBlobs answers ReceiveOutputBlobs in batches; the last batch is marked final.
func (s *session) sendBlobs(hashes []uint64) error {
	var (
		batch []opengev1.CompressedBlob
		size  int
	)
	for _, hash := range hashes {
		data, err := s.readBlob(hash)
		if err != nil {
			return err
		}
		compressed := blobs.Compress(data)
		if size > 0 && size+len(compressed) > blobBatchSize {
			if err := s.send(&opengev1.ExecutionResponse{ReceiveOutputBlobs: &opengev1.ReceiveOutputBlobsResponse{Blobs: batch}}); err != nil {
				return err
			}
			batch, size = nil, 0
		}
		batch = append(batch, opengev1.CompressedBlob{XxHash64: hash, Data: compressed})
		size += len(compressed)
	}
	return s.send(&opengev1.ExecutionResponse{ReceiveOutputBlobs: &opengev1.ReceiveOutputBlobsResponse{
		Blobs: batch,
		Final: true,
	}})
}

func (s *session) readBlob(hash uint64) ([]byte, error) {
	rc, err := s.server.blobs.Open(hash)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read blob"), "blob", blobs.HexString(hash))
	}
	return data, nil
}

// close abandons a tool blob write left open by a broken stream.
func (s *session) close() {
	if s.toolBlob == nil {
		return
	}
	_ = s.toolBlob.pw.CloseWithError(domain.ErrWorkerStreamClosed)
	<-s.toolBlob.done
	s.toolBlob = nil
}
