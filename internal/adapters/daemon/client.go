// Package daemon hosts the preprocessor cache in a long-lived background process.
// It provides the gRPC server, the client and a connector that spawns the
// daemon on demand over a Unix domain socket.
package daemon

import (
	"context"
	"errors"
	"time"

	opengev1 "go.trai.ch/openge/api/openge/v1"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client implements ports.CacheClient.
type Client struct {
	conn   *grpc.ClientConn
	client opengev1.PreprocessorCacheServiceClient
}

// Dial connects to the daemon serving dataDir.
// grpc.NewClient returns immediately; the connection is made lazily on the first RPC.
func Dial(dataDir string) (*Client, error) {
	target := "unix://" + domain.CacheSocketPath(dataDir)

	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, zerr.Wrap(err, "daemon client creation failed")
	}

	return &Client{
		conn:   conn,
		client: opengev1.NewPreprocessorCacheServiceClient(conn),
	}, nil
}

// Ensure implements ports.PreprocessorCache. The daemon owns initialization,
// so Ensure only verifies that it is reachable.
func (c *Client) Ensure(ctx context.Context) error {
	return c.Ping(ctx)
}

// GetUnresolvedDependencies implements ports.PreprocessorCache.
func (c *Client) GetUnresolvedDependencies(
	ctx context.Context,
	path string,
) (*domain.ScanResultWithCacheMetadata, error) {
	resp, err := c.client.GetUnresolvedDependencies(ctx, &opengev1.GetUnresolvedDependenciesRequest{Path: path})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to scan file"), "path", path)
	}
	return &domain.ScanResultWithCacheMetadata{Result: resp.Result, CacheStatus: resp.CacheStatus}, nil
}

// GetResolvedDependencies implements ports.PreprocessorCache.
func (c *Client) GetResolvedDependencies(
	ctx context.Context,
	req domain.ResolveRequest,
) (*domain.ResolutionResult, error) {
	resp, err := c.client.GetResolvedDependencies(ctx, &opengev1.GetResolvedDependenciesRequest{Request: req})
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			err = errors.Join(domain.ErrDependencyResolutionFailed, err)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve dependencies"), "path", req.Path)
	}
	return &domain.ResolutionResult{
		DependsOnPaths: resp.DependsOnPaths,
		ResolutionTime: time.Duration(resp.ResolutionTimeMillis) * time.Millisecond,
	}, nil
}

// Ping implements ports.CacheClient.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.Ping(ctx, &emptypb.Empty{})
	return err
}

// Status implements ports.CacheClient.
func (c *Client) Status(ctx context.Context) (*ports.DaemonStatus, error) {
	resp, err := c.client.Status(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return &ports.DaemonStatus{
		Running:       true,
		PID:           int(resp.Pid),
		Uptime:        time.Duration(resp.UptimeMillis) * time.Millisecond,
		LastActivity:  time.UnixMilli(resp.LastActivityUnixMillis),
		IdleRemaining: time.Duration(resp.IdleRemainingMillis) * time.Millisecond,
		Stats:         domain.CacheStats{Hits: resp.CacheHits, Misses: resp.CacheMisses},
	}, nil
}

// Shutdown implements ports.CacheClient.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.client.Shutdown(ctx, &emptypb.Empty{})
	return err
}

// Close implements ports.PreprocessorCache.
func (c *Client) Close() error {
	return c.conn.Close()
}
