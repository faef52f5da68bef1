package daemon

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	pingTimeout = time.Second

	// respawnInterval bounds how often a new daemon is started while an
	// earlier one may still be coming up.
	respawnInterval = 5 * time.Second
)

// Connector implements ports.CacheConnector.
type Connector struct {
	executablePath string
	spawn          func(ctx context.Context, dataDir string) error
}

// NewConnector creates a new cache daemon connector.
func NewConnector() (*Connector, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine executable path")
	}
	c := &Connector{executablePath: exe}
	c.spawn = c.Spawn
	return c, nil
}

// Dial implements ports.CacheConnector.
func (c *Connector) Dial(dataDir string) (ports.CacheClient, error) {
	return Dial(dataDir)
}

// Connect implements ports.CacheConnector. It keeps dialing until the daemon
// answers a ping, spawning it whenever it is unavailable, or ctx ends.
func (c *Connector) Connect(ctx context.Context, dataDir string, spawnDelay time.Duration) (ports.CacheClient, error) {
	var lastSpawn time.Time
	for {
		client, err := Dial(dataDir)
		if err != nil {
			return nil, err
		}

		pingErr := ping(ctx, client)
		if pingErr == nil {
			return client, nil
		}
		_ = client.Close()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if code := status.Code(pingErr); code != codes.Unavailable && code != codes.DeadlineExceeded {
			return nil, zerr.Wrap(pingErr, domain.ErrDaemonNotRunning.Error())
		}

		if lastSpawn.IsZero() || time.Since(lastSpawn) >= respawnInterval {
			if err := c.spawn(ctx, dataDir); err != nil {
				return nil, err
			}
			lastSpawn = time.Now()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(spawnDelay):
		}
	}
}

func ping(ctx context.Context, client *Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx)
}

// Spawn implements ports.CacheConnector. It starts a detached daemon process
// and returns without waiting for it to listen.
func (c *Connector) Spawn(_ context.Context, dataDir string) error {
	if err := os.MkdirAll(dataDir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create daemon directory")
	}

	logPath := domain.CacheLogPath(dataDir)
	//nolint:gosec // G304: logPath is the data dir plus a fixed file name
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.PrivateFilePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to open daemon log")
	}

	//nolint:gosec // G204: executablePath is our own binary, args are fixed
	cmd := exec.Command(c.executablePath, "cache", "serve", "--data-dir", dataDir)
	cmd.Dir = dataDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrDaemonSpawnFailed.Error()), "executable", c.executablePath)
	}

	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
	}()

	return nil
}
