package daemon

import "context"

// NewTestConnector creates a connector whose spawn step is replaced by spawn.
func NewTestConnector(spawn func(ctx context.Context, dataDir string) error) *Connector {
	return &Connector{spawn: spawn}
}
