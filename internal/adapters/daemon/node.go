package daemon

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/openge/internal/core/ports"
)

// NodeID is the unique identifier for the cache connector Graft node.
const NodeID graft.ID = "adapter.daemon"

func init() {
	graft.Register(graft.Node[ports.CacheConnector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CacheConnector, error) {
			return NewConnector()
		},
	})
}
