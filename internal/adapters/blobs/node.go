package blobs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/openge/internal/core/ports"
)

// HasherNodeID is the unique identifier for the blob hasher Graft node.
const HasherNodeID graft.ID = "adapter.blobs.hasher"

func init() {
	graft.Register(graft.Node[ports.BlobHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.BlobHasher, error) {
			return NewHasher(), nil
		},
	})
}
