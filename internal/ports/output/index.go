package output

import (
	"context"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// Coverer computes the spatial covering cells of a locality object and
// appends them to the given accumulator. Implementations must be
// deterministic for identical geometry and safe for concurrent use, since
// every worker covers into its own accumulator.
type Coverer interface {
	Cover(object *domain.LocalityObject, into *domain.Covering)
}

// IndexBuilder persists the merged covering as the final index artifact.
type IndexBuilder interface {
	Build(ctx context.Context, covering *domain.Covering, outPath string) error
}
