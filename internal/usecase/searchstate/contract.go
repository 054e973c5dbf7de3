package searchstate

import "github.com/kailas-cloud/searchstate/internal/domain/params"

// TransformFunc adjusts a merged parameter set before it is finalized.
// The set is a private copy and may be mutated freely.
type TransformFunc func(p *params.Set)
