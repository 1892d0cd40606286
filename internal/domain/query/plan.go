package query

import "github.com/kailas-cloud/learnscout/internal/domain/platform"

// Plan is the per-request decision of which sources to call and with which keywords.
// Every selected source receives the same keyword set.
type Plan struct {
	Query    Query
	Keywords []string
	Sources  []platform.Platform
	// Expanded is true when the keywords came from the rewriter rather than the fallback split.
	Expanded bool
}
