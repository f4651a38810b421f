package transfer

import (
	"context"

	"github.com/desertthunder/portage/internal/models"
)

// AuthData is an opaque credential for one side of a job, valid for the
// job's lifetime. The engine passes it through untouched.
type AuthData struct {
	AccessToken  string
	RefreshToken string
}

// ExportResult is the successful outcome of one export call: the payload
// to import plus the continuation describing what remains.
//
// A nil Continuation (or an empty one) means the branch is fully drained.
// Failures are reported through the error return of [Exporter.Export], not
// through this type.
type ExportResult struct {
	Data         models.Payload
	Continuation *ContinuationData
}

// Done reports whether this result ends its branch.
func (r *ExportResult) Done() bool {
	return r == nil || r.Continuation.IsEmpty()
}

// Exporter reads one page of data out of a source service.
//
// Re-invoking Export with an identical request after a transient failure
// must be safe: exports may not leave partial side effects on the source.
type Exporter interface {
	Export(ctx context.Context, jobID string, auth AuthData, req ExportRequest) (*ExportResult, error)
}

// Importer writes one exported payload into a destination service.
//
// Any step that creates a durable artifact must go through the provided
// [DataCache] so retried or resumed imports do not duplicate it. A nil
// payload is a no-op.
type Importer interface {
	Import(ctx context.Context, jobID string, cache DataCache, auth AuthData, payload models.Payload) error
}
