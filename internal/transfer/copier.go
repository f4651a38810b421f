package transfer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/shared"
)

// BranchFailure records one abandoned branch of the walk.
type BranchFailure struct {
	Request  ExportRequest // the request that could not be completed
	Stage    string        // "export" or "import"
	Attempts int           // export invocations made before giving up
	Err      error
}

func (f BranchFailure) Error() string {
	return fmt.Sprintf("%s of %s failed after %d attempt(s): %v", f.Stage, describeRequest(f.Request), f.Attempts, f.Err)
}

// CopyResult aggregates the outcome of one full walk.
//
// Branch failures are reported here rather than as an error from
// [Copier.Copy]: one branch's permanent failure never aborts the job.
type CopyResult struct {
	Pages          int // pages the walk attempted (one per frame)
	BranchFailures []BranchFailure
}

// Failed reports whether any branch was abandoned.
func (r *CopyResult) Failed() bool { return len(r.BranchFailures) > 0 }

// Copier drives a full migration for one job through an exporter/importer
// pair. It holds no state between walks beyond its collaborators; all
// walk state lives in an explicit frame stack inside Copy.
type Copier struct {
	exporter Exporter
	importer Importer
	cache    DataCache
	policy   *RetryPolicy
	logger   *log.Logger
}

// NewCopier creates a Copier bound to one job's exporter, importer and
// data cache. A nil policy falls back to [DefaultRetryPolicy]; a nil cache
// falls back to a fresh [MemoryCache]; a nil logger logs to stderr.
func NewCopier(exporter Exporter, importer Importer, cache DataCache, policy *RetryPolicy, logger *log.Logger) *Copier {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Copier{
		exporter: exporter,
		importer: importer,
		cache:    cache,
		policy:   policy,
		logger:   logger,
	}
}

// frame is one pending (token, resource) pair of the walk.
type frame struct {
	req ExportRequest
}

// Copy walks the entire resource tree for jobID, exporting and importing
// page by page until no work remains.
//
// The walk is depth-first and strictly sequential. The frame stack
// reproduces the recursive order exactly: after a page is imported, the
// next-page frame is pushed above this page's child frames, so every page
// of a resource (and everything reachable from later pages) finishes
// before this page's children start.
//
// Copy returns an error only when ctx is cancelled; branch failures are
// collected in the CopyResult. The progress channel may be nil.
func (c *Copier) Copy(ctx context.Context, jobID string, exportAuth, importAuth AuthData, progress chan<- ProgressUpdate) (*CopyResult, error) {
	if c.exporter == nil || c.importer == nil {
		return nil, fmt.Errorf("%w: copier missing exporter or importer", shared.ErrServiceUnavailable)
	}

	logger := c.logger.With("job_id", jobID)
	result := &CopyResult{}

	stack := []frame{{}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		result.Pages++
		page := result.Pages
		logger.Debug("copy iteration", "page", page, "request", describeRequest(f.req))

		c.sendProgress(progress, exportPageUpdate(page, f.req))
		res, attempts, err := c.exportWithRetry(ctx, jobID, exportAuth, f.req, page, progress)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			failure := BranchFailure{Request: f.req, Stage: "export", Attempts: attempts, Err: err}
			logger.Warn("abandoning branch", "stage", "export", "attempts", attempts, "error", err)
			result.BranchFailures = append(result.BranchFailures, failure)
			c.sendProgress(progress, branchFailedUpdate(page, failure))
			continue
		}

		if res == nil {
			// An exporter returning (nil, nil) has nothing for this branch.
			continue
		}

		c.sendProgress(progress, importPageUpdate(page, f.req))
		if err := c.importer.Import(ctx, jobID, c.cache, importAuth, res.Data); err != nil {
			failure := BranchFailure{Request: f.req, Stage: "import", Attempts: attempts, Err: err}
			logger.Warn("abandoning branch", "stage", "import", "error", err)
			result.BranchFailures = append(result.BranchFailures, failure)
			c.sendProgress(progress, branchFailedUpdate(page, failure))
			continue
		}

		cont := res.Continuation
		if cont.IsEmpty() {
			continue
		}

		// Children are pushed first (reversed, so they pop in discovery
		// order) and the next-page frame last, so it pops before any of
		// this page's children. Parent pages always drain before children.
		children := cont.Children()
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			c.sendProgress(progress, childFoundUpdate(page, child))
			stack = append(stack, frame{req: ExportRequest{Resource: &child}})
		}
		if next := cont.NextToken(); next != "" {
			stack = append(stack, frame{req: ExportRequest{Token: next, Resource: f.req.Resource}})
		}
	}

	logger.Info("walk complete", "pages", result.Pages, "failed_branches", len(result.BranchFailures))
	c.sendProgress(progress, walkDoneUpdate(result))
	return result, nil
}

// exportWithRetry invokes the exporter for req, re-invoking the identical
// request on transient failures until the classifier's ceiling is reached.
// It returns the number of invocations made alongside the outcome.
func (c *Copier) exportWithRetry(ctx context.Context, jobID string, auth AuthData, req ExportRequest, page int, progress chan<- ProgressUpdate) (*ExportResult, int, error) {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		attempts++
		res, err := c.exporter.Export(ctx, jobID, auth, req)
		if err == nil {
			return res, attempts, nil
		}

		cls := c.policy.Classify(errMessage(err))
		if !cls.Retry {
			return nil, attempts, fmt.Errorf("%w: fatal: %v", shared.ErrExportFailed, err)
		}
		if attempts >= cls.MaxAttempts {
			return nil, attempts, fmt.Errorf("%w after %d attempts: %v", shared.ErrExportFailed, attempts, err)
		}

		c.logger.Debug("retrying export", "job_id", jobID, "attempt", attempts+1, "error", err)
		c.sendProgress(progress, retryExportUpdate(page, attempts+1, req))
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (c *Copier) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
