package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/providers"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
)

// JobStore is the slice of the job repository the engine needs.
type JobStore interface {
	Get(id string) (*models.TransferJob, error)
	Update(job *models.TransferJob) error
}

// CacheFactory builds the idempotency cache for one job. Production
// wiring returns a repositories.SQLiteDataCache; tests use the in-memory
// cache.
type CacheFactory func(jobID string) transfer.DataCache

// Engine runs persisted transfer jobs.
type Engine struct {
	jobs     JobStore
	registry *providers.Registry
	caches   CacheFactory
	policy   *transfer.RetryPolicy
	logger   *log.Logger
}

// NewEngine creates an Engine. A nil cache factory falls back to
// per-run in-memory caches; a nil policy falls back to the default
// retry policy.
func NewEngine(jobs JobStore, registry *providers.Registry, caches CacheFactory, policy *transfer.RetryPolicy, logger *log.Logger) *Engine {
	if caches == nil {
		caches = func(string) transfer.DataCache { return transfer.NewMemoryCache() }
	}
	if policy == nil {
		policy = transfer.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Engine{
		jobs:     jobs,
		registry: registry,
		caches:   caches,
		policy:   policy,
		logger:   logger,
	}
}

// Run executes the job with the given ID using the provided credentials.
// The progress channel may be nil.
//
// Branch failures do not fail the job; the walk's outcome lands in the
// returned [transfer.CopyResult] and on the job record. Run returns an
// error when the job cannot run at all or the context is cancelled.
func (e *Engine) Run(ctx context.Context, jobID string, exportAuth, importAuth transfer.AuthData, progress chan<- transfer.ProgressUpdate) (*transfer.CopyResult, error) {
	job, err := e.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status() {
	case models.JobStatusCreated, models.JobStatusFailed:
		// Runnable: fresh jobs, and failed jobs being retried. The
		// job's data cache makes the retry safe.
	default:
		return nil, fmt.Errorf("%w: job %s is %s", shared.ErrInvalidJob, jobID, job.Status())
	}

	exporter, err := e.registry.Exporter(job.ExportService(), job.DataType())
	if err != nil {
		return nil, e.failJob(job, err)
	}
	importer, err := e.registry.Importer(job.ImportService(), job.DataType())
	if err != nil {
		return nil, e.failJob(job, err)
	}

	job.Start()
	job.SetErrorMessage("")
	if err := e.jobs.Update(job); err != nil {
		return nil, fmt.Errorf("failed to mark job started: %w", err)
	}

	e.logger.Info("running transfer job",
		"job_id", jobID,
		"export", job.ExportService(),
		"import", job.ImportService(),
		"data_type", job.DataType())

	copier := transfer.NewCopier(exporter, importer, e.caches(jobID), e.policy, e.logger)
	result, copyErr := copier.Copy(ctx, jobID, exportAuth, importAuth, progress)

	if result != nil {
		job.SetCounters(result.Pages, len(result.BranchFailures))
	}

	if copyErr != nil {
		job.Fail(copyErr.Error())
		if err := e.jobs.Update(job); err != nil {
			e.logger.Error("failed to persist job failure", "job_id", jobID, "error", err)
		}
		return result, copyErr
	}

	job.Complete()
	if err := e.jobs.Update(job); err != nil {
		return result, fmt.Errorf("failed to persist job completion: %w", err)
	}

	return result, nil
}

// failJob marks a job failed before its walk started and returns the
// original cause.
func (e *Engine) failJob(job *models.TransferJob, cause error) error {
	job.Fail(cause.Error())
	if err := e.jobs.Update(job); err != nil {
		e.logger.Error("failed to persist job failure", "job_id", job.ID(), "error", err)
	}
	return cause
}

// AuthForService pulls the configured credential for a service into the
// opaque form the engine passes through to adapters.
func AuthForService(cfg *shared.Config, service string) (transfer.AuthData, error) {
	var token shared.TokenConfig
	switch service {
	case providers.ServiceSmugMug:
		token = cfg.Credentials.SmugMug
	case providers.ServiceImgur:
		token = cfg.Credentials.Imgur
	case providers.ServiceGoogleCalendar:
		token = shared.TokenConfig{
			AccessToken:  cfg.Credentials.Calendar.AccessToken,
			RefreshToken: cfg.Credentials.Calendar.RefreshToken,
		}
	default:
		return transfer.AuthData{}, fmt.Errorf("%w: no credentials section for %s", shared.ErrMissingCredentials, service)
	}

	if token.AccessToken == "" {
		return transfer.AuthData{}, fmt.Errorf("%w: %s access token is empty", shared.ErrMissingCredentials, service)
	}

	return transfer.AuthData{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}
