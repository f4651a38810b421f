package models

import (
	"fmt"
	"time"
)

// Job status values, ordered by lifecycle.
const (
	JobStatusCreated    = "created"
	JobStatusInProgress = "in_progress"
	JobStatusComplete   = "complete"
	JobStatusFailed     = "failed"
)

// TransferJob represents one requested migration between two services.
//
// A job owns one export-side credential and one import-side credential for
// its lifetime; credentials are not persisted here, only the service names
// and the data domain being moved.
type TransferJob struct {
	id             string
	sequence       int
	exportService  string
	importService  string
	dataType       string
	status         string
	pagesWalked    int
	branchesFailed int
	errorMessage   string
	startedAt      *time.Time
	completedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewTransferJob creates a TransferJob in the created state.
func NewTransferJob(sequence int, exportService, importService, dataType string) *TransferJob {
	now := time.Now()
	return &TransferJob{
		sequence:      sequence,
		exportService: exportService,
		importService: importService,
		dataType:      dataType,
		status:        JobStatusCreated,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (j *TransferJob) ID() string            { return j.id }
func (j *TransferJob) Sequence() int         { return j.sequence }
func (j *TransferJob) ExportService() string { return j.exportService }
func (j *TransferJob) ImportService() string { return j.importService }
func (j *TransferJob) DataType() string      { return j.dataType }
func (j *TransferJob) Status() string        { return j.status }
func (j *TransferJob) PagesWalked() int      { return j.pagesWalked }
func (j *TransferJob) BranchesFailed() int   { return j.branchesFailed }
func (j *TransferJob) ErrorMessage() string  { return j.errorMessage }
func (j *TransferJob) StartedAt() *time.Time { return j.startedAt }
func (j *TransferJob) CompletedAt() *time.Time {
	return j.completedAt
}
func (j *TransferJob) CreatedAt() time.Time  { return j.createdAt }
func (j *TransferJob) UpdatedAt() time.Time  { return j.updatedAt }
func (j *TransferJob) DeletedAt() *time.Time { return j.deletedAt }

func (j *TransferJob) SetID(id string)             { j.id = id }
func (j *TransferJob) SetUpdatedAt(t time.Time)    { j.updatedAt = t }
func (j *TransferJob) SetDeletedAt(t *time.Time)   { j.deletedAt = t }
func (j *TransferJob) SetErrorMessage(msg string)  { j.errorMessage = msg }
func (j *TransferJob) SetCounters(pages, failed int) {
	j.pagesWalked = pages
	j.branchesFailed = failed
}

// Start marks the job as running.
func (j *TransferJob) Start() {
	now := time.Now()
	j.status = JobStatusInProgress
	j.startedAt = &now
	j.updatedAt = now
}

// Complete marks the job as finished. A job with branch failures is still
// complete; failed is reserved for jobs that could not run at all.
func (j *TransferJob) Complete() {
	now := time.Now()
	j.status = JobStatusComplete
	j.completedAt = &now
	j.updatedAt = now
}

// Fail marks the job as failed with the given message.
func (j *TransferJob) Fail(msg string) {
	now := time.Now()
	j.status = JobStatusFailed
	j.errorMessage = msg
	j.completedAt = &now
	j.updatedAt = now
}

// Validate checks that the job names both services and a data type,
// and that the status is one of the known values.
func (j *TransferJob) Validate() error {
	if j.exportService == "" {
		return fmt.Errorf("export service is required")
	}
	if j.importService == "" {
		return fmt.Errorf("import service is required")
	}
	if j.dataType == "" {
		return fmt.Errorf("data type is required")
	}
	switch j.status {
	case JobStatusCreated, JobStatusInProgress, JobStatusComplete, JobStatusFailed:
	default:
		return fmt.Errorf("unknown job status: %s", j.status)
	}
	return nil
}

// Restore rebuilds a TransferJob from persisted fields. Used by repositories
// when scanning rows; not part of the public construction path.
func Restore(
	id string,
	sequence int,
	exportService, importService, dataType, status string,
	pagesWalked, branchesFailed int,
	errorMessage string,
	startedAt, completedAt *time.Time,
	createdAt, updatedAt time.Time,
	deletedAt *time.Time,
) *TransferJob {
	return &TransferJob{
		id:             id,
		sequence:       sequence,
		exportService:  exportService,
		importService:  importService,
		dataType:       dataType,
		status:         status,
		pagesWalked:    pagesWalked,
		branchesFailed: branchesFailed,
		errorMessage:   errorMessage,
		startedAt:      startedAt,
		completedAt:    completedAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		deletedAt:      deletedAt,
	}
}
