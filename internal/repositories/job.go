package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
)

// JobRepository implements models.Repository[*models.TransferJob].
//
// Handles transfer job CRUD operations with soft delete support and
// status-based queries.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new transfer job into the database with generated ID and sequence
func (r *JobRepository) Create(job *models.TransferJob) error {
	sequence, err := NextSequence(r.db, "jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO jobs (id, sequence, export_service, import_service, data_type, status, pages_walked, branches_failed, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.ExportService(),
		job.ImportService(),
		job.DataType(),
		job.Status(),
		job.PagesWalked(),
		job.BranchesFailed(),
		job.ErrorMessage(),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *JobRepository) Get(id string) (*models.TransferJob, error) {
	query := `
		SELECT id, sequence, export_service, import_service, data_type, status, pages_walked, branches_failed, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM jobs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update persists the mutable lifecycle fields of an existing job
func (r *JobRepository) Update(job *models.TransferJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE jobs
		SET status = ?, pages_walked = ?, branches_failed = ?, error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		job.Status(),
		job.PagesWalked(),
		job.BranchesFailed(),
		job.ErrorMessage(),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID())
	}

	return nil
}

// Delete soft-deletes a job by ID
func (r *JobRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE jobs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}

	return nil
}

// List retrieves all jobs matching the given criteria, excluding soft-deleted jobs
func (r *JobRepository) List(criteria map[string]any) ([]*models.TransferJob, error) {
	query := `
		SELECT id, sequence, export_service, import_service, data_type, status, pages_walked, branches_failed, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM jobs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if dataType, ok := criteria["data_type"].(string); ok && dataType != "" {
		query += " AND data_type = ?"
		args = append(args, dataType)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.TransferJob
	for rows.Next() {
		job, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*models.TransferJob, error) {
	var (
		id             string
		sequence       int
		exportService  string
		importService  string
		dataType       string
		status         string
		pagesWalked    int
		branchesFailed int
		errorMessage   string
		startedAt      sql.NullTime
		completedAt    sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &exportService, &importService, &dataType, &status,
		&pagesWalked, &branchesFailed, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	job := models.Restore(
		id, sequence,
		exportService, importService, dataType, status,
		pagesWalked, branchesFailed,
		errorMessage,
		nullableTime(startedAt), nullableTime(completedAt),
		createdAt, updatedAt,
		nullableTime(deletedAt),
	)
	return job, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// scanOne scans a single row into a [models.TransferJob]
func (r *JobRepository) scanOne(row *sql.Row) (*models.TransferJob, error) {
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return job, nil
}

// scanRow scans a row from [sql.Rows] into a [models.TransferJob]
func (r *JobRepository) scanRow(rows *sql.Rows) (*models.TransferJob, error) {
	job, err := scanJob(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return job, nil
}
