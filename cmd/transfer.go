package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/portage/internal/formatter"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/tasks"
	"github.com/desertthunder/portage/internal/transfer"
	"github.com/urfave/cli/v3"
)

// TransferCreate persists a new transfer job after checking that the
// requested service pair is registered for the data type.
func (r *Runner) TransferCreate(ctx context.Context, cmd *cli.Command) error {
	from := cmd.String("from")
	to := cmd.String("to")
	dataType := cmd.String("type")
	useJSON := cmd.Bool("json")

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.registry.Exporter(from, dataType); err != nil {
		return fmt.Errorf("%w: no %s exporter for %s", shared.ErrInvalidArgument, dataType, from)
	}
	if _, err := store.registry.Importer(to, dataType); err != nil {
		return fmt.Errorf("%w: no %s importer for %s", shared.ErrInvalidArgument, dataType, to)
	}

	job := models.NewTransferJob(0, from, to, dataType)
	if err := store.jobs.Create(job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("transfer job created", "id", job.ID(), "from", from, "to", to)

	if useJSON {
		data, err := formatter.ToJobJSON(job)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlain("✓ Transfer job created\n")
	r.writePlain("  ID: %s\n", job.ID())
	r.writePlain("  Route: %s → %s (%s)\n\n", from, to, dataType)
	r.writePlain("Run it with: portage transfer run %s\n", job.ID())

	return nil
}

// TransferList lists persisted jobs, optionally filtered by status or data type.
func (r *Runner) TransferList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}
	if dataType := cmd.String("type"); dataType != "" {
		criteria["data_type"] = dataType
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.jobs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if useJSON {
		rows := make([]map[string]any, 0, len(jobs))
		for _, job := range jobs {
			data, err := formatter.ToJobJSON(job)
			if err != nil {
				return err
			}
			row := map[string]any{}
			if err := json.Unmarshal(data, &row); err != nil {
				return fmt.Errorf("failed to decode job: %w", err)
			}
			rows = append(rows, row)
		}
		return r.writeJSON(rows, true)
	}

	if len(jobs) == 0 {
		return r.writePlain("No transfer jobs found.\n")
	}

	r.writePlain("Found %d transfer jobs:\n\n", len(jobs))
	for i, job := range jobs {
		r.writePlain("%d. %s → %s (%s)\n", i+1, job.ExportService(), job.ImportService(), job.DataType())
		r.writePlain("   ID: %s\n", job.ID())
		r.writePlain("   Status: %s\n", job.Status())
		if job.PagesWalked() > 0 || job.BranchesFailed() > 0 {
			r.writePlain("   Pages: %d, failed branches: %d\n", job.PagesWalked(), job.BranchesFailed())
		}
		if job.ErrorMessage() != "" {
			r.writePlain("   Error: %s\n", job.ErrorMessage())
		}
		r.writePlain("\n")
	}

	return nil
}

// TransferRun executes a job synchronously, streaming walk progress to the terminal.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("id")
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.jobs.Get(jobID)
	if err != nil {
		return err
	}

	exportAuth, err := tasks.AuthForService(r.config, job.ExportService())
	if err != nil {
		return err
	}
	importAuth, err := tasks.AuthForService(r.config, job.ImportService())
	if err != nil {
		return err
	}

	r.logger.Info("starting transfer", "id", jobID, "from", job.ExportService(), "to", job.ImportService())
	r.writePlain("Starting transfer...\n")
	r.writePlain("From: %s\n", job.ExportService())
	r.writePlain("To: %s (%s)\n\n", job.ImportService(), job.DataType())

	progressCh := make(chan transfer.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case transfer.ExportPage:
				r.writePlain("📥 %s\n", update.Message)
			case transfer.RetryExport:
				r.writePlain("   ↻ %s\n", update.Message)
			case transfer.ImportPage:
				r.writePlain("📤 %s\n", update.Message)
			case transfer.ChildFound:
				r.writePlain("   + %s\n", update.Message)
			case transfer.BranchFailed:
				r.writePlain("   ✗ %s\n", update.Message)
			}
		}
	}()

	result, runErr := store.engine.Run(ctx, jobID, exportAuth, importAuth, progressCh)
	close(progressCh)
	<-done

	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	r.writePlain("Pages walked: %d\n", result.Pages)
	r.writePlain("Failed branches: %d\n", len(result.BranchFailures))

	if result.Failed() {
		r.writePlain("\nFailed branches:\n")
		for i, failure := range result.BranchFailures {
			r.writePlain("  %d. [%s] %v\n", i+1, failure.Stage, failure.Err)
		}
		r.writePlain("\nWrite a report with: portage transfer report %s\n", jobID)
	}

	return nil
}

// TransferReport writes a Markdown report (plus failures CSV) for a job.
func (r *Runner) TransferReport(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("id")
	outputBase := cmd.String("output")

	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.jobs.Get(jobID)
	if err != nil {
		return err
	}

	result, err := formatter.WriteReport(job, nil, outputBase)
	if err != nil {
		return err
	}

	r.logger.Info("report written", "id", jobID, "file", result.ReportFile)
	r.writePlain("✓ Report written to %s\n", result.ReportFile)
	if result.FailuresFile != "" {
		r.writePlain("✓ Failures written to %s\n", result.FailuresFile)
	}

	return nil
}

// TransferDelete soft deletes a job.
func (r *Runner) TransferDelete(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("id")
	if jobID == "" {
		return fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.jobs.Delete(jobID); err != nil {
		return err
	}

	r.logger.Info("transfer job deleted", "id", jobID)
	return r.writePlain("✓ Transfer job %s deleted\n", jobID)
}

// Services lists registered exporters and importers per data type.
func (r *Runner) Services(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	listings := []any{}
	for _, dataType := range []string{models.DataTypePhotos, models.DataTypeCalendar} {
		listings = append(listings, store.registry.Services(dataType))
	}

	if useJSON {
		return r.writeJSON(listings, true)
	}

	for _, dataType := range []string{models.DataTypePhotos, models.DataTypeCalendar} {
		listing := store.registry.Services(dataType)
		r.writePlain("%s:\n", listing.DataType)
		r.writePlain("  Exporters: %v\n", listing.Exporters)
		r.writePlain("  Importers: %v\n\n", listing.Importers)
	}

	return nil
}
