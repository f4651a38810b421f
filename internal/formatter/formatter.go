// package formatter renders transfer job reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
)

// requestLabel renders the walk position a branch failure happened at.
func requestLabel(req transfer.ExportRequest) string {
	resource := "root listing"
	if req.Resource != nil {
		resource = fmt.Sprintf("%s %s", req.Resource.Type, req.Resource.ID)
		if req.Resource.Name != "" {
			resource += fmt.Sprintf(" (%s)", req.Resource.Name)
		}
	}
	if req.Token != "" {
		return fmt.Sprintf("%s, page %s", resource, req.Token)
	}
	return resource
}

// FailuresToCSV converts branch failures to CSV with columns: Stage, Location, Attempts, Error
func FailuresToCSV(failures []transfer.BranchFailure) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Stage", "Location", "Attempts", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, failure := range failures {
		record := []string{
			failure.Stage,
			requestLabel(failure.Request),
			strconv.Itoa(failure.Attempts),
			failure.Err.Error(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a job and its walk outcome to Markdown.
//
// The result may be nil for jobs loaded from storage; the persisted
// counters are used instead and the failure list is omitted.
func ReportToMarkdown(job *models.TransferJob, result *transfer.CopyResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Transfer %s\n\n", job.ID()))
	buf.WriteString(fmt.Sprintf("**From**: %s\n", job.ExportService()))
	buf.WriteString(fmt.Sprintf("**To**: %s\n", job.ImportService()))
	buf.WriteString(fmt.Sprintf("**Data**: %s\n", job.DataType()))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", job.Status()))

	pages, failed := job.PagesWalked(), job.BranchesFailed()
	if result != nil {
		pages, failed = result.Pages, len(result.BranchFailures)
	}
	buf.WriteString(fmt.Sprintf("**Pages walked**: %d\n", pages))
	buf.WriteString(fmt.Sprintf("**Failed branches**: %d\n", failed))

	if job.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n", job.ErrorMessage()))
	}

	if result != nil && result.Failed() {
		buf.WriteString("\n## Failed Branches\n\n")
		for i, failure := range result.BranchFailures {
			buf.WriteString(fmt.Sprintf("%d. [%s] %s after %d attempt(s): %v\n",
				i+1, failure.Stage, requestLabel(failure.Request), failure.Attempts, failure.Err))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText renders a job and its walk outcome to plain text.
func ReportToText(job *models.TransferJob, result *transfer.CopyResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Transfer: %s -> %s (%s)\n", job.ExportService(), job.ImportService(), job.DataType()))
	buf.WriteString(fmt.Sprintf("Status: %s\n", job.Status()))

	pages, failed := job.PagesWalked(), job.BranchesFailed()
	if result != nil {
		pages, failed = result.Pages, len(result.BranchFailures)
	}
	buf.WriteString(fmt.Sprintf("Pages walked: %d\n", pages))
	buf.WriteString(fmt.Sprintf("Failed branches: %d\n", failed))

	if job.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", job.ErrorMessage()))
	}

	if result != nil {
		for i, failure := range result.BranchFailures {
			buf.WriteString(fmt.Sprintf("%d. [%s] %s: %v\n", i+1, failure.Stage, requestLabel(failure.Request), failure.Err))
		}
	}

	return buf.Bytes(), nil
}

// ToJobJSON generates an indented JSON representation of a job record.
func ToJobJSON(job *models.TransferJob) ([]byte, error) {
	return shared.MarshalJSON(map[string]any{
		"id":              job.ID(),
		"export_service":  job.ExportService(),
		"import_service":  job.ImportService(),
		"data_type":       job.DataType(),
		"status":          job.Status(),
		"pages_walked":    job.PagesWalked(),
		"branches_failed": job.BranchesFailed(),
		"error_message":   job.ErrorMessage(),
		"created_at":      job.CreatedAt(),
	}, true)
}

// ReportResult contains the paths of files created by WriteReport
type ReportResult struct {
	ReportFile   string
	FailuresFile string
}

// WriteReport writes a Markdown report for the job, plus a failures CSV
// when any branch failed.
//
// Defaults to the job ID as the base filename & creates {base}.md and
// optionally {base}_failures.csv
func WriteReport(job *models.TransferJob, result *transfer.CopyResult, baseFilepath string) (*ReportResult, error) {
	if baseFilepath == "" {
		baseFilepath = job.ID()
	}

	mdData, err := ReportToMarkdown(job, result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	reportFile := baseFilepath + ".md"
	if err := os.WriteFile(reportFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	out := &ReportResult{ReportFile: reportFile}

	if result != nil && result.Failed() {
		csvData, err := FailuresToCSV(result.BranchFailures)
		if err != nil {
			return nil, fmt.Errorf("failed to generate failures CSV: %w", err)
		}

		failuresFile := baseFilepath + "_failures.csv"
		if err := os.WriteFile(failuresFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write failures file: %w", err)
		}
		out.FailuresFile = failuresFile
	}

	return out, nil
}
