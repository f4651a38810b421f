package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/portage/internal/models"
	testhelp "github.com/desertthunder/portage/internal/testing"
	"github.com/desertthunder/portage/internal/transfer"
)

func sampleJob(t *testing.T) *models.TransferJob {
	t.Helper()
	job := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
	job.SetID("job-1")
	return job
}

func sampleResult() *transfer.CopyResult {
	return &transfer.CopyResult{
		Pages: 7,
		BranchFailures: []transfer.BranchFailure{
			{
				Request:  transfer.ExportRequest{Resource: &transfer.Resource{Type: "album", ID: "abc", Name: "Vacation"}},
				Stage:    "export",
				Attempts: 5,
				Err:      errors.New("rate limited"),
			},
			{
				Request:  transfer.ExportRequest{Token: "t3"},
				Stage:    "import",
				Attempts: 1,
				Err:      errors.New("quota exceeded"),
			},
		},
	}
}

func TestFailuresToCSV(t *testing.T) {
	data, err := FailuresToCSV(sampleResult().BranchFailures)
	if err != nil {
		t.Fatalf("failed to generate CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Stage,Location,Attempts,Error" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "export") || !strings.Contains(lines[1], "album abc (Vacation)") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "root listing") || !strings.Contains(lines[2], "page t3") {
		t.Errorf("unexpected second row: %s", lines[2])
	}
}

func TestReportToMarkdown(t *testing.T) {
	t.Run("With Result", func(t *testing.T) {
		job := sampleJob(t)
		job.Complete()

		data, err := ReportToMarkdown(job, sampleResult())
		if err != nil {
			t.Fatalf("failed to generate report: %v", err)
		}

		report := string(data)
		for _, want := range []string{
			"# Transfer job-1",
			"**From**: smugmug",
			"**To**: imgur",
			"**Pages walked**: 7",
			"**Failed branches**: 2",
			"## Failed Branches",
			"rate limited",
		} {
			if !strings.Contains(report, want) {
				t.Errorf("report missing %q:\n%s", want, report)
			}
		}
	})

	t.Run("Without Result Uses Persisted Counters", func(t *testing.T) {
		job := sampleJob(t)
		job.SetCounters(12, 3)
		job.Complete()

		data, err := ReportToMarkdown(job, nil)
		if err != nil {
			t.Fatalf("failed to generate report: %v", err)
		}

		report := string(data)
		if !strings.Contains(report, "**Pages walked**: 12") || !strings.Contains(report, "**Failed branches**: 3") {
			t.Errorf("expected persisted counters in report:\n%s", report)
		}
		if strings.Contains(report, "## Failed Branches") {
			t.Error("failure list should be omitted without a result")
		}
	})

	t.Run("Failed Job Shows Error", func(t *testing.T) {
		job := sampleJob(t)
		job.Fail("no importer for imgur")

		data, err := ReportToMarkdown(job, nil)
		if err != nil {
			t.Fatalf("failed to generate report: %v", err)
		}

		if !strings.Contains(string(data), "**Error**: no importer for imgur") {
			t.Errorf("expected error message in report:\n%s", data)
		}
	})
}

func TestReportToText(t *testing.T) {
	job := sampleJob(t)
	job.Complete()

	data, err := ReportToText(job, sampleResult())
	if err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	report := string(data)
	if !strings.Contains(report, "Transfer: smugmug -> imgur (photos)") {
		t.Errorf("unexpected header:\n%s", report)
	}
	if !strings.Contains(report, "1. [export] album abc (Vacation): rate limited") {
		t.Errorf("expected failure line:\n%s", report)
	}
}

func TestToJobJSON(t *testing.T) {
	job := sampleJob(t)

	data, err := ToJobJSON(job)
	if err != nil {
		t.Fatalf("failed to generate JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["id"] != "job-1" || decoded["status"] != models.JobStatusCreated {
		t.Errorf("unexpected JSON: %v", decoded)
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("With Failures", func(t *testing.T) {
		dir := t.TempDir()
		job := sampleJob(t)
		job.Complete()

		result, err := WriteReport(job, sampleResult(), filepath.Join(dir, "report"))
		if err != nil {
			t.Fatalf("failed to write report: %v", err)
		}

		testhelp.AssertFileExists(t, result.ReportFile)
		testhelp.AssertFileExists(t, result.FailuresFile)

		content := testhelp.MustReadFile(t, result.ReportFile)
		if !strings.Contains(content, "# Transfer job-1") {
			t.Errorf("unexpected report content:\n%s", content)
		}
	})

	t.Run("Clean Walk Skips Failures File", func(t *testing.T) {
		dir := t.TempDir()
		job := sampleJob(t)
		job.Complete()

		result, err := WriteReport(job, &transfer.CopyResult{Pages: 3}, filepath.Join(dir, "report"))
		if err != nil {
			t.Fatalf("failed to write report: %v", err)
		}

		if result.FailuresFile != "" {
			t.Errorf("expected no failures file, got %s", result.FailuresFile)
		}
	})
}
