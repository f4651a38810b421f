package transfer

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ExportPage Phase = iota
	RetryExport
	ImportPage
	ChildFound
	BranchFailed
	WalkDone
)

func (p Phase) String() string {
	switch p {
	case ExportPage:
		return "export_page"
	case RetryExport:
		return "retry_export"
	case ImportPage:
		return "import_page"
	case ChildFound:
		return "child_found"
	case BranchFailed:
		return "branch_failed"
	case WalkDone:
		return "walk_done"
	default:
		return ""
	}
}

func describeRequest(req ExportRequest) string {
	switch {
	case req.Resource == nil && req.Token == "":
		return "root"
	case req.Resource == nil:
		return "root (continued)"
	case req.Token == "":
		return fmt.Sprintf("%s %s", req.Resource.Type, req.Resource.Name)
	default:
		return fmt.Sprintf("%s %s (continued)", req.Resource.Type, req.Resource.Name)
	}
}

func exportPageUpdate(page int, req ExportRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPage,
		Step:    page,
		Message: fmt.Sprintf("Exporting %s...", describeRequest(req)),
	}
}

func retryExportUpdate(page, attempt int, req ExportRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RetryExport,
		Step:    page,
		Message: fmt.Sprintf("Retrying %s (attempt %d)...", describeRequest(req), attempt),
	}
}

func importPageUpdate(page int, req ExportRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportPage,
		Step:    page,
		Message: fmt.Sprintf("Importing %s...", describeRequest(req)),
	}
}

func childFoundUpdate(page int, child Resource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ChildFound,
		Step:    page,
		Message: fmt.Sprintf("Discovered %s: %s", child.Type, child.Name),
		Data:    child,
	}
}

func branchFailedUpdate(page int, failure BranchFailure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BranchFailed,
		Step:    page,
		Message: fmt.Sprintf("✗ %s: %v", describeRequest(failure.Request), failure.Err),
		Data:    failure,
	}
}

func walkDoneUpdate(result *CopyResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WalkDone,
		Step:    result.Pages,
		Total:   result.Pages,
		Message: fmt.Sprintf("Walk complete: %d pages, %d failed branches", result.Pages, len(result.BranchFailures)),
		Data:    result,
	}
}
