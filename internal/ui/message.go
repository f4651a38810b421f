package ui

import (
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/transfer"
)

// jobsFetchedMsg carries the job listing loaded at startup.
type jobsFetchedMsg struct {
	jobs []*models.TransferJob
	err  error
}

// progressUpdateMsg wraps one walk progress event.
type progressUpdateMsg transfer.ProgressUpdate

// transferCompleteMsg carries the finished walk's outcome.
type transferCompleteMsg struct {
	result *transfer.CopyResult
	err    error
}
