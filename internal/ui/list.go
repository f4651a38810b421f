package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/portage/internal/models"
)

var _ list.Item = jobItem{}

// jobItem wraps [models.TransferJob] to implement [list.Item].
type jobItem struct {
	job *models.TransferJob
}

func (i jobItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.job.ExportService(), i.job.ImportService(), i.job.DataType())
}

func (i jobItem) Title() string {
	return fmt.Sprintf("%s → %s (%s)", i.job.ExportService(), i.job.ImportService(), i.job.DataType())
}

func (i jobItem) Description() string {
	desc := i.job.Status()
	if i.job.PagesWalked() > 0 {
		desc = fmt.Sprintf("%s • %d pages", desc, i.job.PagesWalked())
	}
	if i.job.BranchesFailed() > 0 {
		desc = fmt.Sprintf("%s • %d failed branches", desc, i.job.BranchesFailed())
	}
	return desc
}
