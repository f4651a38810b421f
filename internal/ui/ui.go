package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/tasks"
	"github.com/desertthunder/portage/internal/transfer"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JobListView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// JobLister is the slice of the repository layer the TUI needs.
type JobLister interface {
	List(criteria map[string]any) ([]*models.TransferJob, error)
}

// Runner executes a persisted job. Implemented by tasks.Engine.
type Runner interface {
	Run(ctx context.Context, jobID string, exportAuth, importAuth transfer.AuthData, progress chan<- transfer.ProgressUpdate) (*transfer.CopyResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	jobs         JobLister
	runner       Runner
	cfg          *shared.Config
	width        int
	height       int
	jobList      list.Model
	selected     *models.TransferJob
	progressChan chan transfer.ProgressUpdate
	progress     transfer.ProgressUpdate
	failures     int
	result       *transfer.CopyResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, jobs JobLister, runner Runner, cfg *shared.Config) *Model {
	return &Model{
		ctx:    ctx,
		view:   JobListView,
		jobs:   jobs,
		runner: runner,
		cfg:    cfg,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the persisted jobs.
func (m *Model) Init() tea.Cmd {
	return m.fetchJobs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.jobList.Width() == 0 {
			m.jobList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case JobListView:
			return m.handleJobListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case jobsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.jobs))
		for i, job := range msg.jobs {
			items[i] = jobItem{job: job}
		}
		m.jobList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.jobList.Title = "Transfer Jobs"
		m.jobList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = transfer.ProgressUpdate(msg)
		if m.progress.Phase == transfer.BranchFailed {
			m.failures++
		}
		return m, m.waitForProgress()

	case transferCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case JobListView:
		return m.renderJobList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleJobListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.jobList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(jobItem); ok {
				m.selected = item.job
				m.view = ConfirmView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = JobListView
		m.selected = nil
		return m, nil
	case "y":
		m.view = TransferView
		m.failures = 0
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = JobListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, m.fetchJobs()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == JobListView {
		m.jobList, cmd = m.jobList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchJobs() tea.Cmd {
	return func() tea.Msg {
		jobs, err := m.jobs.List(nil)
		return jobsFetchedMsg{jobs: jobs, err: err}
	}
}

func (m *Model) startTransfer() tea.Cmd {
	exportAuth, err := tasks.AuthForService(m.cfg, m.selected.ExportService())
	if err == nil {
		var importAuth transfer.AuthData
		importAuth, err = tasks.AuthForService(m.cfg, m.selected.ImportService())
		if err == nil {
			progress := make(chan transfer.ProgressUpdate, 50)
			m.progressChan = progress
			jobID := m.selected.ID()

			go func() {
				result, runErr := m.runner.Run(m.ctx, jobID, exportAuth, importAuth, progress)
				m.result = result
				m.err = runErr
				close(progress)
			}()

			return m.waitForProgress()
		}
	}

	return func() tea.Msg {
		return transferCompleteMsg{err: err}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return transferCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-progress
		if !ok {
			return transferCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderJobList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.jobList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Run transfer %s → %s?",
		m.selected.ExportService(), m.selected.ImportService()))
	info := fmt.Sprintf("\nData: %s\nStatus: %s\n", m.selected.DataType(), m.selected.Status())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Running Transfer")

	var phase string
	switch m.progress.Phase {
	case transfer.ExportPage:
		phase = fmt.Sprintf("Exporting page %d...", m.progress.Step)
	case transfer.RetryExport:
		phase = fmt.Sprintf("Retrying page %d...", m.progress.Step)
	case transfer.ImportPage:
		phase = fmt.Sprintf("Importing page %d...", m.progress.Step)
	case transfer.ChildFound:
		phase = "Discovering resources..."
	case transfer.BranchFailed:
		phase = styles.warn.Render("Branch failed, continuing...")
	default:
		phase = "Working..."
	}

	status := ""
	if m.failures > 0 {
		status = styles.warn.Render(fmt.Sprintf("\n%d failed branches so far", m.failures))
	}

	return fmt.Sprintf("%s\n\n%s\n%s%s", title, phase, m.progress.Message, status)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Transfer Complete")
	info := fmt.Sprintf("\nPages walked: %d\nFailed branches: %d", m.result.Pages, len(m.result.BranchFailures))

	var failed string
	if m.result.Failed() {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render("Failed branches:"))
		for _, failure := range m.result.BranchFailures {
			failed += fmt.Sprintf("\n  • [%s] %v", failure.Stage, failure.Err)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
