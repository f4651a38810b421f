package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/providers"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/tasks"
	"github.com/desertthunder/portage/internal/transfer"
)

// JobRepository is the slice of the repository layer the handler needs.
type JobRepository interface {
	Create(job *models.TransferJob) error
	Get(id string) (*models.TransferJob, error)
	List(criteria map[string]any) ([]*models.TransferJob, error)
}

// JobRunner executes a persisted job. Implemented by tasks.Engine.
type JobRunner interface {
	Run(ctx context.Context, jobID string, exportAuth, importAuth transfer.AuthData, progress chan<- transfer.ProgressUpdate) (*transfer.CopyResult, error)
}

// TransferHandler serves the transfer job REST API.
type TransferHandler struct {
	jobs     JobRepository
	runner   JobRunner
	registry *providers.Registry
	cfg      *shared.Config
	logger   *log.Logger
}

// NewTransferHandler creates a handler over the given collaborators.
func NewTransferHandler(jobs JobRepository, runner JobRunner, registry *providers.Registry, cfg *shared.Config, logger *log.Logger) *TransferHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TransferHandler{
		jobs:     jobs,
		runner:   runner,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *TransferHandler) Routes() []string {
	return []string{
		"POST /transfers",
		"GET /transfers",
		"GET /transfers/{id}",
		"POST /transfers/{id}/start",
		"GET /services",
	}
}

// ServeHTTP dispatches to the endpoint implementations.
func (h *TransferHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/transfers":
		h.createJob(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/transfers":
		h.listJobs(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/services":
		h.listServices(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/start"):
		h.startJob(w, r)
	case r.Method == http.MethodGet:
		h.getJob(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createJobRequest struct {
	ExportService string `json:"export_service"`
	ImportService string `json:"import_service"`
	DataType      string `json:"data_type"`
}

type jobResponse struct {
	ID             string     `json:"id"`
	ExportService  string     `json:"export_service"`
	ImportService  string     `json:"import_service"`
	DataType       string     `json:"data_type"`
	Status         string     `json:"status"`
	PagesWalked    int        `json:"pages_walked"`
	BranchesFailed int        `json:"branches_failed"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toJobResponse(job *models.TransferJob) jobResponse {
	return jobResponse{
		ID:             job.ID(),
		ExportService:  job.ExportService(),
		ImportService:  job.ImportService(),
		DataType:       job.DataType(),
		Status:         job.Status(),
		PagesWalked:    job.PagesWalked(),
		BranchesFailed: job.BranchesFailed(),
		ErrorMessage:   job.ErrorMessage(),
		StartedAt:      job.StartedAt(),
		CompletedAt:    job.CompletedAt(),
		CreatedAt:      job.CreatedAt(),
	}
}

func (h *TransferHandler) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ExportService == "" || req.ImportService == "" || req.DataType == "" {
		respondError(w, http.StatusBadRequest, "export_service, import_service and data_type are required")
		return
	}

	// Reject pairs no adapter can serve before persisting anything.
	if _, err := h.registry.Exporter(req.ExportService, req.DataType); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.registry.Importer(req.ImportService, req.DataType); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := models.NewTransferJob(0, req.ExportService, req.ImportService, req.DataType)
	if err := h.jobs.Create(job); err != nil {
		h.logger.Error("failed to create job", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, toJobResponse(job))
}

func (h *TransferHandler) startJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to load job", "job_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	switch job.Status() {
	case models.JobStatusCreated, models.JobStatusFailed:
	default:
		respondError(w, http.StatusConflict, "job is "+job.Status())
		return
	}

	exportAuth, err := tasks.AuthForService(h.cfg, job.ExportService())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	importAuth, err := tasks.AuthForService(h.cfg, job.ImportService())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The walk can outlive the request; run it detached and let the job
	// record carry the outcome.
	go func() {
		if _, err := h.runner.Run(context.Background(), id, exportAuth, importAuth, nil); err != nil {
			h.logger.Error("transfer run failed", "job_id", id, "error", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"id":      id,
		"message": "transfer started",
	})
}

func (h *TransferHandler) getJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to load job", "job_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	respondJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *TransferHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if status := r.URL.Query().Get("status"); status != "" {
		criteria["status"] = status
	}
	if dataType := r.URL.Query().Get("data_type"); dataType != "" {
		criteria["data_type"] = dataType
	}

	jobs, err := h.jobs.List(criteria)
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	responses := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, toJobResponse(job))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *TransferHandler) listServices(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("data_type")

	var listings []providers.ServiceListing
	if dataType != "" {
		listings = []providers.ServiceListing{h.registry.Services(dataType)}
	} else {
		for _, dt := range []string{models.DataTypePhotos, models.DataTypeCalendar} {
			listings = append(listings, h.registry.Services(dt))
		}
	}

	respondJSON(w, http.StatusOK, listings)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
