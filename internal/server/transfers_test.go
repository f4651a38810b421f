package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/providers"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
)

// stubJobRepo is an in-memory JobRepository for handler tests.
type stubJobRepo struct {
	jobs map[string]*models.TransferJob
	next int
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[string]*models.TransferJob)}
}

func (s *stubJobRepo) Create(job *models.TransferJob) error {
	s.next++
	job.SetID(shared.GenerateID())
	s.jobs[job.ID()] = job
	return nil
}

func (s *stubJobRepo) Get(id string) (*models.TransferJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, shared.ErrJobNotFound
	}
	return job, nil
}

func (s *stubJobRepo) List(criteria map[string]any) ([]*models.TransferJob, error) {
	var jobs []*models.TransferJob
	for _, job := range s.jobs {
		if status, ok := criteria["status"].(string); ok && job.Status() != status {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// stubRunner records the job IDs it was asked to run.
type stubRunner struct {
	ran chan string
}

func (s *stubRunner) Run(ctx context.Context, jobID string, exportAuth, importAuth transfer.AuthData, progress chan<- transfer.ProgressUpdate) (*transfer.CopyResult, error) {
	s.ran <- jobID
	return &transfer.CopyResult{Pages: 1}, nil
}

type nopExporter struct{}

func (nopExporter) Export(ctx context.Context, jobID string, auth transfer.AuthData, req transfer.ExportRequest) (*transfer.ExportResult, error) {
	return nil, nil
}

type nopImporter struct{}

func (nopImporter) Import(ctx context.Context, jobID string, cache transfer.DataCache, auth transfer.AuthData, payload models.Payload) error {
	return nil
}

func setupHandler(t *testing.T) (*stubJobRepo, *stubRunner, http.Handler) {
	t.Helper()

	registry := providers.NewRegistry()
	registry.RegisterExporter(providers.ServiceSmugMug, models.DataTypePhotos, nopExporter{})
	registry.RegisterImporter(providers.ServiceImgur, models.DataTypePhotos, nopImporter{})

	cfg := shared.DefaultConfig()
	cfg.Credentials.SmugMug.AccessToken = "sm-token"
	cfg.Credentials.Imgur.AccessToken = "im-token"

	repo := newStubJobRepo()
	runner := &stubRunner{ran: make(chan string, 1)}

	router := NewBasicRouter()
	router.Handler(NewTransferHandler(repo, runner, registry, cfg, nil))
	return repo, runner, router
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestTransferHandler(t *testing.T) {
	t.Run("Create Job", func(t *testing.T) {
		repo, _, handler := setupHandler(t)

		w := postJSON(t, handler, "/transfers",
			`{"export_service": "smugmug", "import_service": "imgur", "data_type": "photos"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp jobResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ID == "" || resp.Status != models.JobStatusCreated {
			t.Errorf("unexpected response: %+v", resp)
		}
		if _, err := repo.Get(resp.ID); err != nil {
			t.Errorf("job should be persisted: %v", err)
		}
	})

	t.Run("Create Rejects Unknown Pair", func(t *testing.T) {
		_, _, handler := setupHandler(t)

		w := postJSON(t, handler, "/transfers",
			`{"export_service": "flickr", "import_service": "imgur", "data_type": "photos"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown exporter, got %d", w.Code)
		}

		w = postJSON(t, handler, "/transfers",
			`{"export_service": "smugmug", "import_service": "imgur", "data_type": "calendar"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unsupported data type, got %d", w.Code)
		}
	})

	t.Run("Create Requires All Fields", func(t *testing.T) {
		_, _, handler := setupHandler(t)

		w := postJSON(t, handler, "/transfers", `{"export_service": "smugmug"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing fields, got %d", w.Code)
		}
	})

	t.Run("Get Job", func(t *testing.T) {
		repo, _, handler := setupHandler(t)

		job := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
		repo.Create(job)

		w := getPath(t, handler, "/transfers/"+job.ID())
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp jobResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.ID != job.ID() {
			t.Errorf("expected job %s, got %s", job.ID(), resp.ID)
		}

		if w := getPath(t, handler, "/transfers/nonexistent"); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("Start Job", func(t *testing.T) {
		repo, runner, handler := setupHandler(t)

		job := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
		repo.Create(job)

		w := postJSON(t, handler, "/transfers/"+job.ID()+"/start", "")
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
		}

		select {
		case ranID := <-runner.ran:
			if ranID != job.ID() {
				t.Errorf("expected run of %s, got %s", job.ID(), ranID)
			}
		case <-time.After(time.Second):
			t.Fatal("runner was never invoked")
		}
	})

	t.Run("Start Conflicts For Running Jobs", func(t *testing.T) {
		repo, _, handler := setupHandler(t)

		job := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
		repo.Create(job)
		job.Start()

		w := postJSON(t, handler, "/transfers/"+job.ID()+"/start", "")
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
	})

	t.Run("Start Requires Credentials", func(t *testing.T) {
		registry := providers.NewRegistry()
		registry.RegisterExporter(providers.ServiceSmugMug, models.DataTypePhotos, nopExporter{})
		registry.RegisterImporter(providers.ServiceImgur, models.DataTypePhotos, nopImporter{})

		repo := newStubJobRepo()
		router := NewBasicRouter()
		// Default config carries no tokens.
		router.Handler(NewTransferHandler(repo, &stubRunner{ran: make(chan string, 1)}, registry, shared.DefaultConfig(), nil))

		job := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
		repo.Create(job)

		w := postJSON(t, router, "/transfers/"+job.ID()+"/start", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing credentials, got %d", w.Code)
		}
	})

	t.Run("List Jobs", func(t *testing.T) {
		repo, _, handler := setupHandler(t)

		first := models.NewTransferJob(1, "smugmug", "imgur", models.DataTypePhotos)
		second := models.NewTransferJob(2, "smugmug", "imgur", models.DataTypePhotos)
		repo.Create(first)
		repo.Create(second)
		second.Start()

		w := getPath(t, handler, "/transfers")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var all []jobResponse
		json.Unmarshal(w.Body.Bytes(), &all)
		if len(all) != 2 {
			t.Errorf("expected 2 jobs, got %d", len(all))
		}

		w = getPath(t, handler, "/transfers?status=in_progress")
		var running []jobResponse
		json.Unmarshal(w.Body.Bytes(), &running)
		if len(running) != 1 || running[0].ID != second.ID() {
			t.Errorf("unexpected running jobs: %+v", running)
		}
	})

	t.Run("List Services", func(t *testing.T) {
		_, _, handler := setupHandler(t)

		w := getPath(t, handler, "/services?data_type=photos")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var listings []providers.ServiceListing
		json.Unmarshal(w.Body.Bytes(), &listings)
		if len(listings) != 1 || len(listings[0].Exporters) != 1 || listings[0].Exporters[0] != "smugmug" {
			t.Errorf("unexpected listings: %+v", listings)
		}

		w = getPath(t, handler, "/services")
		listings = nil
		json.Unmarshal(w.Body.Bytes(), &listings)
		if len(listings) != 2 {
			t.Errorf("expected listings for both data types, got %d", len(listings))
		}
	})
}
