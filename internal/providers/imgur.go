// Imgur photo importer.
//
// Imgur API request shapes based on https://apidocs.imgur.com/
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const imgurDefaultBaseURL = "https://api.imgur.com/3"

type imgurResponse struct {
	Data struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImgurImporter implements [transfer.Importer] for Imgur. Album creation
// is idempotent through the job's data cache and maps source album IDs
// to the created Imgur album IDs; photo uploads reference that mapping.
//
// A failed album creation aborts the page (the photos on it would land
// unfiled), while a failed photo upload is logged and skipped so one bad
// image never sinks its whole album.
type ImgurImporter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewImgurImporter creates an importer against the given base URL
// (empty for the public API).
func NewImgurImporter(baseURL string, logger *log.Logger) *ImgurImporter {
	if baseURL == "" {
		baseURL = imgurDefaultBaseURL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ImgurImporter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		logger:  logger,
	}
}

func albumCacheKey(sourceID string) string { return "album/" + sourceID }
func photoCacheKey(sourceID string) string { return "photo/" + sourceID }

// Import writes one page of photos. Albums are created first (once per
// source album for the whole job, via the cache), then photos upload
// into the album they belonged to at the source.
func (i *ImgurImporter) Import(ctx context.Context, jobID string, cache transfer.DataCache, auth transfer.AuthData, payload models.Payload) error {
	if payload == nil {
		return nil
	}

	photos, ok := payload.(*models.PhotosPayload)
	if !ok {
		return fmt.Errorf("%w: imgur cannot import %s payloads", shared.ErrInvalidInput, payload.DataType())
	}
	if photos.IsEmpty() {
		return nil
	}

	for _, album := range photos.Albums {
		_, err := cache.RunOnce(albumCacheKey(album.ID), func() (string, error) {
			return i.createAlbum(ctx, auth, album)
		})
		if err != nil {
			return fmt.Errorf("%w: creating album %q: %v", shared.ErrImportFailed, album.Name, err)
		}
	}

	for _, photo := range photos.Photos {
		destAlbum := ""
		if photo.AlbumID != "" {
			if id, ok := cache.Lookup(albumCacheKey(photo.AlbumID)); ok {
				destAlbum = id
			}
		}

		photo := photo
		_, err := cache.RunOnce(photoCacheKey(photo.ID), func() (string, error) {
			return i.uploadPhoto(ctx, auth, photo, destAlbum)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			i.logger.Warn("photo upload failed, skipping",
				"job_id", jobID, "photo_id", photo.ID, "error", err)
		}
	}

	return nil
}

func (i *ImgurImporter) createAlbum(ctx context.Context, auth transfer.AuthData, album models.PhotoAlbum) (string, error) {
	form := url.Values{}
	form.Set("title", album.Name)
	if album.Description != "" {
		form.Set("description", album.Description)
	}
	return i.doPost(ctx, auth, "/album", form)
}

func (i *ImgurImporter) uploadPhoto(ctx context.Context, auth transfer.AuthData, photo models.Photo, destAlbum string) (string, error) {
	form := url.Values{}
	form.Set("image", photo.FetchURL)
	form.Set("type", "url")
	if photo.Title != "" {
		form.Set("title", photo.Title)
	}
	if destAlbum != "" {
		form.Set("album", destAlbum)
	}
	return i.doPost(ctx, auth, "/image", form)
}

// doPost performs a rate-limited, authenticated form POST and returns
// the ID of the created artifact.
func (i *ImgurImporter) doPost(ctx context.Context, auth transfer.AuthData, path string, form url.Values) (string, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.client(ctx, auth).Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body imgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("%w: imgur status %d", shared.ErrAPIRequest, resp.StatusCode)
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !body.Success {
		msg := body.Data.Error
		if msg == "" {
			msg = "(no error detail)"
		}
		return "", fmt.Errorf("%w: imgur status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}

	return body.Data.ID, nil
}

func (i *ImgurImporter) client(ctx context.Context, auth transfer.AuthData) *http.Client {
	if i.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, i.httpClient)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	})
	return oauth2.NewClient(ctx, source)
}
