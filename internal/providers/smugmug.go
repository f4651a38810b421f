// SmugMug photo exporter.
//
// SmugMug API response types based on https://api.smugmug.com/api/v2/doc
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	smugMugDefaultBaseURL = "https://api.smugmug.com/api/v2"
	smugMugPageSize       = 50
)

type smugMugPages struct {
	NextPage string `json:"NextPage"`
	Total    int    `json:"Total"`
}

type smugMugAlbum struct {
	AlbumKey    string `json:"AlbumKey"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

type smugMugAlbumsResponse struct {
	Response struct {
		Album []smugMugAlbum `json:"Album"`
		Pages smugMugPages   `json:"Pages"`
	} `json:"Response"`
}

type smugMugImage struct {
	ImageKey    string `json:"ImageKey"`
	Title       string `json:"Title"`
	FileName    string `json:"FileName"`
	Format      string `json:"Format"`
	ArchivedURI string `json:"ArchivedUri"`
}

type smugMugImagesResponse struct {
	Response struct {
		AlbumImage []smugMugImage `json:"AlbumImage"`
		Pages      smugMugPages   `json:"Pages"`
	} `json:"Response"`
}

// SmugMugExporter implements [transfer.Exporter] for SmugMug photo
// libraries. The walk starts with the authenticated user's album
// listing; each album becomes a child resource whose pages carry the
// album's photos.
type SmugMugExporter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSmugMugExporter creates an exporter against the given base URL
// (empty for the public API).
func NewSmugMugExporter(baseURL string, logger *log.Logger) *SmugMugExporter {
	if baseURL == "" {
		baseURL = smugMugDefaultBaseURL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SmugMugExporter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		logger:  logger,
	}
}

// Export fetches one page. A nil resource means the album listing; an
// album resource means that album's photos. The page token is the
// next-page URI SmugMug returned for the previous page, empty for the
// first page of either level.
func (e *SmugMugExporter) Export(ctx context.Context, jobID string, auth transfer.AuthData, req transfer.ExportRequest) (*transfer.ExportResult, error) {
	if req.Resource == nil {
		return e.exportAlbumListing(ctx, auth, req.Token)
	}

	if req.Resource.Type != resourceTypeAlbum {
		return nil, fmt.Errorf("%w: smugmug cannot export resource type %q", shared.ErrInvalidInput, req.Resource.Type)
	}
	return e.exportAlbumPhotos(ctx, auth, req.Resource, req.Token)
}

func (e *SmugMugExporter) exportAlbumListing(ctx context.Context, auth transfer.AuthData, token transfer.PageToken) (*transfer.ExportResult, error) {
	path := string(token)
	if path == "" {
		path = fmt.Sprintf("/user/!albums?count=%d", smugMugPageSize)
	}

	var resp smugMugAlbumsResponse
	if err := e.doRequest(ctx, auth, path, &resp); err != nil {
		return nil, err
	}

	payload := &models.PhotosPayload{}
	children := make([]transfer.Resource, 0, len(resp.Response.Album))
	for _, album := range resp.Response.Album {
		payload.Albums = append(payload.Albums, models.PhotoAlbum{
			ID:          album.AlbumKey,
			Name:        album.Name,
			Description: album.Description,
		})
		children = append(children, transfer.Resource{
			Type: resourceTypeAlbum,
			ID:   album.AlbumKey,
			Name: album.Name,
		})
	}

	return &transfer.ExportResult{
		Data:         payload,
		Continuation: transfer.NewContinuationData(transfer.PageToken(resp.Response.Pages.NextPage), children...),
	}, nil
}

func (e *SmugMugExporter) exportAlbumPhotos(ctx context.Context, auth transfer.AuthData, res *transfer.Resource, token transfer.PageToken) (*transfer.ExportResult, error) {
	path := string(token)
	if path == "" {
		path = fmt.Sprintf("/album/%s!images?count=%d", res.ID, smugMugPageSize)
	}

	var resp smugMugImagesResponse
	if err := e.doRequest(ctx, auth, path, &resp); err != nil {
		return nil, err
	}

	payload := &models.PhotosPayload{}
	for _, image := range resp.Response.AlbumImage {
		title := image.Title
		if title == "" {
			title = image.FileName
		}
		payload.Photos = append(payload.Photos, models.Photo{
			ID:       image.ImageKey,
			Title:    title,
			FetchURL: image.ArchivedURI,
			MimeType: mimeFromFormat(image.Format),
			AlbumID:  res.ID,
		})
	}

	return &transfer.ExportResult{
		Data:         payload,
		Continuation: transfer.NewContinuationData(transfer.PageToken(resp.Response.Pages.NextPage)),
	}, nil
}

// doRequest performs a rate-limited, authenticated GET against the API
// and decodes the JSON response into result.
func (e *SmugMugExporter) doRequest(ctx context.Context, auth transfer.AuthData, path string, result any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client(ctx, auth).Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: smugmug status %d: %s", shared.ErrAPIRequest, resp.StatusCode, readErrorBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (e *SmugMugExporter) client(ctx context.Context, auth transfer.AuthData) *http.Client {
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	})
	return oauth2.NewClient(ctx, source)
}

func mimeFromFormat(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

// readErrorBody reads a bounded prefix of an error response so upstream
// failure messages survive into the retry classifier.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(body) == 0 {
		return "(no body)"
	}
	return strings.TrimSpace(string(body))
}
