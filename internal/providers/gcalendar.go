// Google Calendar exporter.
//
// Calendar API response types based on https://developers.google.com/calendar/api/v3/reference
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

const (
	gcalDefaultBaseURL = "https://www.googleapis.com/calendar/v3"
	gcalPageSize       = 50
)

type gcalCalendarEntry struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type gcalCalendarList struct {
	Items         []gcalCalendarEntry `json:"items"`
	NextPageToken string              `json:"nextPageToken"`
}

type gcalEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

func (t gcalEventTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

type gcalEvent struct {
	ID          string        `json:"id"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Start       gcalEventTime `json:"start"`
	End         gcalEventTime `json:"end"`
}

type gcalEventList struct {
	Items         []gcalEvent `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

// GoogleCalendarExporter implements [transfer.Exporter] for Google
// Calendar. The walk starts with the user's calendar list; each calendar
// becomes a child resource whose pages carry its events.
type GoogleCalendarExporter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewGoogleCalendarExporter creates an exporter against the given base
// URL (empty for the public API).
func NewGoogleCalendarExporter(baseURL string, logger *log.Logger) *GoogleCalendarExporter {
	if baseURL == "" {
		baseURL = gcalDefaultBaseURL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &GoogleCalendarExporter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		logger:  logger,
	}
}

// Export fetches one page. A nil resource means the calendar list; a
// calendar resource means that calendar's events. The page token is the
// opaque nextPageToken from the previous page.
func (e *GoogleCalendarExporter) Export(ctx context.Context, jobID string, auth transfer.AuthData, req transfer.ExportRequest) (*transfer.ExportResult, error) {
	if req.Resource == nil {
		return e.exportCalendarList(ctx, auth, req.Token)
	}

	if req.Resource.Type != resourceTypeCalendar {
		return nil, fmt.Errorf("%w: calendar exporter cannot export resource type %q", shared.ErrInvalidInput, req.Resource.Type)
	}
	return e.exportEvents(ctx, auth, req.Resource, req.Token)
}

func (e *GoogleCalendarExporter) exportCalendarList(ctx context.Context, auth transfer.AuthData, token transfer.PageToken) (*transfer.ExportResult, error) {
	query := url.Values{}
	query.Set("maxResults", fmt.Sprint(gcalPageSize))
	if token != "" {
		query.Set("pageToken", string(token))
	}

	var resp gcalCalendarList
	if err := e.doRequest(ctx, auth, "/users/me/calendarList?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	payload := &models.CalendarPayload{}
	children := make([]transfer.Resource, 0, len(resp.Items))
	for _, entry := range resp.Items {
		payload.Calendars = append(payload.Calendars, models.Calendar{
			ID:          entry.ID,
			Summary:     entry.Summary,
			Description: entry.Description,
		})
		children = append(children, transfer.Resource{
			Type: resourceTypeCalendar,
			ID:   entry.ID,
			Name: entry.Summary,
		})
	}

	return &transfer.ExportResult{
		Data:         payload,
		Continuation: transfer.NewContinuationData(transfer.PageToken(resp.NextPageToken), children...),
	}, nil
}

func (e *GoogleCalendarExporter) exportEvents(ctx context.Context, auth transfer.AuthData, res *transfer.Resource, token transfer.PageToken) (*transfer.ExportResult, error) {
	query := url.Values{}
	query.Set("maxResults", fmt.Sprint(gcalPageSize))
	if token != "" {
		query.Set("pageToken", string(token))
	}

	path := fmt.Sprintf("/calendars/%s/events?%s", url.PathEscape(res.ID), query.Encode())

	var resp gcalEventList
	if err := e.doRequest(ctx, auth, path, &resp); err != nil {
		return nil, err
	}

	payload := &models.CalendarPayload{}
	for _, event := range resp.Items {
		payload.Events = append(payload.Events, models.CalendarEvent{
			ID:         event.ID,
			CalendarID: res.ID,
			Title:      event.Summary,
			Notes:      event.Description,
			Location:   event.Location,
			Start:      event.Start.value(),
			End:        event.End.value(),
		})
	}

	return &transfer.ExportResult{
		Data:         payload,
		Continuation: transfer.NewContinuationData(transfer.PageToken(resp.NextPageToken)),
	}, nil
}

func (e *GoogleCalendarExporter) doRequest(ctx context.Context, auth transfer.AuthData, path string, result any) error {
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
		return fmt.Errorf("%w: calendar status %d: %s", shared.ErrAPIRequest, resp.StatusCode, readErrorBody(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (e *GoogleCalendarExporter) client(ctx context.Context, auth transfer.AuthData) *http.Client {
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	})
	return oauth2.NewClient(ctx, source)
}
