package models

// Data type tags carried by payloads and used as registry keys.
const (
	DataTypePhotos   = "photos"
	DataTypeCalendar = "calendar"
)

// PhotoAlbum represents an album from any photo service.
type PhotoAlbum struct {
	ID          string
	Name        string
	Description string
}

// Photo represents a single photo from any photo service.
type Photo struct {
	ID       string
	Title    string
	FetchURL string
	MimeType string
	AlbumID  string // source-side album the photo belongs to, empty for loose photos
}

// PhotosPayload carries the albums and photos exported on a single page.
type PhotosPayload struct {
	Albums []PhotoAlbum
	Photos []Photo
}

func (p *PhotosPayload) DataType() string { return DataTypePhotos }

// IsEmpty reports whether the payload carries nothing to import.
func (p *PhotosPayload) IsEmpty() bool {
	return p == nil || (len(p.Albums) == 0 && len(p.Photos) == 0)
}

// Calendar represents a calendar from any calendar service.
type Calendar struct {
	ID          string
	Summary     string
	Description string
}

// CalendarEvent represents a single event within a calendar.
type CalendarEvent struct {
	ID         string
	CalendarID string
	Title      string
	Notes      string
	Location   string
	Start      string // RFC 3339
	End        string // RFC 3339
}

// CalendarPayload carries the calendars and events exported on a single page.
type CalendarPayload struct {
	Calendars []Calendar
	Events    []CalendarEvent
}

func (c *CalendarPayload) DataType() string { return DataTypeCalendar }

// IsEmpty reports whether the payload carries nothing to import.
func (c *CalendarPayload) IsEmpty() bool {
	return c == nil || (len(c.Calendars) == 0 && len(c.Events) == 0)
}
