package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/transfer"
)

// Service name constants used as registry keys and in job records.
const (
	ServiceSmugMug        = "smugmug"
	ServiceImgur          = "imgur"
	ServiceGoogleCalendar = "google-calendar"
)

// Resource types pushed onto the walk by the exporters in this package.
const (
	resourceTypeAlbum    = "album"
	resourceTypeCalendar = "calendar"
)

// Registry resolves (service, data type) pairs to the adapter that
// handles them. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]transfer.Exporter
	importers map[string]transfer.Importer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		exporters: make(map[string]transfer.Exporter),
		importers: make(map[string]transfer.Importer),
	}
}

func registryKey(service, dataType string) string {
	return service + ":" + dataType
}

// RegisterExporter makes exp the exporter for the given service and data
// type, replacing any previous registration.
func (r *Registry) RegisterExporter(service, dataType string, exp transfer.Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[registryKey(service, dataType)] = exp
}

// RegisterImporter makes imp the importer for the given service and data
// type, replacing any previous registration.
func (r *Registry) RegisterImporter(service, dataType string, imp transfer.Importer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.importers[registryKey(service, dataType)] = imp
}

// Exporter returns the exporter registered for the given service and
// data type.
func (r *Registry) Exporter(service, dataType string) (transfer.Exporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exp, ok := r.exporters[registryKey(service, dataType)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s exporter for %s", shared.ErrProviderNotFound, dataType, service)
	}
	return exp, nil
}

// Importer returns the importer registered for the given service and
// data type.
func (r *Registry) Importer(service, dataType string) (transfer.Importer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	imp, ok := r.importers[registryKey(service, dataType)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s importer for %s", shared.ErrProviderNotFound, dataType, service)
	}
	return imp, nil
}

// ServiceListing names the services able to export or import one data type.
type ServiceListing struct {
	DataType  string   `json:"data_type"`
	Exporters []string `json:"exporters"`
	Importers []string `json:"importers"`
}

// Services lists the registered services for a data type, sorted by name.
func (r *Registry) Services(dataType string) ServiceListing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing := ServiceListing{DataType: dataType}
	suffix := ":" + dataType
	for key := range r.exporters {
		if service, ok := trimKeySuffix(key, suffix); ok {
			listing.Exporters = append(listing.Exporters, service)
		}
	}
	for key := range r.importers {
		if service, ok := trimKeySuffix(key, suffix); ok {
			listing.Importers = append(listing.Importers, service)
		}
	}

	sort.Strings(listing.Exporters)
	sort.Strings(listing.Importers)
	return listing
}

func trimKeySuffix(key, suffix string) (string, bool) {
	if len(key) <= len(suffix) || key[len(key)-len(suffix):] != suffix {
		return "", false
	}
	return key[:len(key)-len(suffix)], true
}

// DefaultRegistry builds a registry with every adapter this build ships,
// configured from cfg. Base URL overrides in the credential sections are
// honored so tests and proxies can redirect the adapters.
func DefaultRegistry(cfg *shared.Config, logger *log.Logger) *Registry {
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	registry := NewRegistry()
	registry.RegisterExporter(ServiceSmugMug, models.DataTypePhotos,
		NewSmugMugExporter(cfg.Credentials.SmugMug.BaseURL, logger))
	registry.RegisterImporter(ServiceImgur, models.DataTypePhotos,
		NewImgurImporter(cfg.Credentials.Imgur.BaseURL, logger))
	registry.RegisterExporter(ServiceGoogleCalendar, models.DataTypeCalendar,
		NewGoogleCalendarExporter(cfg.Credentials.Calendar.BaseURL, logger))
	return registry
}
