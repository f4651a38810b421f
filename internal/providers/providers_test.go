package providers

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/portage/internal/models"
	"github.com/desertthunder/portage/internal/shared"
)

func TestRegistry(t *testing.T) {
	t.Run("Lookup Registered Adapters", func(t *testing.T) {
		registry := NewRegistry()
		exporter := NewSmugMugExporter("", nil)
		importer := NewImgurImporter("", nil)

		registry.RegisterExporter(ServiceSmugMug, models.DataTypePhotos, exporter)
		registry.RegisterImporter(ServiceImgur, models.DataTypePhotos, importer)

		gotExp, err := registry.Exporter(ServiceSmugMug, models.DataTypePhotos)
		if err != nil {
			t.Fatalf("expected exporter, got %v", err)
		}
		if gotExp != exporter {
			t.Error("expected the registered exporter instance")
		}

		gotImp, err := registry.Importer(ServiceImgur, models.DataTypePhotos)
		if err != nil {
			t.Fatalf("expected importer, got %v", err)
		}
		if gotImp != importer {
			t.Error("expected the registered importer instance")
		}
	})

	t.Run("Unknown Pairs", func(t *testing.T) {
		registry := NewRegistry()
		registry.RegisterExporter(ServiceSmugMug, models.DataTypePhotos, NewSmugMugExporter("", nil))

		if _, err := registry.Exporter(ServiceSmugMug, models.DataTypeCalendar); !errors.Is(err, shared.ErrProviderNotFound) {
			t.Errorf("expected ErrProviderNotFound for wrong data type, got %v", err)
		}
		if _, err := registry.Exporter("flickr", models.DataTypePhotos); !errors.Is(err, shared.ErrProviderNotFound) {
			t.Errorf("expected ErrProviderNotFound for unknown service, got %v", err)
		}
		if _, err := registry.Importer(ServiceSmugMug, models.DataTypePhotos); !errors.Is(err, shared.ErrProviderNotFound) {
			t.Errorf("expected ErrProviderNotFound for missing importer, got %v", err)
		}
	})

	t.Run("Services Listing", func(t *testing.T) {
		registry := DefaultRegistry(nil, nil)

		photos := registry.Services(models.DataTypePhotos)
		if !reflect.DeepEqual(photos.Exporters, []string{ServiceSmugMug}) {
			t.Errorf("expected smugmug photo exporter, got %v", photos.Exporters)
		}
		if !reflect.DeepEqual(photos.Importers, []string{ServiceImgur}) {
			t.Errorf("expected imgur photo importer, got %v", photos.Importers)
		}

		calendar := registry.Services(models.DataTypeCalendar)
		if !reflect.DeepEqual(calendar.Exporters, []string{ServiceGoogleCalendar}) {
			t.Errorf("expected google-calendar exporter, got %v", calendar.Exporters)
		}
		if len(calendar.Importers) != 0 {
			t.Errorf("expected no calendar importers, got %v", calendar.Importers)
		}
	})

	t.Run("Replaces Previous Registration", func(t *testing.T) {
		registry := NewRegistry()
		first := NewSmugMugExporter("http://first", nil)
		second := NewSmugMugExporter("http://second", nil)

		registry.RegisterExporter(ServiceSmugMug, models.DataTypePhotos, first)
		registry.RegisterExporter(ServiceSmugMug, models.DataTypePhotos, second)

		got, err := registry.Exporter(ServiceSmugMug, models.DataTypePhotos)
		if err != nil {
			t.Fatalf("expected exporter, got %v", err)
		}
		if got != second {
			t.Error("expected the later registration to win")
		}
	})
}
