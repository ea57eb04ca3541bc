// Package content loads the authored catalog of roadmaps, resources and app
// hub entries from YAML.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// EmbeddedCatalog returns the catalog compiled into the binary.
func EmbeddedCatalog() []byte {
	return embeddedCatalog
}

// CatalogRepository serves one immutable catalog version at a time. Reload
// swaps in a new version only when it parses and validates.
type CatalogRepository struct {
	path    string
	current atomic.Pointer[content.Catalog]
	logger  *logging.ChanneledLogger
}

// NewCatalogRepository loads the catalog from path, or the embedded catalog
// when path is empty.
func NewCatalogRepository(path string, logger *logging.ChanneledLogger) (*CatalogRepository, error) {
	r := &CatalogRepository{path: path, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path is the external catalog file, empty when the embedded one is used.
func (r *CatalogRepository) Path() string { return r.path }

func (r *CatalogRepository) Catalog() *content.Catalog {
	return r.current.Load()
}

func (r *CatalogRepository) FindRoadmap(id string) (*content.Roadmap, bool) {
	return r.current.Load().Roadmap(id)
}

// Reload re-reads the source. On failure the previous version stays live.
func (r *CatalogRepository) Reload() error {
	start := time.Now()

	data := embeddedCatalog
	source := "embedded"
	if r.path != "" {
		var err error
		data, err = os.ReadFile(r.path)
		if err != nil {
			return fmt.Errorf("failed to read catalog %s: %w", r.path, err)
		}
		source = r.path
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		r.logger.Content().Error("Catalog rejected", "source", source, "error", err.Error())
		return err
	}

	r.current.Store(catalog)
	r.logger.Content().Info("Catalog loaded",
		"source", source,
		"roadmaps", len(catalog.Roadmaps),
		"resourceCategories", len(catalog.Resources),
		"appHubCategories", len(catalog.AppHub),
		"duration", time.Since(start))
	return nil
}

// ParseCatalog decodes and validates a YAML catalog. Unknown fields are rejected.
func ParseCatalog(data []byte) (*content.Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var catalog content.Catalog
	if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := ValidateCatalog(&catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ValidateCatalog checks what the progress pages rely on: unique non-empty
// roadmap ids and no empty phases.
func ValidateCatalog(c *content.Catalog) error {
	var errs []error
	if len(c.Roadmaps) == 0 {
		errs = append(errs, errors.New("catalog has no roadmaps"))
	}

	seen := make(map[string]bool, len(c.Roadmaps))
	for i, roadmap := range c.Roadmaps {
		if roadmap.ID == "" {
			errs = append(errs, fmt.Errorf("roadmap %d has no id", i))
			continue
		}
		if seen[roadmap.ID] {
			errs = append(errs, fmt.Errorf("duplicate roadmap id %q", roadmap.ID))
		}
		seen[roadmap.ID] = true

		switch roadmap.Color {
		case content.ColorAccent, content.ColorHighlight, content.ColorPrimary:
		default:
			errs = append(errs, fmt.Errorf("roadmap %q has unknown color %q", roadmap.ID, roadmap.Color))
		}
		if len(roadmap.Phases) == 0 {
			errs = append(errs, fmt.Errorf("roadmap %q has no phases", roadmap.ID))
		}
		for p, phase := range roadmap.Phases {
			if len(phase.Steps) == 0 {
				errs = append(errs, fmt.Errorf("roadmap %q phase %d has no steps", roadmap.ID, p))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}
