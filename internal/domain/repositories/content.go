// Package repositories defines the repository interfaces for content and progress.
// These repositories abstract the persistence details, keeping the core
// decoupled from files and databases.
package repositories

import (
	"errors"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
)

// ErrNotFound is returned by Load when nothing is stored under the key yet.
var ErrNotFound = errors.New("progress not found")

// CatalogRepository supplies the read-only content catalog.
type CatalogRepository interface {
	Catalog() *content.Catalog
	FindRoadmap(id string) (*content.Roadmap, bool)
	Reload() error
}

// ProgressStorage persists the whole progress collection under one key.
// Load returns ErrNotFound when the key is absent; any other error means the
// stored value could not be read or decoded.
type ProgressStorage interface {
	Load() (progress.Collection, error)
	Save(progress.Collection) error
	Describe() string
}
