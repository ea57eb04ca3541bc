package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
)

const tinyCatalog = `
roadmaps:
  - id: programming
    title: Programming
    color: primary
    phases:
      - name: Basics
        steps:
          - title: Install a toolchain
          - title: Write hello world
      - name: Practice
        steps:
          - title: Build a CLI
          - title: Ship it
`

func TestEmbeddedCatalog(t *testing.T) {
	repo, err := NewCatalogRepository("", logging.NewNopLogger())
	require.NoError(t, err)

	catalog := repo.Catalog()
	require.Len(t, catalog.Roadmaps, 5)
	ids := make([]string, 0, len(catalog.Roadmaps))
	for _, r := range catalog.Roadmaps {
		ids = append(ids, r.ID)
		assert.Positive(t, r.TotalSteps(), r.ID)
	}
	assert.Equal(t, []string{"student-foundation", "programming", "cybersecurity", "english", "career"}, ids)
	assert.NotEmpty(t, catalog.Resources)
	assert.NotEmpty(t, catalog.AppHub)

	roadmap, ok := repo.FindRoadmap("programming")
	require.True(t, ok)
	assert.Equal(t, 2, roadmap.PhaseStepCount(0))
	assert.Equal(t, 0, roadmap.PhaseStepCount(99))
	assert.True(t, roadmap.HasStep(0, 1))
	assert.False(t, roadmap.HasStep(0, 2))

	_, ok = repo.FindRoadmap("astrology")
	assert.False(t, ok)
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "no roadmaps"},
		{"missing id", "roadmaps:\n  - title: x\n    color: accent\n    phases: [{name: a, steps: [{title: s}]}]\n", "has no id"},
		{"duplicate", "roadmaps:\n  - {id: a, color: accent, phases: [{steps: [{title: s}]}]}\n  - {id: a, color: accent, phases: [{steps: [{title: s}]}]}\n", "duplicate roadmap id"},
		{"empty phase", "roadmaps:\n  - {id: a, color: accent, phases: [{name: p}]}\n", "phase 0 has no steps"},
		{"bad color", "roadmaps:\n  - {id: a, color: purple, phases: [{steps: [{title: s}]}]}\n", "unknown color"},
		{"unknown field", "roadmaps:\n  - {id: a, colour: accent}\n", "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReloadKeepsPreviousVersionOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tinyCatalog), 0644))

	repo, err := NewCatalogRepository(path, logging.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, repo.Catalog().Roadmaps, 1)

	require.NoError(t, os.WriteFile(path, []byte("roadmaps: ["), 0644))
	require.Error(t, repo.Reload())
	assert.Len(t, repo.Catalog().Roadmaps, 1)

	updated := strings.Replace(tinyCatalog, "title: Ship it", "title: Ship it\n          - title: Celebrate", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	require.NoError(t, repo.Reload())
	roadmap, _ := repo.FindRoadmap("programming")
	assert.Equal(t, 5, roadmap.TotalSteps())
}

func TestMissingCatalogFile(t *testing.T) {
	_, err := NewCatalogRepository(filepath.Join(t.TempDir(), "nope.yaml"), logging.NewNopLogger())
	require.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tinyCatalog), 0644))
	repo, err := NewCatalogRepository(path, logging.NewNopLogger())
	require.NoError(t, err)

	w, err := NewWatcher(repo)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	updated := strings.Replace(tinyCatalog, "title: Programming", "title: Programming in Go", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case err := <-w.Reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	roadmap, _ := repo.FindRoadmap("programming")
	assert.Equal(t, "Programming in Go", roadmap.Title)
}
