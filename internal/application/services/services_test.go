package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
	domainservices "github.com/AtRiskMedia/edify/internal/domain/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
	progressstorage "github.com/AtRiskMedia/edify/internal/infrastructure/persistence/progress"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
	"github.com/AtRiskMedia/edify/pkg/config"
)

type staticCatalog struct {
	catalog *content.Catalog
	reloads int
	err     error
}

func (c *staticCatalog) Catalog() *content.Catalog { return c.catalog }
func (c *staticCatalog) FindRoadmap(id string) (*content.Roadmap, bool) {
	return c.catalog.Roadmap(id)
}
func (c *staticCatalog) Reload() error {
	c.reloads++
	return c.err
}

func twoByTwo(id string) content.Roadmap {
	return content.Roadmap{
		ID:    id,
		Title: id,
		Color: content.ColorPrimary,
		Phases: []content.Phase{
			{Name: "One", Steps: []content.Step{{Title: "a"}, {Title: "b"}}},
			{Name: "Two", Steps: []content.Step{{Title: "c"}, {Title: "d"}}},
		},
	}
}

func newProgressService(t *testing.T) *ProgressService {
	t.Helper()
	catalog := &staticCatalog{catalog: &content.Catalog{
		Roadmaps: []content.Roadmap{twoByTwo("programming"), twoByTwo("cybersecurity")},
	}}
	storage := progressstorage.NewMemoryStorage(config.DefaultStorageKey)
	store := domainservices.NewProgressStore(storage)
	return NewProgressService(store, catalog, config.StorageDriverMemory, config.DefaultStorageKey,
		logging.NewNopLogger(), performance.NewTracker(nil))
}

func TestProgressServiceSummary(t *testing.T) {
	svc := newProgressService(t)

	_, err := svc.Toggle("programming", 0, 0)
	require.NoError(t, err)
	state, err := svc.Toggle("programming", 0, 1)
	require.NoError(t, err)
	assert.True(t, state.Completed)

	summary, err := svc.RoadmapSummary("programming")
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Percentage)
	assert.Equal(t, 2, summary.CompletedSteps)
	assert.Equal(t, 4, summary.TotalSteps)
	assert.Equal(t, 100, summary.Phases[0].Percentage)
	assert.True(t, summary.Phases[0].Complete)
	assert.Equal(t, 0, summary.Phases[1].Percentage)
	assert.Equal(t, []bool{false, false}, summary.Phases[1].Steps)
	assert.True(t, summary.Started)
	require.NotNil(t, summary.StartedAt)
	assert.False(t, summary.IsComplete)

	untouched, err := svc.RoadmapSummary("cybersecurity")
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.Percentage)
	assert.False(t, untouched.Started)
	assert.Nil(t, untouched.StartedAt)

	overview := svc.Overview()
	require.Len(t, overview, 2)
	assert.Equal(t, "programming", overview[0].RoadmapID)
}

func TestProgressServiceSummaryAfterCatalogShrinks(t *testing.T) {
	svc := newProgressService(t)
	_, err := svc.Toggle("programming", 0, 0)
	require.NoError(t, err)
	_, err = svc.Toggle("programming", 0, 1)
	require.NoError(t, err)

	// Phase 0 loses its second step; the stored completion stays behind.
	shrunk := twoByTwo("programming")
	shrunk.Phases[0].Steps = shrunk.Phases[0].Steps[:1]
	svc.catalog.(*staticCatalog).catalog = &content.Catalog{Roadmaps: []content.Roadmap{shrunk}}

	summary, err := svc.RoadmapSummary("programming")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalSteps)
	assert.Equal(t, 1, summary.CompletedSteps)
	assert.Equal(t, 33, summary.Percentage)
	assert.False(t, summary.IsComplete)
	assert.Equal(t, 100, summary.Phases[0].Percentage)
	assert.True(t, summary.Phases[0].Complete)
	assert.Equal(t, []bool{true}, summary.Phases[0].Steps)

	// The store still holds both entries.
	record, ok := svc.store.GetRoadmapProgress("programming")
	require.True(t, ok)
	assert.Len(t, record.CompletedSteps, 2)
}

func TestProgressServiceValidation(t *testing.T) {
	svc := newProgressService(t)

	_, err := svc.Toggle("astrology", 0, 0)
	assert.ErrorIs(t, err, ErrRoadmapNotFound)
	_, err = svc.Toggle("programming", 2, 0)
	assert.ErrorIs(t, err, ErrPhaseOutOfRange)
	_, err = svc.Toggle("programming", -1, 0)
	assert.ErrorIs(t, err, ErrPhaseOutOfRange)
	_, err = svc.Toggle("programming", 0, 2)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = svc.Step("programming", 1, -1)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = svc.RoadmapSummary("astrology")
	assert.ErrorIs(t, err, ErrRoadmapNotFound)

	assert.Empty(t, svc.Records(), "rejected toggles must not create records")
}

func TestProgressServiceResetAndExport(t *testing.T) {
	svc := newProgressService(t)
	_, err := svc.Toggle("programming", 1, 1)
	require.NoError(t, err)

	data, err := svc.Export()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"roadmapId": "programming"`)
	assert.Contains(t, string(data), `"completedSteps"`)

	removed, err := svc.Reset("programming")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Reset("programming")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Reset("astrology")
	assert.ErrorIs(t, err, ErrRoadmapNotFound)

	step, err := svc.Step("programming", 1, 1)
	require.NoError(t, err)
	assert.False(t, step.Completed)

	status := svc.Status()
	assert.Equal(t, "memory", status.Driver)
	assert.Equal(t, "edify-progress", status.Key)
	assert.Empty(t, status.LastSaveError)
}

func TestCatalogService(t *testing.T) {
	repo := &staticCatalog{catalog: &content.Catalog{Roadmaps: []content.Roadmap{twoByTwo("english")}}}
	svc := NewCatalogService(repo, logging.NewNopLogger(), performance.NewTracker(nil))

	total, err := svc.TotalSteps("english")
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	count, err := svc.PhaseStepCount("english", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = svc.PhaseStepCount("english", 5)
	assert.ErrorIs(t, err, ErrPhaseOutOfRange)
	_, err = svc.Roadmap("career")
	assert.ErrorIs(t, err, ErrRoadmapNotFound)

	require.NoError(t, svc.Reload())
	repo.err = errors.New("bad yaml")
	assert.Error(t, svc.Reload())
	assert.Equal(t, 2, repo.reloads)
}

type recordingMailer struct {
	sent []templates.ContactEmailProps
	err  error
}

func (m *recordingMailer) SendContactEmail(msg templates.ContactEmailProps) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestContactServiceSimulated(t *testing.T) {
	svc := NewContactService(nil, logging.NewNopLogger(), performance.NewTracker(nil))

	sub, err := svc.Submit(ContactRequest{Name: "  Ada ", Message: "  Hi there \n"})
	require.NoError(t, err)
	assert.True(t, sub.Simulated)
	assert.False(t, sub.Delivered)
	assert.Equal(t, "Ada", sub.Name)
	assert.Equal(t, "Hi there", sub.Message)
	assert.Len(t, sub.ID, 26)

	_, err = svc.Submit(ContactRequest{Name: "Ada", Message: "   "})
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = svc.Submit(ContactRequest{Email: "not-an-address", Message: "hello"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	anon, err := svc.Submit(ContactRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", anon.Name)
}

func TestContactServiceDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewContactService(mailer, logging.NewNopLogger(), performance.NewTracker(nil))

	sub, err := svc.Submit(ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "hello"})
	require.NoError(t, err)
	assert.True(t, sub.Delivered)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sub.ID, mailer.sent[0].ID)

	mailer.err = errors.New("rate limited")
	_, err = svc.Submit(ContactRequest{Message: "again"})
	assert.ErrorContains(t, err, "rate limited")
}

func TestSysOpService(t *testing.T) {
	hash, err := security.HashPassword("letmein")
	require.NoError(t, err)

	disabled := NewSysOpService(config.SysopConfig{}, logging.NewNopLogger(), performance.NewTracker(nil))
	_, err = disabled.Login("letmein")
	assert.ErrorIs(t, err, ErrSysopDisabled)

	svc := NewSysOpService(config.SysopConfig{PasswordHash: hash, JWTSecret: "secret", TokenTTL: time.Hour},
		logging.NewNopLogger(), performance.NewTracker(nil))

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login("letmein")
	require.NoError(t, err)
	assert.NoError(t, svc.ValidateToken(result.Token))
	assert.ErrorIs(t, svc.ValidateToken("garbage"), ErrInvalidCredentials)

	require.NoError(t, svc.SetLogLevel("progress", "debug"))
	assert.Equal(t, "DEBUG", svc.LogLevels()["progress"])
	assert.Error(t, svc.SetLogLevel("progress", "loud"))
	assert.NotNil(t, svc.Performance())
}
