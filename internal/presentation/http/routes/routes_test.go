package routes

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/edify/internal/application/container"
	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
	"github.com/AtRiskMedia/edify/pkg/config"
)

const sysopPassword = "let-me-in"

func newTestRouter(t *testing.T) (*gin.Engine, *container.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory
	hash, err := security.HashPassword(sysopPassword)
	require.NoError(t, err)
	cfg.Sysop.PasswordHash = hash
	cfg.Sysop.JWTSecret = "test-secret"

	c, err := container.NewContainer(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return SetupRoutes(c), c
}

func do(r http.Handler, method, target string, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCatalogEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/roadmaps", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, 5, list.Count)

	w = do(r, http.MethodGet, "/api/v1/roadmaps/english", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		TotalSteps int `json:"totalSteps"`
	}](t, w)
	assert.Equal(t, 8, detail.TotalSteps)

	w = do(r, http.MethodGet, "/api/v1/roadmaps/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/resources", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/app-hub", "").Code)
}

func TestProgressLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	base := "/api/v1/progress/programming"

	w := do(r, http.MethodPost, base+"/phases/1/steps/0/toggle", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	toggled := decode[struct {
		Step    services.StepState      `json:"step"`
		Summary services.RoadmapSummary `json:"summary"`
	}](t, w)
	assert.True(t, toggled.Step.Completed)
	assert.Equal(t, 13, toggled.Summary.Percentage)
	assert.Equal(t, 50, toggled.Summary.Phases[1].Percentage)

	w = do(r, http.MethodGet, base+"/phases/1/steps/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[services.StepState](t, w).Completed)

	w = do(r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[services.RoadmapSummary](t, w)
	assert.Equal(t, 1, summary.CompletedSteps)
	assert.True(t, summary.Started)

	w = do(r, http.MethodGet, "/api/v1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = do(r, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[struct {
		Removed bool `json:"removed"`
	}](t, w).Removed)

	w = do(r, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[struct {
		Removed bool `json:"removed"`
	}](t, w).Removed)

	w = do(r, http.MethodGet, "/api/v1/progress/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[services.ProgressStatus](t, w)
	assert.Equal(t, config.StorageDriverMemory, status.Driver)
	assert.Empty(t, status.LastSaveError)
}

func TestProgressRejectsBadPositions(t *testing.T) {
	r, c := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/progress/nope/phases/0/steps/0/toggle", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/progress/career/phases/4/steps/0/toggle", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/progress/career/phases/0/steps/-1/toggle", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/progress/career/phases/a/steps/0/toggle", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/v1/progress/nope", "").Code)

	assert.Empty(t, c.ProgressStore.RoadmapIDs())
}

func TestContactAPI(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/contact", `{"name":"  Ada ","message":" hello "}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	submission := decode[services.ContactSubmission](t, w)
	assert.Equal(t, "Ada", submission.Name)
	assert.Equal(t, "hello", submission.Message)
	assert.True(t, submission.Simulated)
	assert.NotEmpty(t, submission.ID)

	w = do(r, http.MethodPost, "/api/v1/contact", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/contact", `{"email":"not an email","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSysopRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/sysop/logs/levels", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/sysop/login", `{"password":"wrong"}`).Code)

	w := do(r, http.MethodPost, "/api/sysop/login", `{"password":"`+sysopPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[struct {
		Token string `json:"token"`
	}](t, w).Token
	require.NotEmpty(t, token)
	auth := []string{"Authorization", "Bearer " + token}

	w = do(r, http.MethodPost, "/api/sysop/logs/levels", `{"channel":"storage","level":"DEBUG"}`, auth...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/api/sysop/logs/levels", "", auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DEBUG", decode[map[string]string](t, w)["storage"])

	w = do(r, http.MethodPost, "/api/sysop/logs/levels", `{"channel":"storage","level":"LOUD"}`, auth...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/sysop/performance", "", auth...)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/sysop/catalog/reload", "", auth...)
	assert.Equal(t, http.StatusOK, w.Code)

	// EventSource cannot send headers; the query token is accepted too.
	w = do(r, http.MethodGet, "/api/sysop/performance?token="+url.QueryEscape(token), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPagesRender(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/", "/about", "/roadmaps", "/roadmaps/cybersecurity", "/resources", "/app-hub", "/contact"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html", path)
		assert.Contains(t, w.Body.String(), "<title>", path)
	}

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/roadmaps/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/no/such/page", "").Code)

	w := do(r, http.MethodGet, "/api/v1/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestPageFormPosts(t *testing.T) {
	r, c := newTestRouter(t)

	w := do(r, http.MethodPost, "/roadmaps/career/phases/2/steps/1/toggle", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/roadmaps/career#step-2-1", w.Header().Get("Location"))
	assert.True(t, c.ProgressStore.IsStepComplete("career", 2, 1))

	w = do(r, http.MethodGet, "/roadmaps/career", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mark incomplete")
	assert.Contains(t, w.Body.String(), "Reset progress")

	w = do(r, http.MethodPost, "/roadmaps/career/reset", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/roadmaps/career?reset=1", w.Header().Get("Location"))
	assert.False(t, c.ProgressStore.IsStepComplete("career", 2, 1))

	form := url.Values{"name": {"Grace"}, "message": {"Thanks for the roadmaps"}}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks, Grace")

	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(url.Values{"name": {"Grace"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), services.ErrMessageRequired.Error())
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[struct {
		Status string `json:"status"`
	}](t, w).Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// openStream subscribes to target and returns a function yielding the name
// of each following event, plus the reader positioned after it.
func openStream(t *testing.T, srv *httptest.Server, target string) (func() string, *bufio.Reader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+target, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	return func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}, reader
}

func postToggle(t *testing.T, srv *httptest.Server, path string) {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProgressEventStream(t *testing.T) {
	r, _ := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	nextEvent, reader := openStream(t, srv, "/api/v1/progress/events?roadmapId=english")
	require.Equal(t, "snapshot", nextEvent())

	// Only the subscribed roadmap reaches the stream.
	postToggle(t, srv, "/api/v1/progress/career/phases/0/steps/0/toggle")
	postToggle(t, srv, "/api/v1/progress/english/phases/0/steps/0/toggle")

	require.Equal(t, "progress", nextEvent())
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"roadmapId":"english"`)
	assert.Contains(t, line, `"type":"step_completed"`)
}

func TestProgressEventStreamOutlivesWriteTimeout(t *testing.T) {
	r, c := newTestRouter(t)
	c.Config.Server.WriteTimeout = 200 * time.Millisecond
	srv := httptest.NewUnstartedServer(r)
	srv.Config.WriteTimeout = c.Config.Server.WriteTimeout
	srv.Start()
	defer srv.Close()

	nextEvent, reader := openStream(t, srv, "/api/v1/progress/events?roadmapId=programming")
	require.Equal(t, "snapshot", nextEvent())

	time.Sleep(3 * c.Config.Server.WriteTimeout)
	postToggle(t, srv, "/api/v1/progress/programming/phases/1/steps/0/toggle")

	require.Equal(t, "progress", nextEvent())
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"roadmapId":"programming"`)
}
