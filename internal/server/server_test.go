package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/josephgoksu/SprintReview/internal/loader"
	"github.com/josephgoksu/SprintReview/internal/review"
	"github.com/josephgoksu/SprintReview/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubReviewer struct {
	mu      sync.Mutex
	result  models.PerformanceResult
	err     error
	sprints []models.Sprint
}

func (r *stubReviewer) Generate(ctx context.Context, sprint models.Sprint, meeting models.Meeting) (models.PerformanceResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sprints = append(r.sprints, sprint)
	if r.err != nil {
		return models.PerformanceResult{}, r.err
	}
	res := r.result
	res.SprintID = sprint.ID
	return res, nil
}

const validBody = `{
	"sprint_data": {
		"sprint_id": "SPR-12",
		"tasks": [{
			"task_id": "T-1", "title": "Fix bug", "description": "checkout",
			"status": "done", "created_at": "2024-05-01", "duration": "2h", "points": 2
		}]
	},
	"meeting_data": {
		"employee_id": "E-7", "date": "2024-05-10",
		"notes": [{"topic": "1:1", "discussion": "good progress"}]
	}
}`

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig, rev Reviewer, opts ...Option) *Server {
	t.Helper()
	s, err := New(cfg, rev, nil, opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetails {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHandleReview_OK(t *testing.T) {
	rev := &stubReviewer{result: models.PerformanceResult{
		PerformanceSummary:           models.One("solid"),
		HighLighting:                 models.Many("a", "b"),
		StrengthsAreasForImprovement: models.One("estimates"),
		CanBeLaidOff:                 models.One("no"),
	}}
	s := newTestServer(t, testConfig(), rev)

	for _, path := range []string{"/", "/api/reviews"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, path, validBody)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "SPR-12", got["sprint_id"])
			assert.Equal(t, "solid", got["performance_summary"])
			assert.Equal(t, []interface{}{"a", "b"}, got["high_lighting"])
		})
	}
	assert.Len(t, rev.sprints, 2)
}

func TestHandleReview_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		wantCode  int
		wantError string
		wantField string
	}{
		{
			name:      "undecodable body",
			body:      `{"sprint_data":`,
			wantCode:  http.StatusBadRequest,
			wantError: codeBadRequest,
		},
		{
			name:      "missing meeting",
			body:      `{"sprint_data": {"sprint_id": "S", "tasks": []}}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: codeValidation,
			wantField: "meeting_data",
		},
		{
			name:      "missing points",
			body:      strings.Replace(validBody, `, "points": 2`, "", 1),
			wantCode:  http.StatusUnprocessableEntity,
			wantError: codeValidation,
			wantField: "sprint_data.tasks[0].points",
		},
		{
			name:      "generation failed",
			body:      validBody,
			err:       &review.GenerationError{Model: "llama3.2", Err: errors.New("connection refused")},
			wantCode:  http.StatusBadGateway,
			wantError: codeGenerationFailed,
		},
		{
			name:      "invalid model output",
			body:      validBody,
			err:       &review.ResponseParseError{Raw: "nope", Field: "can_be_laid_off", Err: errors.New("missing")},
			wantCode:  http.StatusBadGateway,
			wantError: codeInvalidModelOutput,
			wantField: "can_be_laid_off",
		},
		{
			name:      "unexpected error",
			body:      validBody,
			err:       errors.New("boom"),
			wantCode:  http.StatusInternalServerError,
			wantError: codeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig(), &stubReviewer{err: tt.err})
			rec := do(t, s, http.MethodPost, "/", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			details := decodeError(t, rec)
			assert.Equal(t, tt.wantError, details.Code)
			assert.Equal(t, tt.wantField, details.Field)
			assert.NotEmpty(t, details.Message)
		})
	}
}

func TestHandleReview_InvalidBodyNeverReachesModel(t *testing.T) {
	rev := &stubReviewer{}
	s := newTestServer(t, testConfig(), rev)

	rec := do(t, s, http.MethodPost, "/", `{"sprint_data": {"tasks": []}, "meeting_data": {}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, rev.sprints)
}

// deadlineReviewer blocks until the request context ends, like a model call
// that outlives the request timeout.
type deadlineReviewer struct {
	hadDeadline bool
}

func (r *deadlineReviewer) Generate(ctx context.Context, sprint models.Sprint, meeting models.Meeting) (models.PerformanceResult, error) {
	_, r.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return models.PerformanceResult{}, &review.GenerationError{Model: "llama3.2", Err: ctx.Err()}
}

func TestHandleReview_RequestTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	rev := &deadlineReviewer{}
	s := newTestServer(t, cfg, rev)

	rec := do(t, s, http.MethodPost, "/api/reviews", validBody)

	assert.True(t, rev.hadDeadline)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	dec := json.NewDecoder(rec.Body)
	var body errorBody
	require.NoError(t, dec.Decode(&body))
	assert.Equal(t, codeGenerationFailed, body.Error.Code)
	assert.Contains(t, body.Error.Message, "deadline exceeded")
	assert.False(t, dec.More(), "exactly one response body is written")
}

func TestHandleReview_FixtureMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "task.json", []byte(`{"sprint_id": "FIXTURE", "tasks": []}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "meeting.json", []byte(`{"employee_id": "E", "date": "d", "notes": []}`), 0644))

	cfg := testConfig()
	cfg.Fixtures = config.FixtureConfig{Enabled: true, SprintFile: "task.json", MeetingFile: "meeting.json"}
	rev := &stubReviewer{}
	s := newTestServer(t, cfg, rev, WithFixtureLoader(loader.New(fs)))

	rec := do(t, s, http.MethodPost, "/", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, rev.sprints, 1)
	assert.Equal(t, "FIXTURE", rev.sprints[0].ID, "fixture files are evaluated, not the body")

	// The body is still validated.
	rec = do(t, s, http.MethodPost, "/", `{"sprint_data": {}, "meeting_data": {}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleReview_FixtureMissing(t *testing.T) {
	cfg := testConfig()
	cfg.Fixtures = config.FixtureConfig{Enabled: true, SprintFile: "task.json", MeetingFile: "meeting.json"}
	s := newTestServer(t, cfg, &stubReviewer{}, WithFixtureLoader(loader.New(afero.NewMemMapFs())))

	rec := do(t, s, http.MethodPost, "/", validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, codeInternal, decodeError(t, rec).Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubReviewer{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubReviewer{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubReviewer{})

	tests := []struct {
		name       string
		origin     string
		wantCode   int
		wantHeader string
	}{
		{name: "allowed origin", origin: "http://localhost:3000", wantCode: http.StatusNoContent, wantHeader: "http://localhost:3000"},
		{name: "unknown origin", origin: "http://evil.example", wantCode: http.StatusForbidden},
		{name: "no origin", wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestNew_RequiresReviewer(t *testing.T) {
	_, err := New(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, testConfig(), &stubReviewer{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	http.DefaultClient.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
