package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// ---- fakes ----

type fakePins struct {
	verifyOK  bool
	verifyErr error
	rotateErr error
	tokenErr  error
	checkErr  error

	gotCandidate        string
	gotCurrent, gotNext string
}

func (f *fakePins) Verify(ctx context.Context, candidate string) (bool, error) {
	f.gotCandidate = candidate
	return f.verifyOK, f.verifyErr
}

func (f *fakePins) Rotate(ctx context.Context, current, newPin string) error {
	f.gotCurrent, f.gotNext = current, newPin
	return f.rotateErr
}

func (f *fakePins) IssueUnlockToken() (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "unlock-token", nil
}

func (f *fakePins) CheckUnlockToken(token string) error {
	if f.checkErr != nil {
		return f.checkErr
	}
	if token != "unlock-token" {
		return common.ErrInvalidToken
	}
	return nil
}

type fakeTasks struct {
	tasks []*models.Task
	err   error

	created    services.NewTask
	updated    models.TaskUpdate
	updatedID  int64
	deletedID  int64
	emailFrom  string
	emailSubj  string
	automation services.AutomationRequest
}

func (f *fakeTasks) List(ctx context.Context) ([]*models.Task, error) {
	return f.tasks, f.err
}

func (f *fakeTasks) Create(ctx context.Context, t services.NewTask) (*models.Task, error) {
	f.created = t
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: 1, Text: t.Text, Priority: "New", Status: "todo", DueDate: t.DueDate}, nil
}

func (f *fakeTasks) Update(ctx context.Context, id int64, u models.TaskUpdate) (*models.Task, error) {
	f.updatedID, f.updated = id, u
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: id, Text: "t", Status: "done"}, nil
}

func (f *fakeTasks) Delete(ctx context.Context, id int64) error {
	f.deletedID = id
	return f.err
}

func (f *fakeTasks) CreateFromEmail(ctx context.Context, sender, subject string) (*models.Task, error) {
	f.emailFrom, f.emailSubj = sender, subject
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: 2, Text: subject}, nil
}

func (f *fakeTasks) CreateFromAutomation(ctx context.Context, req services.AutomationRequest) (*models.Task, error) {
	f.automation = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: 3, Text: req.Title}, nil
}

type fakeNotes struct {
	content string
	err     error
	updated *string
}

func (f *fakeNotes) Get(ctx context.Context, id int64) (*models.StickyNote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.StickyNote{ID: id, Content: f.content}, nil
}

func (f *fakeNotes) GetDefault(ctx context.Context) (*models.StickyNote, error) {
	return f.Get(ctx, 1)
}

func (f *fakeNotes) Update(ctx context.Context, id int64, content string) (*models.StickyNote, error) {
	f.updated = &content
	if f.err != nil {
		return nil, f.err
	}
	return &models.StickyNote{ID: id, Content: content}, nil
}

type fakeSummary struct {
	got services.SummaryRequest
	res *services.SummaryResult
	err error
}

func (f *fakeSummary) Run(ctx context.Context, req services.SummaryRequest) (*services.SummaryResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeWebhook struct {
	configured bool
	accept     bool
	got        [3]string
}

func (f *fakeWebhook) Configured() bool { return f.configured }

func (f *fakeWebhook) Authenticate(ts, token, sig string) bool {
	f.got = [3]string{ts, token, sig}
	return f.accept
}

// ---- helpers ----

type fixture struct {
	pins    *fakePins
	tasks   *fakeTasks
	notes   *fakeNotes
	summary *fakeSummary
	webhook *fakeWebhook
	handler http.Handler
}

func newFixture(t *testing.T, requireUnlock bool) *fixture {
	t.Helper()
	f := &fixture{
		pins:    &fakePins{},
		tasks:   &fakeTasks{},
		notes:   &fakeNotes{},
		summary: &fakeSummary{res: &services.SummaryResult{Message: "ok", AIResponse: "text"}},
		webhook: &fakeWebhook{configured: true, accept: true},
	}
	s := NewHTTPServer(":0", logging.Discard(), Services{
		Pins:    f.pins,
		Tasks:   f.tasks,
		Notes:   f.notes,
		Summary: f.summary,
		Webhook: f.webhook,
	}, requireUnlock)
	f.handler = s.Handler()
	return f
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), "body: %s", w.Body.String())
	return m
}

// ---- tests ----

func TestPing(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewHTTPServer(addr, logging.Discard(), Services{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := NewHTTPServer(l.Addr().String(), logging.Discard(), Services{}, false)
	assert.Error(t, s.Run(context.Background()))
}
