package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/server/ratelimit"
	"github.com/jonathan/resume-studio/internal/session"
	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

type testEnv struct {
	server   *Server
	sessions *session.Manager
	jwt      *auth.JWTService
	store    *storage.MemoryStore
}

// gatedRunner holds every export until release is closed
type gatedRunner struct {
	release chan struct{}
}

func (g *gatedRunner) Run(ctx context.Context, req export.Request) (*export.Result, error) {
	select {
	case <-g.release:
		return &export.Result{Bytes: []byte("%PDF-1.4"), PageCount: 1, TemplateID: req.TemplateID}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newTestEnv(t *testing.T, opts session.Options, limits *ratelimit.Config) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	if opts.Store == nil {
		opts.Store = store
	}
	if opts.Exporter == nil {
		opts.Exporter = export.NewEngine(templates.DefaultRegistry(), export.Options{})
	}
	if limits == nil {
		limits = &ratelimit.Config{Enabled: false}
	}

	jwtService := auth.NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1, Issuer: config.DefaultJWTIssuer})
	manager := session.NewManager(opts)
	srv, err := New(Config{Sessions: manager, Auth: jwtService, RateLimit: limits})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, sessions: manager, jwt: jwtService, store: store}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(userID)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) create(t *testing.T, kind types.DocumentKind) SessionResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/sessions", CreateSessionRequest{Kind: kind}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func sectionTitles(doc *types.Document) []string {
	var titles []string
	for _, s := range doc.Sections() {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestNew_RequiresSessions(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHealthAndTemplates(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/templates", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Default   string               `json:"default"`
		Templates []templates.Template `json:"templates"`
	}](t, rec)
	assert.Equal(t, templates.DefaultID, body.Default)
	assert.Len(t, body.Templates, 4)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	rec := env.do(t, http.MethodOptions, "/sessions", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)

	created := env.create(t, "")
	assert.Equal(t, types.KindResume, created.Document.Kind)
	assert.Len(t, created.Document.Sections(), 4)
	assert.Equal(t, templates.DefaultID, created.TemplateID)
	assert.Equal(t, "edit", string(created.Mode))

	rec := env.do(t, http.MethodPost, "/sessions", CreateSessionRequest{Kind: types.KindCoverLetter, TemplateID: "nope"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	letter := decode[SessionResponse](t, rec)
	assert.NotNil(t, letter.Document.CoverLetter)
	assert.Equal(t, templates.DefaultID, letter.TemplateID)
	require.Len(t, letter.Warnings, 1)
	assert.Contains(t, letter.Warnings[0], "nope")

	rec = env.do(t, http.MethodPost, "/sessions", `{"kind":"memo"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/sessions", `{"kind":"resume","color":"red"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndCloseSession(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	path := "/sessions/" + created.ID.String()

	rec := env.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[session.View](t, rec).ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/sessions/not-a-uuid", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/sessions/"+uuid.NewString(), nil, "").Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, nil, "").Code)
}

func TestUpdateFields(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	path := "/sessions/" + created.ID.String() + "/fields"

	rec := env.do(t, http.MethodPatch, path, map[string]string{"fullName": "Ada Lovelace", "email": "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[session.View](t, rec)
	assert.Equal(t, "Ada Lovelace", view.Document.Resume.FullName)
	assert.Equal(t, "ada@example.com", view.Document.Resume.Email)

	rec = env.do(t, http.MethodPatch, path, map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "email")

	rec = env.do(t, http.MethodPatch, path, map[string]string{"companyName": "Acme"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "cover letter fields are rejected on a résumé")
}

func TestSectionEditing(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()

	rec := env.do(t, http.MethodPost, base+"/sections", map[string]string{"title": "Projects"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	section := decode[types.Section](t, rec)
	assert.Equal(t, "Projects", section.Title)
	assert.NotEmpty(t, section.ID)

	rec = env.do(t, http.MethodPut, base+"/sections/"+section.ID+"/title", map[string]string{"title": "Side Projects"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPut, base+"/sections/"+section.ID+"/content", map[string]string{"content": "Built a compiler"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[session.View](t, rec)
	last := view.Document.Sections()[len(view.Document.Sections())-1]
	assert.Equal(t, "Side Projects", last.Title)
	assert.Equal(t, "Built a compiler", last.Content)

	rec = env.do(t, http.MethodPut, base+"/sections/missing/title", map[string]string{"title": "x"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, base+"/sections/"+section.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["removed"])

	rec = env.do(t, http.MethodDelete, base+"/sections/"+section.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["removed"])
}

func TestMoveSection(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	path := "/sessions/" + created.ID.String() + "/sections/move"
	before := sectionTitles(created.Document)
	require.Len(t, before, 4)

	rec := env.do(t, http.MethodPost, path, map[string]int{"from": 0, "to": 2}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	after := sectionTitles(decode[session.View](t, rec).Document)
	assert.Equal(t, []string{before[1], before[2], before[0], before[3]}, after)

	firstID := created.Document.Sections()[0].ID
	rec = env.do(t, http.MethodPost, path, map[string]any{"section_id": firstID, "to": 0}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before, sectionTitles(decode[session.View](t, rec).Document))

	rec = env.do(t, http.MethodPost, path, map[string]int{"from": 0, "to": 9}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, path, map[string]int{"from": 0}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path, map[string]int{"to": 1}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateModeAndPreview(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()

	rec := env.do(t, http.MethodPut, base+"/template", map[string]string{"template_id": "elegant"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SessionResponse](t, rec)
	assert.Equal(t, "elegant", resp.TemplateID)
	assert.Empty(t, resp.Warnings)

	rec = env.do(t, http.MethodPut, base+"/template", map[string]string{"template_id": "baroque"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[SessionResponse](t, rec)
	assert.Equal(t, templates.DefaultID, resp.TemplateID)
	assert.Len(t, resp.Warnings, 1)

	rec = env.do(t, http.MethodPut, base+"/mode", map[string]string{"mode": "preview"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "preview", string(decode[session.View](t, rec).Mode))

	rec = env.do(t, http.MethodPut, base+"/mode", map[string]string{"mode": "fullscreen"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/preview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-template="`+templates.DefaultID+`"`)

	rec = env.do(t, http.MethodGet, base+"/preview/tree", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, templates.DefaultID, decode[map[string]any](t, rec)["TemplateID"])
}

func TestExportLifecycle(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()

	rec := env.do(t, http.MethodGet, base+"/export/pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/export", map[string]string{"strategy": "watercolor"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/export", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	sess, err := env.sessions.Get(created.ID)
	require.NoError(t, err)
	st, err := sess.WaitExport(context.Background())
	require.NoError(t, err)
	require.Equal(t, export.StateSucceeded, st.State, st.Error)

	rec = env.do(t, http.MethodGet, base+"/export", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(export.StateSucceeded), decode[map[string]any](t, rec)["state"])

	rec = env.do(t, http.MethodGet, base+"/export/pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="resume.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	pages, err := export.Verify(rec.Body.Bytes())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 1)
}

func TestExportInProgress(t *testing.T) {
	runner := &gatedRunner{release: make(chan struct{})}
	env := newTestEnv(t, session.Options{Exporter: runner, ExportTimeout: time.Minute}, nil)
	created := env.create(t, types.KindCoverLetter)
	base := "/sessions/" + created.ID.String()

	require.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, base+"/export", nil, "").Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/export", nil, "").Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, base+"/export/pdf", nil, "").Code)

	close(runner.release)
	sess, err := env.sessions.Get(created.ID)
	require.NoError(t, err)
	_, err = sess.WaitExport(context.Background())
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, base+"/export/pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `inline; filename="cover-letter.pdf"`, rec.Header().Get("Content-Disposition"))
}

func TestExportEvents(t *testing.T) {
	runner := &gatedRunner{release: make(chan struct{})}
	env := newTestEnv(t, session.Options{Exporter: runner, ExportTimeout: time.Minute}, nil)
	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()

	rec := env.do(t, http.MethodGet, base+"/export/events", nil, "")
	assert.Contains(t, rec.Body.String(), "event: status")
	assert.Contains(t, rec.Body.String(), "event: error")

	require.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, base+"/export", nil, "").Code)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(runner.release)
	}()

	rec = env.do(t, http.MethodGet, base+"/export/events", nil, "")
	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `"state":"in_progress"`)
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, `"state":"succeeded"`)
	assert.Contains(t, body, created.ID.String())
}

func TestPersistRequiresSignIn(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, base+"/persist", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, base+"/saved", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, base+"/persist", nil, "garbage").Code)
}

func TestPersistQuotaAndSavedList(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	token := env.token(t, "user-1")

	var records []storage.Record
	for i := 0; i < 2; i++ {
		created := env.create(t, types.KindResume)
		rec := env.do(t, http.MethodPost, "/sessions/"+created.ID.String()+"/persist", nil, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		records = append(records, decode[storage.Record](t, rec))
	}

	third := env.create(t, types.KindResume)
	base := "/sessions/" + third.ID.String()
	rec := env.do(t, http.MethodPost, base+"/persist", nil, token)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "Free plan allows 2 saved resumes")

	rec = env.do(t, http.MethodGet, base+"/saved", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[SavedResponse](t, rec)
	assert.Equal(t, 2, saved.Count)

	other := env.create(t, types.KindResume)
	rec = env.do(t, http.MethodGet, "/sessions/"+other.ID.String()+"/saved", nil, env.token(t, "user-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[SavedResponse](t, rec).Count)

	rec = env.do(t, http.MethodDelete, base+"/saved/"+records[0].ID.String(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved = decode[SavedResponse](t, rec)
	require.Equal(t, 1, saved.Count)
	assert.Equal(t, records[1].ID, saved.Records[0].ID)

	rec = env.do(t, http.MethodDelete, base+"/saved/"+records[0].ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, base+"/saved/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/persist", nil, token)
	assert.Equal(t, http.StatusCreated, rec.Code, "deleting frees a slot")
}

func TestOpenSaved(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)
	token := env.token(t, "user-1")

	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()
	env.do(t, http.MethodPatch, base+"/fields", map[string]string{"fullName": "Grace Hopper"}, "")
	env.do(t, http.MethodPut, base+"/template", map[string]string{"template_id": "creative"}, "")
	rec := env.do(t, http.MethodPost, base+"/persist", nil, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[storage.Record](t, rec)

	rec = env.do(t, http.MethodPost, "/sessions/open", OpenSavedRequest{Kind: types.KindResume, RecordID: saved.ID}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	opened := decode[SessionResponse](t, rec)
	assert.NotEqual(t, created.ID, opened.ID)
	assert.Equal(t, "Grace Hopper", opened.Document.Resume.FullName)
	assert.Equal(t, "creative", opened.TemplateID)

	rec = env.do(t, http.MethodPost, "/sessions/open", OpenSavedRequest{Kind: types.KindResume, RecordID: saved.ID}, env.token(t, "user-2"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/sessions/open", OpenSavedRequest{Kind: types.KindResume, RecordID: saved.ID}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/sessions/open", OpenSavedRequest{Kind: types.KindResume}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnhance(t *testing.T) {
	env := newTestEnv(t, session.Options{}, nil)

	created := env.create(t, types.KindResume)
	base := "/sessions/" + created.ID.String()
	sectionID := created.Document.Sections()[1].ID

	rec := env.do(t, http.MethodPost, base+"/enhance", EnhanceRequest{SectionID: sectionID, Prompt: "make it punchy"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	text := decode[map[string]any](t, rec)["text"].(string)
	assert.NotEmpty(t, text)

	sess, err := env.sessions.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, text, sess.Document().Sections()[1].Content)

	rec = env.do(t, http.MethodPost, base+"/enhance", EnhanceRequest{SectionID: sectionID, Prompt: "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodPost, base+"/enhance", EnhanceRequest{SectionID: "missing", Prompt: "x"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	letter := env.create(t, types.KindCoverLetter)
	rec = env.do(t, http.MethodPost, "/sessions/"+letter.ID.String()+"/enhance", EnhanceRequest{Prompt: "friendly tone"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.Contains(decode[map[string]any](t, rec)["text"].(string), "your company"))
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, session.Options{}, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
	})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/templates", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := env.do(t, http.MethodGet, "/templates", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", errorMessage(t, rec))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil, "").Code)
}
