package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/folio/internal/config"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/handlers"
	"github.com/nfrund/folio/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAssetBaseURL = "http://localhost:5000/uploads"

type testEnv struct {
	srv    *Server
	fs     afero.Fs
	assets *storage.AferoStore
	docs   *database.MemoryPortfolioStore
}

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:   config.StoreBackendMemory,
		JWTSecret:      "test-secret",
		JWTTTL:         7 * 24 * time.Hour,
		Port:           "0",
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxUploadBytes: 10 << 20,
		AssetBackend:   config.AssetBackendLocal,
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	fs := afero.NewMemMapFs()
	store, err := storage.NewAferoStore(fs, testAssetBaseURL)
	require.NoError(t, err)
	docs := database.NewMemoryPortfolioStore()

	srv := NewWithDependencies(cfg, Dependencies{
		Portfolios: docs,
		Admins:     database.NewMemoryAdminStore(),
		Assets:     store,
	})
	srv.RegisterRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.StartWorkers(ctx))
	t.Cleanup(func() {
		cancel()
		_ = srv.bridge.Close()
	})

	return &testEnv{srv: srv, fs: fs, assets: store, docs: docs}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.srv.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return env.do(req)
}

// adminToken registers the admin and logs in.
func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	creds := map[string]string{"username": "owner", "password": "s3cret-pass"}

	rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out handlers.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (env *testEnv) portfolio(t *testing.T) domain.Portfolio {
	t.Helper()
	rec := env.doJSON(t, http.MethodGet, "/api/portfolio-data", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc domain.Portfolio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, target, token string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.field, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (env *testEnv) assetExists(t *testing.T, url string) bool {
	t.Helper()
	key, ok := env.assets.KeyFromURL(url)
	require.True(t, ok, "url %q does not belong to the test store", url)
	exists, err := afero.Exists(env.fs, "/"+key)
	require.NoError(t, err)
	return exists
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.doJSON(t, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "OK", out.Status)
	_, err := time.Parse(time.RFC3339, out.Timestamp)
	assert.NoError(t, err)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.doJSON(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, rec.Body.String())
}

func TestGetPortfolio_SeedsDefaults(t *testing.T) {
	env := newTestEnv(t, testConfig())

	doc := env.portfolio(t)

	require.Len(t, doc.Experience.Sections, 3)
	assert.Equal(t, "Work", doc.Experience.Sections[0].Type)
	assert.Equal(t, "Internship", doc.Experience.Sections[1].Type)
	assert.Equal(t, "Volunteership", doc.Experience.Sections[2].Type)
	assert.Equal(t, 1, env.docs.Saves())

	env.portfolio(t)
	assert.Equal(t, 1, env.docs.Saves(), "second read must not write")
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, testConfig())

	routes := []struct{ method, path string }{
		{http.MethodPut, "/api/portfolio-data"},
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/abc"},
		{http.MethodDelete, "/api/projects/abc"},
		{http.MethodPost, "/api/experience"},
		{http.MethodPut, "/api/experience/abc"},
		{http.MethodDelete, "/api/experience/abc"},
		{http.MethodPut, "/api/resume"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := env.doJSON(t, r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Not authorized, no token"}`, rec.Body.String())
		})
	}

	rec := env.doJSON(t, http.MethodPost, "/api/projects", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authorized, token failed"}`, rec.Body.String())
}

func TestRegisterOnlyOnce(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.adminToken(t)

	rec := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "intruder", "password": "pw"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Admin user already exists. Registration is closed."}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "intruder", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials."}`, rec.Body.String())
}

func TestAddExperience_Work(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)
	before := env.portfolio(t).Experience.Sections[0].Items

	rec := env.doJSON(t, http.MethodPost, "/api/experience", token, map[string]string{
		"section":     "Work",
		"company":     "Acme",
		"role":        "Engineer",
		"duration":    "2024 to Present",
		"description": "Builds things.",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[handlers.ExperienceResponse](t, rec)
	assert.Equal(t, "Experience added successfully", out.Message)
	require.NotNil(t, out.Experience)
	work := out.Experience.Section("Work")
	require.NotNil(t, work)
	require.Len(t, work.Items, len(before)+1)
	item := work.Items[len(work.Items)-1]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Acme", item.Company)
	assert.Equal(t, "Engineer", item.Role)

	after := env.portfolio(t).Experience.Sections[0].Items
	require.Len(t, after, len(before)+1)
	assert.Equal(t, item.ID, after[len(after)-1].ID)
}

func TestExperienceLifecycle(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)

	rec := env.doJSON(t, http.MethodPost, "/api/experience", token, map[string]string{"section": "Internship", "role": "Intern"})
	require.Equal(t, http.StatusCreated, rec.Code)
	internship := decode[handlers.ExperienceResponse](t, rec).Experience.Section("Internship")
	require.NotNil(t, internship)
	id := internship.Items[len(internship.Items)-1].ID

	rec = env.doJSON(t, http.MethodPut, "/api/experience/"+id, token, map[string]string{"section": "Internship", "role": "Senior Intern"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	internship = decode[handlers.ExperienceResponse](t, rec).Experience.Section("Internship")
	require.NotNil(t, internship)
	assert.Equal(t, "Senior Intern", internship.Items[internship.IndexOf(id)].Role)

	rec = env.doJSON(t, http.MethodPut, "/api/experience/"+id, token, map[string]string{"section": "Hobbies", "role": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Section not found"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodDelete, "/api/experience/"+id+"?section=Internship", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	deleted := decode[handlers.ExperienceResponse](t, rec)
	assert.Equal(t, "Experience deleted successfully", deleted.Message)
	assert.Equal(t, -1, deleted.Experience.Section("Internship").IndexOf(id))

	rec = env.doJSON(t, http.MethodDelete, "/api/experience/"+id, token, map[string]string{"section": "Internship"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Experience item not found"}`, rec.Body.String())
}

func TestAddProject_RejectsDisallowedFileType(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)
	before := env.portfolio(t)
	saves := env.docs.Saves()

	req := multipartRequest(t, http.MethodPost, "/api/projects", token,
		map[string]string{"title": "Notes"},
		&filePart{field: "image", filename: "notes.txt", contentType: "text/plain", data: []byte("hello")})
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid file type. Only images, PDFs, and Word documents are allowed."}`, rec.Body.String())
	assert.Equal(t, saves, env.docs.Saves(), "document must not be written")
	assert.Equal(t, before.Projects, env.portfolio(t).Projects)

	files, err := afero.Glob(env.fs, "/portfolio/*")
	require.NoError(t, err)
	assert.Empty(t, files, "nothing may reach the asset store")
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)

	// Add with an image.
	req := multipartRequest(t, http.MethodPost, "/api/projects", token,
		map[string]string{"title": "Folio", "description": "Portfolio site", "buttonText": "View", "buttonLink": "https://example.com"},
		&filePart{field: "image", filename: "shot.png", contentType: "image/png", data: pngBytes(t, 20, 10)})
	rec := env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	added := decode[handlers.ProjectResponse](t, rec)
	assert.Equal(t, "Project added successfully", added.Message)
	require.NotNil(t, added.Project)
	id := added.Project.ID
	firstImage := added.Project.Image
	assert.True(t, strings.HasPrefix(firstImage, testAssetBaseURL+"/portfolio/"), firstImage)
	assert.True(t, env.assetExists(t, firstImage))
	assert.Equal(t, id, added.Projects[len(added.Projects)-1].ID)

	// Update without a file keeps the image.
	req = multipartRequest(t, http.MethodPut, "/api/projects/"+id, token,
		map[string]string{"title": "Folio v2"}, nil)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[handlers.ProjectResponse](t, rec)
	assert.Equal(t, "Folio v2", updated.Project.Title)
	assert.Equal(t, firstImage, updated.Project.Image)
	assert.Equal(t, id, updated.Project.ID)

	// Update with a file replaces the image and releases the old one.
	req = multipartRequest(t, http.MethodPut, "/api/projects/"+id, token,
		map[string]string{"title": "Folio v3"},
		&filePart{field: "image", filename: "new.png", contentType: "image/png", data: pngBytes(t, 8, 8)})
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[handlers.ProjectResponse](t, rec)
	assert.NotEqual(t, firstImage, replaced.Project.Image)
	assert.True(t, env.assetExists(t, replaced.Project.Image))
	assert.Eventually(t, func() bool {
		exists, _ := afero.Exists(env.fs, "/"+strings.TrimPrefix(firstImage, testAssetBaseURL+"/"))
		return !exists
	}, 2*time.Second, 10*time.Millisecond, "old image should be deleted")

	// Unknown id.
	rec = env.doJSON(t, http.MethodDelete, "/api/projects/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Project not found"}`, rec.Body.String())

	// Delete.
	rec = env.doJSON(t, http.MethodDelete, "/api/projects/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	deleted := decode[handlers.ProjectsResponse](t, rec)
	assert.Equal(t, "Project deleted successfully", deleted.Message)
	for _, p := range deleted.Projects {
		assert.NotEqual(t, id, p.ID)
	}
	assert.Eventually(t, func() bool {
		exists, _ := afero.Exists(env.fs, "/"+strings.TrimPrefix(replaced.Project.Image, testAssetBaseURL+"/"))
		return !exists
	}, 2*time.Second, 10*time.Millisecond, "deleted project's image should be released")
}

func TestUpdateResume(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)

	req := multipartRequest(t, http.MethodPut, "/api/resume", token, nil,
		&filePart{field: "resume", filename: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4\n%test\n")})
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[handlers.ResumeResponse](t, rec)
	assert.Equal(t, "Resume updated successfully", out.Message)
	assert.Equal(t, testAssetBaseURL+"/portfolio/cv.pdf", out.ResumeURL)
	assert.Equal(t, out.ResumeURL, env.portfolio(t).ResumeURL)
	assert.True(t, env.assetExists(t, out.ResumeURL))

	// The stored file is served back under the public base path.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/uploads/portfolio/cv.pdf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4\n%test\n", rec.Body.String())

	// Without a file the current link is returned.
	req = multipartRequest(t, http.MethodPut, "/api/resume", token, map[string]string{"note": "none"}, nil)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, out.ResumeURL, decode[handlers.ResumeResponse](t, rec).ResumeURL)
}

func TestUpload_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 1 << 20
	env := newTestEnv(t, cfg)
	token := env.adminToken(t)

	req := multipartRequest(t, http.MethodPut, "/api/resume", token, nil,
		&filePart{field: "resume", filename: "cv.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("a"), 2<<20)})
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"File too large. Maximum size is 1MB."}`, rec.Body.String())
}

func TestReplacePortfolio(t *testing.T) {
	env := newTestEnv(t, testConfig())
	token := env.adminToken(t)

	doc := env.portfolio(t)
	doc.Contact.Title = "Say hello"
	doc.Projects = append(doc.Projects, domain.Project{Title: "Imported"})

	rec := env.doJSON(t, http.MethodPut, "/api/portfolio-data", token, doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := env.portfolio(t)
	assert.Equal(t, "Say hello", stored.Contact.Title)
	last := stored.Projects[len(stored.Projects)-1]
	assert.Equal(t, "Imported", last.Title)
	assert.NotEmpty(t, last.ID, "new projects get an identity")

	doc.Contact.FormFields = []domain.FormField{{ID: "name"}}
	rec = env.doJSON(t, http.MethodPut, "/api/portfolio-data", token, doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid portfolio data")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.doJSON(t, http.MethodGet, "/health", "", nil)

	rec := env.doJSON(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "folio_requests_total")
}
