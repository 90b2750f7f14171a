package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go-inventory-backend/auth"
	"go-inventory-backend/config"
	"go-inventory-backend/database"
	"go-inventory-backend/events"
	"go-inventory-backend/models"
	"go-inventory-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) Emit(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// testApp is the full router over a fresh sqlite file and upload dir.
type testApp struct {
	router  *gin.Engine
	db      *gorm.DB
	uploads string
	events  *recordedEvents
	handler *Handler
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	uploads := filepath.Join(dir, "uploads")
	media, err := storage.NewLocalStore(uploads)
	require.NoError(t, err)

	users := models.NewUsersRepository(db)
	authenticator := auth.NewAuthenticator(users, auth.NewTokenService("test-secret", time.Hour))
	rec := &recordedEvents{}

	h := New(Options{
		Users:              users,
		Credentials:        authenticator,
		Categories:         models.NewCategoriesRepository(db),
		Products:           models.NewProductsRepository(db),
		Reports:            models.NewReportsRepository(db),
		Media:              media,
		Events:             rec,
		UniqueProductCodes: true,
	})
	router := NewRouter(h, authenticator, RouterOptions{UploadDir: uploads})
	return &testApp{router: router, db: db, uploads: uploads, events: rec, handler: h}
}

type upload struct {
	field, filename string
	data            []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (a *testApp) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, email string) *httptest.ResponseRecorder {
	t.Helper()
	req := multipartRequest(t, "POST", "/users", map[string]string{
		"name":     "Alice",
		"email":    email,
		"password": "password1",
	}, upload{"profile_image", "me.PNG", []byte("png bytes")})
	return a.do(req, "")
}

func (a *testApp) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest("POST", "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, "")
}

// signup registers email and returns a bearer token for it.
func (a *testApp) signup(t *testing.T, email string) string {
	t.Helper()
	require.Equal(t, http.StatusOK, a.register(t, email).Code)
	w := a.login(t, email, "password1")
	require.Equal(t, http.StatusOK, w.Code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.AccessToken
}

func (a *testApp) createCategory(t *testing.T, token, name string) CategoryResponse {
	t.Helper()
	w := a.do(jsonRequest("POST", "/products/categories", gin.H{"name": name}), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (a *testApp) createProduct(t *testing.T, token string, fields map[string]string, files ...upload) ProductResponse {
	t.Helper()
	w := a.do(multipartRequest(t, "POST", "/products", fields, files...), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type validationBody struct {
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors"`
}

func decodeValidation(t *testing.T, w *httptest.ResponseRecorder) validationBody {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var out validationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func fields(body validationBody) []string {
	var out []string
	for _, e := range body.Errors {
		out = append(out, e.Field)
	}
	return out
}
