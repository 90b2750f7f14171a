// user_test.go - Tests for registration, login and the profile endpoint

package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	// --- Test registration ---
	w := app.register(t, "alice@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Regexp(t, `^http://example\.com/uploads/profile_images/[0-9a-f-]{36}\.png$`, user.ProfileImage)
	assert.NotContains(t, w.Body.String(), "password")

	// The image is on disk under the upload root
	rel := strings.TrimPrefix(user.ProfileImage, "http://example.com/uploads/")
	data, err := os.ReadFile(filepath.Join(app.uploads, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	// --- Test login ---
	w = app.login(t, "alice@example.com", "password1")
	require.Equal(t, http.StatusOK, w.Code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	// --- Test login with wrong password or unknown email ---
	for _, creds := range [][2]string{{"alice@example.com", "wrongpass"}, {"nobody@example.com", "password1"}} {
		w = app.login(t, creds[0], creds[1])
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"detail":"Wrong email or password"}`, w.Body.String())
	}

	// --- Test profile ---
	w = app.do(jsonRequest("GET", "/users/me", nil), tok.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, user.ProfileImage, me.ProfileImage)
}

func TestRegisterDuplicateEmailRemovesUpload(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusOK, app.register(t, "alice@example.com").Code)

	w := app.register(t, "alice@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Email is already registered"}`, w.Body.String())

	// Only the first registration left a file behind
	files, err := filepath.Glob(filepath.Join(app.uploads, "profile_images", "*"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	req := multipartRequest(t, "POST", "/users", map[string]string{
		"name":     "Al",
		"email":    "not-an-email",
		"password": "123",
	})
	body := decodeValidation(t, app.do(req, ""))

	assert.Equal(t, "Error validating request", body.Detail)
	assert.ElementsMatch(t, []string{"name", "email", "password", "profile_image"}, fields(body))
	for _, e := range body.Errors {
		assert.NotEmpty(t, e.Message)
		assert.NotEmpty(t, e.Type)
		if e.Field == "name" {
			assert.Equal(t, "string_too_short", e.Type)
		}
	}
}

func TestMeRequiresToken(t *testing.T) {
	app := setupApp(t)

	w := app.do(jsonRequest("GET", "/users/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(jsonRequest("GET", "/users/me", nil), "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}
