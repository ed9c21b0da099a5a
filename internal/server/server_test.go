package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestServer spins up a fully wired server against an in-memory
// database. Every test gets its own instance, so there is no shared
// state between tests.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	srv, err := New(Config{
		DBPath:         ":memory:",
		JWTSecret:      "test-secret-at-least-16-chars!!",
		BcryptCost:     bcrypt.MinCost,
		AllowedOrigins: []string{"http://localhost:5173"},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv
}

// doJSON performs a request with an optional JSON body and bearer token,
// returning the status code and the decoded response body.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"response body is not JSON: %s", rec.Body.String())
	}
	return rec.Code, decoded
}

func signup(t *testing.T, srv *Server, username, email, password string) {
	t.Helper()
	status, body := doJSON(t, srv, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "signup failed: %v", body)
}

func signin(t *testing.T, srv *Server, username, password string) string {
	t.Helper()
	status, body := doJSON(t, srv, http.MethodPost, "/api/v1/signin", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "signin failed: %v", body)
	token, ok := body["token"].(string)
	require.True(t, ok, "signin response has no token: %v", body)
	return token
}

func TestSignupSignin(t *testing.T) {
	srv := newTestServer(t)

	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")
	token := signin(t, srv, "alice", "Str0ng!pass")
	assert.NotEmpty(t, token)

	// The token works on a protected route.
	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "passwordHash")
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"username too short", map[string]string{"username": "ab", "email": "a@b.com", "password": "Str0ng!pass"}},
		{"invalid email", map[string]string{"username": "alice", "email": "not-an-email", "password": "Str0ng!pass"}},
		{"password too short", map[string]string{"username": "alice", "email": "a@b.com", "password": "S0r!t"}},
		{"password no uppercase", map[string]string{"username": "alice", "email": "a@b.com", "password": "weakpass1!"}},
		{"password no digit", map[string]string{"username": "alice", "email": "a@b.com", "password": "Weakpass!!"}},
		{"password no special", map[string]string{"username": "alice", "email": "a@b.com", "password": "Weakpass11"}},
		{"missing username", map[string]string{"email": "a@b.com", "password": "Str0ng!pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/signup", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)

	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSigninFailures(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")

	t.Run("unknown user", func(t *testing.T) {
		status, body := doJSON(t, srv, http.MethodPost, "/api/v1/signin", "", map[string]string{
			"username": "nobody",
			"password": "Str0ng!pass",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "User does not exist", body["message"])
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := doJSON(t, srv, http.MethodPost, "/api/v1/signin", "", map[string]string{
			"username": "alice",
			"password": "Wr0ng!pass!",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Incorrect credentials", body["message"])
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodPost, "/api/v1/content"},
		{http.MethodGet, "/api/v1/content"},
		{http.MethodDelete, "/api/v1/content"},
		{http.MethodPost, "/api/v1/brain/share"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			status, _ := doJSON(t, srv, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status, "no token")

			status, _ = doJSON(t, srv, rt.method, rt.path, "not-a-jwt", nil)
			assert.Equal(t, http.StatusUnauthorized, status, "garbage token")
		})
	}
}

func TestContentLifecycle(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")
	token := signin(t, srv, "alice", "Str0ng!pass")

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", token, map[string]string{
		"title": "Go proverbs",
		"link":  "https://go-proverbs.github.io",
		"type":  "article",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/content", token, nil)
	require.Equal(t, http.StatusOK, status)
	content, ok := body["content"].([]any)
	require.True(t, ok, "response has no content array: %v", body)
	require.Len(t, content, 1)

	entry := content[0].(map[string]any)
	assert.Equal(t, "Go proverbs", entry["title"])
	assert.Equal(t, "article", entry["type"])
	owner, ok := entry["user"].(map[string]any)
	require.True(t, ok, "entry has no expanded user: %v", entry)
	assert.Equal(t, "alice", owner["username"])

	status, body = doJSON(t, srv, http.MethodDelete, "/api/v1/content", token, map[string]string{
		"contentId": entry["id"].(string),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Content deleted successfully", body["message"])

	status, body = doJSON(t, srv, http.MethodGet, "/api/v1/content", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["content"])
}

func TestContentValidation(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")
	token := signin(t, srv, "alice", "Str0ng!pass")

	t.Run("title too long", func(t *testing.T) {
		status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", token, map[string]string{
			"title": "this title is way too long to be accepted here",
			"type":  "article",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("missing type", func(t *testing.T) {
		status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", token, map[string]string{
			"title": "untyped",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("link optional", func(t *testing.T) {
		status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", token, map[string]string{
			"title": "no link",
			"type":  "note",
		})
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("delete without contentId", func(t *testing.T) {
		status, _ := doJSON(t, srv, http.MethodDelete, "/api/v1/content", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestContentIsolationBetweenUsers(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")
	signup(t, srv, "bobby", "bob@example.com", "Str0ng!pass")
	aliceToken := signin(t, srv, "alice", "Str0ng!pass")
	bobToken := signin(t, srv, "bobby", "Str0ng!pass")

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", aliceToken, map[string]string{
		"title": "private",
		"type":  "note",
	})
	require.Equal(t, http.StatusOK, status)

	// Bob's list is empty.
	status, body := doJSON(t, srv, http.MethodGet, "/api/v1/content", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["content"])

	// Bob cannot delete Alice's content.
	status, body = doJSON(t, srv, http.MethodGet, "/api/v1/content", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	aliceEntry := body["content"].([]any)[0].(map[string]any)

	status, _ = doJSON(t, srv, http.MethodDelete, "/api/v1/content", bobToken, map[string]string{
		"contentId": aliceEntry["id"].(string),
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Alice's content is still there.
	status, body = doJSON(t, srv, http.MethodGet, "/api/v1/content", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["content"], 1)
}

func TestShareLifecycle(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "alice", "alice@example.com", "Str0ng!pass")
	token := signin(t, srv, "alice", "Str0ng!pass")

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/content", token, map[string]string{
		"title": "shared read",
		"link":  "https://example.com",
		"type":  "article",
	})
	require.Equal(t, http.StatusOK, status)

	// Enable sharing.
	status, body := doJSON(t, srv, http.MethodPost, "/api/v1/brain/share", token, map[string]bool{"share": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sharable link enabled", body["message"])
	hash, ok := body["hash"].(string)
	require.True(t, ok, "share response has no hash: %v", body)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{10}$`), hash)

	// Enabling again returns the same hash.
	status, body = doJSON(t, srv, http.MethodPost, "/api/v1/brain/share", token, map[string]bool{"share": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, hash, body["hash"])

	// Anyone with the hash can read the brain, no token needed.
	status, body = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/brain/%s", hash), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Data fetched successfully", body["message"])
	content := body["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "shared read", content[0].(map[string]any)["title"])
	assert.NotNil(t, body["entry"])

	// Disable sharing; the hash comes back null and the link dies.
	status, body = doJSON(t, srv, http.MethodPost, "/api/v1/brain/share", token, map[string]bool{"share": false})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sharable link disabled", body["message"])
	assert.Nil(t, body["hash"])

	status, _ = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/brain/%s", hash), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Re-enabling issues a fresh hash.
	status, body = doJSON(t, srv, http.MethodPost, "/api/v1/brain/share", token, map[string]bool{"share": true})
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, hash, body["hash"])
}

func TestShareResolveUnknownHash(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, srv, http.MethodGet, "/api/v1/brain/n0SuchHash", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInvalidJSONBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGitHubRoutesDisabledWithoutConfig(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, srv, http.MethodGet, "/auth/github/login", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
