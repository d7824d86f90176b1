package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/storage/sqlite"
)

// testClient drives the full engine through httptest, carrying the
// session cookie between requests like a browser would.
type testClient struct {
	t      *testing.T
	srv    *Server
	dbPath string
	cookie *http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	dbPath := filepath.Join(t.TempDir(), "planboard.db")
	store, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &testClient{t: t, srv: New(store, logger, ""), dbPath: dbPath}
}

// fork returns a client against the same server with its own session.
func (tc *testClient) fork() *testClient {
	return &testClient{t: tc.t, srv: tc.srv, dbPath: tc.dbPath}
}

// execSQL applies a raw statement to the database, for rows the API
// itself would never write.
func (tc *testClient) execSQL(query string, args ...any) {
	tc.t.Helper()

	db, err := sql.Open("sqlite3", "file:"+tc.dbPath+"?_busy_timeout=5000")
	require.NoError(tc.t, err)
	defer db.Close()

	_, err = db.Exec(query, args...)
	require.NoError(tc.t, err)
}

func (tc *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}

	rec := httptest.NewRecorder()
	tc.srv.Engine().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			if ck.MaxAge < 0 {
				tc.cookie = nil
			} else {
				tc.cookie = ck
			}
		}
	}
	return rec
}

func (tc *testClient) decode(rec *httptest.ResponseRecorder) map[string]any {
	tc.t.Helper()

	var out map[string]any
	require.NoError(tc.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (tc *testClient) signup(username string) int64 {
	tc.t.Helper()

	rec := tc.do(http.MethodPost, "/api/signup", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret123",
		"password_confirm": "secret123",
	})
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := tc.decode(rec)["user"].(map[string]any)
	return int64(user["id"].(float64))
}

func (tc *testClient) createProject(body gin.H) int64 {
	tc.t.Helper()

	rec := tc.do(http.MethodPost, "/api/projects", body)
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	project := tc.decode(rec)["project"].(map[string]any)
	return int64(project["id"].(float64))
}

func (tc *testClient) createTask(projectID int64, body gin.H) int64 {
	tc.t.Helper()

	rec := tc.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", projectID), body)
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	task := tc.decode(rec)["task"].(map[string]any)
	return int64(task["id"].(float64))
}

func (tc *testClient) addMember(projectID, userID int64, canEdit bool) {
	tc.t.Helper()

	rec := tc.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/members", projectID), gin.H{"user_id": userID})
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	if canEdit {
		rec = tc.do(http.MethodPut, fmt.Sprintf("/api/projects/%d/members/%d/permissions", projectID, userID),
			gin.H{"can_edit_tasks": true})
		require.Equal(tc.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	tc := newTestClient(t)
	tc.signup("alice")

	rec := tc.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := tc.decode(rec)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password_hash")

	rec = tc.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tc.do(http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	tc := newTestClient(t)
	tc.signup("alice")
	tc.do(http.MethodPost, "/api/logout", nil)

	rec := tc.do(http.MethodPost, "/api/login", gin.H{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tc.do(http.MethodPost, "/api/login", gin.H{"username": "nobody", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	tc := newTestClient(t)

	rec := tc.do(http.MethodPost, "/api/signup", gin.H{
		"username":         "al",
		"email":            "not-an-email",
		"password":         "123",
		"password_confirm": "456",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := tc.decode(rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "Username")
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Password")
	assert.Contains(t, fields, "PasswordConfirm")
}

func TestSignupDuplicateUsername(t *testing.T) {
	tc := newTestClient(t)
	tc.signup("alice")

	rec := tc.fork().do(http.MethodPost, "/api/signup", gin.H{
		"username":         "alice",
		"email":            "other@example.com",
		"password":         "secret123",
		"password_confirm": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
