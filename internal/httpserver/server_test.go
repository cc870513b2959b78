package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acfileserver/internal/config"
	"acfileserver/internal/registry"
)

const (
	testAdminUser  = "admin"
	testAdminPass  = "hunter2"
	testAdminRoute = "testpanel0000001"
)

// newTestServer builds a server over a temp shared directory seeded with
// the given files, none published.
func newTestServer(t *testing.T, names ...string) (*Server, *registry.Registry, string) {
	t.Helper()
	filesDir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(filesDir, name), []byte("payload of "+name), 0o644))
	}

	reg, err := registry.New(filesDir, t.TempDir(), nil)
	require.NoError(t, err)

	cfg := &config.Config{
		FilesDir:      filesDir,
		AdminUsername: testAdminUser,
		AdminPassword: testAdminPass,
		AdminRoute:    testAdminRoute,
		PageTitle:     config.DefaultPageTitle,
	}
	return New(cfg, reg, nil), reg, filesDir
}

// get performs a request against the server's handler and returns the
// recorder.
func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// TestIndex_ShowsOnlyPublished verifies the public page lists published
// files and nothing else.
func TestIndex_ShowsOnlyPublished(t *testing.T) {
	s, reg, _ := newTestServer(t, "public.txt", "private.txt")
	require.NoError(t, reg.SetPublished("public.txt", true))

	w := get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `href="/download/public.txt"`)
	assert.NotContains(t, body, "private.txt")
	assert.Contains(t, body, config.DefaultPageTitle)
}

// TestIndex_EmptyState verifies the page renders when nothing is
// published.
func TestIndex_EmptyState(t *testing.T) {
	s, _, _ := newTestServer(t, "private.txt")

	w := get(t, s, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No files are currently available")
}

// TestDownload_StatusMatrix covers the three download outcomes: 200 for
// published, 403 for known-but-unpublished, 404 for unknown.
func TestDownload_StatusMatrix(t *testing.T) {
	s, reg, _ := newTestServer(t, "open.txt", "closed.txt")
	require.NoError(t, reg.SetPublished("open.txt", true))

	w := get(t, s, "/download/open.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payload of open.txt", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	w = get(t, s, "/download/closed.txt")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(t, s, "/download/nope.txt")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDownload_TraversalRejected verifies escaped traversal names never
// reach the filesystem.
func TestDownload_TraversalRejected(t *testing.T) {
	s, _, filesDir := newTestServer(t, "open.txt")
	// Plant a secret outside the shared dir that a traversal would hit.
	secret := filepath.Join(filepath.Dir(filesDir), "secret.env")
	require.NoError(t, os.WriteFile(secret, []byte("ADMIN_PASSWORD=oops"), 0o600))

	for _, name := range []string{"..%2Fsecret.env", "..%5Csecret.env", ".env", "%2e%2e%2fsecret.env"} {
		w := get(t, s, "/download/"+name)
		assert.Equal(t, http.StatusNotFound, w.Code, "traversal via %q must 404", name)
		assert.NotContains(t, w.Body.String(), "oops")
	}
}

// TestHealthz is the liveness probe contract.
func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

// TestAdmin_RequiresAuth verifies the challenge for missing and wrong
// credentials.
func TestAdmin_RequiresAuth(t *testing.T) {
	s, _, _ := newTestServer(t, "a.txt")

	w := get(t, s, "/"+testAdminRoute)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="Login Required"`, w.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/"+testAdminRoute, nil)
	req.SetBasicAuth(testAdminUser, "wrong")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAdmin_PanelListsEverything verifies the authed panel shows all
// files regardless of publication, with checked boxes for published ones.
func TestAdmin_PanelListsEverything(t *testing.T) {
	s, reg, _ := newTestServer(t, "pub.txt", "priv.txt")
	require.NoError(t, reg.SetPublished("pub.txt", true))

	req := httptest.NewRequest(http.MethodGet, "/"+testAdminRoute, nil)
	req.SetBasicAuth(testAdminUser, testAdminPass)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "pub.txt")
	assert.Contains(t, body, "priv.txt")
	assert.Contains(t, body, `name="pub.txt" checked`)
}

// TestAdmin_PanelSeesNewFiles verifies the panel refresh picks up files
// dropped in after startup without waiting for the watcher.
func TestAdmin_PanelSeesNewFiles(t *testing.T) {
	s, _, filesDir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(filesDir, "late.txt"), []byte("x"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/"+testAdminRoute, nil)
	req.SetBasicAuth(testAdminUser, testAdminPass)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "late.txt")
}

// TestAdmin_UpdateAppliesCheckboxSet posts a form and verifies the
// publication flip plus the redirect back to the panel.
func TestAdmin_UpdateAppliesCheckboxSet(t *testing.T) {
	s, reg, _ := newTestServer(t, "a.txt", "b.txt")
	require.NoError(t, reg.SetPublished("a.txt", true))

	form := url.Values{}
	form.Set("b.txt", "on") // a.txt omitted → unpublish

	req := httptest.NewRequest(http.MethodPost, "/"+testAdminRoute, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(testAdminUser, testAdminPass)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/"+testAdminRoute, w.Header().Get("Location"))

	assert.False(t, reg.IsPublished("a.txt"), "omitted checkbox means unpublish")
	assert.True(t, reg.IsPublished("b.txt"))
}

// TestRun_GracefulShutdown verifies cancelling the context stops the
// server cleanly.
func TestRun_GracefulShutdown(t *testing.T) {
	s, _, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	// Give ListenAndServe a moment to bind before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "context cancellation should shut down cleanly")
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}
