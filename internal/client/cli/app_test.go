package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/config"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/lphoto/internal/client/services"
	"github.com/dmitrijs2005/lphoto/internal/client/testutil"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

// newTestApp builds an App against srv with an in-memory database. input
// is what the user types, line by line.
func newTestApp(t *testing.T, srv *testutil.FakeServer, input ...string) *App {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	api, err := client.NewHTTPClient(srv.URL, 0)
	require.NoError(t, err)

	a := &App{
		config:   &config.Config{ServerURL: srv.URL, DatabasePath: ":memory:"},
		log:      logging.NewDiscardLogger(),
		db:       db,
		api:      api,
		sessions: services.NewSessionService(api, db),
		history:  services.NewHistoryService(uploads.NewSQLiteRepository(db)),
		reader:   bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n")),
		out:      io.Discard,
	}
	a.wire(uploads.NewSQLiteRepository(db))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func runCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// scriptPasswords makes getPassword answer with pws in order.
func scriptPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(prompt string, w io.Writer) ([]byte, error) {
		require.NotEmpty(t, pws, "unexpected password prompt %q", prompt)
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func lastCall(t *testing.T, srv *testutil.FakeServer, action string) testutil.Call {
	t.Helper()
	calls := srv.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Action == action {
			return calls[i]
		}
	}
	t.Fatalf("no %s call", action)
	return testutil.Call{}
}

func TestApp_SignedOutUserSignsInAndSeesFiles(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "pw")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.Files = []models.FileListEntry{{ID: "f1", Name: "beach.jpg", Description: "Sunset"}}

	a := newTestApp(t, srv,
		"signin",
		"user@example.com",
		"show 1",
		"exit",
	)
	require.NoError(t, a.Run(runCtx(t)))

	assert.Contains(t, *out, "Please sign in: signin, signup or confirm")
	assert.Contains(t, *out, "  1. beach.jpg  Sunset")
	assert.Contains(t, *out, "ID:          f1")
	assert.Contains(t, *out, "No sizes yet")
	assert.Equal(t, map[string]string{"email": "user@example.com", "password": "pw"}, lastCall(t, srv, "signin").Body)
	assert.Equal(t, models.ViewMain, a.View())

	// The session was saved for the next run.
	api, err := client.NewHTTPClient(srv.URL, 0)
	require.NoError(t, err)
	n, err := services.NewSessionService(api, a.db).Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestApp_SigninDenied(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "bad")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.Codes["signin"] = "INVALID_PASSWORD"

	a := newTestApp(t, srv, "signin", "user@example.com", "exit")
	require.NoError(t, a.Run(runCtx(t)))

	assert.Contains(t, *out, "! got: INVALID_PASSWORD")
	assert.Equal(t, models.ViewSignin, a.View())
}

func TestApp_TemporaryPasswordIsConfirmed(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "temp", "fresh", "fresh")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.Codes["signin"] = "TEMPORARY_PASSWORD"

	a := newTestApp(t, srv,
		"signin",
		"new@example.com",
		"confirm",
		"",
		"exit",
	)
	require.NoError(t, a.Run(runCtx(t)))

	assert.Contains(t, *out, "Use 'confirm' with the temporary password from the signup email")
	assert.Equal(t, map[string]string{
		"email":             "new@example.com",
		"temporaryPassword": "temp",
		"password":          "fresh",
	}, lastCall(t, srv, "confirmSignup").Body)
	assert.Contains(t, *out, "No files uploaded yet")
	assert.Equal(t, models.ViewMain, a.View())
}

func TestApp_ConfirmRejectsMismatchedPasswords(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "temp", "one", "two")

	srv := testutil.NewFakeServer()
	defer srv.Close()

	a := newTestApp(t, srv, "signup", "new@example.com", "confirm", "", "exit")
	require.NoError(t, a.Run(runCtx(t)))

	assert.Equal(t, map[string]string{"email": "new@example.com"}, lastCall(t, srv, "signup").Body)
	assert.Contains(t, *out, "Passwords don't match")
	assert.NotContains(t, srv.Actions(), "confirmSignup")
	assert.Equal(t, models.ViewConfirmSignup, a.View())
}

func TestApp_UploadFromRestoredSession(t *testing.T) {
	out := capturePrints(t)

	srv := testutil.NewFakeServer()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	a := newTestApp(t, srv,
		"upload",
		"select "+path,
		"describe at the lake",
		"send",
		"history",
		"orphans",
		"exit",
	)
	_, err := a.api.Signin(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, a.sessions.Save(context.Background()))
	a.api.ClearCookies()
	require.Empty(t, a.api.Cookies())

	require.NoError(t, a.Run(runCtx(t)))

	assert.Contains(t, *out, "File: photo.jpg (10 bytes, image/jpeg)")
	assert.Contains(t, *out, "Ready to send 10 bytes")
	assert.Contains(t, *out, "Upload complete")
	assert.Contains(t, *out, "No orphaned uploads")

	req := lastCall(t, srv, "requestUpload")
	assert.Equal(t, map[string]string{
		"filename":    "photo.jpg",
		"mimetype":    "image/jpeg",
		"description": "at the lake",
	}, req.Body)

	objects := srv.Objects()
	require.Len(t, objects, 1)
	for _, o := range objects {
		assert.Equal(t, "image/jpeg", o.ContentType)
		assert.Equal(t, []byte("0123456789"), o.Body)
	}

	var completed bool
	for _, line := range *out {
		if strings.Contains(line, "completed") && strings.Contains(line, "photo.jpg (10 bytes)") {
			completed = true
		}
	}
	assert.True(t, completed, "history lists the completed attempt")
}

func TestApp_RejectedTransferShowsAsOrphan(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "pw")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.StoreStatus = 403

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	a := newTestApp(t, srv,
		"signin", "user@example.com",
		"upload",
		"select "+path,
		"send",
		"cancel",
		"orphans",
		"exit",
	)
	require.NoError(t, a.Run(runCtx(t)))

	var alerted, orphan bool
	for _, line := range *out {
		if strings.HasPrefix(line, "! upload failed:") {
			alerted = true
		}
		if strings.Contains(line, "photo.png") && strings.Contains(line, srv.URL+"/store/obj-1") &&
			!strings.Contains(line, "X-Amz-Signature") {
			orphan = true
		}
	}
	assert.True(t, alerted, "transfer failure is alerted")
	assert.True(t, orphan, "granted target is listed as orphaned")
}

func TestApp_LogoutForgetsSession(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "pw")

	srv := testutil.NewFakeServer()
	defer srv.Close()

	a := newTestApp(t, srv, "signin", "user@example.com", "logout", "whoami", "exit")
	require.NoError(t, a.Run(runCtx(t)))

	assert.Equal(t, models.ViewSignin, a.View())
	assert.Empty(t, a.api.Cookies())
	assert.Contains(t, *out, `Command "whoami" is not available in the signin view`)

	n, err := a.sessions.Restore(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApp_ListSignedOutGoesToSignin(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "pw")

	srv := testutil.NewFakeServer()
	defer srv.Close()

	a := newTestApp(t, srv, "signin", "user@example.com", "list", "exit")
	require.NoError(t, a.Run(runCtx(t)))
	assert.Equal(t, models.ViewMain, a.View())

	srv.Set(func(f *testutil.FakeServer) { f.Codes["list"] = "NOT_AUTHENTICATED" })
	require.NoError(t, a.List(context.Background()))

	assert.Equal(t, models.ViewSignin, a.View())
	assert.Equal(t, "Please sign in: signin, signup or confirm", (*out)[len(*out)-1])
}

func TestApp_WhoamiAndPromptFromAccessToken(t *testing.T) {
	out := capturePrints(t)
	scriptPasswords(t, "pw")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.IssueTokens = true

	a := newTestApp(t, srv, "signin", "user@example.com", "whoami", "exit")
	require.NoError(t, a.Run(runCtx(t)))

	assert.Contains(t, *out, "Signed in as user@example.com")
	assert.Contains(t, *out, "lphoto [main] user@example.com> ")
	assert.Contains(t, *out, "lphoto [signin]> ")

	var expiry bool
	for _, line := range *out {
		if strings.HasPrefix(line, "Access token expires at ") {
			expiry = true
		}
	}
	assert.True(t, expiry)
}

func TestApp_InterruptAtPasswordPromptStopsRun(t *testing.T) {
	capturePrints(t)

	srv := testutil.NewFakeServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orig := getPassword
	getPassword = func(prompt string, w io.Writer) ([]byte, error) {
		cancel()
		return []byte("pw"), nil
	}
	t.Cleanup(func() { getPassword = orig })

	a := newTestApp(t, srv, "signin", "user@example.com", "list", "exit")

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept running after the context was cancelled")
	}
	assert.NotContains(t, srv.Actions(), "signin")
}

func TestApp_BackDropsTemporaryPassword(t *testing.T) {
	capturePrints(t)
	scriptPasswords(t, "temp")

	srv := testutil.NewFakeServer()
	defer srv.Close()
	srv.Codes["signin"] = "TEMPORARY_PASSWORD"

	a := newTestApp(t, srv, "signin", "new@example.com", "exit")
	require.NoError(t, a.Run(runCtx(t)))

	var held bool
	a.loop.Call(func() { held = a.confirm.HasTemporaryPassword() })
	require.True(t, held, "signin carries the temporary password over")

	require.NoError(t, a.Back(context.Background()))

	var email string
	a.loop.Call(func() {
		held = a.confirm.HasTemporaryPassword()
		email = a.confirm.Email()
	})
	assert.False(t, held)
	assert.Empty(t, email)
	assert.Equal(t, models.ViewSignin, a.View())
}
