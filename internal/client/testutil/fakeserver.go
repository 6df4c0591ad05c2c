// Package testutil provides an in-process stand-in for the photo service,
// used by tests of the client, the workflows and the CLI.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/common"
)

// Call is one request seen by the fake API.
type Call struct {
	Action string
	Method string
	Body   map[string]string
	Authed bool
}

// Object is one payload PUT to the fake storage.
type Object struct {
	ContentType string
	Body        []byte
}

// FakeServer answers the API under /api/ and accepts uploads under /store/.
// Zero values give a happy path: signin succeeds and sets cookies, every
// authenticated call succeeds and storage accepts PUTs.
type FakeServer struct {
	*httptest.Server

	mu sync.Mutex

	// Codes overrides the responseCode per action.
	Codes map[string]string
	// Status overrides the HTTP status per action.
	Status map[string]int
	// Files is returned by list.
	Files []models.FileListEntry
	// StoreStatus is the status answered to storage PUTs; 0 means 200.
	StoreStatus int
	// StoreGate, when set, holds storage PUTs until it is closed or the
	// request is cancelled.
	StoreGate chan struct{}

	// AccessToken is the cookie value that authenticates a request.
	AccessToken string
	// IssueTokens makes successful signins issue a signed JWT for the
	// signin email instead of the fixed AccessToken.
	IssueTokens bool

	calls   []Call
	objects map[string]Object
	granted int
}

// NewFakeServer starts the fake; callers must Close it.
func NewFakeServer() *FakeServer {
	f := &FakeServer{
		Codes:       map[string]string{},
		Status:      map[string]int{},
		AccessToken: "access-1",
		objects:     map[string]Object{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/{action}", f.handleAPI)
	r.HandleFunc("/store/{key}", f.handleStore).Methods(http.MethodPut)
	f.Server = httptest.NewServer(r)
	return f
}

// Calls returns a copy of the API calls seen so far.
func (f *FakeServer) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Actions returns the action names of the API calls seen so far.
func (f *FakeServer) Actions() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.Action)
	}
	return out
}

// Objects returns the payloads stored so far, keyed by URL path.
func (f *FakeServer) Objects() map[string]Object {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Object, len(f.objects))
	for k, v := range f.objects {
		out[k] = v
	}
	return out
}

// Set changes the fake's configuration under its lock.
func (f *FakeServer) Set(fn func(f *FakeServer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *FakeServer) authed(r *http.Request) bool {
	c, err := r.Cookie(common.AccessTokenCookieName)
	return err == nil && c.Value == f.AccessToken
}

func (f *FakeServer) setSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: common.AccessTokenCookieName, Value: f.AccessToken, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: common.RefreshTokenCookieName, Value: "refresh-1", Path: "/", HttpOnly: true})
}

func (f *FakeServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]

	body := map[string]string{}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	authed := f.authed(r)
	f.calls = append(f.calls, Call{Action: action, Method: r.Method, Body: body, Authed: authed})

	if status, ok := f.Status[action]; ok {
		w.WriteHeader(status)
		return
	}

	wantMethod := http.MethodPost
	if action == "list" {
		wantMethod = http.MethodGet
	}
	if r.Method != wantMethod {
		writeEnvelope(w, "INVALID_REQUEST", nil)
		return
	}

	code, overridden := f.Codes[action]

	switch action {
	case "checkAuth":
		if !overridden {
			code = pick(authed, "SUCCESS", "NOT_AUTHENTICATED")
		}
		writeEnvelope(w, code, nil)

	case "signin", "confirmSignup":
		if !overridden {
			code = "SUCCESS"
		}
		if code == "SUCCESS" {
			if f.IssueTokens {
				token, err := GenerateToken(body["email"], time.Hour)
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				f.AccessToken = token
			}
			f.setSessionCookies(w)
		}
		writeEnvelope(w, code, nil)

	case "signup":
		if !overridden {
			code = "USER_CREATED"
		}
		writeEnvelope(w, code, nil)

	case "list":
		if !overridden {
			code = pick(authed, "SUCCESS", "NOT_AUTHENTICATED")
		}
		var data any
		if code == "SUCCESS" {
			files := f.Files
			if files == nil {
				files = []models.FileListEntry{}
			}
			data = files
		}
		writeEnvelope(w, code, data)

	case "requestUpload":
		if !overridden {
			code = pick(authed, "SUCCESS", "NOT_AUTHENTICATED")
		}
		var data any
		if code == "SUCCESS" {
			f.granted++
			data = fmt.Sprintf("%s/store/obj-%d?X-Amz-Signature=sig", f.URL, f.granted)
		}
		writeEnvelope(w, code, data)

	default:
		writeEnvelope(w, "INVALID_OPERATION", nil)
	}
}

func (f *FakeServer) handleStore(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	gate := f.StoreGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StoreStatus != 0 && f.StoreStatus != http.StatusOK {
		w.WriteHeader(f.StoreStatus)
		return
	}
	f.objects[r.URL.Path] = Object{ContentType: r.Header.Get("Content-Type"), Body: body}
	w.WriteHeader(http.StatusOK)
}

func writeEnvelope(w http.ResponseWriter, code string, data any) {
	env := map[string]any{"responseCode": code}
	if data != nil {
		env["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
