package upload

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

type transferCall struct {
	URL      string
	MimeType string
	Payload  []byte
}

// fakeAPI is a scripted service. Gates, when set, hold the matching call
// until closed.
type fakeAPI struct {
	mu sync.Mutex

	requestCode  string
	requestData  string
	requestErr   error
	requestGate  chan struct{}
	transferErr  error
	transferGate chan struct{}
	listCode     string
	listData     string
	listErr      error

	requests  []client.UploadRequest
	transfers []transferCall
	lists     int
}

func (f *fakeAPI) RequestUpload(ctx context.Context, req client.UploadRequest) (*client.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate, code, data, err := f.requestGate, f.requestCode, f.requestData, f.requestErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	resp := &client.Response{Code: code}
	if data != "" {
		resp.Data = []byte(data)
	}
	return resp, nil
}

func (f *fakeAPI) Transfer(ctx context.Context, target models.UploadTarget, mimeType string, payload []byte) error {
	f.mu.Lock()
	f.transfers = append(f.transfers, transferCall{target.URL, mimeType, append([]byte(nil), payload...)})
	gate, err := f.transferGate, f.transferErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) List(ctx context.Context) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	resp := &client.Response{Code: f.listCode}
	if f.listData != "" {
		resp.Data = []byte(f.listData)
	}
	return resp, nil
}

func (f *fakeAPI) Requests() []client.UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.UploadRequest(nil), f.requests...)
}

func (f *fakeAPI) Transfers() []transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transferCall(nil), f.transfers...)
}

// fakeJournal keeps the status history of every attempt.
type fakeJournal struct {
	mu       sync.Mutex
	created  []*models.UploadAttempt
	statuses map[string][]models.AttemptStatus
	updates  map[string][]uploads.Update
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{statuses: map[string][]models.AttemptStatus{}, updates: map[string][]uploads.Update{}}
}

func (j *fakeJournal) Create(ctx context.Context, a *models.UploadAttempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cp := *a
	j.created = append(j.created, &cp)
	j.statuses[a.ID] = append(j.statuses[a.ID], a.Status)
	return nil
}

func (j *fakeJournal) UpdateStatus(ctx context.Context, id string, u uploads.Update) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.statuses[id] = append(j.statuses[id], u.Status)
	j.updates[id] = append(j.updates[id], u)
	return nil
}

func (j *fakeJournal) History(id string) []models.AttemptStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.AttemptStatus(nil), j.statuses[id]...)
}

func (j *fakeJournal) Created() []*models.UploadAttempt {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*models.UploadAttempt(nil), j.created...)
}

type recorder struct {
	views  []models.View
	alerts []string
}

func (r *recorder) Navigate(v models.View) { r.views = append(r.views, v) }
func (r *recorder) Alert(msg string)       { r.alerts = append(r.alerts, msg) }

func startLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	l := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

func waitIdle(t *testing.T, l *eventloop.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.WaitIdle(ctx))
}

// settled waits until fn reports true on the loop.
func settled(t *testing.T, l *eventloop.Loop, fn func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		var ok bool
		l.Call(func() { ok = fn() })
		return ok
	}, 5*time.Second, 5*time.Millisecond)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func fixedIDs(t *testing.T, ids ...string) {
	t.Helper()
	orig := newAttemptID
	i := 0
	newAttemptID = func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
	t.Cleanup(func() { newAttemptID = orig })
}

type harness struct {
	loop    *eventloop.Loop
	api     *fakeAPI
	journal *fakeJournal
	rec     *recorder
	chooser *Chooser
	wf      *Workflow
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		loop:    startLoop(t),
		api:     &fakeAPI{requestCode: client.CodeSuccess, requestData: `"https://store/x"`},
		journal: newFakeJournal(),
		rec:     &recorder{},
		chooser: NewChooser(),
	}
	h.wf = NewWorkflow(h.loop, h.api, h.journal, h.rec, h.rec, logging.NewDiscardLogger())
	h.loop.Call(func() { h.wf.Mount(h.chooser) })
	return h
}

func (h *harness) choose(paths ...string) {
	h.loop.Call(func() { h.chooser.Choose(paths...) })
}

func (h *harness) state() models.UploadState {
	var s models.UploadState
	h.loop.Call(func() { s = h.wf.State() })
	return s
}

func (h *harness) pending() (models.PendingUpload, bool, int) {
	var (
		p    models.PendingUpload
		ok   bool
		size int
	)
	h.loop.Call(func() {
		p, ok = h.wf.Pending()
		size = h.wf.PayloadSize()
	})
	return p, ok, size
}

func (h *harness) ready(t *testing.T, name string, data []byte) {
	t.Helper()
	h.choose(writeFile(t, name, data))
	waitIdle(t, h.loop)
	require.Equal(t, models.UploadReady, h.state())
}
