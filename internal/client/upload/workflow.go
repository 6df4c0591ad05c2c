// Package upload implements the two-phase upload of a photo and the listing
// of uploaded files.
//
// An upload first asks the server for a single-use target, sending only the
// file's metadata, then PUTs the whole payload to that target. The phases
// are strictly sequential: the transfer is started from the continuation
// that handled the target response.
//
//	Idle --select--> Reading --read--> Ready --DoUpload--> RequestingTarget
//	RequestingTarget --granted--> Transferring --done--> Idle (main view)
//	RequestingTarget / Transferring --failure--> Idle (alert)
//
// Selecting a file in any state starts over from Reading. Every attempt is
// written to the journal; an attempt whose target was granted but whose
// transfer failed is recorded as orphaned, since nothing removes the target
// from the server.
package upload

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/filereader"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

var (
	stat         = filereader.Stat
	newAttemptID = uuid.NewString
)

// API is the part of the service contract used by the workflow.
type API interface {
	RequestUpload(ctx context.Context, req client.UploadRequest) (*client.Response, error)
	Transfer(ctx context.Context, target models.UploadTarget, mimeType string, payload []byte) error
}

// Journal records upload attempts.
type Journal interface {
	Create(ctx context.Context, a *models.UploadAttempt) error
	UpdateStatus(ctx context.Context, id string, u uploads.Update) error
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(v models.View)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(msg string)
}

// Workflow is the state of the upload view. Must be used on the loop
// goroutine.
type Workflow struct {
	loop    *eventloop.Loop
	api     API
	journal Journal
	reader  *filereader.Reader
	nav     Navigator
	note    Notifier
	log     logging.Logger

	state   models.UploadState
	pending *models.PendingUpload

	mounted     bool
	unsubscribe func()
	// attempt changes whenever in-flight results must stop affecting the
	// workflow: on selection, upload, cancel and unmount.
	attempt uint64
}

// NewWorkflow returns an idle, unmounted workflow. journal may be nil.
func NewWorkflow(loop *eventloop.Loop, api API, journal Journal, nav Navigator, note Notifier, log logging.Logger) *Workflow {
	return &Workflow{
		loop:    loop,
		api:     api,
		journal: journal,
		reader:  filereader.New(loop),
		nav:     nav,
		note:    note,
		log:     log,
	}
}

// Mount subscribes to the chooser. A workflow mounted elsewhere is
// unmounted first.
func (w *Workflow) Mount(c *Chooser) {
	if w.mounted {
		w.Unmount()
	}
	w.mounted = true
	w.unsubscribe = c.Subscribe(w.onSelect)
}

// Unmount unsubscribes from the chooser and detaches the workflow from any
// read or attempt in flight. Detached attempts still finish and are still
// journaled.
func (w *Workflow) Unmount() {
	if !w.mounted {
		return
	}
	w.unsubscribe()
	w.unsubscribe = nil
	w.mounted = false
	w.reset()
}

func (w *Workflow) Mounted() bool { return w.mounted }

func (w *Workflow) State() models.UploadState { return w.state }

// Pending returns a copy of the pending upload without its payload.
func (w *Workflow) Pending() (models.PendingUpload, bool) {
	if w.pending == nil {
		return models.PendingUpload{}, false
	}
	p := *w.pending
	p.Payload = nil
	return p, true
}

// PayloadSize is the size of the armed payload, or -1 when none is armed.
func (w *Workflow) PayloadSize() int {
	if w.pending == nil || w.pending.Payload == nil {
		return -1
	}
	return len(w.pending.Payload)
}

// SetDescription sets the description of the pending upload. It reports
// false when nothing is selected or the upload has already been sent.
func (w *Workflow) SetDescription(v string) bool {
	if w.pending == nil || w.state == models.UploadRequestingTarget || w.state == models.UploadTransferring {
		return false
	}
	w.pending.Description = v
	return true
}

func (w *Workflow) CanDoUpload() bool {
	return w.state == models.UploadReady
}

func (w *Workflow) reset() {
	w.attempt++
	w.reader.Abandon()
	w.pending = nil
	w.state = models.UploadIdle
}

func (w *Workflow) current(id uint64) bool {
	return w.mounted && id == w.attempt
}

func (w *Workflow) onSelect(paths []string) {
	if len(paths) == 0 {
		return
	}

	w.reset()
	id := w.attempt

	h, err := stat(paths[0])
	if err != nil {
		w.log.Warn(context.Background(), "file selection failed", "path", paths[0], "error", err)
		w.note.Alert(fmt.Sprintf("cannot read file: %v", err))
		return
	}

	w.pending = &models.PendingUpload{FileName: h.Name, FileSize: h.Size, MimeType: h.MimeType}
	w.state = models.UploadReading

	w.reader.Read(h, func(res filereader.Result) {
		if !w.current(id) {
			return
		}
		if res.Err != nil {
			w.log.Warn(context.Background(), "file read failed", "file", h.Name, "error", res.Err)
			w.pending = nil
			w.state = models.UploadIdle
			w.note.Alert(fmt.Sprintf("cannot read file: %v", res.Err))
			return
		}
		w.pending.Payload = res.Payload
		w.state = models.UploadReady
	})
}

// Cancel discards the pending upload and returns to the main view.
func (w *Workflow) Cancel() {
	w.reset()
	w.nav.Navigate(models.ViewMain)
}

type attempt struct {
	id      string
	file    models.PendingUpload
	payload []byte
	log     logging.Logger
}

// targetResult is the outcome of the first phase. err is a transport or
// decoding failure; otherwise code is the server's answer and target is
// set when the code is SUCCESS.
type targetResult struct {
	code   string
	target models.UploadTarget
	err    error
}

// DoUpload starts the attempt for the ready file. The payload is disarmed
// at once, so the same selection cannot be sent twice.
func (w *Workflow) DoUpload(ctx context.Context) {
	if !w.CanDoUpload() {
		return
	}

	a := &attempt{id: newAttemptID(), file: *w.pending, payload: w.pending.Payload}
	a.file.Payload = nil
	a.log = w.log.With("attempt", a.id, "file", a.file.FileName)

	w.pending.Payload = nil
	w.state = models.UploadRequestingTarget
	w.attempt++
	gen := w.attempt

	eventloop.Go(w.loop, func() targetResult {
		w.record(ctx, a, &models.UploadAttempt{
			ID:          a.id,
			FileName:    a.file.FileName,
			MimeType:    a.file.MimeType,
			FileSize:    a.file.FileSize,
			Description: a.file.Description,
			Status:      models.AttemptRequesting,
		})

		r := w.requestTarget(ctx, a)
		switch {
		case r.err != nil:
			w.update(ctx, a, uploads.Update{Status: models.AttemptFailed, Error: r.err.Error()})
		case r.code != client.CodeSuccess:
			w.update(ctx, a, uploads.Update{Status: models.AttemptFailed, Error: r.code})
		}
		return r
	}, func(r targetResult) {
		w.onTarget(ctx, gen, a, r)
	})
}

func (w *Workflow) requestTarget(ctx context.Context, a *attempt) targetResult {
	resp, err := w.api.RequestUpload(ctx, client.UploadRequest{
		FileName:    a.file.FileName,
		MimeType:    a.file.MimeType,
		Description: a.file.Description,
	})
	if err != nil {
		return targetResult{err: err}
	}
	if resp.Code != client.CodeSuccess {
		return targetResult{code: resp.Code}
	}

	var url string
	if err := resp.DecodeData(&url); err != nil {
		return targetResult{err: fmt.Errorf("upload target: %w", err)}
	}
	if url == "" {
		return targetResult{err: fmt.Errorf("upload target: %w: empty url", client.ErrMalformedResponse)}
	}
	return targetResult{code: resp.Code, target: models.UploadTarget{URL: url}}
}

func (w *Workflow) onTarget(ctx context.Context, gen uint64, a *attempt, r targetResult) {
	live := w.current(gen)

	switch {
	case r.err != nil:
		a.payload = nil
		a.log.Error(ctx, "upload target request failed", "error", r.err)
		if live {
			w.finish()
			w.note.Alert(fmt.Sprintf("upload failed: %v", r.err))
		}
		return
	case r.code == client.CodeNotAuthenticated:
		a.payload = nil
		a.log.Info(ctx, "upload target denied, must authenticate")
		if live {
			w.finish()
			w.nav.Navigate(models.ViewSignin)
		}
		return
	case r.code != client.CodeSuccess:
		a.payload = nil
		a.log.Warn(ctx, "upload target denied", "code", r.code)
		if live {
			w.finish()
			w.note.Alert("got: " + r.code)
		}
		return
	}

	a.log.Debug(ctx, "upload target granted")
	if live {
		w.state = models.UploadTransferring
	}

	eventloop.Go(w.loop, func() error {
		w.update(ctx, a, uploads.Update{Status: models.AttemptTransferring, TargetURL: r.target.URL})
		err := w.api.Transfer(ctx, r.target, a.file.MimeType, a.payload)
		if err != nil {
			w.update(ctx, a, uploads.Update{Status: models.AttemptOrphaned, Error: err.Error()})
		} else {
			w.update(ctx, a, uploads.Update{Status: models.AttemptCompleted})
		}
		return err
	}, func(err error) {
		a.payload = nil
		if err != nil {
			a.log.Error(ctx, "upload transfer failed", "error", err)
		} else {
			a.log.Info(ctx, "upload completed", "bytes", a.file.FileSize)
		}

		if !w.current(gen) {
			return
		}
		w.finish()
		if err != nil {
			w.note.Alert(fmt.Sprintf("upload failed: %v", err))
			return
		}
		w.nav.Navigate(models.ViewMain)
	})
}

// finish ends the live attempt: the pending upload is dropped.
func (w *Workflow) finish() {
	w.pending = nil
	w.state = models.UploadIdle
}

// record and update are only called off the loop. A journal failure is
// logged and does not affect the upload.
func (w *Workflow) record(ctx context.Context, a *attempt, rec *models.UploadAttempt) {
	if w.journal == nil {
		return
	}
	if err := w.journal.Create(context.WithoutCancel(ctx), rec); err != nil {
		a.log.Warn(ctx, "upload journal write failed", "error", err)
	}
}

func (w *Workflow) update(ctx context.Context, a *attempt, u uploads.Update) {
	if w.journal == nil {
		return
	}
	if err := w.journal.UpdateStatus(context.WithoutCancel(ctx), a.id, u); err != nil {
		a.log.Warn(ctx, "upload journal write failed", "status", u.Status, "error", err)
	}
}
