package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

// ConfirmAPI is the part of the API used by ConfirmFlow.
type ConfirmAPI interface {
	ConfirmSignup(ctx context.Context, email, temporaryPassword, password string) (*client.Response, error)
}

// ConfirmFlow exchanges a temporary password for a chosen one.
type ConfirmFlow struct {
	loop *eventloop.Loop
	api  ConfirmAPI
	nav  Navigator
	note Notifier
	log  logging.Logger

	email                string
	temporaryPassword    string
	finalPassword        string
	confirmationPassword string
	passwordsDontMatch   bool
	submitting           bool
}

// NewConfirmFlow returns an empty confirmation form.
func NewConfirmFlow(loop *eventloop.Loop, api ConfirmAPI, nav Navigator, note Notifier, log logging.Logger) *ConfirmFlow {
	return &ConfirmFlow{loop: loop, api: api, nav: nav, note: note, log: log}
}

func (f *ConfirmFlow) SetEmail(v string)             { f.email = v }
func (f *ConfirmFlow) SetTemporaryPassword(v string) { f.temporaryPassword = v }

func (f *ConfirmFlow) SetFinalPassword(v string) {
	f.finalPassword = v
	f.checkPasswords()
}

func (f *ConfirmFlow) SetConfirmationPassword(v string) {
	f.confirmationPassword = v
	f.checkPasswords()
}

// Reset empties the form. An outstanding submission still completes.
func (f *ConfirmFlow) Reset() {
	f.email = ""
	f.temporaryPassword = ""
	f.finalPassword = ""
	f.confirmationPassword = ""
	f.passwordsDontMatch = false
}

func (f *ConfirmFlow) checkPasswords() {
	f.passwordsDontMatch = f.finalPassword != "" && f.confirmationPassword != "" &&
		f.finalPassword != f.confirmationPassword
}

func (f *ConfirmFlow) Email() string { return f.email }

// HasTemporaryPassword reports whether the temporary password is filled in.
func (f *ConfirmFlow) HasTemporaryPassword() bool { return f.temporaryPassword != "" }

// PasswordsDontMatch is set when both new passwords are filled in and differ.
func (f *ConfirmFlow) PasswordsDontMatch() bool { return f.passwordsDontMatch }

func (f *ConfirmFlow) Submitting() bool { return f.submitting }

func (f *ConfirmFlow) CanSubmit() bool {
	return !f.submitting &&
		f.email != "" && f.temporaryPassword != "" &&
		f.finalPassword != "" && f.confirmationPassword != "" &&
		f.finalPassword == f.confirmationPassword
}

// Submit sends the confirmation. It does nothing while the two new
// passwords differ, however it is invoked.
func (f *ConfirmFlow) Submit(ctx context.Context) {
	if f.finalPassword != f.confirmationPassword {
		return
	}
	if !f.CanSubmit() {
		return
	}
	f.submitting = true
	email, temporary, final := f.email, f.temporaryPassword, f.finalPassword

	eventloop.Go(f.loop, func() result {
		resp, err := f.api.ConfirmSignup(ctx, email, temporary, final)
		return result{resp, err}
	}, func(r result) {
		f.submitting = false

		if r.err != nil {
			f.log.Error(ctx, "signup confirmation failed", "error", r.err)
			f.note.Alert(fmt.Sprintf("signin failed: %v", r.err))
			return
		}

		if r.resp.Code == client.CodeSuccess {
			f.temporaryPassword, f.finalPassword, f.confirmationPassword = "", "", ""
			f.nav.Navigate(models.ViewMain)
			return
		}
		f.note.Alert("got: " + r.resp.Code)
	})
}
