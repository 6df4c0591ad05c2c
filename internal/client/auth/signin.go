package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

// SigninAPI is the part of the API used by SigninFlow.
type SigninAPI interface {
	Signin(ctx context.Context, email, password string) (*client.Response, error)
	Signup(ctx context.Context, email string) (*client.Response, error)
}

type result struct {
	resp *client.Response
	err  error
}

// SigninFlow backs the signin view: an email/password signin form and an
// email-only signup form.
type SigninFlow struct {
	loop *eventloop.Loop
	api  SigninAPI
	nav  Navigator
	note Notifier
	log  logging.Logger

	signinEmail    string
	signinPassword string
	signupEmail    string
	submitting     bool
}

// NewSigninFlow returns empty signin and signup forms.
func NewSigninFlow(loop *eventloop.Loop, api SigninAPI, nav Navigator, note Notifier, log logging.Logger) *SigninFlow {
	return &SigninFlow{loop: loop, api: api, nav: nav, note: note, log: log}
}

func (f *SigninFlow) SetSigninEmail(v string)    { f.signinEmail = v }
func (f *SigninFlow) SetSigninPassword(v string) { f.signinPassword = v }
func (f *SigninFlow) SetSignupEmail(v string)    { f.signupEmail = v }

func (f *SigninFlow) SigninEmail() string { return f.signinEmail }
func (f *SigninFlow) SignupEmail() string { return f.signupEmail }
func (f *SigninFlow) Submitting() bool    { return f.submitting }

func (f *SigninFlow) CanSubmitSignin() bool {
	return !f.submitting && f.signinEmail != "" && f.signinPassword != ""
}

// SubmitSignin sends the signin form. SUCCESS goes to the main view and
// TEMPORARY_PASSWORD to the confirmation view; anything else is reported
// and the form stays as it is.
func (f *SigninFlow) SubmitSignin(ctx context.Context) {
	if !f.CanSubmitSignin() {
		return
	}
	f.submitting = true
	email, password := f.signinEmail, f.signinPassword

	eventloop.Go(f.loop, func() result {
		resp, err := f.api.Signin(ctx, email, password)
		return result{resp, err}
	}, func(r result) {
		f.submitting = false

		if r.err != nil {
			f.log.Error(ctx, "signin failed", "error", r.err)
			f.note.Alert(fmt.Sprintf("signin failed: %v", r.err))
			return
		}

		switch r.resp.Code {
		case client.CodeSuccess:
			f.signinPassword = ""
			f.nav.Navigate(models.ViewMain)
		case client.CodeTemporaryPassword:
			f.signinPassword = ""
			f.nav.Navigate(models.ViewConfirmSignup)
		default:
			f.note.Alert("got: " + r.resp.Code)
		}
	})
}

func (f *SigninFlow) CanSubmitSignup() bool {
	return !f.submitting && f.signupEmail != ""
}

// SubmitSignup requests an account for the signup email. USER_CREATED goes
// to the confirmation view, where the emailed temporary password is used.
func (f *SigninFlow) SubmitSignup(ctx context.Context) {
	if !f.CanSubmitSignup() {
		return
	}
	f.submitting = true
	email := f.signupEmail

	eventloop.Go(f.loop, func() result {
		resp, err := f.api.Signup(ctx, email)
		return result{resp, err}
	}, func(r result) {
		f.submitting = false

		if r.err != nil {
			f.log.Error(ctx, "signup failed", "error", r.err)
			f.note.Alert(fmt.Sprintf("signup failed: %v", r.err))
			return
		}

		if r.resp.Code == client.CodeUserCreated {
			f.nav.Navigate(models.ViewConfirmSignup)
			return
		}
		f.note.Alert("got: " + r.resp.Code)
	})
}
