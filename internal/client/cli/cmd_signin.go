package cli

import (
	"context"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/common"
)

// Signin asks for the credentials and submits the signin form. A temporary
// password carries over to the confirmation view.
func (a *App) Signin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if err := ctx.Err(); err != nil {
		return err
	}
	password := string(pw)

	var ok, busy bool
	a.loop.Call(func() {
		a.signin.SetSigninEmail(email)
		a.signin.SetSigninPassword(password)
		busy = a.signin.Submitting()
		if ok = a.signin.CanSubmitSignin(); ok {
			a.signin.SubmitSignin(ctx)
		}
	})
	if !ok {
		if busy {
			printlnFn("A request is already in progress")
		} else {
			printlnFn("Email and password are required")
		}
		return nil
	}

	if err := a.settle(ctx); err != nil {
		return err
	}
	if a.View() == models.ViewConfirmSignup {
		a.loop.Call(func() {
			a.confirm.SetEmail(email)
			a.confirm.SetTemporaryPassword(password)
		})
	}
	return a.finish(ctx, models.ViewSignin)
}

// Signup requests an account for an email address. The server mails a
// temporary password to it.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var ok bool
	a.loop.Call(func() {
		a.signin.SetSignupEmail(email)
		if ok = a.signin.CanSubmitSignup(); ok {
			a.signin.SubmitSignup(ctx)
		}
	})
	if !ok {
		printlnFn("Email is required")
		return nil
	}

	if err := a.settle(ctx); err != nil {
		return err
	}
	if a.View() == models.ViewConfirmSignup {
		a.loop.Call(func() { a.confirm.SetEmail(email) })
	}
	return a.finish(ctx, models.ViewSignin)
}

// Confirm replaces the temporary password with a new one. Fields filled in
// by an earlier signin or signup are kept when the user enters nothing.
func (a *App) Confirm(ctx context.Context) error {
	before := a.View()
	if before != models.ViewConfirmSignup {
		a.loop.Call(func() { a.Navigate(models.ViewConfirmSignup) })
		before = models.ViewConfirmSignup
	}

	var known string
	var hasTemporary bool
	a.loop.Call(func() {
		known = a.confirm.Email()
		hasTemporary = a.confirm.HasTemporaryPassword()
	})

	prompt := "Email"
	if known != "" {
		prompt = "Email [" + known + "]"
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = known
	}

	var temporary []byte
	if !hasTemporary {
		if temporary, err = getPassword("Temporary password", a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(temporary)
	}
	final, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(final)
	confirmation, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)
	if err := ctx.Err(); err != nil {
		return err
	}

	var mismatch, ok bool
	a.loop.Call(func() {
		a.confirm.SetEmail(email)
		if !hasTemporary {
			a.confirm.SetTemporaryPassword(string(temporary))
		}
		a.confirm.SetFinalPassword(string(final))
		a.confirm.SetConfirmationPassword(string(confirmation))
		mismatch = a.confirm.PasswordsDontMatch()
		if ok = a.confirm.CanSubmit(); ok {
			a.confirm.Submit(ctx)
		}
	})
	switch {
	case mismatch:
		printlnFn("Passwords don't match")
		return nil
	case !ok:
		printlnFn("All fields are required")
		return nil
	}
	return a.finish(ctx, before)
}

// Back returns from the confirmation view to signin.
func (a *App) Back(ctx context.Context) error {
	a.loop.Call(func() { a.Navigate(models.ViewSignin) })
	return a.finish(ctx, models.ViewConfirmSignup)
}
