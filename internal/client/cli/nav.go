package cli

import (
	"github.com/dmitrijs2005/lphoto/internal/client/models"
)

// Navigate switches the current view. It runs on the loop. Entering a
// gated view activates the session gate; the view's content is only loaded
// once the gate settles as authorized, and an unauthorized result sends the
// user to signin. Going back to signin drops whatever the confirmation form
// still holds.
func (a *App) Navigate(v models.View) {
	if a.view == models.ViewUpload && v != models.ViewUpload {
		a.workflow.Unmount()
	}
	if v == models.ViewSignin {
		a.confirm.Reset()
	}
	a.gate.Deactivate()
	a.view = v
	a.log.Debug(a.runCtx, "navigate", "view", v)

	if !v.Gated() {
		return
	}

	ctx := a.runCtx
	a.gate.Activate(ctx, func(s models.SessionState) {
		if s != models.SessionAuthorized {
			a.Navigate(models.ViewSignin)
			return
		}
		switch v {
		case models.ViewMain:
			a.listing.Refresh(ctx)
		case models.ViewUpload:
			a.workflow.Mount(a.chooser)
		}
	})
}

// Alert queues a message to be shown once the current command settles. It
// runs on the loop.
func (a *App) Alert(msg string) {
	a.alerts = append(a.alerts, msg)
}
