// Package auth holds the signin/signup and signup-confirmation forms.
//
// Both flows keep their fields in memory only and classify the server's
// responseCode into a navigation or an alert. A flow is Submitting from the
// moment a request is sent until its response is handled; submission is
// refused in that state. Flows must be used on the event loop goroutine.
package auth

import "github.com/dmitrijs2005/lphoto/internal/client/models"

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(v models.View)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(msg string)
}
