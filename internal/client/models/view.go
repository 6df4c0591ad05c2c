package models

// View names a screen of the client. The CLI treats each one as a REPL mode.
type View string

const (
	ViewSignin        View = "signin"
	ViewConfirmSignup View = "confirmSignup"
	ViewMain          View = "main"
	ViewUpload        View = "upload"
)

// Gated reports whether the view may only be shown to an authenticated user.
func (v View) Gated() bool {
	return v == ViewMain || v == ViewUpload
}
