// Package common contains constants and small helpers shared by the
// lphoto client packages.
package common

// Cookie names the photo service uses to carry the session tokens.
const (
	AccessTokenCookieName  = "ACCESS_TOKEN"
	RefreshTokenCookieName = "REFRESH_TOKEN"
)
