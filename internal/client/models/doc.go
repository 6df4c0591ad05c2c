// Package models defines client-side data models used by the lphoto CLI:
// session and view states, the pending upload and its target, the upload
// journal record and the read-only file listing.
package models
