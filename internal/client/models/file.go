package models

import "time"

// Size describes one rendition of an uploaded photo.
type Size struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// FileListEntry is the server's view of one uploaded file. The client never
// modifies entries; the listing is replaced as a whole on refresh.
type FileListEntry struct {
	ID          string `json:"id"`
	Name        string `json:"filename"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimetype,omitempty"`
	// UploadedAt is milliseconds since the Unix epoch; zero when unknown.
	UploadedAt int64  `json:"uploadedAt,omitempty"`
	Sizes      []Size `json:"sizes,omitempty"`
}

// Uploaded returns the upload time, or the zero time when unknown.
func (e FileListEntry) Uploaded() time.Time {
	if e.UploadedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.UploadedAt)
}

// UploadedLabel renders "Uploaded <local time>", or "" when unknown.
func (e FileListEntry) UploadedLabel() string {
	t := e.Uploaded()
	if t.IsZero() {
		return ""
	}
	return "Uploaded " + t.Local().Format(time.DateTime)
}

// HasSizes reports whether any rendition has been produced yet.
func (e FileListEntry) HasSizes() bool {
	return len(e.Sizes) > 0
}
