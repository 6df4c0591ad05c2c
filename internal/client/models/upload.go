package models

import "time"

// UploadState is the state of the upload workflow.
//
//	Idle -> Reading -> Ready -> RequestingTarget -> Transferring -> Idle
type UploadState int

const (
	UploadIdle UploadState = iota
	UploadReading
	UploadReady
	UploadRequestingTarget
	UploadTransferring
)

func (s UploadState) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadReading:
		return "reading"
	case UploadReady:
		return "ready"
	case UploadRequestingTarget:
		return "requesting target"
	case UploadTransferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// PendingUpload is the file the user has selected and not yet sent.
// Payload is nil until the local read completes.
type PendingUpload struct {
	FileName    string
	FileSize    int64
	MimeType    string
	Description string
	Payload     []byte
}

// UploadTarget is the single-use destination granted for one attempt.
type UploadTarget struct {
	URL string
}

// AttemptStatus tracks an upload attempt in the local journal.
type AttemptStatus string

const (
	AttemptRequesting   AttemptStatus = "requesting"
	AttemptTransferring AttemptStatus = "transferring"
	AttemptCompleted    AttemptStatus = "completed"
	AttemptFailed       AttemptStatus = "failed"
	// AttemptOrphaned marks a target that was granted but never consumed.
	// The server keeps it; nothing on the client cleans it up.
	AttemptOrphaned AttemptStatus = "orphaned"
)

// UploadAttempt is one journal row.
type UploadAttempt struct {
	ID          string
	FileName    string
	MimeType    string
	FileSize    int64
	Description string
	Status      AttemptStatus
	TargetURL   string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
