package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
)

// Response codes the client acts on. Every other code is surfaced to the
// user verbatim.
const (
	CodeSuccess           = "SUCCESS"
	CodeNotAuthenticated  = "NOT_AUTHENTICATED"
	CodeTemporaryPassword = "TEMPORARY_PASSWORD"
	CodeUserCreated       = "USER_CREATED"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Code string          `json:"responseCode"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeData unmarshals the data field into v.
func (r *Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return ErrMalformedResponse
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// UploadRequest is the metadata sent to provision an upload target. Size
// and bytes are deliberately not part of it.
type UploadRequest struct {
	FileName    string `json:"filename"`
	MimeType    string `json:"mimetype"`
	Description string `json:"description"`
}

// Client is the photo service contract as seen by the client components.
type Client interface {
	CheckAuth(ctx context.Context) (*Response, error)
	List(ctx context.Context) (*Response, error)
	Signin(ctx context.Context, email, password string) (*Response, error)
	Signup(ctx context.Context, email string) (*Response, error)
	ConfirmSignup(ctx context.Context, email, temporaryPassword, password string) (*Response, error)
	RequestUpload(ctx context.Context, req UploadRequest) (*Response, error)
	// Transfer PUTs payload to a granted target. It does not go through the
	// API and does not carry the session cookies.
	Transfer(ctx context.Context, target models.UploadTarget, mimeType string, payload []byte) error
}
