// Package netx performs the raw byte transfer of an upload: a single PUT of
// the whole payload to a pre-signed, single-use storage URL.
package netx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTransferRejected is returned when the storage endpoint answers with a
// non-2xx status.
var ErrTransferRejected = errors.New("transfer rejected")

// PutPresigned uploads payload to url with the given content type. Any 2xx
// response is success. The body of a rejection is included in the error, as
// storage services explain signature problems there.
func PutPresigned(ctx context.Context, client *http.Client, url, contentType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(payload))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: %s; body: %s", ErrTransferRejected, resp.Status, string(b))
	}
	return nil
}
