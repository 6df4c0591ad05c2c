// Package filereader turns a user-selected file into an in-memory payload.
//
// Reads are asynchronous and report through a single-shot callback on the
// event loop. Only the most recent read issued by a Reader is ever
// reported: starting a new read, or calling Abandon, silently drops
// interest in any read still in flight.
package filereader

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
)

// ErrNotRegularFile is returned by Stat for directories, devices and such.
var ErrNotRegularFile = errors.New("not a regular file")

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// Handle describes a selected file before its bytes are read, the way a
// browser's File object does.
type Handle struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
}

// Stat builds a Handle for path. The MIME type is derived from the file
// extension; unknown extensions get application/octet-stream.
func Stat(path string) (Handle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Handle{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return Handle{}, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return Handle{Path: path, Name: fi.Name(), Size: fi.Size(), MimeType: mimeType}, nil
}

// Result is the outcome of one read: Payload on success, Err otherwise.
type Result struct {
	Payload []byte
	Err     error
}

// Reader issues reads. Its methods must be called on the loop goroutine.
type Reader struct {
	loop *eventloop.Loop
	seq  uint64
}

// New returns a Reader that delivers results on loop.
func New(loop *eventloop.Loop) *Reader {
	return &Reader{loop: loop}
}

// Read loads h asynchronously and calls onLoad on the loop when done,
// unless another Read or Abandon happened in the meantime.
func (r *Reader) Read(h Handle, onLoad func(Result)) {
	r.seq++
	seq := r.seq

	eventloop.Go(r.loop, func() Result {
		b, err := readFile(h.Path)
		if err != nil {
			return Result{Err: fmt.Errorf("read %s: %w", h.Name, err)}
		}
		return Result{Payload: b}
	}, func(res Result) {
		if seq != r.seq {
			return
		}
		onLoad(res)
	})
}

// Abandon drops interest in the read in flight, if any.
func (r *Reader) Abandon() {
	r.seq++
}
