package upload

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

// ListAPI is the part of the service contract used by Listing.
type ListAPI interface {
	List(ctx context.Context) (*client.Response, error)
}

// Listing holds the user's uploaded files as last reported by the server.
// Entries are only ever replaced as a whole. Must be used on the loop
// goroutine.
type Listing struct {
	loop *eventloop.Loop
	api  ListAPI
	nav  Navigator
	note Notifier
	log  logging.Logger

	entries []models.FileListEntry
	loaded  bool
}

// NewListing returns an empty listing; nothing is loaded until Refresh.
func NewListing(loop *eventloop.Loop, api ListAPI, nav Navigator, note Notifier, log logging.Logger) *Listing {
	return &Listing{loop: loop, api: api, nav: nav, note: note, log: log}
}

// Entries returns the current listing. The slice must not be modified.
func (l *Listing) Entries() []models.FileListEntry { return l.entries }

// Loaded reports whether a refresh has succeeded at least once.
func (l *Listing) Loaded() bool { return l.loaded }

type listResult struct {
	code    string
	entries []models.FileListEntry
	err     error
}

// Refresh asks for the file list. SUCCESS replaces the listing;
// NOT_AUTHENTICATED leaves it untouched and goes to signin; anything else
// is reported.
func (l *Listing) Refresh(ctx context.Context) {
	eventloop.Go(l.loop, func() listResult {
		resp, err := l.api.List(ctx)
		if err != nil {
			return listResult{err: err}
		}
		if resp.Code != client.CodeSuccess {
			return listResult{code: resp.Code}
		}
		var entries []models.FileListEntry
		if err := resp.DecodeData(&entries); err != nil {
			return listResult{err: fmt.Errorf("file list: %w", err)}
		}
		return listResult{code: resp.Code, entries: entries}
	}, func(r listResult) {
		switch {
		case r.err != nil:
			l.log.Error(ctx, "file listing failed", "error", r.err)
			l.note.Alert(fmt.Sprintf("file listing failed: %v", r.err))
		case r.code == client.CodeSuccess:
			if r.entries == nil {
				r.entries = []models.FileListEntry{}
			}
			l.entries = r.entries
			l.loaded = true
			l.log.Debug(ctx, "file listing refreshed", "count", len(r.entries))
		case r.code == client.CodeNotAuthenticated:
			l.nav.Navigate(models.ViewSignin)
		default:
			l.note.Alert("got: " + r.code)
		}
	})
}
