package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
)

// Select chooses the file to upload. Without arguments the path is asked
// for; an empty answer aborts the selection and keeps the current one.
func (a *App) Select(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		var err error
		if path, err = getSimpleText(a.reader, "File path (empty to abort)", a.out); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		a.loop.Call(func() { a.chooser.Choose() })
		printlnFn("Selection aborted")
		return nil
	}
	a.loop.Call(func() { a.chooser.Choose(path) })
	if err := a.settle(ctx); err != nil {
		return err
	}
	return a.Status(ctx)
}

// Describe sets the description sent with the upload.
func (a *App) Describe(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = getMultiline(a.reader, "Description", a.out); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	var ok bool
	a.loop.Call(func() { ok = a.workflow.SetDescription(text) })
	if !ok {
		printlnFn("Select a file first")
	}
	return nil
}

// Status prints the workflow state and the pending upload, if any.
func (a *App) Status(ctx context.Context) error {
	var (
		state   models.UploadState
		pending models.PendingUpload
		has     bool
		size    int
	)
	a.loop.Call(func() {
		state = a.workflow.State()
		pending, has = a.workflow.Pending()
		size = a.workflow.PayloadSize()
	})

	printlnFn("State:", state)
	if !has {
		printlnFn("No file selected")
		return nil
	}
	printlnFn(fmt.Sprintf("File: %s (%d bytes, %s)", pending.FileName, pending.FileSize, pending.MimeType))
	if pending.Description != "" {
		printlnFn("Description:", pending.Description)
	}
	if size < 0 {
		printlnFn("Contents not loaded")
	} else {
		printlnFn(fmt.Sprintf("Ready to send %d bytes", size))
	}
	return nil
}

// Send uploads the selected file. On success the main view opens with the
// refreshed listing.
func (a *App) Send(ctx context.Context) error {
	var ok bool
	var name string
	a.loop.Call(func() {
		if ok = a.workflow.CanDoUpload(); ok {
			p, _ := a.workflow.Pending()
			name = p.FileName
			a.workflow.DoUpload(ctx)
		}
	})
	if !ok {
		printlnFn("Nothing to send: select a file first")
		return nil
	}

	printlnFn("Uploading", name)
	if err := a.settle(ctx); err != nil {
		return err
	}
	if a.View() == models.ViewMain {
		printlnFn("Upload complete")
	}
	return a.finish(ctx, models.ViewUpload)
}

// Cancel discards the pending upload and returns to the main view.
func (a *App) Cancel(ctx context.Context) error {
	a.loop.Call(func() { a.workflow.Cancel() })
	return a.finish(ctx, models.ViewUpload)
}
