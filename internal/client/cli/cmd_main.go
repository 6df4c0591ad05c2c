package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/services"
)

const historyLimit = 20

// List reloads the file listing and prints it.
func (a *App) List(ctx context.Context) error {
	a.loop.Call(func() { a.listing.Refresh(ctx) })
	if err := a.settle(ctx); err != nil {
		return err
	}
	if v := a.View(); v != models.ViewMain {
		a.enter(ctx, v)
		return nil
	}
	a.printList()
	return nil
}

func (a *App) entries() (entries []models.FileListEntry, loaded bool) {
	a.loop.Call(func() {
		entries = a.listing.Entries()
		loaded = a.listing.Loaded()
	})
	return entries, loaded
}

func (a *App) printList() {
	entries, loaded := a.entries()
	if !loaded {
		return
	}
	if len(entries) == 0 {
		printlnFn("No files uploaded yet")
		return
	}
	for i, e := range entries {
		line := fmt.Sprintf("%3d. %s", i+1, e.Name)
		if e.Description != "" {
			line += "  " + e.Description
		}
		if label := e.UploadedLabel(); label != "" {
			line += "  (" + label + ")"
		}
		printlnFn(line)
	}
}

// Show prints one listing entry, chosen by its number in the last listing
// or by its id.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: show <number|id>")
		return nil
	}
	entries, _ := a.entries()

	var entry *models.FileListEntry
	if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(entries) {
		entry = &entries[n-1]
	} else {
		for i := range entries {
			if entries[i].ID == args[0] {
				entry = &entries[i]
				break
			}
		}
	}
	if entry == nil {
		printlnFn("No such file:", args[0])
		return nil
	}

	printlnFn("ID:         ", entry.ID)
	printlnFn("Name:       ", entry.Name)
	if entry.MimeType != "" {
		printlnFn("Type:       ", entry.MimeType)
	}
	if entry.Description != "" {
		printlnFn("Description:", entry.Description)
	}
	if label := entry.UploadedLabel(); label != "" {
		printlnFn(label)
	}
	if !entry.HasSizes() {
		printlnFn("No sizes yet")
		return nil
	}
	printlnFn("Sizes:")
	for _, s := range entry.Sizes {
		line := fmt.Sprintf("  %s %dx%d", s.Name, s.Width, s.Height)
		if s.Description != "" {
			line += " " + s.Description
		}
		printlnFn(line)
	}
	return nil
}

// Upload opens the upload view.
func (a *App) Upload(ctx context.Context) error {
	a.loop.Call(func() { a.Navigate(models.ViewUpload) })
	return a.finish(ctx, models.ViewMain)
}

// History prints the most recent upload attempts from the local journal.
func (a *App) History(ctx context.Context) error {
	attempts, err := a.history.Recent(ctx, historyLimit)
	if err != nil {
		a.log.Error(ctx, "history failed", "error", err)
		printlnFn("Cannot read upload history:", err)
		return err
	}
	if len(attempts) == 0 {
		printlnFn("No uploads yet")
		return nil
	}
	for _, at := range attempts {
		line := fmt.Sprintf("%s  %-12s %s (%d bytes)", at.CreatedAt.Local().Format(time.DateTime), at.Status, at.FileName, at.FileSize)
		if at.Error != "" {
			line += "  " + at.Error
		}
		printlnFn(line)
	}
	return nil
}

// Orphans prints upload targets that were granted but never received the
// file. The server keeps them.
func (a *App) Orphans(ctx context.Context) error {
	attempts, err := a.history.Orphans(ctx)
	if err != nil {
		a.log.Error(ctx, "orphans failed", "error", err)
		printlnFn("Cannot read upload history:", err)
		return err
	}
	if len(attempts) == 0 {
		printlnFn("No orphaned uploads")
		return nil
	}
	for _, at := range attempts {
		target := at.TargetURL
		if i := strings.IndexByte(target, '?'); i >= 0 {
			target = target[:i]
		}
		printlnFn(fmt.Sprintf("%s  %s  %s", at.UpdatedAt.Local().Format(time.DateTime), at.FileName, target))
	}
	return nil
}

// Whoami describes the current session from its access token.
func (a *App) Whoami(ctx context.Context) error {
	info, err := a.sessions.Describe()
	if errors.Is(err, services.ErrNoSession) {
		printlnFn("Not signed in")
		return nil
	}
	if err != nil {
		a.log.Warn(ctx, "session token not readable", "error", err)
		printlnFn("Cannot read session:", err)
		return err
	}

	name := info.Username
	if name == "" {
		name = info.Subject
	}
	printlnFn("Signed in as", name)
	if !info.ExpiresAt.IsZero() {
		state := "expires"
		if info.Expired(time.Now()) {
			state = "expired"
		}
		printlnFn(fmt.Sprintf("Access token %s at %s", state, info.ExpiresAt.Local().Format(time.DateTime)))
	}
	return nil
}

// Logout drops the session cookies, in memory and on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "error", err)
		printlnFn("Logout failed:", err)
		return err
	}
	a.loop.Call(func() { a.Navigate(models.ViewSignin) })
	return a.finish(ctx, models.ViewMain)
}
