package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/lphoto/internal/client/auth"
	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/config"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/lphoto/internal/client/services"
	"github.com/dmitrijs2005/lphoto/internal/client/session"
	"github.com/dmitrijs2005/lphoto/internal/client/upload"
	"github.com/dmitrijs2005/lphoto/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	api    *client.HTTPClient

	sessions services.SessionService
	history  services.HistoryService

	loop     *eventloop.Loop
	gate     *session.Gate
	signin   *auth.SigninFlow
	confirm  *auth.ConfirmFlow
	workflow *upload.Workflow
	listing  *upload.Listing
	chooser  *upload.Chooser

	// Owned by the loop.
	view   models.View
	alerts []string
	runCtx context.Context

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and builds every client component. The
// returned App must be closed.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		api:      api,
		sessions: services.NewSessionService(api, db),
		history:  services.NewHistoryService(uploads.NewSQLiteRepository(db)),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	a.wire(uploads.NewSQLiteRepository(db))
	return a, nil
}

// wire builds the loop-owned components around a.api.
func (a *App) wire(journal upload.Journal) {
	a.loop = eventloop.New()
	a.gate = session.NewGate(a.loop, a.api, a.log.With("component", "session"))
	a.signin = auth.NewSigninFlow(a.loop, a.api, a, a, a.log.With("component", "signin"))
	a.confirm = auth.NewConfirmFlow(a.loop, a.api, a, a, a.log.With("component", "confirm"))
	a.workflow = upload.NewWorkflow(a.loop, a.api, journal, a, a, a.log.With("component", "upload"))
	a.listing = upload.NewListing(a.loop, a.api, a, a, a.log.With("component", "listing"))
	a.chooser = upload.NewChooser()
	a.runCtx = context.Background()
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run restores the saved session, opens the main view and runs the REPL
// until the user exits, input ends or ctx is done. The event loop keeps
// running until ctx is done.
func (a *App) Run(ctx context.Context) error {
	go a.loop.Run(ctx)
	a.log.Debug(ctx, "client started", "server", a.config.ServerURL, "db", a.config.DatabasePath)

	n, err := a.sessions.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "saved session not restored", "error", err)
	} else if n > 0 {
		a.log.Debug(ctx, "saved session restored", "cookies", n)
	}

	printlnFn("Welcome to lphoto (type 'help' for commands)")
	a.loop.Call(func() {
		a.runCtx = ctx
		a.Navigate(models.ViewMain)
	})
	if err := a.finish(ctx, ""); err != nil {
		return err
	}

	runREPL(ctx, a, a.prompt, a.reader)
	return nil
}

// finish settles the loop and, when the command moved the user to another
// view, announces it.
func (a *App) finish(ctx context.Context, before models.View) error {
	if err := a.settle(ctx); err != nil {
		return err
	}
	if v := a.View(); v != before {
		a.enter(ctx, v)
	}
	return nil
}

func (a *App) enter(ctx context.Context, v models.View) {
	switch v {
	case models.ViewSignin:
		printlnFn("Please sign in: signin, signup or confirm")
	case models.ViewConfirmSignup:
		printlnFn("Use 'confirm' with the temporary password from the signup email")
	case models.ViewMain:
		if !a.Revealed() {
			return
		}
		if err := a.sessions.Save(ctx); err != nil {
			a.log.Warn(ctx, "session not saved", "error", err)
		}
		a.printList()
	case models.ViewUpload:
		if !a.Revealed() {
			return
		}
		printlnFn("Choose a file with 'select <path>', then 'send'")
	}
}

// settle waits for the loop to finish everything the last command started
// and prints the alerts raised meanwhile.
func (a *App) settle(ctx context.Context) error {
	if err := a.loop.WaitIdle(ctx); err != nil {
		return err
	}
	var alerts []string
	a.loop.Call(func() {
		alerts, a.alerts = a.alerts, nil
	})
	for _, msg := range alerts {
		printlnFn("!", msg)
	}
	return nil
}

// View returns the current view.
func (a *App) View() models.View {
	var v models.View
	a.loop.Call(func() { v = a.view })
	return v
}

// Revealed reports whether the current view may show its commands.
func (a *App) Revealed() bool {
	var ok bool
	a.loop.Call(func() { ok = !a.view.Gated() || a.gate.Revealed() })
	return ok
}

func (a *App) prompt() string {
	var view models.View
	var state models.SessionState
	a.loop.Call(func() { view, state = a.view, a.gate.State() })

	if view.Gated() && !state.Terminal() {
		return fmt.Sprintf("lphoto [%s, checking session]> ", view)
	}
	if view.Gated() {
		if info, err := a.sessions.Describe(); err == nil && info.Username != "" {
			return fmt.Sprintf("lphoto [%s] %s> ", view, info.Username)
		}
	}
	return fmt.Sprintf("lphoto [%s]> ", view)
}
