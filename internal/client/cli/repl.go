package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	View() models.View
	Revealed() bool

	Signin(ctx context.Context) error
	Signup(ctx context.Context) error
	Confirm(ctx context.Context) error
	Back(ctx context.Context) error

	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Upload(ctx context.Context) error
	History(ctx context.Context) error
	Orphans(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error

	Select(ctx context.Context, args []string) error
	Describe(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Send(ctx context.Context) error
	Cancel(ctx context.Context) error
}

type command func(ctx context.Context, a execIface, args []string) error

func noArgs(fn func(execIface, context.Context) error) command {
	return func(ctx context.Context, a execIface, _ []string) error { return fn(a, ctx) }
}

var commands = map[string]command{
	"signin":  noArgs(execIface.Signin),
	"signup":  noArgs(execIface.Signup),
	"confirm": noArgs(execIface.Confirm),
	"back":    noArgs(execIface.Back),

	"list":    noArgs(execIface.List),
	"show":    func(ctx context.Context, a execIface, args []string) error { return a.Show(ctx, args) },
	"upload":  noArgs(execIface.Upload),
	"history": noArgs(execIface.History),
	"orphans": noArgs(execIface.Orphans),
	"whoami":  noArgs(execIface.Whoami),
	"logout":  noArgs(execIface.Logout),

	"select":   func(ctx context.Context, a execIface, args []string) error { return a.Select(ctx, args) },
	"describe": func(ctx context.Context, a execIface, args []string) error { return a.Describe(ctx, args) },
	"status":   noArgs(execIface.Status),
	"send":     noArgs(execIface.Send),
	"cancel":   noArgs(execIface.Cancel),
}

var aliases = map[string]string{
	"l":  "list",
	"ls": "list",
}

// viewCommands lists the commands available in each view, in help order.
var viewCommands = map[models.View][]string{
	models.ViewSignin:        {"signin", "signup", "confirm"},
	models.ViewConfirmSignup: {"confirm", "back"},
	models.ViewMain:          {"list", "show", "upload", "history", "orphans", "whoami", "logout"},
	models.ViewUpload:        {"select", "describe", "status", "send", "cancel"},
}

// available returns the commands that may run in view. A gated view that
// is not revealed yet offers none of its own commands.
func available(view models.View, revealed bool) []string {
	if view.Gated() && !revealed {
		return nil
	}
	return viewCommands[view]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// runREPL starts a simple read–eval–print loop for the lphoto CLI.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a' if the command belongs to the
// current view. The loop exits at the end of input, when ctx is done or when the
// user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		if full, ok := aliases[cmd]; ok {
			cmd = full
		}

		switch cmd {
		case "help":
			printHelp(a)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		fn, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}

		view := a.View()
		if !contains(available(view, a.Revealed()), cmd) {
			if view.Gated() && !a.Revealed() {
				printlnFn("Checking session, please wait")
				continue
			}
			printlnFn(fmt.Sprintf("Command %q is not available in the %s view", cmd, view))
			continue
		}

		_ = fn(ctx, a, args)
	}
}

func printHelp(a execIface) {
	view := a.View()
	cmds := append([]string{}, available(view, a.Revealed())...)
	cmds = append(cmds, "help", "exit")
	printlnFn("Available commands:", strings.Join(cmds, ", "))
}
