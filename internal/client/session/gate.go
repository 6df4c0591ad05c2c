// Package session decides whether the gated views may be shown.
//
// A Gate runs one auth check per activation. While the check is
// outstanding the state is Checking and nothing authenticated may be
// revealed; the check then settles to Authorized or Unauthorized. There is
// no polling and no retry: re-entering a view activates the gate again.
package session

import (
	"context"

	"github.com/dmitrijs2005/lphoto/internal/client/client"
	"github.com/dmitrijs2005/lphoto/internal/client/eventloop"
	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/logging"
)

// Checker is the part of the API the gate needs.
type Checker interface {
	CheckAuth(ctx context.Context) (*client.Response, error)
}

type checkResult struct {
	resp *client.Response
	err  error
}

// Gate must only be used on the loop goroutine.
type Gate struct {
	loop *eventloop.Loop
	api  Checker
	log  logging.Logger

	state      models.SessionState
	activation uint64
}

// NewGate returns a gate in the checking state.
func NewGate(loop *eventloop.Loop, api Checker, log logging.Logger) *Gate {
	return &Gate{loop: loop, api: api, log: log}
}

// Activate starts a fresh check. onSettled, if not nil, is called on the
// loop with the terminal state unless the gate was deactivated or
// activated again before the check finished.
func (g *Gate) Activate(ctx context.Context, onSettled func(models.SessionState)) {
	g.activation++
	id := g.activation
	g.state = models.SessionChecking

	eventloop.Go(g.loop, func() checkResult {
		resp, err := g.api.CheckAuth(ctx)
		return checkResult{resp: resp, err: err}
	}, func(r checkResult) {
		if id != g.activation {
			return
		}

		switch {
		case r.err != nil:
			g.log.Warn(ctx, "auth check failed", "error", r.err)
			g.state = models.SessionUnauthorized
		case r.resp.Code == client.CodeSuccess:
			g.state = models.SessionAuthorized
		default:
			g.log.Debug(ctx, "auth check denied", "code", r.resp.Code)
			g.state = models.SessionUnauthorized
		}

		if onSettled != nil {
			onSettled(g.state)
		}
	})
}

// Deactivate drops the session and ignores any check still in flight.
func (g *Gate) Deactivate() {
	g.activation++
	g.state = models.SessionChecking
}

func (g *Gate) State() models.SessionState {
	return g.state
}

// Revealed reports whether authenticated-only actions may be shown.
func (g *Gate) Revealed() bool {
	return g.state == models.SessionAuthorized
}
