// Package guard decides, per navigation, whether a role-scoped view may be rendered for the
// current session.
package guard

import (
	"context"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/session"
)

type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectLanding:
		return "redirect_landing"
	}
	return "unknown"
}

// Decision is the result of evaluating one guarded navigation.
type Decision struct {
	Outcome Outcome
	Reason  session.Reason
	User    models.User
	// Err is set when revalidation failed to tear down a blocked session. The decision is
	// still a redirect.
	Err error
}

// Evaluate applies the guard rules for a view that admits the allowed roles (empty means any
// signed-in role):
//
//   - no session: redirect to login
//   - blocked user: session logged out (by Revalidate), redirect to login
//   - role not allowed: silent redirect to the landing page
//   - otherwise: render
func Evaluate(ctx context.Context, p session.Provider, allowed ...models.Role) Decision {
	if p == nil {
		return Decision{Outcome: RedirectLogin, Reason: session.ReasonNoSession}
	}

	state, reason, err := p.Revalidate(ctx)
	if state != session.Valid {
		return Decision{Outcome: RedirectLogin, Reason: reason, Err: err}
	}

	user, ok := p.User()
	if !ok {
		return Decision{Outcome: RedirectLogin, Reason: session.ReasonNoSession}
	}
	if !user.HasRole(allowed...) {
		return Decision{Outcome: RedirectLanding, User: user}
	}
	return Decision{Outcome: Render, User: user}
}
