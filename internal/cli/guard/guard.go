package guard

import (
	"github.com/mesboard-dev/mesboard/internal/auth"
	"github.com/mesboard-dev/mesboard/internal/cli/session"
)

// Outcome is the result of evaluating a guard against a session snapshot
type Outcome int

const (
	// Pending means the session is still bootstrapping and no decision
	// can be made yet. Callers must not fall through to Allow or Deny.
	Pending Outcome = iota
	Allow
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Target is where a denied caller should be sent
type Target int

const (
	TargetNone Target = iota
	// TargetLogin is used when no one is signed in
	TargetLogin
	// TargetLanding is used when someone is signed in but lacks privilege
	TargetLanding
)

// Decision carries the outcome plus redirection context on deny. From is
// only populated on a deny-to-login, so the caller can resume the original
// destination after a successful sign-in.
type Decision struct {
	Outcome Outcome
	Target  Target
	From    string
}

// Predicate decides whether an authenticated session may proceed
type Predicate func(session.Snapshot) bool

// Authenticated allows any signed-in session
func Authenticated() Predicate {
	return func(session.Snapshot) bool { return true }
}

// HasRole allows sessions holding the given role
func HasRole(role auth.Role) Predicate {
	return func(snap session.Snapshot) bool { return snap.Role == role }
}

// Evaluate applies the shared guard shape: pending while the session is
// bootstrapping, deny-to-login when unauthenticated (capturing the
// requested destination), then the predicate. A signed-in session that
// fails the predicate is sent to the landing page, never back to login.
func Evaluate(snap session.Snapshot, allowed Predicate, requested string) Decision {
	if snap.IsLoading() {
		return Decision{Outcome: Pending}
	}

	if !snap.IsAuthenticated() {
		return Decision{Outcome: Deny, Target: TargetLogin, From: requested}
	}

	if !allowed(snap) {
		return Decision{Outcome: Deny, Target: TargetLanding}
	}

	return Decision{Outcome: Allow}
}
