package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSessionNotStarted is returned when a page is requested before the
// session was established.
var ErrSessionNotStarted = errors.New("ledger session not started")

// AuthenticationError means the login protocol failed: a login step's
// element never appeared, or the site demanded a one-time passcode and no
// second-factor secret is configured. The session is unusable afterwards;
// callers must not retry writes without re-establishing it.
type AuthenticationError struct {
	Step  string
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed at %s: %v", e.Step, e.Cause)
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// AccountNotFoundError means the named manual account never appeared in
// the ledger's account list. That is a name mismatch between the
// configured target and the ledger, not a transient condition.
type AccountNotFoundError struct {
	Account string
	Cause   error
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("manual account %q not found: %v", e.Account, e.Cause)
}

func (e *AccountNotFoundError) Unwrap() error { return e.Cause }
