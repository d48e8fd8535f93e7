package sessions

import "github.com/jrsteele09/academy-admin/users"

// State is the authentication state of one controller.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Reasons reported with a StateChange.
const (
	ReasonCheck        = "check"
	ReasonLogin        = "login"
	ReasonLogout       = "logout"
	ReasonSessionEnded = "session ended"
	ReasonNotAdmin     = "not admin"
	ReasonProfile      = "profile updated"
)

// StateChange is delivered to observers whenever the resolved state or the
// authenticated user changes.
type StateChange struct {
	From   State
	To     State
	User   *users.User
	Reason string
}
