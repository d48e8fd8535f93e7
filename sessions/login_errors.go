package sessions

import "fmt"

type LoginFailure int

const (
	LoginInvalidInput LoginFailure = iota
	LoginBadCredentials
	LoginNotAdmin
	LoginNetwork
	LoginServer
)

func (f LoginFailure) String() string {
	switch f {
	case LoginInvalidInput:
		return "invalid input"
	case LoginBadCredentials:
		return "bad credentials"
	case LoginNotAdmin:
		return "not admin"
	case LoginNetwork:
		return "network"
	case LoginServer:
		return "server"
	default:
		return "unknown"
	}
}

const (
	msgMissingCredentials = "Please enter both email and password"
	msgInvalidEmail       = "Please enter a valid email address"
	msgNotAdmin           = "You do not have permission to access the admin panel"
	msgLoginFailed        = "Failed to login. Please check your credentials."
)

// LoginError is a failed login. Message is safe to show to the operator.
type LoginError struct {
	Reason  LoginFailure
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed (%s): %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("login failed (%s): %s", e.Reason, e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}
