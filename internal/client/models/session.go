package models

// SessionState is the tri-state result of an authentication check.
type SessionState int

const (
	// SessionChecking is the initial state while the check is outstanding.
	SessionChecking SessionState = iota
	SessionAuthorized
	SessionUnauthorized
)

func (s SessionState) String() string {
	switch s {
	case SessionChecking:
		return "checking"
	case SessionAuthorized:
		return "authorized"
	case SessionUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Terminal reports whether the check has finished.
func (s SessionState) Terminal() bool {
	return s == SessionAuthorized || s == SessionUnauthorized
}
