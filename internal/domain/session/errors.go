package session

import "errors"

// ErrInvalidTransition is returned for a transition the current state does not allow.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrUnknownState is returned by ParseState for a name no state carries.
var ErrUnknownState = errors.New("unknown session state")
