// Package session models the form/results cycle of one user interaction as a
// two-state machine.
package session

import (
	"fmt"

	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
)

// State is the page the user is on.
type State int

// Session states.
const (
	AwaitingInput State = iota
	ShowingResult
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case ShowingResult:
		return "showing_result"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "awaiting_input":
		return AwaitingInput, nil
	case "showing_result":
		return ShowingResult, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// Session holds what one submission-to-render cycle needs. Profile and Outcome
// are only set while ShowingResult.
type Session struct {
	state   State
	profile profile.Profile
	outcome outcome.Outcome
	failure string
}

// New returns a session awaiting input.
func New() *Session {
	return &Session{state: AwaitingInput}
}

// Resume returns a session in state st with nothing attached. Pages echo their
// state back so a stateless request can pick up where the page left off.
func Resume(st State) *Session {
	return &Session{state: st}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Profile returns the submitted profile.
func (s *Session) Profile() profile.Profile { return s.profile }

// Outcome returns the grouped result being shown.
func (s *Session) Outcome() outcome.Outcome { return s.outcome }

// Failure returns the message of the last failed submission, if any.
func (s *Session) Failure() string { return s.failure }

// Submit moves AwaitingInput to ShowingResult.
func (s *Session) Submit(p profile.Profile, o outcome.Outcome) error {
	if s.state != AwaitingInput {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, s.state)
	}
	s.state = ShowingResult
	s.profile = p
	s.outcome = o
	s.failure = ""
	return nil
}

// Fail records a failed submission. The session stays on the form.
func (s *Session) Fail(msg string) error {
	if s.state != AwaitingInput {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
	}
	s.failure = msg
	return nil
}

// Restart moves ShowingResult back to AwaitingInput, discarding the profile
// and outcome.
func (s *Session) Restart() error {
	if s.state != ShowingResult {
		return fmt.Errorf("%w: restart from %s", ErrInvalidTransition, s.state)
	}
	*s = Session{state: AwaitingInput}
	return nil
}
