package auth

import (
	"fmt"
	"sync"
	"time"
)

// State is where one browser's form sits in its submission lifecycle.
//
//	Idle -> Submitting -> Success | Failure -> Idle
//
// Validation failures never leave Idle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailure
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Redirect is the delayed navigation that follows a successful submission.
// The page renders it; nothing here sleeps.
type Redirect struct {
	To    string
	After time.Duration
}

// refresh is the meta refresh value for browsers without HTMX.
func (r Redirect) refresh() string {
	return fmt.Sprintf("%d;url=%s", int(r.After.Seconds()+0.5), r.To)
}

// trigger fires the HTMX navigation once the delay elapses.
func (r Redirect) trigger() string {
	return fmt.Sprintf("load delay:%dms", r.After.Milliseconds())
}

// Outcome is the terminal result of one form submission.
type Outcome struct {
	State    State
	Message  string
	Redirect *Redirect
}

// Succeeded reports whether the submission reached StateSuccess.
func (o Outcome) Succeeded() bool {
	return o.State == StateSuccess
}

// failure builds a failed Outcome.
func failure(msg string) Outcome {
	return Outcome{State: StateFailure, Message: msg}
}

// Machine tracks form state per key (browser ID + form kind). It is the
// busy flag that keeps one browser from submitting the same form twice
// while a backend call is in flight.
type Machine struct {
	mu     sync.Mutex
	states map[string]State

	// OnTransition, when set, observes every state change.
	OnTransition func(key string, from, to State)
}

// NewMachine creates an empty state machine.
func NewMachine() *Machine {
	return &Machine{states: make(map[string]State)}
}

// State returns the current state for key. Unknown keys are Idle.
func (m *Machine) State(key string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[key]
}

// Begin moves key from Idle to Submitting. It returns false if a
// submission is already in flight.
func (m *Machine) Begin(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[key] == StateSubmitting {
		return false
	}
	m.set(key, StateSubmitting)
	return true
}

// Finish records the terminal state of the in-flight submission.
func (m *Machine) Finish(key string, to State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, to)
}

// Reset returns key to Idle, re-enabling the form. Callers defer it right
// after a successful Begin.
func (m *Machine) Reset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, StateIdle)
	delete(m.states, key)
}

// set changes state and notifies the observer. Caller holds mu.
func (m *Machine) set(key string, to State) {
	from := m.states[key]
	m.states[key] = to
	if m.OnTransition != nil && from != to {
		m.OnTransition(key, from, to)
	}
}
