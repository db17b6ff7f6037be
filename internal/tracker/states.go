// Package tracker drives tracking attempts: one request in, one terminal
// outcome out, with every side effect hanging off the transitions.
//
// Valid attempt graph:
//
//	REQUESTED ──► EXTRACTED ──► DEDUPLICATED ──► RECORDED
//	    │             │               │
//	    │             │               ├──► ALREADY_TRACKED
//	    └─────────────┴───────────────┴──► REJECTED
//
// RECORDED, ALREADY_TRACKED and REJECTED are terminal states. Remote sync
// is not part of the graph: it starts after RECORDED and settles on its
// own, so a dead upstream can never un-record a job.
package tracker

import "fmt"

// State values name the stages of one tracking attempt.
type State string

const (
	StateRequested      State = "REQUESTED"
	StateExtracted      State = "EXTRACTED"
	StateDeduplicated   State = "DEDUPLICATED"
	StateRecorded       State = "RECORDED"
	StateAlreadyTracked State = "ALREADY_TRACKED"
	StateRejected       State = "REJECTED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StateRequested:    {StateExtracted, StateRejected},
	StateExtracted:    {StateDeduplicated, StateRejected},
	StateDeduplicated: {StateRecorded, StateAlreadyTracked, StateRejected},
	// RECORDED, ALREADY_TRACKED and REJECTED are terminal — no outgoing transitions
}

// ParseState converts a raw string to a State, returning an error for
// unknown values.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StateRequested, StateExtracted, StateDeduplicated,
		StateRecorded, StateAlreadyTracked, StateRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown attempt state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by
// the attempt graph.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when an attempt can go no further.
func IsTerminal(s State) bool {
	_, ok := validTransitions[s]
	return !ok
}

// attempt walks one request through the graph, refusing illegal jumps.
type attempt struct {
	requestID string
	state     State
}

func newAttempt(requestID string) *attempt {
	return &attempt{requestID: requestID, state: StateRequested}
}

func (a *attempt) to(next State) error {
	if !IsTransitionAllowed(a.state, next) {
		return fmt.Errorf("attempt %s: transition %s → %s is not allowed", a.requestID, a.state, next)
	}
	a.state = next
	return nil
}

// Trigger identifies what initiated a tracking attempt.
type Trigger string

const (
	TriggerManual      Trigger = "manual"
	TriggerAuto        Trigger = "auto"
	TriggerContextMenu Trigger = "context_menu"
)

// ParseTrigger converts a raw string to a Trigger. The empty string means
// an explicit user click.
func ParseTrigger(s string) (Trigger, error) {
	if s == "" {
		return TriggerManual, nil
	}
	t := Trigger(s)
	switch t {
	case TriggerManual, TriggerAuto, TriggerContextMenu:
		return t, nil
	}
	return "", fmt.Errorf("unknown trigger %q", s)
}
