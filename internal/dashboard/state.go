// Package dashboard owns the weekly sequence shown by the dashboard and the
// navigation over it.
package dashboard

import (
	"fmt"
	"strings"

	"painel/internal/core"
	"painel/internal/parser"
)

// StartPolicy decides where the index lands after a successful fetch.
type StartPolicy string

const (
	StartFirst StartPolicy = "first" // first block discovered (top of the sheet)
	StartLast  StartPolicy = "last"  // last block discovered
	StartKeep  StartPolicy = "keep"  // stay on the current index, clamped
)

// ParseStartPolicy reads a policy name, case-insensitively.
func ParseStartPolicy(s string) (StartPolicy, error) {
	switch p := StartPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case StartFirst, StartLast, StartKeep:
		return p, nil
	case "":
		return StartFirst, nil
	default:
		return "", fmt.Errorf("invalid start policy %q: must be one of first, last, keep", s)
	}
}

// State is the navigation state machine. It is a value: every transition
// returns a new State and never mutates the snapshots it holds.
//
// Invariant: 0 <= index < len(weeks) whenever weeks is non-empty, index == 0
// otherwise.
type State struct {
	weeks   []core.DashboardData
	index   int
	loading bool
	err     error
	settled bool
	policy  StartPolicy
}

// NewState returns the initial state: no weeks, fallback snapshot shown.
func NewState(policy StartPolicy) State {
	if policy == "" {
		policy = StartFirst
	}
	return State{policy: policy}
}

// Next moves one week forward. No-op on the last week.
func (s State) Next() State {
	if s.index < len(s.weeks)-1 {
		s.index++
	}
	return s
}

// Previous moves one week back. No-op on the first week.
func (s State) Previous() State {
	if s.index > 0 {
		s.index--
	}
	return s
}

// Select jumps to week i. Out-of-range indexes are ignored.
func (s State) Select(i int) State {
	if i >= 0 && i < len(s.weeks) {
		s.index = i
	}
	return s
}

// Begin marks a fetch as in flight.
func (s State) Begin() State {
	s.loading = true
	return s
}

// Resolve installs a freshly parsed sequence. An empty sequence is reported
// as parser.ErrNoWeeks and leaves the previous one in place.
func (s State) Resolve(weeks []core.DashboardData) State {
	if len(weeks) == 0 {
		return s.Fail(parser.ErrNoWeeks)
	}
	prev := s.index
	s.weeks = weeks
	s.loading = false
	s.err = nil
	s.settled = true

	switch s.policy {
	case StartLast:
		s.index = len(weeks) - 1
	case StartKeep:
		s.index = min(prev, len(weeks)-1)
	default:
		s.index = 0
	}
	return s
}

// Fail records a failed fetch. Whatever was displayed stays displayed.
func (s State) Fail(err error) State {
	s.loading = false
	s.err = err
	s.settled = true
	return s
}

func (s State) Index() int          { return s.index }
func (s State) Len() int            { return len(s.weeks) }
func (s State) Loading() bool       { return s.loading }
func (s State) Err() error          { return s.err }
func (s State) Policy() StartPolicy { return s.policy }

// Settled reports whether at least one fetch has completed, either way.
func (s State) Settled() bool { return s.settled }

// UsingFallback reports whether Current returns the built-in snapshot.
func (s State) UsingFallback() bool { return len(s.weeks) == 0 }

// Current returns the selected snapshot, or the fallback snapshot while no
// sequence has been loaded.
func (s State) Current() core.DashboardData {
	if len(s.weeks) == 0 {
		return Fallback()
	}
	return s.weeks[s.index]
}

// Weeks lists the week selector entries in sequence order.
func (s State) Weeks() []core.WeekOption {
	out := make([]core.WeekOption, len(s.weeks))
	for i, w := range s.weeks {
		out[i] = core.WeekOption{Label: w.WeekRange, Index: i}
	}
	return out
}

// HasNext and HasPrevious tell whether Next and Previous would move.
func (s State) HasNext() bool     { return s.index < len(s.weeks)-1 }
func (s State) HasPrevious() bool { return s.index > 0 }
