// Package audit journals the changes newtroute makes to a daemon or node:
// every executed command and every injected path becomes one JSON line.
package audit

import (
	"fmt"
	"os/user"
	"time"
)

// Event is one change made to a daemon or node.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Host      string        `json:"host"`      // where the change was made
	Operation string        `json:"operation"` // load, provision
	Kind      Kind          `json:"kind"`
	Target    string        `json:"target"` // command line or path
	VRF       string        `json:"vrf,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Kind says what an event changed.
type Kind string

const (
	KindCommand Kind = "command"
	KindPath    Kind = "path"
)

// Filter defines criteria for querying audit events
type Filter struct {
	Host        string
	Operation   string
	Kind        Kind
	VRF         string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for the current user.
func NewEvent(host, operation string, kind Kind, target string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      currentUser(),
		Host:      host,
		Operation: operation,
		Kind:      kind,
		Target:    target,
	}
}

// WithVRF sets the VRF the change belongs to
func (e *Event) WithVRF(vrf string) *Event {
	e.VRF = vrf
	return e
}

// WithResult records the outcome of the change
func (e *Event) WithResult(err error) *Event {
	e.Success = err == nil
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
