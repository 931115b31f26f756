package audit

import (
	"context"
	"strings"
	"time"

	"github.com/newtron-network/newtroute/pkg/gobgp"
	"github.com/newtron-network/newtroute/pkg/runner"
	"github.com/newtron-network/newtroute/pkg/util"
)

// Runner journals every command it runs. A failure to write the journal
// is logged and does not fail the command.
type Runner struct {
	next      runner.Runner
	logger    Logger
	host      string
	operation string
}

// NewRunner wraps next so its commands are journaled to logger.
func NewRunner(next runner.Runner, logger Logger, host, operation string) *Runner {
	return &Runner{next: next, logger: logger, host: host, operation: operation}
}

// Run implements runner.Runner.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	start := time.Now()
	out, err := r.next.Run(ctx, name, args...)

	cmd := strings.Join(append([]string{name}, args...), " ")
	ev := NewEvent(r.host, r.operation, KindCommand, cmd).
		WithResult(err).
		WithDuration(time.Since(start))
	if lerr := r.logger.Log(ev); lerr != nil {
		util.Warnf("audit: %v", lerr)
	}
	return out, err
}

// PathAdder journals every path it adds.
type PathAdder struct {
	next      gobgp.PathAdder
	logger    Logger
	host      string
	operation string
}

// NewPathAdder wraps next so its paths are journaled to logger.
func NewPathAdder(next gobgp.PathAdder, logger Logger, host, operation string) *PathAdder {
	return &PathAdder{next: next, logger: logger, host: host, operation: operation}
}

// AddPath implements gobgp.PathAdder.
func (p *PathAdder) AddPath(ctx context.Context, r gobgp.Route) error {
	start := time.Now()
	err := p.next.AddPath(ctx, r)

	ev := NewEvent(p.host, p.operation, KindPath, r.String()).
		WithVRF(r.VRF).
		WithResult(err).
		WithDuration(time.Since(start))
	if lerr := p.logger.Log(ev); lerr != nil {
		util.Warnf("audit: %v", lerr)
	}
	return err
}
