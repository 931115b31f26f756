// Package runner executes the external commands (ip, gobgp) the loader and
// provisioner issue, on the local machine, on a remote node over SSH, or
// not at all in preview mode.
package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/newtron-network/newtroute/pkg/util"
)

// Runner runs one command and returns its combined output. A failing
// command returns a *util.CommandError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Local runs commands as child processes.
type Local struct{}

// Run implements Runner.
func (Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	util.WithField("cmd", strings.Join(argv, " ")).Debug("exec")

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), util.NewCommandError("", argv, string(out), err)
	}
	return string(out), nil
}

// Preview prints commands instead of running them and records them in
// order. Every command succeeds with empty output.
type Preview struct {
	Out io.Writer

	mu       sync.Mutex
	commands [][]string
}

// NewPreview creates a preview runner writing to out. A nil out only records.
func NewPreview(out io.Writer) *Preview {
	return &Preview{Out: out}
}

// Run implements Runner.
func (p *Preview) Run(ctx context.Context, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	p.mu.Lock()
	p.commands = append(p.commands, argv)
	p.mu.Unlock()
	if p.Out != nil {
		fmt.Fprintf(p.Out, "  %s\n", strings.Join(quoteIfNeeded(argv), " "))
	}
	return "", nil
}

// Commands returns the recorded commands.
func (p *Preview) Commands() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]string, len(p.commands))
	copy(out, p.commands)
	return out
}

// quoteIfNeeded quotes only arguments the shell would split or expand,
// keeping preview output readable.
func quoteIfNeeded(argv []string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n'\"$`\\*?;&|<>()") {
			out[i] = singleQuote(a)
		} else {
			out[i] = a
		}
	}
	return out
}
