package runtime

import (
	"context"
	"os/exec"
)

// CommandRunner defines an interface for running system commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// ExecCommandRunner executes commands on the host.
type ExecCommandRunner struct{}

// NewCommandRunner returns a default command runner implementation.
func NewCommandRunner() CommandRunner {
	return &ExecCommandRunner{}
}

// Run executes a command and returns its combined output. Cancelling ctx
// kills the process.
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// LookPath reports where name is installed
func (r *ExecCommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
