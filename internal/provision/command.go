// Package provision implements the provisioning steps: preflight, system
// packages, the runtime sandbox, the directory layout, and verification.
package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Commander runs external commands on behalf of steps. Implementations
// include the real exec-backed commander and test fakes.
type Commander interface {
	// Run executes name with args and waits for it to finish.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes name with args and returns its combined output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecCommander executes commands via os/exec.
type ExecCommander struct {
	// Dir is the working directory for every command. Empty means the
	// current process directory.
	Dir string

	// Stdout and Stderr receive command output from Run. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecCommander creates a commander rooted at dir that streams command
// output to the current process.
func NewExecCommander(dir string) *ExecCommander {
	return &ExecCommander{Dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *ExecCommander) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

func (e *ExecCommander) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}
