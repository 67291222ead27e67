package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// ErrToolUnavailable is returned by a Runner when the executable cannot be found
// or started.
var ErrToolUnavailable = errors.New("external tool unavailable")

// Invocation describes one external process run.
type Invocation struct {
	Tool string
	Args []string
	Dir  string
}

// Output is what the process produced. ExitCode is -1 when the process never ran
// to completion.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external tool.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// ExecRunner runs tools with os/exec. Stdin is left empty.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	path, err := exec.LookPath(inv.Tool)
	if err != nil {
		return Output{ExitCode: -1}, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, inv.Tool, err)
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: -1}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		return out, err
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrNotExist):
		return out, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, inv.Tool, err)
	default:
		return out, err
	}
}
