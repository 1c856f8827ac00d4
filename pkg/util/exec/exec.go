package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"
)

// Result is the outcome of a command that was started.
type Result struct {
	Cmd    string
	RC     int
	Stdout string
	Stderr string
}

// Executor is the main interface for all the exec commands
type Executor interface {
	// ExecuteCommand runs command in dir and returns its result. A command
	// that exits non-zero yields both a Result and a *CommandError.
	ExecuteCommand(ctx context.Context, dir string, command string, arg ...string) (*Result, error)
	ExecuteCommandWithOutput(ctx context.Context, command string, arg ...string) (string, error)
}

// CommandError is returned for a command that ran and exited non-zero.
type CommandError struct {
	Result
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed with rc=%d: %s", e.Cmd, e.RC, strings.TrimSpace(e.Stderr))
}

func (e *CommandError) Command() string     { return e.Cmd }
func (e *CommandError) ExitCode() int       { return e.RC }
func (e *CommandError) Output() string      { return e.Stdout }
func (e *CommandError) ErrorOutput() string { return e.Stderr }

// CommandExecutor is the type of the Executor
type CommandExecutor struct{}

// ExecuteCommand executes a command in the given working directory
func (*CommandExecutor) ExecuteCommand(ctx context.Context, dir string, command string, arg ...string) (*Result, error) {
	logCommand(command, arg...)
	cmd := exec.CommandContext(ctx, command, arg...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Cmd:    commandLine(command, arg...),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, err
		}
		result.RC = exitErr.ExitCode()
		return result, &CommandError{Result: *result}
	}
	return result, nil
}

// ExecuteCommandWithOutput executes a command with output
func (*CommandExecutor) ExecuteCommandWithOutput(ctx context.Context, command string, arg ...string) (string, error) {
	logCommand(command, arg...)
	cmd := exec.CommandContext(ctx, command, arg...)
	return runCommandWithOutput(cmd)
}

func runCommandWithOutput(cmd *exec.Cmd) (string, error) {
	output, err := cmd.Output()
	if err != nil {
		output = []byte(fmt.Sprintf("%s. %s", string(output), assertErrorType(err)))
	}
	return strings.TrimSpace(string(output)), err
}

func commandLine(command string, arg ...string) string {
	return strings.TrimSpace(command + " " + strings.Join(arg, " "))
}

func logCommand(command string, arg ...string) {
	klog.Infof("Running command: %s", commandLine(command, arg...))
}

func assertErrorType(err error) string {
	switch errType := err.(type) {
	case *exec.ExitError:
		return string(errType.Stderr)
	case *exec.Error:
		return errType.Error()
	}

	return ""
}
