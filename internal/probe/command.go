// Package probe builds the roaring bitmap library and the measurement probe,
// then runs the probe with one set of benchmark arguments at a time.
package probe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// CommandExecutor defines an interface for executing external commands.
// This abstraction enables unit testing without real toolchain execution.
type CommandExecutor interface {
	// Run executes the command and returns the combined output (stdout+stderr).
	Run() ([]byte, error)

	// Output executes the command and returns stdout only.
	Output() ([]byte, error)

	// SetDir sets the working directory.
	SetDir(dir string)

	// SetEnv appends KEY=VALUE entries to the inherited environment.
	SetEnv(env ...string)
}

// CommandBuilder defines an interface for building commands.
type CommandBuilder interface {
	// BuildCommand creates a CommandExecutor bound to ctx.
	BuildCommand(ctx context.Context, name string, args ...string) CommandExecutor
}

// RealCommandExecutor wraps exec.Cmd to implement CommandExecutor.
type RealCommandExecutor struct {
	cmd *exec.Cmd
}

// Run executes the command and returns combined output.
func (r *RealCommandExecutor) Run() ([]byte, error) {
	return r.cmd.CombinedOutput()
}

// Output executes the command and returns stdout. Stderr is captured into
// the returned *exec.ExitError on failure.
func (r *RealCommandExecutor) Output() ([]byte, error) {
	return r.cmd.Output()
}

func (r *RealCommandExecutor) SetDir(dir string) { r.cmd.Dir = dir }

func (r *RealCommandExecutor) SetEnv(env ...string) {
	if r.cmd.Env == nil {
		r.cmd.Env = os.Environ()
	}
	r.cmd.Env = append(r.cmd.Env, env...)
}

// RealCommandBuilder implements CommandBuilder using exec.CommandContext.
type RealCommandBuilder struct{}

// NewRealCommandBuilder creates a new RealCommandBuilder.
func NewRealCommandBuilder() *RealCommandBuilder {
	return &RealCommandBuilder{}
}

// BuildCommand creates a CommandExecutor for the given command and arguments.
func (b *RealCommandBuilder) BuildCommand(ctx context.Context, name string, args ...string) CommandExecutor {
	return &RealCommandExecutor{cmd: exec.CommandContext(ctx, name, args...)}
}

// MockCommandExecutor implements CommandExecutor for testing.
type MockCommandExecutor struct {
	// Stdout is returned by Output and, followed by Stderr, by Run.
	Stdout []byte
	// Stderr is appended to Stdout by Run.
	Stderr []byte
	// Err is the error to return.
	Err error
	// Dir and Env record what was set.
	Dir string
	Env []string
	// RunCalled indicates whether Run or Output was called.
	RunCalled bool
}

// Run returns the configured combined output and error.
func (m *MockCommandExecutor) Run() ([]byte, error) {
	m.RunCalled = true
	return append(bytes.Clone(m.Stdout), m.Stderr...), m.Err
}

// Output returns the configured stdout and error.
func (m *MockCommandExecutor) Output() ([]byte, error) {
	m.RunCalled = true
	return m.Stdout, m.Err
}

func (m *MockCommandExecutor) SetDir(dir string)    { m.Dir = dir }
func (m *MockCommandExecutor) SetEnv(env ...string) { m.Env = append(m.Env, env...) }

// MockCommandBuilder implements CommandBuilder for testing.
type MockCommandBuilder struct {
	// Commands records all commands that were built.
	Commands []MockBuiltCommand
	// Executors holds every executor handed out, in build order.
	Executors []*MockCommandExecutor
	// ExecutorFactory allows creating executors dynamically based on command.
	ExecutorFactory func(name string, args []string) *MockCommandExecutor
}

// MockBuiltCommand records details of a built command.
type MockBuiltCommand struct {
	Name string
	Args []string
}

// NewMockCommandBuilder creates a new MockCommandBuilder.
func NewMockCommandBuilder() *MockCommandBuilder {
	return &MockCommandBuilder{}
}

// BuildCommand creates a MockCommandExecutor and records the command details.
func (b *MockCommandBuilder) BuildCommand(_ context.Context, name string, args ...string) CommandExecutor {
	b.Commands = append(b.Commands, MockBuiltCommand{Name: name, Args: args})
	var e *MockCommandExecutor
	if b.ExecutorFactory != nil {
		e = b.ExecutorFactory(name, args)
	}
	if e == nil {
		e = &MockCommandExecutor{}
	}
	b.Executors = append(b.Executors, e)
	return e
}

// LastCommand returns the most recently built command, or nil if none.
func (b *MockCommandBuilder) LastCommand() *MockBuiltCommand {
	if len(b.Commands) == 0 {
		return nil
	}
	return &b.Commands[len(b.Commands)-1]
}

// Names returns the program names of every built command, in order.
func (b *MockCommandBuilder) Names() []string {
	out := make([]string, len(b.Commands))
	for i, c := range b.Commands {
		out[i] = c.Name
	}
	return out
}

// Reset clears all recorded commands.
func (b *MockCommandBuilder) Reset() {
	b.Commands = nil
	b.Executors = nil
}
