// Package proc runs the external processes recipe actions shell out to. It
// captures stdout and stderr line by line into the step's log, supports
// redirecting output to a file, and enforces the configured command timeout.
package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/vk/recipego/internal/ctxlog"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
)

// TimeoutError is the outcome of a process that exceeded its allotted time.
// The step's fail-fast rule applies as with any other action failure.
type TimeoutError struct {
	Executable string
	Timeout    time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Executable, e.Timeout)
}

// Options describes one external process invocation.
type Options struct {
	Executable string
	Args       []string
	// Dir is the process working directory; empty means the build basedir.
	Dir string
	// Env entries of the form KEY=VALUE appended to the inherited environment.
	Env []string
	// InputPath feeds the file's content to stdin when set.
	InputPath string
	// OutputPath redirects stdout to the file when set; stdout lines then
	// bypass the log.
	OutputPath string
	// Timeout overrides the run context's command timeout when non-zero.
	Timeout time.Duration
}

// Run executes the process and blocks until it exits or times out. Stdout
// lines are logged at info level (unless redirected), stderr lines at error
// level. The exit code is returned for the caller to interpret; Run itself
// only errors when the process cannot be started, is cancelled, or times
// out.
func Run(ctx context.Context, rc registry.RunContext, opts Options) (int, error) {
	logger := ctxlog.FromContext(ctx)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = rc.CommandTimeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, opts.Executable, opts.Args...)
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		cmd.Dir = rc.Basedir()
	}
	cmd.Env = append(os.Environ(), opts.Env...)

	if opts.InputPath != "" {
		in, err := os.Open(opts.InputPath)
		if err != nil {
			return -1, fmt.Errorf("opening input file: %w", err)
		}
		defer in.Close()
		cmd.Stdin = in
	}

	var wg sync.WaitGroup
	if opts.OutputPath != "" {
		out, err := os.Create(opts.OutputPath)
		if err != nil {
			return -1, fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
		cmd.Stdout = out
	} else {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return -1, err
		}
		wg.Add(1)
		go logLines(&wg, rc, stdout, result.LevelInfo)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}
	wg.Add(1)
	go logLines(&wg, rc, stderr, result.LevelError)

	logger.Debug("Spawning external process.", "executable", opts.Executable, "args", opts.Args, "dir", cmd.Dir)
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("starting %s: %w", opts.Executable, err)
	}
	wg.Wait()
	err = cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return -1, &TimeoutError{Executable: opts.Executable, Timeout: timeout}
		}
		return -1, fmt.Errorf("%s cancelled: %w", opts.Executable, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("running %s: %w", opts.Executable, err)
	}
	return 0, nil
}

// logLines forwards each line of the stream to the step log.
func logLines(wg *sync.WaitGroup, rc registry.RunContext, r io.Reader, level result.Level) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rc.Log(level, scanner.Text())
	}
}
