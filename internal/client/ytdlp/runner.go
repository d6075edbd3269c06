package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/tube-grabber/internal/logger"
)

const (
	// processWaitDelay is how long a killed process may keep its pipes open.
	processWaitDelay = 5 * time.Second
	// maxTailLines is the number of output lines kept for diagnostics.
	maxTailLines = 200
	// maxStdoutBytes caps captured JSON output.
	maxStdoutBytes = 64 << 20
	// maxLineBytes is the longest output line kept; the rest of the line is dropped.
	maxLineBytes = 1 << 20
)

// invocation describes one extractor run.
type invocation struct {
	// path is the executable.
	path string
	// args are passed verbatim.
	args []string
	// timeout bounds the run; the process is killed when it expires.
	timeout time.Duration
	// captureStdout keeps stdout as raw bytes instead of scanning it line by line.
	captureStdout bool
	// abortOnFatal kills the process as soon as an error line carries a known signature.
	abortOnFatal bool
	// onLine receives every output line as it arrives.
	onLine func(line string)
}

// runResult is the outcome of a successful invocation.
type runResult struct {
	// stdout holds raw stdout when captureStdout was set.
	stdout []byte
	// lines is the tail of the combined output.
	lines []string
}

// outputTail keeps the last lines of output, safe for concurrent writers.
type outputTail struct {
	mu    sync.Mutex
	lines []string
	total int
}

func (t *outputTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++

	if len(t.lines) == maxTailLines {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:maxTailLines-1]
	}

	t.lines = append(t.lines, line)
}

func (t *outputTail) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.lines...)
}

// lineWriter splits written bytes into lines on '\n' and on bare '\r',
// which progress output uses to redraw a line. Empty lines are dropped.
type lineWriter struct {
	// handle receives every complete line.
	handle func(line string)
	// pending holds the bytes of the current incomplete line.
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		if c == '\n' || c == '\r' {
			w.emit()

			continue
		}

		// Overlong lines are truncated rather than buffered without bound.
		if len(w.pending) < maxLineBytes {
			w.pending = append(w.pending, c)
		}
	}

	return len(p), nil
}

// Flush emits a trailing line that was not terminated.
func (w *lineWriter) Flush() {
	w.emit()
}

func (w *lineWriter) emit() {
	line := strings.TrimRight(string(w.pending), " ")
	w.pending = w.pending[:0]

	if line != "" {
		w.handle(line)
	}
}

// cappedBuffer keeps the first limit bytes written to it and discards the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		b.buf.Write(p[:min(len(p), remaining)])
	}

	return len(p), nil
}

// run executes inv and classifies any failure into a *ToolError.
// Cancellation of ctx itself is returned as ctx.Err(), not as a ToolError.
// The extractor runs in its own process group; a timeout kills every process in it,
// and Wait gives up on pipes still held open after processWaitDelay.
//
//nolint:funlen,cyclop // Process supervision is easier to follow as one function.
func run(ctx context.Context, inv invocation) (*runResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, inv.path, inv.args...) //nolint:gosec // The path comes from the locator.
	cmd.WaitDelay = processWaitDelay
	isolateProcessGroup(cmd)

	var (
		tail    outputTail
		fatalMu sync.Mutex
		fatal   *signature
	)

	handleLine := func(line string) {
		tail.add(line)

		if inv.onLine != nil {
			inv.onLine(line)
		}

		if !inv.abortOnFatal || !isErrorLine(line) {
			return
		}

		if s, ok := matchSignature(line); ok {
			fatalMu.Lock()
			if fatal == nil {
				fatal = &s
			}
			fatalMu.Unlock()

			cancel()
		}
	}

	var (
		stdoutBuf   = &cappedBuffer{limit: maxStdoutBytes}
		stdoutLines = &lineWriter{handle: handleLine}
		stderrLines = &lineWriter{handle: handleLine}
	)

	if inv.captureStdout {
		cmd.Stdout = stdoutBuf
	} else {
		cmd.Stdout = stdoutLines
	}

	cmd.Stderr = stderrLines

	logger.DebugKV(ctx, "Starting extractor", "path", inv.path, "args", redactArgs(inv.args))

	if err := cmd.Start(); err != nil {
		return nil, &ToolError{Kind: FailureSpawn, ExitCode: -1, Err: err}
	}

	// Wait owns the copy goroutines, so it returns once the group is killed
	// even if a descendant still holds the pipes.
	waitErr := cmd.Wait()

	stdoutLines.Flush()
	stderrLines.Flush()

	lines := tail.snapshot()

	fatalMu.Lock()
	earlyFatal := fatal
	fatalMu.Unlock()

	switch {
	case earlyFatal != nil:
		return nil, &ToolError{
			Kind:     earlyFatal.kind,
			Reason:   earlyFatal.reason,
			ExitCode: exitCode(waitErr),
			Output:   strings.Join(lines, "\n"),
			Err:      waitErr,
		}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, &ToolError{
			Kind:     FailureTimeout,
			ExitCode: -1,
			Output:   strings.Join(lines, "\n"),
			Err:      fmt.Errorf("killed after %s", inv.timeout),
		}
	case waitErr != nil:
		toolErr := &ToolError{
			Kind:     FailureGeneric,
			ExitCode: exitCode(waitErr),
			Output:   strings.Join(lines, "\n"),
			Err:      waitErr,
		}

		if s, ok := classifyOutput(lines); ok {
			toolErr.Kind = s.kind
			toolErr.Reason = s.reason
		}

		return nil, toolErr
	}

	return &runResult{stdout: stdoutBuf.buf.Bytes(), lines: lines}, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	if err == nil {
		return 0
	}

	return -1
}

// redactArgs hides token values in logged command lines.
func redactArgs(args []string) []string {
	result := make([]string, len(args))

	for i, arg := range args {
		if idx := strings.Index(arg, "po_token="); idx >= 0 {
			result[i] = arg[:idx] + "po_token=[redacted]"

			continue
		}

		result[i] = arg
	}

	return result
}
