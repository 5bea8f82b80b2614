// Package executil provides shell execution utilities.
package executil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const maxStderrLen = 500

// ErrNotStarted is returned by Stop on a process that never started.
var ErrNotStarted = errors.New("process not started")

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

func (w *limitedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.TrimSpace(w.buf.String())
}

// Process is a shell command running in the background.
type Process struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr *limitedWriter
	done   chan struct{}

	mu      sync.Mutex
	err     error
	stopped bool
}

// StartSh launches cmd through sh without waiting for it to exit. The process
// is killed when ctx is done or Stop is called.
func StartSh(ctx context.Context, dir, cmd string) (*Process, error) {
	ctx, cancel := context.WithCancel(ctx)
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	if dir != "" {
		c.Dir = dir
	}
	stderr := &limitedWriter{buf: &bytes.Buffer{}, max: maxStderrLen}
	c.Stdin = nil
	c.Stdout = io.Discard
	c.Stderr = stderr

	if err := c.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %q: %w", cmd, err)
	}

	p := &Process{cmd: c, cancel: cancel, stderr: stderr, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	if err != nil && !p.stopped {
		if msg := p.stderr.String(); msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		p.err = err
	}
	p.mu.Unlock()
	p.cancel()
	close(p.done)
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err reports how the process exited. A process ended by Stop has no error.
// Only meaningful after Done is closed.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Running reports whether the process has not exited yet.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Stop kills the process and waits for it to exit.
func (p *Process) Stop() error {
	if p == nil || p.cmd.Process == nil {
		return ErrNotStarted
	}
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cancel()
	<-p.done
	return nil
}

// Starter launches background shell commands.
type Starter interface {
	StartSh(ctx context.Context, dir, cmd string) (*Process, error)
}

// RealStarter starts actual shell commands.
type RealStarter struct{}

// StartSh launches cmd with StartSh.
func (RealStarter) StartSh(ctx context.Context, dir, cmd string) (*Process, error) {
	return StartSh(ctx, dir, cmd)
}
