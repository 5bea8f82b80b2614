// Package utils holds small helpers shared by commands.
package utils

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type chunk struct {
	text  string
	count int
}

// DeferredWriter holds console output in memory until Flush. The browse
// command prints through it while the TUI owns the terminal. Consecutive
// identical Printf lines are folded into one with a repeat count. Safe for
// concurrent use.
type DeferredWriter struct {
	mu     sync.Mutex
	chunks []chunk
}

// Write buffers p verbatim.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chunks = append(d.chunks, chunk{text: string(p), count: 1})
	return len(p), nil
}

// Printf buffers one formatted line.
func (d *DeferredWriter) Printf(format string, args ...any) {
	line := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")

	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.chunks); n > 0 && d.chunks[n-1].text == line+"\n" {
		d.chunks[n-1].count++
		return
	}
	d.chunks = append(d.chunks, chunk{text: line + "\n", count: 1})
}

// Len returns the number of buffered chunks.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chunks)
}

// Flush writes everything buffered to w and resets the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	for _, c := range d.chunks {
		if c.count > 1 {
			fmt.Fprintf(&b, "%s (x%d)\n", strings.TrimSuffix(c.text, "\n"), c.count)
			continue
		}
		b.WriteString(c.text)
	}
	d.chunks = nil

	if b.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w, b.String())
	return err
}
