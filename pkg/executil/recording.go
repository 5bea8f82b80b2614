package executil

import (
	"context"
	"sync"
)

// RecordedCommand captures a command that was started.
type RecordedCommand struct {
	Dir string
	Cmd string
}

// RecordingStarter captures commands for testing. Each recorded command is
// replaced by StandIn, a long-running command, so the returned process
// behaves like a real player without opening one.
type RecordingStarter struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// StandIn replaces every started command. Defaults to "sleep 60".
	StandIn string

	// Err, when set, is returned instead of starting anything.
	Err error
}

// StartSh records the command and starts the stand-in.
func (r *RecordingStarter) StartSh(ctx context.Context, dir, cmd string) (*Process, error) {
	r.mu.Lock()
	r.Commands = append(r.Commands, RecordedCommand{Dir: dir, Cmd: cmd})
	err, standIn := r.Err, r.StandIn
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if standIn == "" {
		standIn = "sleep 60"
	}
	return StartSh(ctx, dir, standIn)
}

// Started returns a copy of the recorded commands.
func (r *RecordingStarter) Started() []RecordedCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCommand(nil), r.Commands...)
}

// Reset clears recorded commands.
func (r *RecordingStarter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = nil
}
