package executil

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSh_StderrCappedAtMaxLen(t *testing.T) {
	// Write twice the cap to stderr; only the first maxStderrLen bytes should appear in the error.
	longStderr := strings.Repeat("A", maxStderrLen*2)
	p, err := StartSh(context.Background(), "", fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", longStderr))
	require.NoError(t, err)
	<-p.Done()

	require.Error(t, p.Err())
	errMsg := p.Err().Error()
	assert.LessOrEqual(t, len(errMsg), maxStderrLen+20, "error message should be capped")
	assert.Equal(t, strings.Repeat("A", maxStderrLen), errMsg[:maxStderrLen])
}

func TestStartSh_Dir(t *testing.T) {
	p, err := StartSh(context.Background(), "/tmp", "test \"$(pwd)\" = /tmp")
	require.NoError(t, err)
	<-p.Done()
	require.NoError(t, p.Err())
}

func TestStartSh_StopKillsProcess(t *testing.T) {
	p, err := StartSh(context.Background(), "", "sleep 60")
	require.NoError(t, err)
	assert.True(t, p.Running())
	assert.Positive(t, p.Pid())

	require.NoError(t, p.Stop())
	assert.False(t, p.Running())
	assert.NoError(t, p.Err(), "a stopped process is not a failure")
}

func TestStartSh_ContextCancelKills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := StartSh(ctx, "", "sleep 60")
	require.NoError(t, err)

	cancel()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process still running after cancel")
	}
	assert.Error(t, p.Err())
}

func TestStartSh_ExitReportsError(t *testing.T) {
	p, err := StartSh(context.Background(), "", "echo nope >&2; exit 3")
	require.NoError(t, err)
	<-p.Done()

	var exitErr *exec.ExitError
	require.ErrorAs(t, p.Err(), &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, p.Err().Error(), "nope")
}

func TestRecordingStarter(t *testing.T) {
	t.Run("records commands and runs the stand-in", func(t *testing.T) {
		r := &RecordingStarter{}
		p, err := r.StartSh(context.Background(), "", "mpv 'x.mp4'")
		require.NoError(t, err)
		defer func() { _ = p.Stop() }()

		require.Len(t, r.Started(), 1)
		assert.Equal(t, "mpv 'x.mp4'", r.Started()[0].Cmd)
		assert.True(t, p.Running())
	})

	t.Run("returns configured error", func(t *testing.T) {
		expectedErr := errors.New("start failed")
		r := &RecordingStarter{Err: expectedErr}

		_, err := r.StartSh(context.Background(), "", "mpv")
		assert.Equal(t, expectedErr, err)
		assert.Len(t, r.Started(), 1)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		r := &RecordingStarter{StandIn: "true"}
		p, err := r.StartSh(context.Background(), "", "echo hello")
		require.NoError(t, err)
		<-p.Done()

		r.Reset()
		assert.Empty(t, r.Started())
	})
}
