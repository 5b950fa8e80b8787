package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isoresample/internal/models"
)

func shell(t *testing.T, script string) models.Invocation {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return models.Invocation{Path: sh, Args: []string{"-c", script}}
}

func TestExecRunnerCapturesAndForwards(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewExecRunner(&out, &errOut)

	res, err := r.Run(context.Background(), shell(t, "echo hello; echo oops >&2"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.Equal(t, "oops\n", string(res.Stderr))
	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}

func TestExecRunnerNilWriters(t *testing.T) {
	r := NewExecRunner(nil, nil)

	res, err := r.Run(context.Background(), shell(t, "echo captured"))
	require.NoError(t, err)
	assert.Equal(t, "captured\n", string(res.Stdout))
}

func TestExecRunnerExitCode(t *testing.T) {
	r := NewExecRunner(nil, nil)

	res, err := r.Run(context.Background(), shell(t, "exit 3"))
	require.NoError(t, err, "non-zero exit is a result, not an error")
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
}

func TestExecRunnerSignalStatus(t *testing.T) {
	r := NewExecRunner(nil, nil)

	res, err := r.Run(context.Background(), shell(t, "kill -TERM $$"))
	require.NoError(t, err)
	assert.Equal(t, 128+15, res.ExitCode)
	assert.False(t, res.Success())
}

func TestExecRunnerStartFailure(t *testing.T) {
	r := NewExecRunner(nil, nil)

	_, err := r.Run(context.Background(), models.Invocation{
		Path: filepath.Join(t.TempDir(), "bin", "flirt"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStart))

	_, err = r.Run(context.Background(), models.Invocation{})
	assert.ErrorIs(t, err, ErrStart)
}

func TestExecRunnerCancel(t *testing.T) {
	r := NewExecRunner(nil, nil)
	inv := shell(t, "exec sleep 10")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, inv)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMockRunner(t *testing.T) {
	m := NewMockRunner(4)
	assert.False(t, m.Called())

	inv := models.Invocation{Path: "/bin/flirt", Args: []string{"-in", "a"}}
	res, err := m.Run(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
	assert.True(t, m.Called())
	assert.Equal(t, []models.Invocation{inv}, m.Calls)

	m.Err = ErrStart
	_, err = m.Run(context.Background(), inv)
	assert.ErrorIs(t, err, ErrStart)
	assert.Len(t, m.Calls, 2)

	empty := &MockRunner{}
	res, err = empty.Run(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}
