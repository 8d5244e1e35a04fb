package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWarmer struct {
	paths []string
	err   error
}

func (f *fakeWarmer) WarmPage(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func newTestJobService(warmer PageWarmer) *JobService {
	logger := zerolog.Nop()
	j := &JobService{logger: &logger}
	j.InitHandlers(warmer)
	return j
}

func TestNewPageWarmTask(t *testing.T) {
	task, err := NewPageWarmTask("/dashboard/invoices")
	require.NoError(t, err)

	assert.Equal(t, TaskPageWarm, task.Type())

	var payload PageWarmPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "/dashboard/invoices", payload.Path)
}

func TestHandlePageWarmTask(t *testing.T) {
	warmer := &fakeWarmer{}
	j := newTestJobService(warmer)

	task, err := NewPageWarmTask("/dashboard/invoices")
	require.NoError(t, err)

	require.NoError(t, j.handlePageWarmTask(context.Background(), task))
	assert.Equal(t, []string{"/dashboard/invoices"}, warmer.paths)
}

func TestHandlePageWarmTaskRetriesOnFailure(t *testing.T) {
	warmErr := errors.New("database unavailable")
	j := newTestJobService(&fakeWarmer{err: warmErr})

	task, err := NewPageWarmTask("/dashboard/invoices")
	require.NoError(t, err)

	err = j.handlePageWarmTask(context.Background(), task)
	assert.ErrorIs(t, err, warmErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePageWarmTaskBadPayload(t *testing.T) {
	warmer := &fakeWarmer{}
	j := newTestJobService(warmer)

	err := j.handlePageWarmTask(context.Background(), asynq.NewTask(TaskPageWarm, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, warmer.paths)
}
