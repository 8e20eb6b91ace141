package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsSubmittedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(2)
	pool.Start(ctx)

	done := make(chan struct{})
	require.NoError(t, pool.Submit(ctx, func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
}

func TestWorkerPool_SubmitFailsWhenFullAndCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(1) // not started, so the buffer never drains

	require.NoError(t, pool.Submit(ctx, func(context.Context) error { return nil }))
	require.NoError(t, pool.Submit(ctx, func(context.Context) error { return nil }))

	cancel()
	err := pool.Submit(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
