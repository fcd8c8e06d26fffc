package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{MaxElapsedTime: time.Second, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxRetries: 2}
}

func TestWithRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "", errors.New("still failing")
	}, fastRetry())

	assert.EqualError(t, err, "still failing")
	assert.Equal(t, 3, calls)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "", backoff.Permanent(errors.New("bad request"))
	}, fastRetry())

	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, calls)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := WithRetry(ctx, func() (int, error) {
		calls++
		return 0, errors.New("transient")
	}, fastRetry())

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestFetchRetryOptions(t *testing.T) {
	opts := FetchRetryOptions()
	assert.Equal(t, uint64(2), opts.MaxRetries)
	assert.Less(t, opts.InitialInterval, opts.MaxInterval)
}
