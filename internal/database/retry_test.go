package database

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "test")
}

func transientErr() error {
	return &StorageError{Op: "insert", Transient: true, Err: errors.New("connection reset by peer")}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), testEntry(), "insert", func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), testEntry(), "insert", func() error {
		calls++
		return transientErr()
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsTransient(err), "the last error propagates unchanged")
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}
	permanent := &StorageError{Op: "insert", Transient: false, Err: errors.New("duplicate entry")}

	calls := 0
	err := policy.Do(context.Background(), testEntry(), "insert", func() error {
		calls++
		return permanent
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := policy.Do(ctx, testEntry(), "insert", func() error {
		calls++
		return transientErr()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no second attempt after cancellation")
}

func TestIsTransientClassification(t *testing.T) {
	assert.True(t, IsTransient(transientErr()))
	assert.False(t, IsTransient(errors.New("plain error")))
	assert.False(t, IsTransient(&StorageError{Op: "query", Err: errors.New("syntax error")}))

	assert.True(t, isConnectionError(errors.New("write tcp: broken pipe")))
	assert.False(t, isConnectionError(errors.New("duplicate entry '1-2024-01-02' for key")))
}
