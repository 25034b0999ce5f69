package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy retries transient storage failures with exponential backoff.
// Permanent errors and exhausted budgets propagate to the caller unchanged.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Do runs fn up to Attempts times. The delay doubles after every failed
// attempt, starting at BaseDelay.
func (p RetryPolicy) Do(ctx context.Context, log *logrus.Entry, op string, fn func() error) error {
	delay := p.BaseDelay
	var err error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == p.Attempts {
			return err
		}

		log.WithError(err).WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"delay":   delay,
		}).Warn("Transient storage error, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
