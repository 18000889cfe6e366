package storage

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"neatauth/internal/model"
)

// RetryPolicy bounds how hard RetryingStore tries before giving up.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// RetryingStore retries transient backend failures with exponential backoff.
// Malformed records, missing configuration and context errors fail at once.
type RetryingStore struct {
	inner  Store
	policy RetryPolicy
}

func NewRetryingStore(inner Store, policy RetryPolicy) *RetryingStore {
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	return &RetryingStore{inner: inner, policy: policy}
}

func (s *RetryingStore) Unwrap() Store { return s.inner }

func (s *RetryingStore) Init(ctx context.Context) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		return retryable(s.inner.Init(ctx))
	})
}

func (s *RetryingStore) SaveGenome(ctx context.Context, genome model.Genome) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		return retryable(s.inner.SaveGenome(ctx, genome))
	})
}

type lookup struct {
	genome model.Genome
	ok     bool
}

func (s *RetryingStore) GetGenome(ctx context.Context, identity string) (model.Genome, bool, error) {
	res, err := retry.DoValue(ctx, s.backoff(), func(ctx context.Context) (lookup, error) {
		genome, ok, err := s.inner.GetGenome(ctx, identity)
		return lookup{genome: genome, ok: ok}, retryable(err)
	})
	if err != nil {
		return model.Genome{}, false, err
	}
	return res.genome, res.ok, nil
}

func (s *RetryingStore) DeleteGenome(ctx context.Context, identity string) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		return retryable(s.inner.DeleteGenome(ctx, identity))
	})
}

func (s *RetryingStore) Close() error {
	return CloseIfSupported(s.inner)
}

func (s *RetryingStore) backoff() retry.Backoff {
	b := retry.NewExponential(s.policy.BaseDelay)
	if s.policy.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.policy.MaxDelay, b)
	}
	return retry.WithMaxRetries(s.policy.MaxRetries, b)
}

func retryable(err error) error {
	if err == nil || !Transient(err) {
		return err
	}
	return retry.RetryableError(err)
}

// Transient reports whether err is worth retrying.
func Transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, model.ErrMalformedGenome), errors.Is(err, model.ErrNotFound), errors.Is(err, ErrNotInitialized):
		return false
	}
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() == CodeStoreConfig {
		return false
	}
	// Name length and permission failures do not heal on retry.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return false
	}
	if transient, ok := serverTransient(err); ok {
		return transient
	}
	return true
}
