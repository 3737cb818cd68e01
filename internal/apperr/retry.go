package apperr

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// VectorStoreRetryAttempts is the default bounded retry count for
// VECTOR_STORE_UNAVAILABLE per spec §7 ("retried with bounded exponential
// backoff (3 attempts by default)").
const VectorStoreRetryAttempts = 3

// EmbedRetryAttempts is the default retry count for EMBED_FAILED per
// spec §7 ("one retry then surface").
const EmbedRetryAttempts = 1

// RetryVectorStore runs op with bounded exponential backoff, surfacing
// CodeVectorStoreUnavailable if every attempt fails.
func RetryVectorStore(ctx context.Context, op func() (any, error)) (any, error) {
	return retry(ctx, op, VectorStoreRetryAttempts, CodeVectorStoreUnavailable, "vector store unavailable")
}

// RetryEmbed runs op with a single bounded retry, surfacing
// CodeEmbedFailed if both attempts fail.
func RetryEmbed(ctx context.Context, op func() (any, error)) (any, error) {
	return retry(ctx, op, EmbedRetryAttempts+1, CodeEmbedFailed, "embedding call failed")
}

// retry wraps op in backoff.Retry with a bounded exponential backoff
// policy, translating exhaustion into an *Error with code.
func retry(ctx context.Context, op func() (any, error), maxTries int, code Code, message string) (any, error) {
	result, err := backoff.Retry(ctx, func() (any, error) {
		v, err := op()
		if err != nil {
			// Every failure here is retried up to maxTries; the caller
			// decides finality by returning a non-retryable error wrapped
			// in backoff.Permanent when appropriate.
			return nil, err
		}
		return v, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(uint(maxTries)))
	if err != nil {
		return nil, Wrap(code, message, err)
	}
	return result, nil
}

// Permanent marks err as non-retryable, stopping a RetryVectorStore or
// RetryEmbed call immediately instead of exhausting its attempt budget.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// ExponentialBackOff exposes the underlying policy for callers that need
// to drive retries themselves (e.g. batch loops that retry per-id).
func ExponentialBackOff(initial time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	return b
}
