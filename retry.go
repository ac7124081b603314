package photos

import (
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// RetryPolicy decides what happens when a page fetch fails. attempt counts
// consecutive failures for the same request, starting at 1, and resets after
// a successful page. Returning nil retries the identical request; returning
// an error aborts iteration with that error.
type RetryPolicy interface {
	OnFailure(err error, attempt int) error
}

// RetryPolicyFunc adapts a function to a RetryPolicy.
type RetryPolicyFunc func(err error, attempt int) error

// OnFailure implements RetryPolicy.
func (f RetryPolicyFunc) OnFailure(err error, attempt int) error { return f(err, attempt) }

// ExponentialRetryPolicy retries recoverable failures with exponential
// backoff up to MaxAttempts. Failures classified irrecoverable (4xx other
// than 408/429) abort immediately.
type ExponentialRetryPolicy struct {
	MaxAttempts int

	exp *backoff.ExponentialBackOff
}

// NewExponentialRetryPolicy builds the default retry policy.
func NewExponentialRetryPolicy(maxAttempts int) *ExponentialRetryPolicy {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 20 * time.Second
	return &ExponentialRetryPolicy{MaxAttempts: maxAttempts, exp: exp}
}

// OnFailure implements RetryPolicy. It blocks for the backoff interval before
// allowing the retry.
func (p *ExponentialRetryPolicy) OnFailure(err error, attempt int) error {
	if cloudkit.IsIrrecoverable(err) {
		return err
	}
	if attempt >= p.MaxAttempts {
		return err
	}
	if attempt == 1 {
		p.exp.Reset()
	}
	time.Sleep(p.exp.NextBackOff())
	return nil
}
