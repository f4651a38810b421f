package transfer

import (
	"github.com/ryanuber/go-glob"
)

// DefaultMaxAttempts bounds export retries when no ceiling is configured.
const DefaultMaxAttempts = 5

// Classification is the retry decision for one export failure.
type Classification struct {
	Retry       bool // whether the request may be re-invoked
	MaxAttempts int  // total invocation ceiling when Retry is true
}

// RetryPolicy decides whether an export failure is transient or fatal.
//
// A failure message matching any fatal pattern (glob syntax, see
// [glob.Glob]) aborts the branch immediately; everything else is retried
// in place, with no backoff, up to MaxAttempts total invocations.
type RetryPolicy struct {
	FatalPatterns []string
	MaxAttempts   int
}

// NewRetryPolicy builds a RetryPolicy, filling in [DefaultMaxAttempts]
// when maxAttempts is not positive.
func NewRetryPolicy(fatalPatterns []string, maxAttempts int) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	patterns := make([]string, len(fatalPatterns))
	copy(patterns, fatalPatterns)
	return &RetryPolicy{FatalPatterns: patterns, MaxAttempts: maxAttempts}
}

// DefaultRetryPolicy returns a policy with no fatal patterns: every failure
// is treated as transient and retried up to [DefaultMaxAttempts] times.
func DefaultRetryPolicy() *RetryPolicy {
	return NewRetryPolicy(nil, DefaultMaxAttempts)
}

// Classify matches the failure message against the fatal patterns.
//
// An empty message never matches: a failure we cannot describe is assumed
// transient rather than silently un-retryable.
func (p *RetryPolicy) Classify(message string) Classification {
	if message != "" {
		for _, pattern := range p.FatalPatterns {
			if glob.Glob(pattern, message) {
				return Classification{Retry: false}
			}
		}
	}

	max := p.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return Classification{Retry: true, MaxAttempts: max}
}
