package transfer

import "testing"

func TestRetryPolicy_Classify(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		max      int
		message  string
		wantRetry bool
		wantMax   int
	}{
		{
			name:      "no patterns, any message retries",
			message:   "connection reset by peer",
			max:       5,
			wantRetry: true,
			wantMax:   5,
		},
		{
			name:      "fatal substring pattern",
			patterns:  []string{"*invalid_grant*"},
			max:       5,
			message:   "oauth failure: invalid_grant (token revoked)",
			wantRetry: false,
		},
		{
			name:      "fatal exact pattern",
			patterns:  []string{"permission denied"},
			max:       5,
			message:   "permission denied",
			wantRetry: false,
		},
		{
			name:      "pattern does not match",
			patterns:  []string{"*invalid_grant*"},
			max:       3,
			message:   "rate limited, try later",
			wantRetry: true,
			wantMax:   3,
		},
		{
			name:      "empty message is always retryable",
			patterns:  []string{"*"},
			max:       5,
			message:   "",
			wantRetry: true,
			wantMax:   5,
		},
		{
			name:      "second pattern matches",
			patterns:  []string{"*quota*", "*not found*"},
			max:       5,
			message:   "album not found",
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewRetryPolicy(tt.patterns, tt.max)
			got := policy.Classify(tt.message)

			if got.Retry != tt.wantRetry {
				t.Errorf("Classify(%q).Retry = %v, want %v", tt.message, got.Retry, tt.wantRetry)
			}
			if got.Retry && got.MaxAttempts != tt.wantMax {
				t.Errorf("Classify(%q).MaxAttempts = %d, want %d", tt.message, got.MaxAttempts, tt.wantMax)
			}
		})
	}
}

func TestNewRetryPolicy_Defaults(t *testing.T) {
	policy := NewRetryPolicy(nil, 0)
	if policy.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected default ceiling %d, got %d", DefaultMaxAttempts, policy.MaxAttempts)
	}

	cls := DefaultRetryPolicy().Classify("anything at all")
	if !cls.Retry || cls.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("default policy should retry up to %d times, got %+v", DefaultMaxAttempts, cls)
	}
}

func TestNewRetryPolicy_CopiesPatterns(t *testing.T) {
	patterns := []string{"*fatal*"}
	policy := NewRetryPolicy(patterns, 5)

	patterns[0] = "*other*"
	if got := policy.Classify("a fatal error"); got.Retry {
		t.Error("policy should keep its own copy of the pattern set")
	}
}
