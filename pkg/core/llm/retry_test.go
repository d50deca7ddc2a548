package llm

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/easyops/contextengine/pkg/core/errors"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		base    time.Duration
		want    time.Duration
	}{
		{0, time.Second, 1100 * time.Millisecond},
		{1, time.Second, 2200 * time.Millisecond},
		{3, time.Second, 8800 * time.Millisecond},
		{10, time.Second, 30 * time.Second},
		{62, time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := backoff(tt.attempt, tt.base); got != tt.want {
			t.Errorf("backoff(%d, %v) = %v, want %v", tt.attempt, tt.base, got, tt.want)
		}
	}
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := retry(ctx, 5, time.Hour, func() error {
		attempts++
		cancel()
		return errors.ErrRateLimited
	})

	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 2 {
			return errors.ErrTimeout
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
