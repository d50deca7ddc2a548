package llm

import (
	"context"
	"time"

	"github.com/easyops/contextengine/pkg/core/errors"
)

// retry 对可重试错误执行指数退避重试，上下文取消时立即返回 ctx.Err()
func retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt == maxRetries {
			break
		}

		timer := time.NewTimer(backoff(attempt, baseDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// backoff 计算第 attempt 次重试前的等待：baseDelay * 2^attempt 再加 10%，上限 30 秒
func backoff(attempt int, baseDelay time.Duration) time.Duration {
	const maxDelay = 30 * time.Second

	delay := baseDelay << attempt
	if delay <= 0 || delay > maxDelay {
		return maxDelay
	}

	delay += delay / 10
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
