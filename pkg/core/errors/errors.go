// Package errors 定义嵌入服务调用的错误分类。
//
// 调用方用 errors.Is 判断类别，用 IsRetryable / IsFatal 决定是否重试。
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited         = errors.New("rate limited")
	ErrTimeout             = errors.New("request timeout")
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrModelNotFound = errors.New("model not found")

	// ErrEmbeddingFailed 表示响应本身不可用，例如向量数与输入数不一致。
	ErrEmbeddingFailed = errors.New("embedding failed")
)

var (
	retryable = []error{ErrRateLimited, ErrTimeout, ErrProviderUnavailable}
	fatal     = []error{ErrInvalidAPIKey, ErrModelNotFound}
)

// WrapError 为 err 加上操作说明，err 为 nil 时返回 nil。
func WrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryable 报告 err 是否属于暂时性故障。
func IsRetryable(err error) bool {
	return matchAny(err, retryable)
}

// IsFatal 报告 err 是否需要人工介入（密钥或模型配置错误）。
func IsFatal(err error) bool {
	return matchAny(err, fatal)
}

func matchAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
