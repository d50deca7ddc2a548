package store

import "errors"

// 存储相关错误
var (
	// ErrNotFound 条目未找到
	ErrNotFound = errors.New("item not found")
	// ErrInvalidInput 输入无效
	ErrInvalidInput = errors.New("invalid input")
	// ErrClosed 存储已关闭
	ErrClosed = errors.New("store closed")
	// ErrUnknownBackend 未知后端
	ErrUnknownBackend = errors.New("unknown store backend")
)
