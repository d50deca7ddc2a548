package context

import "errors"

// 上下文组装相关错误
var (
	// ErrRetrievalFailure 候选检索或相似度协作方不可用、超时
	ErrRetrievalFailure = errors.New("context retrieval failed")
	// ErrInvalidBudget Token 预算无效（<= 0 或小于单条目最小可用尺寸）
	ErrInvalidBudget = errors.New("invalid token budget")
	// ErrUnknownCategory 未知的预算类别
	ErrUnknownCategory = errors.New("unknown budget category")
)
