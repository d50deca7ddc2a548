package otel

import "go.opentelemetry.io/otel/attribute"

// 预定义的语义属性键
const (
	// 组装相关属性
	AttrAssemblyID        = "context.assembly_id"
	AttrContextProject    = "context.project_id"
	AttrContextMaxTokens  = "context.max_tokens"
	AttrContextCandidates = "context.candidates"
	AttrContextSelected   = "context.selected"
	AttrContextTokens     = "context.tokens"
	AttrContextPhase      = "context.phase"
	AttrContextOutcome    = "context.outcome"

	// 条目相关属性
	AttrItemType     = "item.type"
	AttrItemCategory = "item.category"

	// 存储相关属性
	AttrStoreBackend = "store.backend"

	// HTTP 相关属性
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"

	// Error 相关属性
	AttrErrorType      = "error.type"
	AttrErrorMessage   = "error.message"
	AttrErrorRetryable = "error.retryable"
)

// AssemblyID 创建组装 ID 属性
func AssemblyID(id string) attribute.KeyValue {
	return attribute.String(AttrAssemblyID, id)
}

// ContextProject 创建项目范围属性
func ContextProject(projectID string) attribute.KeyValue {
	return attribute.String(AttrContextProject, projectID)
}

// ContextMaxTokens 创建总预算属性
func ContextMaxTokens(n int) attribute.KeyValue {
	return attribute.Int(AttrContextMaxTokens, n)
}

// ContextCandidates 创建候选数量属性
func ContextCandidates(n int) attribute.KeyValue {
	return attribute.Int(AttrContextCandidates, n)
}

// ContextSelected 创建选中数量属性
func ContextSelected(n int) attribute.KeyValue {
	return attribute.Int(AttrContextSelected, n)
}

// ContextTokens 创建实际 Token 数属性
func ContextTokens(n int) attribute.KeyValue {
	return attribute.Int(AttrContextTokens, n)
}

// StoreBackend 创建存储后端属性
func StoreBackend(name string) attribute.KeyValue {
	return attribute.String(AttrStoreBackend, name)
}

// HTTPRoute 创建 HTTP 路由属性
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus 创建 HTTP 状态码属性
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// ErrorAttrs 创建错误属性
func ErrorAttrs(errType, message string, retryable bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, message),
		attribute.Bool(AttrErrorRetryable, retryable),
	}
}
