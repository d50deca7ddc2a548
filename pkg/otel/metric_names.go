package otel

// 预定义的指标名称
const (
	// 组装指标
	MetricContextAssemblies       = "context.assemblies"        // 计数器: 组装次数（按 outcome 区分）
	MetricContextAssemblyDuration = "context.assembly.duration" // 直方图: 组装耗时(ms)
	MetricContextCandidates       = "context.candidates"        // 直方图: 每次组装的候选数
	MetricContextTokens           = "context.tokens"            // 直方图: 序列化后的 Token 数
	MetricContextTruncations      = "context.truncations"       // 计数器: 被截断的条目数
	MetricContextRetrievalErrors  = "context.retrieval.errors"  // 计数器: 检索或评分失败次数
	MetricContextSignalLoss       = "context.signal_loss"       // 计数器: 单条相似度失败次数

	// 存储指标
	MetricStoreQueries        = "store.queries"         // 计数器: 存储查询次数
	MetricStoreQueryDuration  = "store.query.duration"  // 直方图: 存储查询耗时(ms)
	MetricEmbeddingCacheHits  = "embedding.cache.hits"  // 计数器: 向量缓存命中
	MetricEmbeddingCacheMiss  = "embedding.cache.miss"  // 计数器: 向量缓存未命中

	// HTTP 指标
	MetricHTTPRequests = "http.requests" // 计数器: HTTP 请求次数
)

// MetricUnit 指标单位
type MetricUnit string

const (
	UnitNone         MetricUnit = ""
	UnitMilliseconds MetricUnit = "ms"
	UnitCount        MetricUnit = "1"
	UnitTokens       MetricUnit = "{token}"
)

// MetricDescription 指标描述
type MetricDescription struct {
	Name        string
	Description string
	Unit        MetricUnit
	Type        string // counter, histogram, gauge
}

// PredefinedMetrics 预定义指标列表
var PredefinedMetrics = []MetricDescription{
	{MetricContextAssemblies, "Number of context assemblies", UnitCount, "counter"},
	{MetricContextAssemblyDuration, "Duration of context assemblies", UnitMilliseconds, "histogram"},
	{MetricContextCandidates, "Number of candidates per assembly", UnitCount, "histogram"},
	{MetricContextTokens, "Tokens in the assembled document", UnitTokens, "histogram"},
	{MetricContextTruncations, "Number of truncated items", UnitCount, "counter"},
	{MetricContextRetrievalErrors, "Number of retrieval failures", UnitCount, "counter"},
	{MetricContextSignalLoss, "Number of per-item similarity failures", UnitCount, "counter"},

	{MetricStoreQueries, "Number of store queries", UnitCount, "counter"},
	{MetricStoreQueryDuration, "Duration of store queries", UnitMilliseconds, "histogram"},
	{MetricEmbeddingCacheHits, "Number of embedding cache hits", UnitCount, "counter"},
	{MetricEmbeddingCacheMiss, "Number of embedding cache misses", UnitCount, "counter"},

	{MetricHTTPRequests, "Number of HTTP requests", UnitCount, "counter"},
}

// LookupMetric 按名称查找预定义指标描述
func LookupMetric(name string) (MetricDescription, bool) {
	for _, d := range PredefinedMetrics {
		if d.Name == name {
			return d, true
		}
	}
	return MetricDescription{}, false
}
