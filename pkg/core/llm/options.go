package llm

import "time"

// Options 是嵌入客户端的参数。零值字段在 NewOpenAIEmbedder 中取默认值。
type Options struct {
	APIKey         string
	BaseURL        string // 兼容 OpenAI 协议的自建服务地址，空表示官方端点
	EmbeddingModel string

	Timeout    time.Duration // 单次 HTTP 请求
	MaxRetries int           // 0 表示只尝试一次
	RetryDelay time.Duration // 指数退避的基数

	// BatchSize 是一次请求携带的最大文本数，超出时拆成多次请求。
	BatchSize int
}

// Option 修改 Options。
type Option func(*Options)

// DefaultOptions 返回默认参数。
func DefaultOptions() *Options {
	return &Options{
		EmbeddingModel: "text-embedding-3-small",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		BatchSize:      64,
	}
}

func WithAPIKey(key string) Option       { return func(o *Options) { o.APIKey = key } }
func WithBaseURL(url string) Option      { return func(o *Options) { o.BaseURL = url } }
func WithEmbeddingModel(m string) Option { return func(o *Options) { o.EmbeddingModel = m } }
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithMaxRetries(n int) Option        { return func(o *Options) { o.MaxRetries = n } }
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}
func WithBatchSize(n int) Option { return func(o *Options) { o.BatchSize = n } }
