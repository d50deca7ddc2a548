package context

import "time"

// 评分与打包策略常量。这些值是策略的一部分，不可配置。
const (
	// SemanticWeight 语义分数权重
	SemanticWeight = 0.5
	// RecencyWeight 新近性分数权重
	RecencyWeight = 0.3
	// ConfidenceWeight 可靠性分数权重
	ConfidenceWeight = 0.2
	// ProjectBoost 条目属于查询项目时的加分
	ProjectBoost = 0.15

	// RecencyHalfLife 新近性半衰期
	RecencyHalfLife = 72 * time.Hour
	// NeutralRecency 缺少时间戳时的新近性分数
	NeutralRecency = 0.5

	// IdentityShare、ProjectShare、OtherShare 为预算比例（百分比）
	IdentityShare = 20
	ProjectShare  = 50
	OtherShare    = 30

	// MinTruncateTokens 类别剩余预算不低于该值时才允许截断条目
	MinTruncateTokens = 50
	// MinBudgetTokens 能容纳一个条目外壳的最小总预算
	MinBudgetTokens = 16

	// DefaultMaxTokens 请求未指定预算时使用的默认值
	DefaultMaxTokens = 4000
)

// Config 保存组装引擎的配置。
type Config struct {
	// MaxCandidates 单次组装参与评分的候选上限。
	MaxCandidates int

	// RetrievalTimeout 检索协作方调用超时。
	RetrievalTimeout time.Duration

	// ScoreWorkers 并行评分的最大 goroutine 数。
	ScoreWorkers int

	// TokenCounter 是要使用的 Token 计数器。
	TokenCounter TokenCounter

	// Clock 返回当前时间，用于新近性计算。
	Clock func() time.Time
}

// ConfigOption 配置 Config。
type ConfigOption func(*Config)

// WithMaxCandidates 设置候选上限。
func WithMaxCandidates(n int) ConfigOption {
	return func(c *Config) {
		c.MaxCandidates = n
	}
}

// WithRetrievalTimeout 设置检索超时。
func WithRetrievalTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetrievalTimeout = d
	}
}

// WithScoreWorkers 设置并行评分的并发度。
func WithScoreWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.ScoreWorkers = n
	}
}

// WithTokenCounter 设置 Token 计数器。
func WithTokenCounter(counter TokenCounter) ConfigOption {
	return func(c *Config) {
		c.TokenCounter = counter
	}
}

// WithClock 设置时钟。
func WithClock(clock func() time.Time) ConfigOption {
	return func(c *Config) {
		c.Clock = clock
	}
}

// DefaultConfig 返回具有合理默认值的 Config。
func DefaultConfig() *Config {
	return &Config{
		MaxCandidates:    200,
		RetrievalTimeout: 5 * time.Second,
		ScoreWorkers:     8,
		TokenCounter:     nil, // 需要时使用 DefaultTokenCounter()
		Clock:            time.Now,
	}
}

// NewConfig 使用给定的选项创建新的 Config。
func NewConfig(opts ...ConfigOption) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTokenCounter 返回配置的 Token 计数器或默认计数器。
func (c *Config) GetTokenCounter() TokenCounter {
	if c.TokenCounter != nil {
		return c.TokenCounter
	}
	return DefaultTokenCounter()
}

// Now 返回配置时钟的当前时间。
func (c *Config) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
