package config

import "time"

const (
	maxEmbeddingTimeout = 5 * time.Minute
	maxEmbeddingRetries = 10
)

// EmbeddingConfig 配置 similarity=embedding 时使用的向量服务。
// 超时和重试次数超过上限时会被截到上限，而不是报错。
type EmbeddingConfig struct {
	Model      string        `koanf:"model"`
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`

	// CacheSize 是查询向量 LRU 缓存的容量。
	CacheSize int `koanf:"cache_size"`
}

func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
		CacheSize:  4096,
	}
}

// Validate 检查必填项并截断超限值。
func (c *EmbeddingConfig) Validate() error {
	switch {
	case c.Model == "":
		return ErrModelRequired
	case c.Timeout < 0:
		return ErrInvalidTimeout
	case c.MaxRetries < 0:
		return ErrInvalidMaxRetries
	}
	c.Timeout = min(c.Timeout, maxEmbeddingTimeout)
	c.MaxRetries = min(c.MaxRetries, maxEmbeddingRetries)
	return nil
}

// WithDefaults 用默认值填充零值字段。
func (c EmbeddingConfig) WithDefaults() EmbeddingConfig {
	d := DefaultEmbeddingConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.CacheSize == 0 {
		c.CacheSize = d.CacheSize
	}
	return c
}
