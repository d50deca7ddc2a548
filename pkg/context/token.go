package context

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter 计量文本成本。预算、选择和序列化必须使用同一个实例，
// 否则已预留的成本与最终文档的 TokenCount 对不上。
type TokenCounter interface {
	Count(text string) int
	// Truncate 返回成本不超过 maxTokens 的最长前缀。
	Truncate(text string, maxTokens int) string
}

const fallbackEncoding = "cl100k_base"

// TiktokenCounter 按模型的 BPE 编码计数。
type TiktokenCounter struct {
	enc   *tiktoken.Tiktoken
	model string
}

// TiktokenOption 配置 TiktokenCounter。
type TiktokenOption func(*TiktokenCounter)

// WithModel 指定模型名，未知模型回退到 cl100k_base。
func WithModel(model string) TiktokenOption {
	return func(c *TiktokenCounter) {
		if model != "" {
			c.model = model
		}
	}
}

// NewTiktokenCounter 加载编码表。首次调用可能需要下载 BPE 文件。
func NewTiktokenCounter(opts ...TiktokenOption) (*TiktokenCounter, error) {
	c := &TiktokenCounter{model: "gpt-4o"}
	for _, opt := range opts {
		opt(c)
	}

	enc, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		if enc, err = tiktoken.GetEncoding(fallbackEncoding); err != nil {
			return nil, err
		}
	}
	c.enc = enc
	return c, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Truncate 保留前 maxTokens 个 Token 后解码，丢弃边界处残缺的 UTF-8 字节。
func (c *TiktokenCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	ids := c.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return strings.ToValidUTF8(c.enc.Decode(ids[:maxTokens]), "")
}

// EstimatedCounter 以字节数除以 CharsPerToken 估算成本，不依赖编码表。
type EstimatedCounter struct {
	// CharsPerToken 非正数时按 4 处理。
	CharsPerToken float64
}

// NewEstimatedCounter 返回每 4 字节计 1 Token 的估算器。
func NewEstimatedCounter() *EstimatedCounter {
	return &EstimatedCounter{CharsPerToken: 4}
}

func (c *EstimatedCounter) ratio() float64 {
	if c.CharsPerToken <= 0 {
		return 4
	}
	return c.CharsPerToken
}

func (c *EstimatedCounter) Count(text string) int {
	return int(float64(len(text)) / c.ratio())
}

// Truncate 按字节上限截断，并退回到 rune 起始处。
func (c *EstimatedCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	limit := int(float64(maxTokens) * c.ratio())
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

var (
	defaultCounterOnce sync.Once
	defaultCounter     TokenCounter
)

// DefaultTokenCounter 返回进程内共享的计数器：能加载编码表时用 tiktoken，否则用估算。
func DefaultTokenCounter() TokenCounter {
	defaultCounterOnce.Do(func() {
		if c, err := NewTiktokenCounter(); err == nil {
			defaultCounter = c
			return
		}
		defaultCounter = NewEstimatedCounter()
	})
	return defaultCounter
}

var (
	_ TokenCounter = (*TiktokenCounter)(nil)
	_ TokenCounter = (*EstimatedCounter)(nil)
)
