package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/easyops/contextengine/pkg/core/config"
	"github.com/easyops/contextengine/pkg/core/errors"
)

// OpenAIEmbedder 基于 OpenAI 兼容接口的嵌入客户端
type OpenAIEmbedder struct {
	client  *openai.Client
	options *Options
}

// NewOpenAIEmbedder 创建 OpenAI 嵌入客户端
func NewOpenAIEmbedder(opts ...Option) (*OpenAIEmbedder, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.APIKey == "" && options.BaseURL == "" {
		return nil, errors.ErrInvalidAPIKey
	}
	if options.EmbeddingModel == "" {
		return nil, errors.ErrModelNotFound
	}
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultOptions().BatchSize
	}

	cfg := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		cfg.BaseURL = options.BaseURL
	}
	if options.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: options.Timeout}
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(cfg),
		options: options,
	}, nil
}

// NewEmbedderFromConfig 从嵌入配置创建客户端
func NewEmbedderFromConfig(cfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	cfg = cfg.WithDefaults()
	return NewOpenAIEmbedder(
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.BaseURL),
		WithEmbeddingModel(cfg.Model),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryDelay(cfg.RetryDelay),
	)
}

// Model 返回嵌入模型名称
func (c *OpenAIEmbedder) Model() string {
	return c.options.EmbeddingModel
}

// Embed 生成文本嵌入向量，超过批大小时分批请求
func (c *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.options.BatchSize {
		end := min(start+c.options.BatchSize, len(texts))
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, batch...)
	}

	return result, nil
}

func (c *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.options.EmbeddingModel),
	}

	var resp openai.EmbeddingResponse
	err := retry(ctx, c.options.MaxRetries, c.options.RetryDelay, func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, req)
		return mapOpenAIError(err)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", errors.ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: vector index %d out of range", errors.ErrEmbeddingFailed, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// mapOpenAIError 将 API 错误映射为哨兵错误
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !stderrors.As(err, &apiErr) {
		var reqErr *openai.RequestError
		if stderrors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %w", errors.ErrProviderUnavailable, err)
		}
		return errors.WrapError(err, "openai request failed")
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		return errors.ErrInvalidAPIKey
	case http.StatusNotFound:
		return errors.ErrModelNotFound
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", errors.ErrRateLimited, err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %w", errors.ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("openai error (code=%d): %w", apiErr.HTTPStatusCode, err)
	}
}

// compile-time interface check
var _ Embedder = (*OpenAIEmbedder)(nil)
