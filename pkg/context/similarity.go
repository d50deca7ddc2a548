package context

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/easyops/contextengine/pkg/otel"
)

// LexicalSimilarity 基于与查询的关键词重叠计算相似度。
// 无需外部服务，适用于测试和离线场景。
type LexicalSimilarity struct{}

// NewLexicalSimilarity 创建新的 LexicalSimilarity。
func NewLexicalSimilarity() *LexicalSimilarity {
	return &LexicalSimilarity{}
}

// Similarity 返回查询词元在内容中出现的比例。
func (s *LexicalSimilarity) Similarity(_ context.Context, query, content string) (float64, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0, nil
	}

	contentTokens := tokenize(content)
	if len(contentTokens) == 0 {
		return 0, nil
	}

	contentSet := make(map[string]struct{}, len(contentTokens))
	for _, token := range contentTokens {
		contentSet[token] = struct{}{}
	}

	querySet := make(map[string]struct{}, len(queryTokens))
	overlap := 0
	for _, token := range queryTokens {
		if _, seen := querySet[token]; seen {
			continue
		}
		querySet[token] = struct{}{}
		if _, ok := contentSet[token]; ok {
			overlap++
		}
	}

	return float64(overlap) / float64(len(querySet)), nil
}

// Embedder 将文本转换为向量的外部协作方。
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingSimilarity 使用嵌入向量的余弦相似度。
// 向量按文本摘要缓存在 LRU 中，同一查询在一次组装内只嵌入一次。
type EmbeddingSimilarity struct {
	embedder Embedder
	cache    *lru.Cache[string, []float32]
	metrics  otel.Metrics
}

// EmbeddingOption 配置 EmbeddingSimilarity。
type EmbeddingOption func(*EmbeddingSimilarity)

// WithEmbeddingMetrics 记录缓存命中情况。
func WithEmbeddingMetrics(metrics otel.Metrics) EmbeddingOption {
	return func(s *EmbeddingSimilarity) {
		s.metrics = metrics
	}
}

// NewEmbeddingSimilarity 创建带缓存的嵌入相似度。cacheSize <= 0 时使用 1024。
func NewEmbeddingSimilarity(embedder Embedder, cacheSize int, opts ...EmbeddingOption) (*EmbeddingSimilarity, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding similarity: embedder is required")
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("embedding similarity: init cache: %w", err)
	}

	s := &EmbeddingSimilarity{
		embedder: embedder,
		cache:    cache,
		metrics:  otel.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Similarity 返回查询与内容向量的余弦相似度，负值截为 0。
func (s *EmbeddingSimilarity) Similarity(ctx context.Context, query, content string) (float64, error) {
	qv, err := s.vector(ctx, query)
	if err != nil {
		return 0, err
	}

	cv, err := s.vector(ctx, content)
	if err != nil {
		return 0, err
	}

	return Clamp01(cosine(qv, cv)), nil
}

func (s *EmbeddingSimilarity) vector(ctx context.Context, text string) ([]float32, error) {
	key := textKey(text)
	if v, ok := s.cache.Get(key); ok {
		s.metrics.Counter(otel.MetricEmbeddingCacheHits).Add(ctx, 1)
		return v, nil
	}
	s.metrics.Counter(otel.MetricEmbeddingCacheMiss).Add(ctx, 1)

	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding similarity: expected 1 vector, got %d", len(vectors))
	}

	s.cache.Add(key, vectors[0])

	return vectors[0], nil
}

// Len 返回缓存的向量数量。
func (s *EmbeddingSimilarity) Len() int {
	return s.cache.Len()
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cosine 计算余弦相似度，维度不一致或零向量时返回 0。
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// tokenize 将文本分割为小写词元用于比较。
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			// 中文字符单独成词
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			current.WriteRune(r)
		case current.Len() > 0:
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// 编译时接口检查
var _ Similarity = (*LexicalSimilarity)(nil)
var _ Similarity = (*EmbeddingSimilarity)(nil)
var _ Similarity = SimilarityFunc(nil)
