package context

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/easyops/contextengine/pkg/otel"
)

// Similarity 定义查询与条目内容之间语义相似度的外部协作方。
type Similarity interface {
	// Similarity 返回 [0,1] 区间的相似度。
	Similarity(ctx context.Context, query, content string) (float64, error)
}

// SimilarityFunc 将普通函数适配为 Similarity。
type SimilarityFunc func(ctx context.Context, query, content string) (float64, error)

// Similarity 调用 f 本身。
func (f SimilarityFunc) Similarity(ctx context.Context, query, content string) (float64, error) {
	return f(ctx, query, content)
}

// RelevanceScore 是单个候选条目的评分明细。
type RelevanceScore struct {
	NodeID          string   `json:"nodeId"`
	NodeType        ItemType `json:"nodeType"`
	SemanticScore   float64  `json:"semanticScore"`
	RecencyScore    float64  `json:"recencyScore"`
	ConfidenceScore float64  `json:"confidenceScore"`
	ProjectBoost    float64  `json:"projectBoost"`
	TotalScore      float64  `json:"totalScore"`
}

// Scorer 基于独立信号计算每个条目的相关性分数。
type Scorer struct {
	similarity Similarity
	workers    int
	logger     otel.Logger
	metrics    otel.Metrics
}

// ScorerOption 配置 Scorer。
type ScorerOption func(*Scorer)

// WithSimilarity 设置相似度协作方。
func WithSimilarity(similarity Similarity) ScorerOption {
	return func(s *Scorer) {
		s.similarity = similarity
	}
}

// WithWorkers 设置并行评分的并发度。
func WithWorkers(n int) ScorerOption {
	return func(s *Scorer) {
		s.workers = n
	}
}

// WithScorerLogger 设置日志器。
func WithScorerLogger(logger otel.Logger) ScorerOption {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// WithScorerMetrics 设置指标收集器。
func WithScorerMetrics(metrics otel.Metrics) ScorerOption {
	return func(s *Scorer) {
		s.metrics = metrics
	}
}

// NewScorer 创建新的 Scorer。
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		workers: 8,
		logger:  otel.NewNoopLogger(),
		metrics: otel.NewNoopMetrics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.workers <= 0 {
		s.workers = 1
	}

	return s
}

// Score 对所有候选条目评分，返回与输入顺序一致的分数列表。
//
// 单个条目的相似度查询失败时语义分数记为 0 并继续；
// 只有请求上下文被取消或超时才会使整个评分失败。
func (s *Scorer) Score(ctx context.Context, items []CandidateItem, query Query, now time.Time) ([]RelevanceScore, error) {
	scores := make([]RelevanceScore, len(items))
	if len(items) == 0 {
		return scores, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range items {
		i := i
		g.Go(func() error {
			item := &items[i]

			semantic, err := s.semantic(gctx, item, query.Text)
			if err != nil {
				return err
			}

			scores[i] = ComputeScore(item, semantic, query.ProjectID, now)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

// semantic 解析条目的语义分数。
func (s *Scorer) semantic(ctx context.Context, item *CandidateItem, query string) (float64, error) {
	if item.Signals.Semantic != nil {
		return Clamp01(*item.Signals.Semantic), nil
	}
	if s.similarity == nil {
		return 0, nil
	}

	score, err := s.similarity.Similarity(ctx, query, item.Content)
	if err == nil {
		return Clamp01(score), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("%w: similarity: %w", ErrRetrievalFailure, ctxErr)
	}

	s.logger.WithContext(ctx).Warn("similarity lookup failed, defaulting semantic score to 0",
		"item_id", item.ID,
		"error", err,
	)
	s.metrics.Counter(otel.MetricContextSignalLoss).Add(ctx, 1, otel.NewAttr(otel.AttrItemType, string(item.Type)))
	return 0, nil
}

// ComputeScore 根据固定权重组合各项信号。
func ComputeScore(item *CandidateItem, semantic float64, scope string, now time.Time) RelevanceScore {
	rs := RelevanceScore{
		NodeID:          item.ID,
		NodeType:        item.Type,
		SemanticScore:   Clamp01(semantic),
		RecencyScore:    RecencyScore(item.Signals.Timestamp, now),
		ConfidenceScore: Clamp01(item.Signals.Confidence),
	}

	if item.InProject(scope) {
		rs.ProjectBoost = ProjectBoost
	}

	rs.TotalScore = Clamp01(
		SemanticWeight*rs.SemanticScore +
			RecencyWeight*rs.RecencyScore +
			ConfidenceWeight*rs.ConfidenceScore +
			rs.ProjectBoost,
	)

	return rs
}

// RecencyScore 使用半衰期衰减计算新近性。
// 未来时间视为刚刚更新；零值时间返回中性分数。
func RecencyScore(ts time.Time, now time.Time) float64 {
	if ts.IsZero() {
		return NeutralRecency
	}

	age := now.Sub(ts)
	if age <= 0 {
		return 1.0
	}

	return Clamp01(math.Pow(0.5, age.Hours()/RecencyHalfLife.Hours()))
}

// Clamp01 将值限制在 [0,1]，NaN 视为 0。
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
