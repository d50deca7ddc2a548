package context

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/easyops/contextengine/pkg/core/message"
	"github.com/easyops/contextengine/pkg/otel"
)

// Source 是被选入上下文的条目的来源归属。
type Source struct {
	ID         string   `json:"id"`
	Type       ItemType `json:"type"`
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Relevance  float64  `json:"relevance"`
	Truncated  bool     `json:"truncated,omitempty"`
}

// AssembledContext 是一次组装的最终结果，创建后不再修改。
type AssembledContext struct {
	// ID 本次组装的唯一标识，不参与指纹计算。
	ID string `json:"id"`

	// ContextXML 序列化后的上下文文档。
	ContextXML string `json:"contextXml"`

	// Sources 按纳入顺序排列的来源列表。
	Sources []Source `json:"sources"`

	// RelevanceScores 所有参与评分的候选（无论是否选中）的总分。
	RelevanceScores map[string]float64 `json:"relevanceScores"`

	// TokenCount 基于序列化文本实测的 Token 数。
	TokenCount int `json:"tokenCount"`

	// Budget 预算分配与使用情况。
	Budget *TokenBudget `json:"budget"`

	// Fingerprint 内容指纹，见 Fingerprint。
	Fingerprint string `json:"fingerprint"`

	// Selected 选中条目的完整信息。
	Selected []SelectedItem `json:"-"`

	// Scores 全部候选的评分明细，与检索顺序一致。
	Scores []RelevanceScore `json:"-"`
}

// IsEmpty 判断是否没有任何条目被选中。
func (ac *AssembledContext) IsEmpty() bool {
	return len(ac.Sources) == 0
}

// Assembler 是上下文组装的入口：检索 → 评分 → 分配 → 选择 → 序列化。
type Assembler struct {
	config     *Config
	retriever  Retriever
	similarity Similarity
	tracer     otel.Tracer
	metrics    otel.Metrics
	logger     otel.Logger
}

// AssemblerOption 配置 Assembler。
type AssemblerOption func(*Assembler)

// WithConfig 设置配置。
func WithConfig(config *Config) AssemblerOption {
	return func(a *Assembler) {
		a.config = config
	}
}

// WithAssemblerSimilarity 设置相似度协作方。
func WithAssemblerSimilarity(similarity Similarity) AssemblerOption {
	return func(a *Assembler) {
		a.similarity = similarity
	}
}

// WithTracer 设置追踪器。
func WithTracer(tracer otel.Tracer) AssemblerOption {
	return func(a *Assembler) {
		a.tracer = tracer
	}
}

// WithMetrics 设置指标收集器。
func WithMetrics(metrics otel.Metrics) AssemblerOption {
	return func(a *Assembler) {
		a.metrics = metrics
	}
}

// WithLogger 设置日志器。
func WithLogger(logger otel.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler 使用给定的检索器和选项创建 Assembler。
func NewAssembler(retriever Retriever, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		config:    DefaultConfig(),
		retriever: retriever,
		tracer:    otel.NewNoopTracer(),
		metrics:   otel.NewNoopMetrics(),
		logger:    otel.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.config == nil {
		a.config = DefaultConfig()
	}

	return a
}

// Config 返回组装器的配置。
func (a *Assembler) Config() *Config {
	return a.config
}

// ValidateBudget 校验总预算。
func ValidateBudget(maxTokens int) error {
	if maxTokens <= 0 {
		return fmt.Errorf("%w: maxTokens must be positive, got %d", ErrInvalidBudget, maxTokens)
	}
	if maxTokens < MinBudgetTokens {
		return fmt.Errorf("%w: maxTokens %d is below the minimum of %d", ErrInvalidBudget, maxTokens, MinBudgetTokens)
	}
	return nil
}

// PreviewBudget 返回给定总预算的分配方案，不执行组装。
func (a *Assembler) PreviewBudget(maxTokens int) (*TokenBudget, error) {
	if err := ValidateBudget(maxTokens); err != nil {
		return nil, err
	}
	return Allocate(maxTokens), nil
}

// Assemble 为查询组装上下文。
//
// 只有两类错误会返回给调用方：ErrInvalidBudget（在任何检索之前）和
// ErrRetrievalFailure（检索或相似度协作方失败、超时）。
// 预算不足以放下任何条目时返回空结果而不是错误。
func (a *Assembler) Assemble(ctx context.Context, q Query) (*AssembledContext, error) {
	if err := ValidateBudget(q.MaxTokens); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx, span := a.tracer.Start(ctx, "context.assemble",
		otel.WithAttributes(
			otel.AssemblyID(id),
			otel.ContextProject(q.ProjectID),
			otel.ContextMaxTokens(q.MaxTokens),
		),
	)
	defer span.End()

	log := a.logger.WithContext(ctx).WithFields(map[string]any{
		"assembly_id": id,
		"project_id":  q.ProjectID,
	})
	start := time.Now()

	items, err := a.retrieve(ctx, q)
	if err != nil {
		a.fail(ctx, span, log, "retrieve", err)
		return nil, err
	}
	items = dedupe(items, log)
	log.Debug("candidates retrieved", "count", len(items))

	scores, err := a.score(ctx, items, q)
	if err != nil {
		a.fail(ctx, span, log, "score", err)
		return nil, err
	}

	counter := a.config.GetTokenCounter()
	budget := Allocate(q.MaxTokens)

	_, selSpan := a.tracer.Start(ctx, "context.select")
	selected := NewSelector(counter).Select(scores, items, budget, q.ProjectID)
	selSpan.SetAttributes(otel.ContextSelected(len(selected)))
	selSpan.End()

	_, serSpan := a.tracer.Start(ctx, "context.serialize")
	xmlDoc, tokenCount := NewSerializer(counter).Serialize(selected)
	serSpan.SetAttributes(otel.ContextTokens(tokenCount))
	serSpan.End()

	result := &AssembledContext{
		ID:              id,
		ContextXML:      xmlDoc,
		Sources:         buildSources(selected),
		RelevanceScores: make(map[string]float64, len(scores)),
		TokenCount:      tokenCount,
		Budget:          budget,
		Selected:        selected,
		Scores:          scores,
	}
	for _, s := range scores {
		result.RelevanceScores[s.NodeID] = s.TotalScore
	}

	fp, err := Fingerprint(result.ContextXML, result.Sources)
	if err != nil {
		// 指纹仅用于比对，失败不影响结果
		log.Warn("fingerprint failed", "error", err)
	}
	result.Fingerprint = fp

	a.record(ctx, span, result, len(items), time.Since(start))
	log.Debug("context assembled",
		"selected", len(result.Sources),
		"token_count", result.TokenCount,
		"budget_used", budget.Total.Used,
	)

	return result, nil
}

// BuildMessages 组装上下文并渲染为消息列表：
// 一条携带上下文文档的系统消息，随后是用户查询。
func (a *Assembler) BuildMessages(ctx context.Context, q Query) ([]message.Message, *AssembledContext, error) {
	result, err := a.Assemble(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	messages := []message.Message{message.NewSystemMessage(result.ContextXML)}
	if q.Text != "" {
		messages = append(messages, message.NewUserMessage(q.Text))
	}

	return messages, result, nil
}

// retrieve 在超时约束下获取候选，并按 MaxCandidates 截断。
func (a *Assembler) retrieve(ctx context.Context, q Query) ([]CandidateItem, error) {
	if a.retriever == nil {
		return nil, fmt.Errorf("%w: no retriever configured", ErrRetrievalFailure)
	}

	ctx, span := a.tracer.Start(ctx, "context.retrieve", otel.WithSpanKind(otel.SpanKindClient))
	defer span.End()

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	items, err := a.retriever.Retrieve(rctx, RetrievalRequest{
		Query:     q.Text,
		ProjectID: q.ProjectID,
		Limit:     a.config.MaxCandidates,
	})
	if err == nil && rctx.Err() != nil {
		err = rctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s: %w", ErrRetrievalFailure, a.config.RetrievalTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailure, err)
	}

	if a.config.MaxCandidates > 0 && len(items) > a.config.MaxCandidates {
		items = items[:a.config.MaxCandidates]
	}

	span.SetAttributes(otel.ContextCandidates(len(items)))
	return items, nil
}

// score 在与检索相同的超时约束下评分。
func (a *Assembler) score(ctx context.Context, items []CandidateItem, q Query) ([]RelevanceScore, error) {
	ctx, span := a.tracer.Start(ctx, "context.score")
	defer span.End()

	sctx, cancel := a.withTimeout(ctx)
	defer cancel()

	scorer := NewScorer(
		WithSimilarity(a.similarity),
		WithWorkers(a.config.ScoreWorkers),
		WithScorerLogger(a.logger),
		WithScorerMetrics(a.metrics),
	)

	scores, err := scorer.Score(sctx, items, q, a.config.Now())
	if err != nil {
		if !errors.Is(err, ErrRetrievalFailure) {
			err = fmt.Errorf("%w: %w", ErrRetrievalFailure, err)
		}
		return nil, err
	}
	return scores, nil
}

func (a *Assembler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RetrievalTimeout > 0 {
		return context.WithTimeout(ctx, a.config.RetrievalTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *Assembler) fail(ctx context.Context, span otel.Span, log otel.Logger, phase string, err error) {
	otel.Fail(span, err)
	a.metrics.Counter(otel.MetricContextRetrievalErrors).Add(ctx, 1, otel.NewAttr(otel.AttrContextPhase, phase))
	a.metrics.Counter(otel.MetricContextAssemblies).Add(ctx, 1, otel.NewAttr(otel.AttrContextOutcome, "error"))
	log.Error("context assembly failed", "phase", phase, "error", err)
}

func (a *Assembler) record(ctx context.Context, span otel.Span, result *AssembledContext, candidates int, elapsed time.Duration) {
	truncated := 0
	for _, s := range result.Sources {
		if s.Truncated {
			truncated++
		}
	}

	span.SetAttributes(
		otel.ContextCandidates(candidates),
		otel.ContextSelected(len(result.Sources)),
		otel.ContextTokens(result.TokenCount),
	)
	span.SetStatus(otel.StatusOK, "")

	outcome := "ok"
	if result.IsEmpty() {
		outcome = "empty"
	}
	a.metrics.Counter(otel.MetricContextAssemblies).Add(ctx, 1, otel.NewAttr(otel.AttrContextOutcome, outcome))
	a.metrics.Histogram(otel.MetricContextAssemblyDuration).Record(ctx, float64(elapsed.Milliseconds()))
	a.metrics.Histogram(otel.MetricContextCandidates).Record(ctx, float64(candidates))
	a.metrics.Histogram(otel.MetricContextTokens).Record(ctx, float64(result.TokenCount))
	a.metrics.Counter(otel.MetricContextTruncations).Add(ctx, int64(truncated))
}

// dedupe 去除重复 ID，保留首次出现的条目。
func dedupe(items []CandidateItem, log otel.Logger) []CandidateItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			log.Warn("duplicate candidate id dropped", "item_id", it.ID)
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func buildSources(selected []SelectedItem) []Source {
	sources := make([]Source, 0, len(selected))
	for _, sel := range selected {
		sources = append(sources, Source{
			ID:         sel.Item.ID,
			Type:       sel.Item.Type,
			Name:       sel.Item.Name,
			Confidence: sel.Score.ConfidenceScore,
			Relevance:  sel.Score.TotalScore,
			Truncated:  sel.Truncated,
		})
	}
	return sources
}
