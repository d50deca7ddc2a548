package context

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RetrievalRequest 描述一次候选检索。
type RetrievalRequest struct {
	// Query 是当前用户查询。
	Query string

	// ProjectID 是可选的项目范围。
	ProjectID string

	// Limit 是返回候选的上限。
	Limit int
}

// Retriever 定义外部候选检索协作方。
type Retriever interface {
	// Retrieve 返回候选条目，顺序即检索顺序（用于打破分数平局）。
	Retrieve(ctx context.Context, req RetrievalRequest) ([]CandidateItem, error)
}

// RetrieverFunc 将普通函数适配为 Retriever。
type RetrieverFunc func(ctx context.Context, req RetrievalRequest) ([]CandidateItem, error)

// Retrieve 调用 f 本身。
func (f RetrieverFunc) Retrieve(ctx context.Context, req RetrievalRequest) ([]CandidateItem, error) {
	return f(ctx, req)
}

// StaticRetriever 总是返回固定的候选集合。
type StaticRetriever struct {
	items []CandidateItem
}

// NewStaticRetriever 创建新的 StaticRetriever。
func NewStaticRetriever(items []CandidateItem) *StaticRetriever {
	return &StaticRetriever{items: items}
}

// Retrieve 返回固定集合的副本，受 Limit 约束。
func (r *StaticRetriever) Retrieve(_ context.Context, req RetrievalRequest) ([]CandidateItem, error) {
	n := len(r.items)
	if req.Limit > 0 && req.Limit < n {
		n = req.Limit
	}

	out := make([]CandidateItem, n)
	for i := 0; i < n; i++ {
		out[i] = r.items[i].Clone()
	}
	return out, nil
}

// CompositeRetriever 组合多个检索器。
//
// 任何一个来源失败都会使整个检索失败：部分候选集会悄悄扭曲排名。
// 结果按来源顺序拼接，与是否并行无关。
type CompositeRetriever struct {
	retrievers []Retriever
	parallel   bool
}

// NewCompositeRetriever 创建新的 CompositeRetriever。
func NewCompositeRetriever(retrievers []Retriever, parallel bool) *CompositeRetriever {
	return &CompositeRetriever{
		retrievers: retrievers,
		parallel:   parallel,
	}
}

// Retrieve 从所有来源检索候选。
func (r *CompositeRetriever) Retrieve(ctx context.Context, req RetrievalRequest) ([]CandidateItem, error) {
	results := make([][]CandidateItem, len(r.retrievers))

	if r.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, retriever := range r.retrievers {
			i, retriever := i, retriever
			g.Go(func() error {
				items, err := retriever.Retrieve(gctx, req)
				if err != nil {
					return fmt.Errorf("source %d: %w", i, err)
				}
				results[i] = items
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, retriever := range r.retrievers {
			items, err := retriever.Retrieve(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			results[i] = items
		}
	}

	var all []CandidateItem
	for _, items := range results {
		all = append(all, items...)
	}

	if req.Limit > 0 && len(all) > req.Limit {
		all = all[:req.Limit]
	}

	return all, nil
}

// 编译时接口检查
var _ Retriever = RetrieverFunc(nil)
var _ Retriever = (*StaticRetriever)(nil)
var _ Retriever = (*CompositeRetriever)(nil)
