// Package store 提供候选知识条目的来源实现：内存、SQLite 和 Neo4j。
//
// 每个 Store 都实现 context.Retriever，可直接交给 Assembler，
// 多个后端通过 context.CompositeRetriever 组合。
package store

import (
	"context"
	"time"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/otel"
)

// Store 定义候选条目存储
type Store interface {
	cectx.Retriever

	// Put 写入或覆盖条目（按 ID）
	Put(ctx context.Context, items ...cectx.CandidateItem) error

	// Delete 删除条目，不存在时返回 ErrNotFound
	Delete(ctx context.Context, id string) error

	// Name 返回后端名称
	Name() string

	// Close 释放资源
	Close() error
}

// instrumented 为 Store 的检索记录指标
type instrumented struct {
	Store
	metrics otel.Metrics
}

// Instrument 包装 Store，记录检索次数与耗时
func Instrument(s Store, metrics otel.Metrics) Store {
	if metrics == nil {
		return s
	}
	return &instrumented{Store: s, metrics: metrics}
}

// Retrieve 调用底层 Store 并记录指标
func (s *instrumented) Retrieve(ctx context.Context, req cectx.RetrievalRequest) ([]cectx.CandidateItem, error) {
	start := time.Now()
	items, err := s.Store.Retrieve(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backend := otel.NewAttr(otel.AttrStoreBackend, s.Name())
	s.metrics.Counter(otel.MetricStoreQueries).Add(ctx, 1, backend, otel.NewAttr(otel.AttrContextOutcome, outcome))
	s.metrics.Histogram(otel.MetricStoreQueryDuration).Record(ctx, float64(time.Since(start).Milliseconds()), backend)

	return items, err
}

// applyLimit 按请求上限截断
func applyLimit(items []cectx.CandidateItem, limit int) []cectx.CandidateItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
