package store

import (
	"context"
	"fmt"
	"sync"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// MemoryStore 内存存储
//
// 按写入顺序返回条目，覆盖写保留原位置。适用于测试和小规模场景。
type MemoryStore struct {
	items  []cectx.CandidateItem
	index  map[string]int
	closed bool
	mu     sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(items ...cectx.CandidateItem) *MemoryStore {
	s := &MemoryStore{index: make(map[string]int)}
	_ = s.Put(context.Background(), items...)
	return s
}

// Name 返回后端名称
func (s *MemoryStore) Name() string { return "memory" }

// Put 写入或覆盖条目
func (s *MemoryStore) Put(_ context.Context, items ...cectx.CandidateItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidInput)
		}
		if i, ok := s.index[it.ID]; ok {
			s.items[i] = it.Clone()
			continue
		}
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it.Clone())
	}
	return nil
}

// Delete 删除条目
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return nil
}

// Retrieve 返回全部条目的副本
func (s *MemoryStore) Retrieve(ctx context.Context, req cectx.RetrievalRequest) ([]cectx.CandidateItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	out := make([]cectx.CandidateItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	return applyLimit(out, req.Limit), nil
}

// Len 返回条目数量
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close 关闭存储
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
