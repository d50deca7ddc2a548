package store

import (
	"context"
	"errors"
	"fmt"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/core/config"
	"github.com/easyops/contextengine/pkg/otel"
)

// New 根据后端名称创建 Store
func New(ctx context.Context, backend string, cfg config.StoreConfig) (Store, error) {
	switch backend {
	case config.BackendMemory:
		s := NewMemoryStore()
		if cfg.SeedFile != "" {
			items, err := LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := s.Put(ctx, items...); err != nil {
				return nil, err
			}
		}
		return s, nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case config.BackendNeo4j:
		return NewNeo4jStore(ctx, Neo4jConfig{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUsername,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// Set 是按配置打开的一组 Store
type Set struct {
	Stores []Store
}

// Open 打开配置中启用的所有后端，metrics 非空时记录检索指标
func Open(ctx context.Context, cfg config.StoreConfig, metrics otel.Metrics) (*Set, error) {
	set := &Set{}
	for _, backend := range cfg.EnabledBackends() {
		s, err := New(ctx, backend, cfg)
		if err != nil {
			_ = set.Close()
			return nil, fmt.Errorf("open %s: %w", backend, err)
		}
		set.Stores = append(set.Stores, Instrument(s, metrics))
	}
	return set, nil
}

// Retriever 返回组合检索器：单个后端直接返回，多个后端并行检索
func (s *Set) Retriever() cectx.Retriever {
	if len(s.Stores) == 1 {
		return s.Stores[0]
	}

	retrievers := make([]cectx.Retriever, len(s.Stores))
	for i, st := range s.Stores {
		retrievers[i] = st
	}
	return cectx.NewCompositeRetriever(retrievers, true)
}

// Close 关闭所有 Store
func (s *Set) Close() error {
	var errs []error
	for _, st := range s.Stores {
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
		}
	}
	return errors.Join(errs...)
}
