package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// Neo4jStore Neo4j 存储
//
// 条目保存为 (:Knowledge) 节点，项目归属通过 (:Knowledge)-[:IN_PROJECT]->(:Project) 表示。
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// Neo4jConfig Neo4j 配置
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewNeo4jStore 连接 Neo4j 并创建索引
func NewNeo4jStore(ctx context.Context, config Neo4jConfig) (*Neo4jStore, error) {
	if config.URI == "" {
		config.URI = "neo4j://localhost:7687"
	}

	auth := neo4j.NoAuth()
	if config.Username != "" && config.Password != "" {
		auth = neo4j.BasicAuth(config.Username, config.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	s := &Neo4jStore{driver: driver, database: config.Database}
	if err := s.createIndexes(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

func (s *Neo4jStore) createIndexes(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	indexes := []string{
		"CREATE CONSTRAINT knowledge_id IF NOT EXISTS FOR (k:Knowledge) REQUIRE k.id IS UNIQUE",
		"CREATE INDEX knowledge_updated IF NOT EXISTS FOR (k:Knowledge) ON (k.updated_at)",
		"CREATE INDEX project_id IF NOT EXISTS FOR (p:Project) ON (p.id)",
	}

	for _, idx := range indexes {
		if _, err := session.Run(ctx, idx, nil); err != nil {
			return err
		}
	}
	return nil
}

// Name 返回后端名称
func (s *Neo4jStore) Name() string { return "neo4j" }

// Put 写入或覆盖条目
func (s *Neo4jStore) Put(ctx context.Context, items ...cectx.CandidateItem) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := `
	MERGE (k:Knowledge {id: $id})
	SET k.type = $type,
		k.name = $name,
		k.content = $content,
		k.confidence = $confidence,
		k.semantic = $semantic,
		k.updated_at = $updated_at
	WITH k
	OPTIONAL MATCH (k)-[r:IN_PROJECT]->()
	DELETE r
	WITH k
	WHERE $project_id <> ''
	MERGE (p:Project {id: $project_id})
	MERGE (k)-[:IN_PROJECT]->(p)
	`

	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidInput)
		}
		if _, err := session.Run(ctx, query, itemToParams(it)); err != nil {
			return fmt.Errorf("put %s: %w", it.ID, err)
		}
	}
	return nil
}

// Delete 删除条目
func (s *Neo4jStore) Delete(ctx context.Context, id string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (k:Knowledge {id: $id}) DETACH DELETE k RETURN count(k) AS deleted`,
		map[string]any{"id": id})
	if err != nil {
		return err
	}

	record, err := result.Single(ctx)
	if err != nil {
		return err
	}
	if deleted, _ := record.Get("deleted"); deleted == int64(0) {
		return ErrNotFound
	}
	return nil
}

// Retrieve 查询候选条目，当前项目的条目排在前面
func (s *Neo4jStore) Retrieve(ctx context.Context, req cectx.RetrievalRequest) ([]cectx.CandidateItem, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
	MATCH (k:Knowledge)
	OPTIONAL MATCH (k)-[:IN_PROJECT]->(p:Project)
	WITH k, coalesce(p.id, '') AS project_id
	RETURN k, project_id
	ORDER BY CASE WHEN $project_id <> '' AND project_id = $project_id THEN 0 ELSE 1 END,
		k.updated_at DESC, k.id
	`
	params := map[string]any{"project_id": req.ProjectID}
	if req.Limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = req.Limit
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	var items []cectx.CandidateItem
	for result.Next(ctx) {
		record := result.Record()
		nodeVal, _ := record.Get("k")
		node, ok := nodeVal.(neo4j.Node)
		if !ok {
			continue
		}
		projectID, _ := record.Get("project_id")
		items = append(items, propsToItem(node.Props, asString(projectID)))
	}

	return items, result.Err()
}

// Close 关闭驱动
func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

// itemToParams 将条目转换为 Cypher 参数
func itemToParams(it cectx.CandidateItem) map[string]any {
	var semantic any
	if it.Signals.Semantic != nil {
		semantic = *it.Signals.Semantic
	}
	var updated int64
	if !it.Signals.Timestamp.IsZero() {
		updated = it.Signals.Timestamp.UnixMilli()
	}

	return map[string]any{
		"id":         it.ID,
		"type":       string(it.Type),
		"name":       it.Name,
		"content":    it.Content,
		"project_id": it.ProjectID,
		"confidence": it.Signals.Confidence,
		"semantic":   semantic,
		"updated_at": updated,
	}
}

// propsToItem 将节点属性转换为条目
func propsToItem(props map[string]any, projectID string) cectx.CandidateItem {
	it := cectx.CandidateItem{
		ID:        asString(props["id"]),
		Type:      cectx.ItemType(asString(props["type"])),
		Name:      asString(props["name"]),
		Content:   asString(props["content"]),
		ProjectID: projectID,
	}
	if it.Name == "" {
		it.Name = it.ID
	}

	if v, ok := asFloat(props["confidence"]); ok {
		it.Signals.Confidence = v
	} else {
		it.Signals.Confidence = 1
	}
	if v, ok := asFloat(props["semantic"]); ok {
		it.Signals.Semantic = &v
	}
	if ms, ok := props["updated_at"].(int64); ok && ms > 0 {
		it.Signals.Timestamp = time.UnixMilli(ms)
	}
	return it
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// compile-time interface check
var _ Store = (*Neo4jStore)(nil)
