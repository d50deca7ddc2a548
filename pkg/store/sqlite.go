package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	cectx "github.com/easyops/contextengine/pkg/context"
)

// SQLiteStore SQLite 存储
//
// 当前项目的条目排在前面，其余按更新时间倒序。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开 dbPath 并初始化表结构
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS knowledge_items (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		project_id TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 1,
		semantic REAL,
		updated_at INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_project ON knowledge_items(project_id);
	CREATE INDEX IF NOT EXISTS idx_knowledge_updated ON knowledge_items(updated_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// Name 返回后端名称
func (s *SQLiteStore) Name() string { return "sqlite" }

// Put 写入或覆盖条目
func (s *SQLiteStore) Put(ctx context.Context, items ...cectx.CandidateItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
	INSERT INTO knowledge_items (id, type, name, content, project_id, confidence, semantic, updated_at, seq)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM knowledge_items))
	ON CONFLICT(id) DO UPDATE SET
		type = excluded.type,
		name = excluded.name,
		content = excluded.content,
		project_id = excluded.project_id,
		confidence = excluded.confidence,
		semantic = excluded.semantic,
		updated_at = excluded.updated_at
	`

	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidInput)
		}

		var semantic sql.NullFloat64
		if it.Signals.Semantic != nil {
			semantic = sql.NullFloat64{Float64: *it.Signals.Semantic, Valid: true}
		}
		var updated int64
		if !it.Signals.Timestamp.IsZero() {
			updated = it.Signals.Timestamp.UnixMilli()
		}

		if _, err := tx.ExecContext(ctx, query,
			it.ID, string(it.Type), it.Name, it.Content, it.ProjectID,
			it.Signals.Confidence, semantic, updated,
		); err != nil {
			return fmt.Errorf("put %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Delete 删除条目
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_items WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Retrieve 查询候选条目
func (s *SQLiteStore) Retrieve(ctx context.Context, req cectx.RetrievalRequest) ([]cectx.CandidateItem, error) {
	query := `
	SELECT id, type, name, content, project_id, confidence, semantic, updated_at
	FROM knowledge_items
	ORDER BY CASE WHEN ? <> '' AND project_id = ? THEN 0 ELSE 1 END, updated_at DESC, seq
	`
	args := []any{req.ProjectID, req.ProjectID}
	if req.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, req.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []cectx.CandidateItem
	for rows.Next() {
		var (
			it       cectx.CandidateItem
			typ      string
			semantic sql.NullFloat64
			updated  int64
		)
		if err := rows.Scan(&it.ID, &typ, &it.Name, &it.Content, &it.ProjectID,
			&it.Signals.Confidence, &semantic, &updated); err != nil {
			return nil, err
		}

		it.Type = cectx.ItemType(typ)
		if semantic.Valid {
			v := semantic.Float64
			it.Signals.Semantic = &v
		}
		if updated > 0 {
			it.Signals.Timestamp = time.UnixMilli(updated)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// compile-time interface check
var _ Store = (*SQLiteStore)(nil)
