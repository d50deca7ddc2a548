package config

import (
	"fmt"
	"time"
)

// 分词器类型
const (
	TokenizerTiktoken = "tiktoken"
	TokenizerEstimate = "estimate"
)

// 相似度类型
const (
	SimilarityNone      = "none"
	SimilarityLexical   = "lexical"
	SimilarityEmbedding = "embedding"
)

// EngineConfig 组装引擎配置
type EngineConfig struct {
	// MaxCandidates 单次组装考虑的候选上限
	MaxCandidates int `koanf:"max_candidates"`
	// RetrievalTimeout 检索和相似度调用的超时
	RetrievalTimeout time.Duration `koanf:"retrieval_timeout"`
	// ScoreWorkers 并行评分的 worker 数
	ScoreWorkers int `koanf:"score_workers"`
	// DefaultMaxTokens 请求未指定预算时使用的总预算
	DefaultMaxTokens int `koanf:"default_max_tokens"`
	// Tokenizer 分词器（tiktoken, estimate）
	Tokenizer string `koanf:"tokenizer"`
	// TokenizerModel tiktoken 使用的模型名
	TokenizerModel string `koanf:"tokenizer_model"`
	// Similarity 相似度来源（none, lexical, embedding）
	Similarity string `koanf:"similarity"`
}

// DefaultEngineConfig 返回默认引擎配置
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxCandidates:    200,
		RetrievalTimeout: 5 * time.Second,
		ScoreWorkers:     8,
		DefaultMaxTokens: 4000,
		Tokenizer:        TokenizerTiktoken,
		TokenizerModel:   "gpt-4",
		Similarity:       SimilarityLexical,
	}
}

// Validate 验证引擎配置
func (c *EngineConfig) Validate() error {
	if c.RetrievalTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.ScoreWorkers < 0 {
		return ErrInvalidWorkers
	}
	if c.DefaultMaxTokens != 0 && c.DefaultMaxTokens < 16 {
		return ErrInvalidMaxTokens
	}
	switch c.Tokenizer {
	case "", TokenizerTiktoken, TokenizerEstimate:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTokenizer, c.Tokenizer)
	}
	switch c.Similarity {
	case "", SimilarityNone, SimilarityLexical, SimilarityEmbedding:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidSimilarity, c.Similarity)
	}
	return nil
}

// 存储后端
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// StoreConfig 候选来源配置
type StoreConfig struct {
	// Backends 启用的后端，多个时并行检索并按顺序合并
	Backends []string `koanf:"backends"`
	// Backend 单一后端的简写，Backends 为空时生效
	Backend string `koanf:"backend"`

	// SeedFile 内存后端的 YAML 种子文件
	SeedFile string `koanf:"seed_file"`

	// SQLitePath SQLite 数据库文件
	SQLitePath string `koanf:"sqlite_path"`

	// Neo4jURI Neo4j 连接地址
	Neo4jURI      string `koanf:"neo4j_uri"`
	Neo4jUsername string `koanf:"neo4j_username"`
	Neo4jPassword string `koanf:"neo4j_password"`
	Neo4jDatabase string `koanf:"neo4j_database"`
}

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend:       BackendMemory,
		SQLitePath:    "contextengine.db",
		Neo4jURI:      "neo4j://localhost:7687",
		Neo4jUsername: "neo4j",
		Neo4jDatabase: "neo4j",
	}
}

// EnabledBackends 返回实际启用的后端列表
func (c *StoreConfig) EnabledBackends() []string {
	if len(c.Backends) > 0 {
		return c.Backends
	}
	if c.Backend != "" {
		return []string{c.Backend}
	}
	return []string{BackendMemory}
}

// Validate 验证存储配置
func (c *StoreConfig) Validate() error {
	for _, b := range c.EnabledBackends() {
		switch b {
		case BackendMemory:
		case BackendSQLite:
			if c.SQLitePath == "" {
				return fmt.Errorf("%w: sqlite_path", ErrMissingDSN)
			}
		case BackendNeo4j:
			if c.Neo4jURI == "" {
				return fmt.Errorf("%w: neo4j_uri", ErrMissingDSN)
			}
		default:
			return fmt.Errorf("%w: %s", ErrInvalidBackend, b)
		}
	}
	return nil
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	// Addr 监听地址
	Addr string `koanf:"addr"`
	// Mode gin 运行模式（debug, release, test）
	Mode string `koanf:"mode"`
	// ReadTimeout 读取请求超时
	ReadTimeout time.Duration `koanf:"read_timeout"`
	// WriteTimeout 写入响应超时
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// DefaultServerConfig 返回默认服务配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		Mode:         "release",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
