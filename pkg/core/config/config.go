// Package config 提供配置加载和管理功能
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/easyops/contextengine/pkg/otel"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "CONTEXTENGINE_"

// Config 全局配置结构
type Config struct {
	// Engine 组装引擎配置
	Engine EngineConfig `koanf:"engine"`
	// Store 候选来源配置
	Store StoreConfig `koanf:"store"`
	// Embedding 嵌入相似度配置
	Embedding EmbeddingConfig `koanf:"embedding"`
	// Server HTTP 服务配置
	Server ServerConfig `koanf:"server"`
	// Observability 可观测性配置
	Observability otel.Config `koanf:"observability"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Engine:        DefaultEngineConfig(),
		Store:         DefaultStoreConfig(),
		Embedding:     DefaultEmbeddingConfig(),
		Server:        DefaultServerConfig(),
		Observability: otel.DefaultConfig(),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	return errors.Join(
		c.Engine.Validate(),
		c.Store.Validate(),
		c.Embedding.Validate(),
		c.Observability.Validate(),
	)
}

// Loader 配置加载器
//
// 加载顺序：默认值 → 配置文件 → 环境变量，后加载的覆盖先加载的。
type Loader struct {
	k *koanf.Koanf
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New("."),
	}
}

// LoadDefaults 加载默认配置
func (l *Loader) LoadDefaults() error {
	if err := l.k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	return nil
}

// LoadFile 从 YAML 文件加载配置，文件不存在时忽略
func (l *Loader) LoadFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := l.k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadEnv 从环境变量加载配置
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", func(s string) string {
		return envKey(strings.TrimPrefix(s, prefix))
	}), nil)
}

// envKey 转换环境变量名：ENGINE_MAX_CANDIDATES -> engine.max_candidates
// 第一段是配置节，其余部分以下划线连接为字段名。
func envKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + strings.Join(parts[1:], "_")
	}
}

// Unmarshal 解析配置到结构体
func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// GetString 获取字符串配置值
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt 获取整数配置值
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetDuration 获取时间间隔配置值
func (l *Loader) GetDuration(key string) time.Duration {
	return l.k.Duration(key)
}

// Load 加载完整配置（默认值 + 文件 + 环境变量）
func Load(configPath string) (*Config, error) {
	loader := NewLoader()

	if err := loader.LoadDefaults(); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := loader.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := loader.LoadEnv(EnvPrefix); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults 补齐被显式置零的字段
func applyDefaults(cfg *Config) {
	d := Default()

	if cfg.Engine.MaxCandidates == 0 {
		cfg.Engine.MaxCandidates = d.Engine.MaxCandidates
	}
	if cfg.Engine.RetrievalTimeout == 0 {
		cfg.Engine.RetrievalTimeout = d.Engine.RetrievalTimeout
	}
	if cfg.Engine.ScoreWorkers == 0 {
		cfg.Engine.ScoreWorkers = d.Engine.ScoreWorkers
	}
	if cfg.Engine.DefaultMaxTokens == 0 {
		cfg.Engine.DefaultMaxTokens = d.Engine.DefaultMaxTokens
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = d.Store.Backend
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}

	cfg.Embedding = cfg.Embedding.WithDefaults()
	cfg.Observability = cfg.Observability.WithDefaults()
}
