package config

import "errors"

// 配置验证相关错误
var (
	// ErrUnsupportedFormat 配置文件格式不支持
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	// ErrModelRequired 模型名称必填
	ErrModelRequired = errors.New("model name is required")
	// ErrInvalidTimeout 超时时间无效
	ErrInvalidTimeout = errors.New("invalid timeout value")
	// ErrInvalidMaxRetries 重试次数无效
	ErrInvalidMaxRetries = errors.New("invalid max retries value")
	// ErrInvalidMaxTokens Token 数无效
	ErrInvalidMaxTokens = errors.New("max tokens must be at least 16")
	// ErrInvalidWorkers 并发数无效
	ErrInvalidWorkers = errors.New("score workers must be positive")
	// ErrInvalidTokenizer 分词器类型无效
	ErrInvalidTokenizer = errors.New("unsupported tokenizer")
	// ErrInvalidSimilarity 相似度类型无效
	ErrInvalidSimilarity = errors.New("unsupported similarity")
	// ErrInvalidBackend 存储后端无效
	ErrInvalidBackend = errors.New("unsupported store backend")
	// ErrMissingDSN 存储连接信息缺失
	ErrMissingDSN = errors.New("store connection settings are required")
)
