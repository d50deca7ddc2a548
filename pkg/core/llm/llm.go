// Package llm 提供与模型服务交互的客户端，目前用于生成嵌入向量
package llm

import "context"

// Embedder 定义嵌入向量生成接口
//
// 返回的向量与输入文本按下标一一对应。
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model 返回嵌入模型名称
	Model() string
}
