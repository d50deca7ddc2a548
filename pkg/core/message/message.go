// Package message 定义交给下游模型的对话消息。
package message

import "errors"

var (
	ErrInvalidRole  = errors.New("invalid message role")
	ErrEmptyContent = errors.New("message content cannot be empty")
)

// Role 是消息发送方。组装结果放在 system 消息里，用户查询放在 user 消息里。
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message 是一条对话消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage 用上下文文档创建 system 消息。
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage 创建 user 消息。
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Validate 检查角色和内容。
func (m Message) Validate() error {
	switch {
	case m.Role != RoleSystem && m.Role != RoleUser:
		return ErrInvalidRole
	case m.Content == "":
		return ErrEmptyContent
	}
	return nil
}
