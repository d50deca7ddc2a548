package context

import (
	"time"
)

// ItemType 表示知识条目的类型，决定其预算类别。
type ItemType string

const (
	// ItemTypeGoal 项目目标。
	ItemTypeGoal ItemType = "goal"

	// ItemTypeConstraint 项目约束。
	ItemTypeConstraint ItemType = "constraint"

	// ItemTypeDecision 已做出的决策。
	ItemTypeDecision ItemType = "decision"

	// ItemTypeDocument 文档。
	ItemTypeDocument ItemType = "document"

	// ItemTypeEntity 实体（人、系统、组件等）。
	ItemTypeEntity ItemType = "entity"

	// ItemTypeBehavior 行为或工作流描述。
	ItemTypeBehavior ItemType = "behavior"

	// ItemTypeContextNote 上下文笔记。
	ItemTypeContextNote ItemType = "context-note"
)

// IsValid 检查 ItemType 是否为已知值
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeGoal, ItemTypeConstraint, ItemTypeDecision,
		ItemTypeDocument, ItemTypeEntity, ItemTypeBehavior, ItemTypeContextNote:
		return true
	default:
		return false
	}
}

// Category 表示预算类别。
type Category string

const (
	// CategoryIdentity 身份类：目标、约束、决策。
	CategoryIdentity Category = "identity"

	// CategoryProject 项目类：属于目标项目的文档、实体、行为。
	CategoryProject Category = "project"

	// CategoryOther 其他所有条目。
	CategoryOther Category = "other"
)

// Categories 按输出顺序返回全部类别。
func Categories() []Category {
	return []Category{CategoryIdentity, CategoryProject, CategoryOther}
}

// Route 将条目类型映射到预算类别。
// projectMatch 表示条目是否属于查询指定的项目。
func Route(t ItemType, projectMatch bool) Category {
	switch t {
	case ItemTypeGoal, ItemTypeConstraint, ItemTypeDecision:
		return CategoryIdentity
	case ItemTypeDocument, ItemTypeEntity, ItemTypeBehavior:
		if projectMatch {
			return CategoryProject
		}
		return CategoryOther
	default:
		return CategoryOther
	}
}

// Signals 是评分的原始输入。
type Signals struct {
	// Timestamp 条目最后更新时间，用于新近性评分。
	Timestamp time.Time `json:"timestamp"`

	// Confidence 来源可靠性（0.0-1.0）。
	Confidence float64 `json:"confidence"`

	// Semantic 检索方给出的语义相似度（0.0-1.0）。
	// 为 nil 时由相似度协作方计算。
	Semantic *float64 `json:"semantic,omitempty"`
}

// CandidateItem 表示一个可检索的知识单元。
type CandidateItem struct {
	// ID 在一次检索批次内唯一。
	ID string `json:"id"`

	// Type 条目类型。
	Type ItemType `json:"type"`

	// Name 展示名称，出现在 sources 中。
	Name string `json:"name"`

	// Content 被选中时渲染的原始内容。
	Content string `json:"content"`

	// ProjectID 条目所属项目，为空表示不属于任何项目。
	ProjectID string `json:"projectId,omitempty"`

	// Signals 评分输入。
	Signals Signals `json:"signals"`
}

// ItemOption 配置 CandidateItem。
type ItemOption func(*CandidateItem)

// WithName 设置展示名称。
func WithName(name string) ItemOption {
	return func(it *CandidateItem) {
		it.Name = name
	}
}

// WithProject 设置所属项目。
func WithProject(projectID string) ItemOption {
	return func(it *CandidateItem) {
		it.ProjectID = projectID
	}
}

// WithTimestamp 设置时间戳。
func WithTimestamp(ts time.Time) ItemOption {
	return func(it *CandidateItem) {
		it.Signals.Timestamp = ts
	}
}

// WithConfidence 设置可靠性。
func WithConfidence(confidence float64) ItemOption {
	return func(it *CandidateItem) {
		it.Signals.Confidence = confidence
	}
}

// WithSemantic 设置预先计算的语义相似度。
func WithSemantic(score float64) ItemOption {
	return func(it *CandidateItem) {
		s := score
		it.Signals.Semantic = &s
	}
}

// NewCandidateItem 使用给定的 ID、类型、内容和选项创建候选条目。
// 默认可靠性为 1.0，时间戳为当前时间。
func NewCandidateItem(id string, t ItemType, content string, opts ...ItemOption) CandidateItem {
	it := CandidateItem{
		ID:      id,
		Type:    t,
		Name:    id,
		Content: content,
		Signals: Signals{
			Timestamp:  time.Now(),
			Confidence: 1.0,
		},
	}

	for _, opt := range opts {
		opt(&it)
	}

	return it
}

// InProject 判断条目是否属于给定项目。scope 为空时始终为 false。
func (it *CandidateItem) InProject(scope string) bool {
	return scope != "" && it.ProjectID == scope
}

// Clone 创建条目的深拷贝。
func (it CandidateItem) Clone() CandidateItem {
	clone := it
	if it.Signals.Semantic != nil {
		s := *it.Signals.Semantic
		clone.Signals.Semantic = &s
	}
	return clone
}

// Query 是一次组装请求。
type Query struct {
	// Text 用户的自由文本查询。
	Text string `json:"query"`

	// ProjectID 可选的项目范围。
	ProjectID string `json:"projectId,omitempty"`

	// MaxTokens 调用方选择的总 Token 预算。
	MaxTokens int `json:"maxTokens"`
}
