package context

import "fmt"

// BudgetLine 记录单个类别的分配量和使用量。
type BudgetLine struct {
	Allocated int `json:"allocated"`
	Used      int `json:"used"`
}

// Remaining 返回剩余可用 Token。
func (l BudgetLine) Remaining() int {
	return l.Allocated - l.Used
}

// TokenBudget 是总预算及其三个类别子预算。
//
// Allocated 在 Allocate 时一次性确定；Used 只能通过 TryReserve 增加，
// 因此各类别 Used 不会超过 Allocated，且 Total.Used 恒等于各类别之和。
type TokenBudget struct {
	Identity BudgetLine `json:"identity"`
	Project  BudgetLine `json:"project"`
	Other    BudgetLine `json:"other"`
	Total    BudgetLine `json:"total"`
}

// Allocate 按 20/50/30 比例划分总预算。
// 取整余数归入最大的 project 类别，保证分配总和与 total 完全相等。
func Allocate(total int) *TokenBudget {
	if total < 0 {
		total = 0
	}

	identity := total * IdentityShare / 100
	other := total * OtherShare / 100
	project := total - identity - other

	return &TokenBudget{
		Identity: BudgetLine{Allocated: identity},
		Project:  BudgetLine{Allocated: project},
		Other:    BudgetLine{Allocated: other},
		Total:    BudgetLine{Allocated: total},
	}
}

// line 返回类别对应的预算行。
func (b *TokenBudget) line(c Category) (*BudgetLine, error) {
	switch c {
	case CategoryIdentity:
		return &b.Identity, nil
	case CategoryProject:
		return &b.Project, nil
	case CategoryOther:
		return &b.Other, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
}

// TryReserve 检查 used+cost <= allocated，成立则提交并返回 true，否则不修改状态。
// 这是预算状态唯一的修改入口。
func (b *TokenBudget) TryReserve(c Category, cost int) bool {
	if cost < 0 {
		return false
	}

	l, err := b.line(c)
	if err != nil {
		return false
	}

	if l.Used+cost > l.Allocated {
		return false
	}

	l.Used += cost
	b.Total.Used += cost
	return true
}

// Remaining 返回类别剩余预算，未知类别返回 0。
func (b *TokenBudget) Remaining(c Category) int {
	l, err := b.line(c)
	if err != nil {
		return 0
	}
	return l.Remaining()
}

// Line 返回类别预算行的副本。
func (b *TokenBudget) Line(c Category) (BudgetLine, error) {
	l, err := b.line(c)
	if err != nil {
		return BudgetLine{}, err
	}
	return *l, nil
}

// Clone 返回预算的副本。
func (b *TokenBudget) Clone() *TokenBudget {
	clone := *b
	return &clone
}
