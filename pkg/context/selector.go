package context

import (
	"sort"
)

// Selector 在预算内按类别贪心选择条目。
type Selector struct {
	counter TokenCounter
}

// NewSelector 创建新的 Selector。
func NewSelector(counter TokenCounter) *Selector {
	if counter == nil {
		counter = DefaultTokenCounter()
	}
	return &Selector{counter: counter}
}

// Select 对每个类别独立执行确定性的贪心背包：
//
//  1. 按条目类型（及项目归属）路由到类别
//  2. 类别内按 TotalScore 降序稳定排序，分数相同保持检索顺序
//  3. 依次尝试预留；放不下且剩余预算不低于 MinTruncateTokens 时，
//     截断该条目填满剩余预算并结束该类别；否则跳过，继续尝试更小的条目
//
// scores 与 items 按下标一一对应。返回结果按 identity → project → other 分组。
// 预算连一个条目都放不下时返回空切片，这不是错误。
func (s *Selector) Select(scores []RelevanceScore, items []CandidateItem, budget *TokenBudget, scope string) []SelectedItem {
	n := len(items)
	if len(scores) < n {
		n = len(scores)
	}

	buckets := make(map[Category][]int, 3)
	for i := 0; i < n; i++ {
		c := Route(items[i].Type, items[i].InProject(scope))
		buckets[c] = append(buckets[c], i)
	}

	selected := make([]SelectedItem, 0, n)
	for _, c := range Categories() {
		idx := buckets[c]
		sort.SliceStable(idx, func(a, b int) bool {
			return scores[idx[a]].TotalScore > scores[idx[b]].TotalScore
		})

		selected = append(selected, s.walk(c, idx, scores, items, budget)...)
	}

	return selected
}

// walk 按排名顺序遍历一个类别。截断条目至多一个，且总是该类别最后一个。
func (s *Selector) walk(c Category, idx []int, scores []RelevanceScore, items []CandidateItem, budget *TokenBudget) []SelectedItem {
	var picked []SelectedItem

	for _, i := range idx {
		remaining := budget.Remaining(c)
		if remaining <= 0 {
			break
		}
		if len(picked) > 0 && remaining < MinTruncateTokens {
			break
		}

		sel := SelectedItem{
			Item:     items[i].Clone(),
			Score:    scores[i],
			Category: c,
		}
		sel.Item.Content = xmlText(sel.Item.Content)
		sel.Item.Name = xmlText(sel.Item.Name)

		cost := s.counter.Count(renderItem(sel))
		if budget.TryReserve(c, cost) {
			sel.Cost = cost
			picked = append(picked, sel)
			continue
		}

		if remaining < MinTruncateTokens {
			continue
		}

		truncated, tcost, ok := truncateToFit(sel, remaining, s.counter)
		if ok && budget.TryReserve(c, tcost) {
			picked = append(picked, truncated)
			break
		}
	}

	return picked
}
