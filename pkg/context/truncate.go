package context

// truncateToFit 截断条目内容，使渲染后的元素不超过 remaining 个 Token。
// 无法得到非空内容时返回 false。
//
// 转义会让内容膨胀（引号、尖括号、换行），所以内容的 Token 上限
// 在 [1, remaining-overhead] 上二分，取渲染成本不超过 remaining 的最大值。
func truncateToFit(sel SelectedItem, remaining int, counter TokenCounter) (SelectedItem, int, bool) {
	shell := sel
	shell.Truncated = true
	shell.Item.Content = ""

	overhead := counter.Count(renderItem(shell))

	var (
		best     string
		bestCost int
	)
	lo, hi := 1, remaining-overhead
	for lo <= hi {
		mid := lo + (hi-lo)/2

		content := counter.Truncate(sel.Item.Content, mid)
		if content == "" {
			// 上限不足以容纳第一个字符
			lo = mid + 1
			continue
		}
		shell.Item.Content = content
		cost := counter.Count(renderItem(shell))

		if cost <= remaining {
			best, bestCost = content, cost
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if best == "" {
		return SelectedItem{}, 0, false
	}
	shell.Item.Content = best
	shell.Cost = bestCost
	return shell, bestCost, true
}
