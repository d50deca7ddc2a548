package context

import (
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"
)

// SelectedItem 是被选入上下文的条目。
type SelectedItem struct {
	// Item 条目副本。Content 与 Name 已经过 xmlText 处理，
	// 被截断时 Content 为截断后的前缀。
	Item CandidateItem

	// Score 条目的评分明细。
	Score RelevanceScore

	// Category 条目所属的预算类别。
	Category Category

	// Cost 条目渲染后占用的 Token 数。
	Cost int

	// Truncated 表示内容被截断以适应剩余预算。
	Truncated bool
}

// Serializer 将选中的条目渲染为结构化上下文文档。
type Serializer struct {
	counter TokenCounter
}

// NewSerializer 创建新的 Serializer。
func NewSerializer(counter TokenCounter) *Serializer {
	if counter == nil {
		counter = DefaultTokenCounter()
	}
	return &Serializer{counter: counter}
}

// Serialize 按 identity → project → other 分组渲染条目，
// 并基于实际输出文本重新计算 Token 数。
//
// 输出格式：
//
//	<context>
//	  <identity>
//	    <item type="goal" id="g1" name="...">内容</item>
//	  </identity>
//	  <project></project>
//	  <other></other>
//	</context>
func (s *Serializer) Serialize(selected []SelectedItem) (string, int) {
	groups := make(map[Category][]SelectedItem, 3)
	for _, sel := range selected {
		groups[sel.Category] = append(groups[sel.Category], sel)
	}

	var b strings.Builder
	b.WriteString("<context>\n")

	for _, c := range Categories() {
		items := groups[c]
		if len(items) == 0 {
			fmt.Fprintf(&b, "  <%s></%s>\n", c, c)
			continue
		}

		fmt.Fprintf(&b, "  <%s>\n", c)
		for _, sel := range items {
			b.WriteString(renderItem(sel))
		}
		fmt.Fprintf(&b, "  </%s>\n", c)
	}

	b.WriteString("</context>\n")

	out := b.String()
	return out, s.counter.Count(out)
}

// EnvelopeCost 返回 <context> 与三个类别标签（均非空时）的 Token 数。
// 预算只对条目计费，所以 Serialize 返回的 Token 数最多比
// 已预留总量多出这部分，外加每段文本（各条目与外层标签）不足 1 Token 的取整误差。
func (s *Serializer) EnvelopeCost() int {
	var b strings.Builder
	b.WriteString("<context>\n")
	for _, c := range Categories() {
		fmt.Fprintf(&b, "  <%s>\n  </%s>\n", c, c)
	}
	b.WriteString("</context>\n")
	return s.counter.Count(b.String())
}

// renderItem 渲染单个条目元素（包含缩进和换行），也是预算计费的单位。
func renderItem(sel SelectedItem) string {
	var b strings.Builder

	b.WriteString(`    <item type="`)
	escape(&b, string(sel.Item.Type))
	b.WriteString(`" id="`)
	escape(&b, sel.Item.ID)
	b.WriteString(`" name="`)
	escape(&b, sel.Item.Name)
	b.WriteString(`"`)
	if sel.Truncated {
		b.WriteString(` truncated="true"`)
	}
	b.WriteString(">")
	escape(&b, sel.Item.Content)
	b.WriteString("</item>\n")

	return b.String()
}

// xmlText 把无效的 UTF-8 字节和 XML 不允许的字符（如 NUL）替换为 U+FFFD。
// 结果与 xml.EscapeText 的替换一致，ParseContext 能原样取回。
func xmlText(s string) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !isXMLChar(r) {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// isXMLChar 对应 XML 1.0 的 Char 产生式。
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func escape(b *strings.Builder, s string) {
	// strings.Builder 的写入不会失败
	_ = xml.EscapeText(b, []byte(s))
}

// ParsedItem 是从上下文文档中解析出的条目。
type ParsedItem struct {
	Category  Category
	Type      ItemType
	ID        string
	Name      string
	Content   string
	Truncated bool
}

type xmlContext struct {
	XMLName  xml.Name    `xml:"context"`
	Identity xmlCategory `xml:"identity"`
	Project  xmlCategory `xml:"project"`
	Other    xmlCategory `xml:"other"`
}

type xmlCategory struct {
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	Type      string `xml:"type,attr"`
	ID        string `xml:"id,attr"`
	Name      string `xml:"name,attr"`
	Truncated bool   `xml:"truncated,attr"`
	Content   string `xml:",chardata"`
}

// ParseContext 解析 Serialize 生成的文档，按文档顺序返回条目。
// 下游消费方用它从 contextXml 中提取来源归属。
func ParseContext(doc string) ([]ParsedItem, error) {
	var parsed xmlContext
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("parse context document: %w", err)
	}

	var items []ParsedItem
	for _, group := range []struct {
		category Category
		items    []xmlItem
	}{
		{CategoryIdentity, parsed.Identity.Items},
		{CategoryProject, parsed.Project.Items},
		{CategoryOther, parsed.Other.Items},
	} {
		for _, it := range group.items {
			items = append(items, ParsedItem{
				Category:  group.category,
				Type:      ItemType(it.Type),
				ID:        it.ID,
				Name:      it.Name,
				Content:   it.Content,
				Truncated: it.Truncated,
			})
		}
	}

	return items, nil
}
