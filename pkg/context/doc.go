// Package context 为对话请求组装受预算约束的上下文文档。
//
// 一次组装依次经过五个阶段：
//
//   - 检索：通过 Retriever 获取候选知识条目
//   - 评分：语义相似度、新近性、置信度加权，并对当前项目的条目加分
//   - 分配：将总 Token 预算按 20/50/30 划分给 identity/project/other 三个类别
//   - 选择：类别内按分数贪心装箱，必要时截断最后一个条目
//   - 序列化：生成带类别分组的 XML 文档，并记录来源和指纹
//
// # 基本用法
//
//	items := []context.CandidateItem{
//	    context.NewCandidateItem("g1", context.ItemTypeGoal, "交付 v2 版本"),
//	    context.NewCandidateItem("d1", context.ItemTypeDocument, "发布说明...",
//	        context.WithProject("p1")),
//	}
//
//	assembler := context.NewAssembler(context.NewStaticRetriever(items))
//	result, err := assembler.Assemble(ctx, context.Query{
//	    Text:      "下一步做什么？",
//	    ProjectID: "p1",
//	    MaxTokens: 1000,
//	})
//
// # 输出格式
//
//	<context>
//	  <identity>
//	    <item type="goal" id="g1" name="g1">交付 v2 版本</item>
//	  </identity>
//	  <project>
//	    <item type="document" id="d1" name="d1">发布说明...</item>
//	  </project>
//	  <other></other>
//	</context>
//
// 每个类别的元素总会输出，即使为空。
//
// 预算只对 <item> 元素计费。TokenCount 是对整个文档的实测值，
// 可能超出 MaxTokens，超出部分不大于 Serializer.EnvelopeCost
// 加上每段文本（各条目与外层标签）1 Token 的取整误差。需要严格上限的调用方应预留这部分。
//
// # 错误
//
// Assemble 只返回两类错误：ErrInvalidBudget 表示预算非法，在检索之前返回；
// ErrRetrievalFailure 表示检索或相似度计算失败或超时。
// 预算太小放不下任何条目时返回空文档，不视为错误。
package context
