package classify

import (
	"fmt"
	"strings"
)

// buildBatchPrompt asks the model to judge each fragment independently
// and answer with a JSON array in input order.
func buildBatchPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString(`你是一个专业的文档结构分析专家。请分析以下文本片段，判断每个是否为标题，以及标题的层级。

判断标准：
1. 标题通常较短（一般不超过50字符）
2. 标题不以句号、问号、感叹号结尾
3. 标题可能包含编号（如"第一章"、"第一条"、"一、"、"（一）"、"1."等）
4. 标题描述章节、部分或主题
5. 列表项正文（如"1、代销机构依法注册..."）通常不是标题，而是内容

层级规则（数字越小层级越高）：
- 1 编  2 篇  3 章  4 节  5 条  6 款  7 项  8 目
- 10 序号（一、（一））  11 编号（1、 1.2）

请以JSON数组返回结果，与输入顺序一一对应，格式如下：
[
  {"is_heading": true, "level": 3, "confidence": 0.95},
  ...
]

待分析文本：
`)

	for i, text := range texts {
		if len([]rune(text)) > 200 {
			text = string([]rune(text)[:200]) + "..."
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, text)
	}
	b.WriteString("\n\n请只返回JSON数组：")
	return b.String()
}
