package cleaner

import "strings"

const filterPrompt = `
请判断以下文案是否是景点相关的宣传文案。

景点相关的文案包括：
- 旅游景点介绍和推荐
- 旅游攻略和路线分享
- 旅游住宿和美食推荐
- 旅游体验和感受分享
- 景区门票、交通等信息

非景点相关的文案包括：
- 纯粹的生活分享（没有旅游内容）
- 商品广告（不是旅游相关）
- 情感抒发（不涉及具体景点）
- 纯理论或教程文章

文案内容：
{text}

请回答：是景点相关（回答"是"）或不是景点相关（回答"否"）
`

const extractPrompt = `
请从以下景点宣传文案中提取关键信息，并按照指定格式返回JSON：

文案内容：
{text}

请提取以下信息：
1. 适用人群（从现有文案中识别：亲子家庭、情侣蜜月、商务出行、文化体验、户外运动、老年群体、学生群体等）
2. 写作风格（从以下选择：默认、诙谐幽默、犀利锐评、通俗易懂、专业写作、童趣）
3. 文案字数（直接统计字数）
4. 商品信息关键词（包括：商户名称、商品名称、景点名称、地点信息、价格信息、服务内容等，必须和文案内容完全一致，不能遗漏重要信息）

返回格式：
{
    "适用人群": "xxx",
    "写作风格": "xxx",
    "文案字数": 数字,
    "商户": "xxx（如果有）",
    "商品名称": "xxx（如果有）",
    "景点名称": ["景点1", "景点2"],
    "地点信息": ["地点1", "地点2"],
    "价格信息": ["价格1", "价格2"],
    "服务内容": ["服务1", "服务2"],
    "其他关键词": ["关键词1", "关键词2"]
}

注意：所有信息必须从原文案中提取，不能添加文案中没有的内容。
`

const fillPrompt = `
请根据以下小红书旅游文案内容，填补缺失的字段信息。请仔细阅读文案内容，准确提取相关信息。

原始文案内容：
{text}

当前已有数据：
{current}

需要填补的字段：{fields}

请按照以下要求填补信息：
1. 适用人群：根据文案内容判断主要面向的人群（如：亲子家庭、情侣蜜月、学生群体、年轻群体、老年群体、通用等）
2. 写作风格：分析文案的写作风格（如：默认、诙谐幽默、犀利锐评、通俗易懂、专业写作、童趣、浪漫抒情等）
3. 商户：提取文案中提到的商家、机构、景区名称等
4. 商品名称：根据文案内容推断合适的旅游产品名称
5. 景点名称：提取文案中提到的所有景点、地标、建筑等名称
6. 地点信息：提取具体的地理位置信息（城市、区域、地址等）
7. 价格信息：提取文案中提到的所有价格、费用信息
8. 服务内容：提取文案中提到的各种服务、活动、体验项目等
9. 其他关键词：提取文案中的重要关键词、特色词汇、标签等

请返回完整的JSON格式数据，包含所有原有字段和新填补的字段。确保JSON格式正确，所有字符串使用双引号。
`

// maxPromptRunes bounds the post text sent with a prompt.
const maxPromptRunes = 2000

func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
