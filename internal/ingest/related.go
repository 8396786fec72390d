package ingest

import "strings"

// Known search variants. The platform caps how many results one search
// shows, so a large target is collected across several related searches.
var keywordVariants = []struct {
	base     string
	variants []string
}{
	{"亲子旅游", []string{"亲子旅游", "亲子游", "家庭旅游", "带娃旅行", "亲子出游", "一家人旅行", "儿童旅游", "亲子度假", "家庭出行", "亲子自驾游"}},
	{"潜水", []string{"潜水", "自由潜水", "深潜", "水肺潜水", "潜水旅游", "潜水装备", "潜水胜地", "海底世界", "潜水体验", "潜水教学"}},
	{"美食", []string{"美食", "美食推荐", "好吃的", "餐厅推荐", "小吃", "网红美食", "美食攻略", "地方美食", "美食探店", "家常菜"}},
}

var genericSuffixes = []string{"推荐", "攻略", "分享", "体验"}

// RelatedKeywords returns search variants for base, base itself first.
func RelatedKeywords(base string) []string {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil
	}
	for _, kv := range keywordVariants {
		if strings.Contains(base, kv.base) || strings.Contains(kv.base, base) {
			return append([]string(nil), kv.variants...)
		}
	}
	out := []string{base}
	for _, s := range genericSuffixes {
		out = append(out, base+s)
	}
	return out
}
