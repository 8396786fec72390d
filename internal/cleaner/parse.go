package cleaner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/qepting91/promo-scraper/internal/domain"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```\\s*$")
)

// StripFences removes a markdown code fence around a JSON answer.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// DefaultFields is the record used when extraction fails.
func DefaultFields(text string) domain.PostFields {
	return domain.PostFields{
		Audience:  "通用",
		Style:     "默认",
		CharCount: utf8.RuneCountInString(text),
		Landmarks: []string{},
		Locations: []string{},
		Prices:    []string{},
		Services:  []string{},
		Keywords:  []string{},
	}
}

// ParseFields decodes a model answer. Models are loose with types, so
// numbers may come back as strings and lists as a single string.
func ParseFields(answer string) (domain.PostFields, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(StripFences(answer)), &raw); err != nil {
		return domain.PostFields{}, fmt.Errorf("answer is not JSON: %w", err)
	}
	return domain.PostFields{
		Audience:    asString(raw["适用人群"]),
		Style:       asString(raw["写作风格"]),
		CharCount:   asInt(raw["文案字数"]),
		Merchant:    asString(raw["商户"]),
		ProductName: asString(raw["商品名称"]),
		Landmarks:   asStrings(raw["景点名称"]),
		Locations:   asStrings(raw["地点信息"]),
		Prices:      asStrings(raw["价格信息"]),
		Services:    asStrings(raw["服务内容"]),
		Keywords:    asStrings(raw["其他关键词"]),
	}, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		return strings.Join(asStrings(t), "、")
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s := asString(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var digits = regexp.MustCompile(`\d+`)

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(digits.FindString(t)); err == nil {
			return n
		}
	}
	return 0
}
