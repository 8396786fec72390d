package cleaner

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// Field names as they appear in cleaned records.
const (
	FieldAudience  = "适用人群"
	FieldStyle     = "写作风格"
	FieldMerchant  = "商户"
	FieldProduct   = "商品名称"
	FieldLandmarks = "景点名称"
	FieldLocations = "地点信息"
	FieldPrices    = "价格信息"
	FieldServices  = "服务内容"
	FieldKeywords  = "其他关键词"
)

const pending = "待补充"

// EmptyFields lists the fields of f that still need a value. The
// placeholder audience and style written by a failed extraction count as empty.
func EmptyFields(f domain.PostFields) []string {
	var empty []string
	if f.Audience == "" || f.Audience == "通用" {
		empty = append(empty, FieldAudience)
	}
	if f.Style == "" || f.Style == "默认" {
		empty = append(empty, FieldStyle)
	}
	if f.Merchant == "" {
		empty = append(empty, FieldMerchant)
	}
	if f.ProductName == "" {
		empty = append(empty, FieldProduct)
	}
	for name, list := range map[string][]string{
		FieldLandmarks: f.Landmarks,
		FieldLocations: f.Locations,
		FieldPrices:    f.Prices,
		FieldServices:  f.Services,
		FieldKeywords:  f.Keywords,
	} {
		if len(list) == 0 {
			empty = append(empty, name)
		}
	}
	sortFields(empty)
	return empty
}

var fieldOrder = []string{FieldAudience, FieldStyle, FieldMerchant, FieldProduct, FieldLandmarks, FieldLocations, FieldPrices, FieldServices, FieldKeywords}

func sortFields(fields []string) {
	rank := make(map[string]int, len(fieldOrder))
	for i, f := range fieldOrder {
		rank[f] = i
	}
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && rank[fields[j]] < rank[fields[j-1]]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

// FillDefaults sets the fixed fallback value on each named field.
func FillDefaults(f domain.PostFields, fields []string) domain.PostFields {
	for _, name := range fields {
		switch name {
		case FieldAudience:
			f.Audience = "通用"
		case FieldStyle:
			f.Style = "通俗易懂"
		case FieldMerchant:
			f.Merchant = "旅游服务商"
		case FieldProduct:
			f.ProductName = "旅游套餐"
		case FieldLandmarks:
			f.Landmarks = []string{pending}
		case FieldLocations:
			f.Locations = []string{pending}
		case FieldPrices:
			f.Prices = []string{}
		case FieldServices:
			f.Services = []string{"旅游服务"}
		case FieldKeywords:
			f.Keywords = []string{"旅游", "体验"}
		}
	}
	return f
}

// Autofill asks the model to complete the empty fields of rec. Fields the
// model leaves empty get fixed defaults.
func (c *Cleaner) Autofill(ctx context.Context, rec domain.CleanedRecord) domain.CleanedRecord {
	empty := EmptyFields(rec.PostFields)
	if len(empty) == 0 {
		return rec
	}

	current, _ := json.MarshalIndent(rec, "", "  ")
	prompt := render(fillPrompt, map[string]string{
		"text":    rec.OriginalText,
		"current": string(current),
		"fields":  strings.Join(empty, ", "),
	})
	answer, err := c.llm.Complete(ctx, prompt, temperature)
	if err != nil {
		c.logger.Warn("Autofill call failed, using defaults", "id", rec.ID, "err", err)
		rec.PostFields = FillDefaults(rec.PostFields, empty)
		return rec
	}
	filled, err := ParseFields(answer)
	if err != nil {
		c.logger.Warn("Autofill answer not JSON, using defaults", "id", rec.ID, "err", err)
		rec.PostFields = FillDefaults(rec.PostFields, empty)
		return rec
	}

	merged := merge(rec.PostFields, filled, empty)
	if still := EmptyFields(merged); len(still) > 0 {
		c.logger.Info("Autofill left fields empty", "id", rec.ID, "fields", still)
		merged = FillDefaults(merged, still)
		// A price list may legitimately be empty, but not after autofill.
		if len(merged.Prices) == 0 && contains(still, FieldPrices) {
			merged.Prices = []string{pending}
		}
	}
	rec.PostFields = merged
	return rec
}

// merge copies the named fields from filled onto base.
func merge(base, filled domain.PostFields, fields []string) domain.PostFields {
	for _, name := range fields {
		switch name {
		case FieldAudience:
			base.Audience = filled.Audience
		case FieldStyle:
			base.Style = filled.Style
		case FieldMerchant:
			base.Merchant = filled.Merchant
		case FieldProduct:
			base.ProductName = filled.ProductName
		case FieldLandmarks:
			base.Landmarks = filled.Landmarks
		case FieldLocations:
			base.Locations = filled.Locations
		case FieldPrices:
			base.Prices = filled.Prices
		case FieldServices:
			base.Services = filled.Services
		case FieldKeywords:
			base.Keywords = filled.Keywords
		}
	}
	return base
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// FillReport counts what an autofill pass over a file changed.
type FillReport struct {
	File    string `json:"file"`
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
}

// FillFile autofills every record of a <category>_cleaned.json in place.
// Product names the model leaves unset are derived from the text first.
func (c *Cleaner) FillFile(ctx context.Context, path string) (FillReport, error) {
	report := FillReport{File: filepath.Base(path)}
	var records []domain.CleanedRecord
	if err := storage.ReadJSON(path, &records); err != nil {
		return report, err
	}
	report.Total = len(records)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		before, _ := json.Marshal(rec)
		if rec.ProductName == "" {
			rec.ProductName = ProductName(rec.OriginalText)
		}
		rec = c.Autofill(ctx, rec)
		after, _ := json.Marshal(rec)
		if string(before) != string(after) {
			records[i] = rec
			report.Updated++
		}
	}
	if report.Updated == 0 {
		return report, nil
	}
	if err := storage.WriteJSON(path, records); err != nil {
		return report, fmt.Errorf("save %s: %w", report.File, err)
	}
	return report, nil
}

// productRules map text features to a product name; the first match wins.
var productRules = []struct {
	all  []string
	name string
}{
	{[]string{"多玛乐园"}, "多玛乐园水上度假套餐"},
	{[]string{"三亚", "度假"}, "三亚情侣度假套餐"},
	{[]string{"巴厘岛", "旅游"}, "巴厘岛6天5晚情侣旅游套餐"},
	{[]string{"求推荐", "情侣"}, "情侣旅游咨询服务"},
	{[]string{"寻找旅游搭子"}, "旅游搭子服务"},
	{[]string{"毕业旅行"}, "毕业旅行攻略"},
	{[]string{"避暑", "马尔代夫"}, "避暑度假套餐"},
	{[]string{"情侣旅游"}, "情侣旅游套餐"},
	{[]string{"情侣出游"}, "情侣旅游套餐"},
	{[]string{"旅游攻略"}, "旅游攻略服务"},
	{[]string{"度假酒店"}, "度假酒店套餐"},
	{[]string{"民宿"}, "民宿预订服务"},
	{[]string{"酒店"}, "酒店预订服务"},
	{[]string{"机票"}, "机票预订服务"},
	{[]string{"包车"}, "包车旅游服务"},
	{[]string{"门票"}, "景点门票"},
	{[]string{"自由行"}, "自由行套餐"},
	{[]string{"跟团"}, "跟团旅游套餐"},
	{[]string{"攻略"}, "旅游攻略"},
	{[]string{"推荐"}, "旅游推荐服务"},
}

// ProductName derives a product name from post text.
func ProductName(text string) string {
	for _, r := range productRules {
		ok := true
		for _, s := range r.all {
			if !strings.Contains(text, s) {
				ok = false
				break
			}
		}
		if ok {
			return r.name
		}
	}
	return "旅游服务"
}
