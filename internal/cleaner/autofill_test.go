package cleaner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

func complete() domain.PostFields {
	return domain.PostFields{
		Audience:    "情侣蜜月",
		Style:       "浪漫抒情",
		CharCount:   120,
		Merchant:    "海岛潜水中心",
		ProductName: "潜水体验课",
		Landmarks:   []string{"蜈支洲岛"},
		Locations:   []string{"三亚"},
		Prices:      []string{"¥399/人"},
		Services:    []string{"教练1v1"},
		Keywords:    []string{"潜水"},
	}
}

func TestEmptyFields(t *testing.T) {
	assert.Empty(t, EmptyFields(complete()))

	f := complete()
	f.Audience = "通用"
	f.Style = "默认"
	f.Merchant = ""
	f.Prices = nil
	assert.Equal(t, []string{FieldAudience, FieldStyle, FieldMerchant, FieldPrices}, EmptyFields(f))

	assert.Equal(t, fieldOrder, EmptyFields(domain.PostFields{}))
}

func TestFillDefaults(t *testing.T) {
	f := FillDefaults(domain.PostFields{}, fieldOrder)

	assert.Equal(t, "通用", f.Audience)
	assert.Equal(t, "通俗易懂", f.Style)
	assert.Equal(t, "旅游服务商", f.Merchant)
	assert.Equal(t, "旅游套餐", f.ProductName)
	assert.Equal(t, []string{"待补充"}, f.Landmarks)
	assert.Equal(t, []string{}, f.Prices)
	assert.Equal(t, []string{"旅游", "体验"}, f.Keywords)
}

func TestAutofill_MergesOnlyEmptyFields(t *testing.T) {
	llm := &scriptedLLM{fill: `{"适用人群": "户外运动", "写作风格": "专业写作", "商户": "不该覆盖", "价格信息": ["¥299起"]}`}
	rec := domain.CleanedRecord{ID: "3", OriginalText: "原文", PostFields: complete()}
	rec.Audience = ""
	rec.Style = "默认"
	rec.Prices = []string{}

	got := New(llm, 1, quiet()).Autofill(context.Background(), rec)

	assert.Equal(t, domain.PostID("3"), got.ID)
	assert.Equal(t, "原文", got.OriginalText)
	assert.Equal(t, "户外运动", got.Audience)
	assert.Equal(t, "专业写作", got.Style)
	assert.Equal(t, "海岛潜水中心", got.Merchant, "filled fields are left alone")
	assert.Equal(t, []string{"¥299起"}, got.Prices)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "适用人群, 写作风格, 价格信息")
}

func TestAutofill_ValidatesModelGaps(t *testing.T) {
	llm := &scriptedLLM{fill: `{"适用人群": "通用", "景点名称": []}`}
	rec := domain.CleanedRecord{ID: "4", OriginalText: "原文"}

	got := New(llm, 1, quiet()).Autofill(context.Background(), rec)

	assert.Equal(t, "通用", got.Audience)
	assert.Equal(t, "旅游服务商", got.Merchant)
	assert.Equal(t, []string{"待补充"}, got.Landmarks)
	assert.Equal(t, []string{"待补充"}, got.Prices)
}

func TestAutofill_DefaultsWhenModelFails(t *testing.T) {
	rec := domain.CleanedRecord{ID: "5", OriginalText: "原文", PostFields: complete()}
	rec.Merchant = ""

	got := New(&scriptedLLM{err: errors.New("timeout")}, 1, quiet()).Autofill(context.Background(), rec)
	assert.Equal(t, "旅游服务商", got.Merchant)

	got = New(&scriptedLLM{fill: "not json"}, 1, quiet()).Autofill(context.Background(), rec)
	assert.Equal(t, "旅游服务商", got.Merchant)
}

func TestAutofill_CompleteRecordSkipsModel(t *testing.T) {
	llm := &scriptedLLM{}
	rec := domain.CleanedRecord{ID: "6", PostFields: complete()}

	assert.Equal(t, rec, New(llm, 1, quiet()).Autofill(context.Background(), rec))
	assert.Empty(t, llm.prompts)
}

func TestFillFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diving_cleaned.json")
	partial := domain.CleanedRecord{ID: "1", OriginalText: "三亚度假酒店，潜水套餐", PostFields: complete()}
	partial.ProductName = ""
	partial.Keywords = nil
	require.NoError(t, storage.WriteJSON(path, []domain.CleanedRecord{
		{ID: "0", OriginalText: "完整", PostFields: complete()},
		partial,
	}))

	llm := &scriptedLLM{fill: `{"其他关键词": ["度假"]}`}
	report, err := New(llm, 1, quiet()).FillFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, FillReport{File: "diving_cleaned.json", Total: 2, Updated: 1}, report)

	var records []domain.CleanedRecord
	require.NoError(t, storage.ReadJSON(path, &records))
	assert.Equal(t, "三亚情侣度假套餐", records[1].ProductName, "product name comes from the text rules")
	assert.Equal(t, []string{"度假"}, records[1].Keywords)
}

func TestProductName(t *testing.T) {
	cases := map[string]string{
		"多玛乐园夏日特惠":    "多玛乐园水上度假套餐",
		"巴厘岛旅游攻略":     "巴厘岛6天5晚情侣旅游套餐",
		"成都民宿，离地铁近":   "民宿预订服务",
		"机票特价":        "机票预订服务",
		"周末去哪儿玩，求攻略":  "旅游攻略",
		"一段无关的文字":     "旅游服务",
		"三亚度假五天四晚自由行": "三亚情侣度假套餐",
	}
	for text, want := range cases {
		assert.Equal(t, want, ProductName(text), text)
	}
}
