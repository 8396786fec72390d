package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/domain"
)

func newTestExtractor() *Extractor {
	opts := DefaultOptions()
	return NewExtractor(opts, Settler{Clock: newFakeClock(), Interval: opts.SettleInterval, Samples: opts.SettleSamples}, nil)
}

func cardFor(p SimPost, index int) domain.Card {
	return domain.Card{Text: p.Preview, URL: p.URL(), Selector: "section.note-item", Index: index}
}

func TestExtract_ContentRegion(t *testing.T) {
	posts := testPosts(1)
	page := NewSimulatedPage(posts)

	ex, ok := newTestExtractor().Extract(context.Background(), page, cardFor(posts[0], 0))

	require.True(t, ok)
	assert.Equal(t, "selector", ex.Source)
	assert.Equal(t, posts[0].Body, ex.Text)
	assert.Equal(t, posts[0].URL(), ex.URL)
	assert.Contains(t, ex.Title, posts[0].Preview)
	assert.Equal(t, 1, page.Contexts(), "the tab is closed again")
	assert.Equal(t, 2, page.MaxContexts(), "at most one extra tab")
}

func TestExtract_PageTextFallback(t *testing.T) {
	posts := testPosts(1)
	posts[0].Plain = true
	page := NewSimulatedPage(posts)

	ex, ok := newTestExtractor().Extract(context.Background(), page, cardFor(posts[0], 0))

	require.True(t, ok)
	assert.Equal(t, "page", ex.Source)
	assert.Contains(t, ex.Text, "专业教练全程陪同，赠送精修照片")
	assert.NotContains(t, ex.Text, "沪ICP备")
	assert.NotContains(t, ex.Text, "点击下载")
	assert.NotContains(t, ex.Text, "首页")
}

func TestExtract_FailuresRestoreContext(t *testing.T) {
	cases := map[string]func(*SimPost){
		"navigation error": func(p *SimPost) { p.Broken = true },
		"never loads":      func(p *SimPost) { p.Stuck = true },
		"redirected away":  func(p *SimPost) { p.Redirect = "https://www.xiaohongshu.com/404" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			posts := testPosts(1)
			mutate(&posts[0])
			page := NewSimulatedPage(posts)

			_, ok := newTestExtractor().Extract(context.Background(), page, cardFor(posts[0], 0))

			assert.False(t, ok)
			assert.Equal(t, 1, page.Contexts())
			assert.Equal(t, 1, page.Navigations(posts[0].ID))
		})
	}
}

func TestExtract_CardWithoutLink(t *testing.T) {
	page := NewSimulatedPage(nil)

	_, ok := newTestExtractor().Extract(context.Background(), page, domain.Card{Text: "没有链接的卡片预览"})

	assert.False(t, ok)
	assert.Equal(t, 1, page.MaxContexts(), "no tab is opened")
}

func TestExtract_RedirectToAnotherPost(t *testing.T) {
	posts := testPosts(2)
	posts[1].Redirect = posts[0].URL()
	page := NewSimulatedPage(posts)

	ex, ok := newTestExtractor().Extract(context.Background(), page, cardFor(posts[1], 1))

	require.True(t, ok)
	assert.Equal(t, posts[0].URL(), ex.URL, "the final location is reported, not the card link")
}

func TestFilterChrome(t *testing.T) {
	body := "首页\n发现\n【三亚潜水】周末特惠开团啦\nhttps://example.com/x\n点击下载App查看更多\n© 2014-2024 行吟信息科技\n沪ICP备13030189号\n短\n价格：¥199/人，含装备"

	assert.Equal(t, "【三亚潜水】周末特惠开团啦\n价格：¥199/人，含装备", FilterChrome(body))
}
