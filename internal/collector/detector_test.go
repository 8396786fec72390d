package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDoc answers queries from a fixed table.
type stubDoc struct {
	location string
	title    string
	text     string
	results  map[string][]Element
	failing  map[string]bool
}

func (d *stubDoc) Navigate(context.Context, string) error { return nil }
func (d *stubDoc) Location(context.Context) (string, error) { return d.location, nil }
func (d *stubDoc) Title(context.Context) (string, error) { return d.title, nil }
func (d *stubDoc) HTML(context.Context) (string, error) { return "<html></html>", nil }
func (d *stubDoc) Text(context.Context) (string, error) { return d.text, nil }
func (d *stubDoc) Query(_ context.Context, sel string) ([]Element, error) {
	if d.failing[sel] {
		return nil, errors.New("selector blew up")
	}
	return d.results[sel], nil
}

func card(sel string, i int, text, href string) Element {
	return Element{Selector: sel, Index: i, Text: text, Links: []string{href}, Markup: "<div>" + text + "</div>", Visible: true}
}

func TestDetect_SimulatedResults(t *testing.T) {
	posts := testPosts(8)
	page := NewSimulatedPage(posts, SimBatch(5))
	require.NoError(t, page.Navigate(context.Background(), "https://www.xiaohongshu.com/search_result?keyword=x"))

	cards := NewDetector(DefaultOptions(), nil).Detect(context.Background(), page)

	require.Len(t, cards, 5)
	for i, c := range cards {
		assert.Equal(t, "section.note-item", c.Selector)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, posts[i].URL(), c.URL)
		assert.Equal(t, posts[i].Preview, c.Text)
	}
}

func TestDetect_OffscreenCardsCount(t *testing.T) {
	page := NewSimulatedPage(testPosts(10))
	require.NoError(t, page.Navigate(context.Background(), "https://www.xiaohongshu.com/search_result?keyword=x"))

	cards := NewDetector(DefaultOptions(), nil).Detect(context.Background(), page)

	require.Len(t, cards, 10)
	visible := 0
	for _, c := range cards {
		if c.Visible {
			visible++
		}
	}
	assert.Equal(t, 3, visible, "a 900px viewport shows three 300px cards")
}

func TestDetect_PrefersLargestValidSet(t *testing.T) {
	opts := DefaultOptions()
	opts.CardSelectors = []string{"first", "second", "third"}
	doc := &stubDoc{results: map[string][]Element{
		"first": {
			card("first", 0, "三亚潜水一日游体验推荐", "/explore/a"),
			card("first", 1, "三亚潜水一日游体验推荐二", "/explore/b"),
		},
		"second": {
			card("second", 0, "三亚潜水一日游体验推荐", "/explore/a"),
			card("second", 1, "三亚潜水一日游体验推荐二", "/explore/b"),
			card("second", 2, "三亚潜水一日游体验推荐三", "/explore/c"),
		},
		"third": {
			card("third", 0, "三亚潜水一日游体验推荐", "/explore/a"),
			card("third", 1, "三亚潜水一日游体验推荐二", "/explore/b"),
			card("third", 2, "三亚潜水一日游体验推荐三", "/explore/c"),
		},
	}}

	cards := NewDetector(opts, nil).Detect(context.Background(), doc)

	require.Len(t, cards, 3)
	assert.Equal(t, "second", cards[0].Selector, "ties keep the earlier strategy")
}

func TestDetect_DropsInvalidAndNestedMatches(t *testing.T) {
	opts := DefaultOptions()
	opts.CardSelectors = []string{"cards"}
	nested := card("cards", 2, "外层容器包含同一个帖子链接", "/explore/a")
	nested.Markup = "<section>outer</section>"
	doc := &stubDoc{results: map[string][]Element{
		"cards": {
			card("cards", 0, "三亚潜水一日游体验推荐", "/explore/a"),
			card("cards", 1, "太短了", "/explore/b"),
			nested,
			card("cards", 3, "没有帖子链接的长文字元素", "/user/profile/1"),
			{Selector: "cards", Index: 4, Text: "自身就是帖子链接的卡片元素", Href: "/discovery/item/9"},
		},
	}}

	cards := NewDetector(opts, nil).Detect(context.Background(), doc)

	require.Len(t, cards, 2)
	assert.Equal(t, "/explore/a", cards[0].URL)
	assert.Equal(t, "/discovery/item/9", cards[1].URL)
}

func TestDetect_QueryErrorsAndEmptyPage(t *testing.T) {
	opts := DefaultOptions()
	opts.CardSelectors = []string{"broken", "empty"}
	doc := &stubDoc{failing: map[string]bool{"broken": true}}

	d := NewDetector(opts, nil)
	assert.Empty(t, d.Detect(context.Background(), doc))
	assert.Equal(t, 0, d.Count(context.Background(), doc))
}
