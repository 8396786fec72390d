package collector

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// SimPost is one post served by a SimulatedPage.
type SimPost struct {
	ID      string
	Preview string // card text on the results page
	Body    string // detail page text
	// Redirect, when set, is where the detail tab ends up instead of the card link.
	Redirect string
	// Plain renders the body without a content container, forcing the page text fallback.
	Plain bool
	// Broken makes navigation to this post fail.
	Broken bool
	// Stuck keeps the tab from ever reaching the detail page.
	Stuck bool
}

// URL is the card link of the post.
func (p SimPost) URL() string { return homeURL + "/explore/" + p.ID }

const (
	simCardHeight = 300
	simViewport   = 900
)

// SimulatedPage is an in-memory stand-in for the platform's search results.
// It reveals cards in batches whenever the viewport reaches the end of the
// list, the way the real page lazy loads, and serves detail pages in tabs.
type SimulatedPage struct {
	mu        sync.Mutex
	posts     []SimPost
	batch     int
	revealed  int
	location  string
	position  int
	signedIn  bool
	openTabs  int
	maxTabs   int
	navs      map[string]int
	hovers    int
	intoViews int
}

type SimOption func(*SimulatedPage)

// SimBatch sets how many cards each load reveals; the first load included.
func SimBatch(n int) SimOption { return func(p *SimulatedPage) { p.batch = n } }

// SimSignedOut starts the page without a session.
func SimSignedOut() SimOption { return func(p *SimulatedPage) { p.signedIn = false } }

func NewSimulatedPage(posts []SimPost, opts ...SimOption) *SimulatedPage {
	p := &SimulatedPage{
		posts:    posts,
		batch:    len(posts),
		signedIn: true,
		location: "about:blank",
		navs:     make(map[string]int),
	}
	for _, o := range opts {
		o(p)
	}
	if p.batch <= 0 {
		p.batch = 1
	}
	return p
}

// SignIn completes the login, as an operator would in a real window.
func (p *SimulatedPage) SignIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedIn = true
	if isLoginURL(p.location) {
		p.location = homeURL
	}
}

// Contexts is the number of browsing contexts open: the page plus its tabs.
func (p *SimulatedPage) Contexts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return 1 + p.openTabs
}

// MaxContexts is the highest Contexts value seen.
func (p *SimulatedPage) MaxContexts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return 1 + p.maxTabs
}

// Navigations counts detail page visits for a post.
func (p *SimulatedPage) Navigations(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navs[id]
}

// Revealed is the number of cards loaded so far.
func (p *SimulatedPage) Revealed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revealed
}

func (p *SimulatedPage) Hovers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hovers
}

func (p *SimulatedPage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = 0
	switch {
	case strings.Contains(url, "/search_result"):
		if !p.signedIn {
			p.location = homeURL + "/login?redirectPath=" + url
			return nil
		}
		p.location = url
		p.revealed = min(p.batch, len(p.posts))
	default:
		p.location = url
	}
	return nil
}

func (p *SimulatedPage) Location(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location, nil
}

func (p *SimulatedPage) Title(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if isLoginURL(p.location) {
		return "登录 - 小红书", nil
	}
	return "小红书 - 你的生活指南", nil
}

func (p *SimulatedPage) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render(), nil
}

func (p *SimulatedPage) Text(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.render()))
	if err != nil {
		return "", err
	}
	return renderedText(doc), nil
}

func (p *SimulatedPage) Query(_ context.Context, selector string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query(p.render(), selector)
}

func (p *SimulatedPage) ScrollTo(_ context.Context, fraction float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	limit := p.maxScroll()
	p.setPosition(int(math.Round(fraction * float64(limit))))
	return nil
}

func (p *SimulatedPage) ScrollBy(_ context.Context, dy int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPosition(p.position + dy)
	return nil
}

func (p *SimulatedPage) ScrollHeight(context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height(), nil
}

func (p *SimulatedPage) ScrollIntoView(_ context.Context, _ string, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intoViews++
	if index < 0 || index >= p.revealed {
		return fmt.Errorf("no card at %d", index)
	}
	p.position = max(0, min(index*simCardHeight, p.maxScroll()))
	return nil
}

func (p *SimulatedPage) Hover(_ context.Context, _ string, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hovers++
	return nil
}

func (p *SimulatedPage) OpenTab(context.Context) (Tab, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openTabs++
	p.maxTabs = max(p.maxTabs, p.openTabs)
	return &simTab{page: p, location: "about:blank"}, nil
}

func (p *SimulatedPage) height() int {
	return max(p.revealed*simCardHeight, simViewport)
}

func (p *SimulatedPage) maxScroll() int {
	return max(p.height()-simViewport, 0)
}

// setPosition moves the viewport; coming within one card of the end loads
// the next batch.
func (p *SimulatedPage) setPosition(y int) {
	p.position = max(0, min(y, p.maxScroll()))
	if p.position >= p.maxScroll()-simCardHeight && strings.Contains(p.location, "/search_result") {
		p.revealed = min(p.revealed+p.batch, len(p.posts))
	}
}

func (p *SimulatedPage) render() string {
	var b strings.Builder
	b.WriteString("<html><head><title>小红书</title></head><body>")
	b.WriteString(`<div class="header"><a href="/">首页</a><a href="/explore">发现</a>`)
	if p.signedIn {
		b.WriteString(`<input class="search-input" placeholder="搜索小红书"><div class="user-avatar"><img src="/a.png"></div>`)
	} else {
		b.WriteString(`<button class="login-btn">登录</button>`)
	}
	b.WriteString(`</div>`)
	if strings.Contains(p.location, "/search_result") {
		b.WriteString(`<div class="feeds-container">`)
		for i, post := range p.posts[:p.revealed] {
			fmt.Fprintf(&b,
				`<section class="note-item" data-index="%d"><a class="cover" href="%s"><img src="/c%d.jpg"></a>`+
					`<div class="footer"><a class="title" href="%s"><span>%s</span></a></div></section>`,
				i, html.EscapeString(post.URL()), i, html.EscapeString(post.URL()), html.EscapeString(post.Preview))
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`<div class="footer-info"><p>沪ICP备13030189号</p><p>© 2014-2024 行吟信息科技</p></div>`)
	b.WriteString("</body></html>")
	return b.String()
}

// query snapshots the elements matching selector in markup.
func (p *SimulatedPage) query(markup, selector string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	var out []Element
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		outer, _ := goquery.OuterHtml(s)
		el := Element{
			Selector: selector,
			Index:    i,
			Text:     strings.TrimSpace(s.Text()),
			Href:     s.AttrOr("href", ""),
			Markup:   outer,
			Visible:  p.visible(s),
		}
		s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			el.Links = append(el.Links, a.AttrOr("href", ""))
		})
		out = append(out, el)
	})
	return out, nil
}

func (p *SimulatedPage) visible(s *goquery.Selection) bool {
	card := s.Closest("[data-index]")
	if card.Length() == 0 {
		return true
	}
	var idx int
	fmt.Sscanf(card.AttrOr("data-index", "0"), "%d", &idx)
	top := idx * simCardHeight
	return top+simCardHeight > p.position && top < p.position+simViewport
}

// renderedText approximates innerText: one line per leaf text block.
func renderedText(doc *goquery.Document) string {
	var lines []string
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		for _, line := range strings.Split(s.Text(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	})
	return strings.Join(lines, "\n")
}

var errSimNavigation = errors.New("net::ERR_CONNECTION_RESET")

type simTab struct {
	page     *SimulatedPage
	location string
	post     *SimPost
	closed   bool
}

func (t *simTab) Navigate(_ context.Context, url string) error {
	p := t.page
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.posts {
		post := &p.posts[i]
		if post.URL() != url {
			continue
		}
		p.navs[post.ID]++
		if post.Broken {
			return errSimNavigation
		}
		t.post = post
		switch {
		case post.Stuck:
		case post.Redirect != "":
			t.location = post.Redirect
		default:
			t.location = url
		}
		return nil
	}
	t.location = url
	return nil
}

func (t *simTab) Location(context.Context) (string, error) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	return t.location, nil
}

func (t *simTab) Title(context.Context) (string, error) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	if t.post == nil {
		return "", nil
	}
	return t.post.Preview + " - 小红书", nil
}

func (t *simTab) HTML(context.Context) (string, error) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	return t.render(), nil
}

func (t *simTab) Text(context.Context) (string, error) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(t.render()))
	if err != nil {
		return "", err
	}
	return renderedText(doc), nil
}

func (t *simTab) Query(_ context.Context, selector string) ([]Element, error) {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	return t.page.query(t.render(), selector)
}

func (t *simTab) Close() error {
	t.page.mu.Lock()
	defer t.page.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.page.openTabs--
	return nil
}

func (t *simTab) render() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>小红书</title></head><body><div class="header"><span>首页</span><span>发现</span><span>通知</span></div>`)
	if t.post != nil && !t.post.Stuck {
		var body strings.Builder
		for _, line := range strings.Split(t.post.Body, "\n") {
			fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(line))
		}
		if t.post.Plain {
			fmt.Fprintf(&b, `<div id="detail">%s</div>`, body.String())
		} else {
			fmt.Fprintf(&b, `<div id="noteContainer"><div class="note-content"><div class="desc">%s</div></div></div>`, body.String())
		}
	}
	b.WriteString(`<div class="footer-info"><p>沪ICP备13030189号</p><p>点击下载小红书App</p></div></body></html>`)
	return b.String()
}
