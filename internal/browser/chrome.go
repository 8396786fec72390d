// Package browser drives a local Chrome through the DevTools protocol and
// exposes it as a collector.Page.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/qepting91/promo-scraper/internal/collector"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

// Options configures the Chrome process.
type Options struct {
	Headless    bool
	ChromePath  string
	UserDataDir string // persistent profile so a login survives restarts
	UserAgent   string
	NavTimeout  time.Duration
	Logger      *slog.Logger
}

// DefaultUserDataDir keeps the profile in the user cache directory.
func DefaultUserDataDir() string {
	dir, _ := os.UserCacheDir()
	return filepath.Join(dir, "promo-scraper-chrome-profile")
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	dataDir := opts.UserDataDir
	if dataDir == "" {
		dataDir = DefaultUserDataDir()
	}
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.Flag("lang", "zh-CN"),
		chromedp.UserAgent(ua),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserDataDir(dataDir),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	return allocOpts
}

// Page is the results tab of a running Chrome.
type Page struct {
	ctx        context.Context
	navTimeout time.Duration
	logger     *slog.Logger
}

var _ collector.Page = (*Page)(nil)

// Launch starts Chrome and opens the results tab. release stops the browser
// and must be called on every exit path.
func Launch(ctx context.Context, opts Options) (*Page, func(), error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	release := func() {
		tabCancel()
		allocCancel()
		logger.Info("Browser closed")
	}

	if err := chromedp.Run(tabCtx, addStealth()); err != nil {
		release()
		return nil, func() {}, fmt.Errorf("start chrome: %w", err)
	}
	logger.Info("Browser started", "headless", opts.Headless)
	return &Page{ctx: tabCtx, navTimeout: opts.NavTimeout, logger: logger}, release, nil
}

func addStealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})
}

// run executes actions on the tab unless the caller's context is done.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	navCtx, cancel := context.WithTimeout(p.ctx, p.navTimeout)
	defer cancel()
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	if errors.Is(err, context.DeadlineExceeded) {
		// Slow subresources; the document is usually usable by now.
		p.logger.Debug("Navigation load event timed out", "url", url)
		return nil
	}
	return err
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	err := p.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *Page) Text(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text))
	return text, err
}

func (p *Page) Query(ctx context.Context, selector string) ([]collector.Element, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	var els []collector.Element
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(snapshotScript, quoted), &els)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return els, nil
}

func (p *Page) ScrollTo(ctx context.Context, fraction float64) error {
	return p.run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`window.scrollTo(0, document.body.scrollHeight * %f)`, fraction), nil))
}

func (p *Page) ScrollBy(ctx context.Context, dy int) error {
	return p.run(ctx, chromedp.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d)`, dy), nil))
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	var h int
	err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.scrollHeight : 0`, &h))
	return h, err
}

func (p *Page) ScrollIntoView(ctx context.Context, selector string, index int) error {
	quoted, _ := json.Marshal(selector)
	var found bool
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(intoViewScript, quoted, index), &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no element %s[%d]", selector, index)
	}
	return nil
}

// Hover moves the mouse pointer to the centre of the index-th match.
func (p *Page) Hover(ctx context.Context, selector string, index int) error {
	quoted, _ := json.Marshal(selector)
	var pt *struct{ X, Y float64 }
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(centerScript, quoted, index), &pt)); err != nil {
		return err
	}
	if pt == nil {
		return fmt.Errorf("no element %s[%d]", selector, index)
	}
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseMoved, pt.X, pt.Y).Do(ctx)
	}))
}

// OpenTab opens a sibling tab in the same browser session.
func (p *Page) OpenTab(ctx context.Context) (collector.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(p.ctx)
	if err := chromedp.Run(tabCtx, addStealth()); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &tab{Page: &Page{ctx: tabCtx, navTimeout: p.navTimeout, logger: p.logger}, cancel: cancel}, nil
}

// tab is a Page whose Close shuts the underlying target.
type tab struct {
	*Page
	cancel context.CancelFunc
}

func (t *tab) Close() error {
	t.cancel()
	return nil
}
