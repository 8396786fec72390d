package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qepting91/promo-scraper/internal/domain"
)

// Mode names a collector implementation.
type Mode string

const (
	ModeBrowser Mode = "browser"
	ModeAPI     Mode = "api"
	ModePublic  Mode = "public"
	ModeMock    Mode = "mock"
)

var ErrUnknownMode = errors.New("unknown collector mode")

// BrowserLauncher starts a browser and returns its results page plus a release func.
type BrowserLauncher func(ctx context.Context) (Page, func(), error)

// Config selects and configures a collector.
type Config struct {
	Mode         Mode
	Options      Options
	Reddit       RedditCredentials
	Launch       BrowserLauncher // browser mode only
	Confirmer    Confirmer
	Dumper       PostDumper
	Placeholders bool
	Logger       *slog.Logger
}

// NewCollector selects the correct implementation based on the mode.
// The returned release func must be called once the collector is done.
func NewCollector(ctx context.Context, cfg Config) (domain.Collector, func(), error) {
	noop := func() {}
	switch cfg.Mode {
	case ModeBrowser, "":
		if cfg.Launch == nil {
			return nil, noop, fmt.Errorf("browser mode needs a launcher")
		}
		page, release, err := cfg.Launch(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("launch browser: %w", err)
		}
		return NewBrowserCollector(page, cfg.Options,
			WithConfirmer(cfg.Confirmer),
			WithDumper(cfg.Dumper),
			WithPlaceholders(cfg.Placeholders),
			WithLogger(cfg.Logger),
		), release, nil
	case ModeAPI:
		c, err := NewAPIClient(cfg.Reddit)
		return c, noop, err
	case ModePublic:
		if cfg.Reddit.UserAgent == "" {
			return nil, noop, fmt.Errorf("REDDIT_USER_AGENT is required for public mode")
		}
		c, err := NewPublicClient(cfg.Reddit.UserAgent, cfg.Reddit.Subreddit)
		return c, noop, err
	case ModeMock:
		return NewMockCollector(cfg.Options, cfg.Logger,
			WithDumper(cfg.Dumper),
			WithPlaceholders(cfg.Placeholders),
		), noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s (use 'browser', 'api', 'public', or 'mock')", ErrUnknownMode, cfg.Mode)
	}
}

// MockCollector runs the browser engine against a simulated results page,
// with waits shortened so a run takes seconds.
type MockCollector struct {
	opts   Options
	logger *slog.Logger
	extra  []Option
}

func NewMockCollector(opts Options, logger *slog.Logger, extra ...Option) *MockCollector {
	opts.WaitLogin = false
	opts.SearchSettle = 200 * time.Millisecond
	opts.DetailTimeout = time.Second
	opts.SettleInterval = 20 * time.Millisecond
	opts.PauseMin, opts.PauseMax = 50*time.Millisecond, 150*time.Millisecond
	return &MockCollector{opts: opts, logger: logger, extra: extra}
}

func (mc *MockCollector) Collect(ctx context.Context, target domain.Target) (*domain.Run, error) {
	page := NewSimulatedPage(DemoPosts(target.Keyword, target.Count+target.Count/2+3), SimBatch(6))
	ladder := DefaultLadder(mc.logger)
	ladder.Strategies = ladder.Strategies[:3]
	options := append([]Option{WithLogger(mc.logger), WithLadder(ladder)}, mc.extra...)
	return NewBrowserCollector(page, mc.opts, options...).Collect(ctx, target)
}

var demoMerchants = []string{"山野户外俱乐部", "云端旅拍工作室", "海岛潜水中心", "古城文化体验馆", "星空露营基地"}

var demoOffers = []string{"¥199/人，含装备+保险", "¥288起，周末不加价", "双人同行第二位半价", "早鸟预订立减50元", "学生凭证件8折"}

// DemoPosts generates n deterministic promotional posts about keyword.
func DemoPosts(keyword string, n int) []SimPost {
	posts := make([]SimPost, n)
	for i := range posts {
		merchant := demoMerchants[i%len(demoMerchants)]
		offer := demoOffers[(i/len(demoMerchants))%len(demoOffers)]
		posts[i] = SimPost{
			ID:      fmt.Sprintf("demo%04d", i+1),
			Preview: fmt.Sprintf("【%s】%s第%d期，%s", keyword, merchant, i+1, offer),
			Body: fmt.Sprintf("【%s体验】%s第%d期开团啦！\n- 痛点：第一次尝试%s不知道怎么选？\n- 方案：专业教练全程陪同，赠送精修照片\n- 价格：%s\n✨私信咨询解锁隐藏福利",
				keyword, merchant, i+1, keyword, offer),
		}
	}
	return posts
}
