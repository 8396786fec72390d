package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/qepting91/promo-scraper/internal/domain"
	"golang.org/x/time/rate"
)

// RedditCredentials configures the Reddit collectors.
type RedditCredentials struct {
	ID        string
	Secret    string
	Username  string
	Password  string
	UserAgent string
	Subreddit string // empty searches all of Reddit
}

// APIClient collects keyword search results through the authenticated API.
type APIClient struct {
	client    *reddit.Client
	limiter   *rate.Limiter
	subreddit string
}

func NewAPIClient(creds RedditCredentials) (*APIClient, error) {
	client, err := reddit.NewClient(reddit.Credentials{
		ID:       creds.ID,
		Secret:   creds.Secret,
		Username: creds.Username,
		Password: creds.Password,
	}, reddit.WithUserAgent(creds.UserAgent))
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APIClient{client: client, limiter: limiter, subreddit: creds.Subreddit}, nil
}

func (ac *APIClient) Collect(ctx context.Context, target domain.Target) (*domain.Run, error) {
	run := newPagedRun(target)
	after := ""
	for len(run.Posts) < target.Count {
		if err := ac.limiter.Wait(ctx); err != nil {
			return run.finish(domain.StateInterrupted), err
		}

		opts := &reddit.ListPostSearchOptions{
			ListPostOptions: reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{Limit: min(target.Count, 100), After: after},
			},
			Sort: "relevance",
		}
		posts, resp, err := ac.client.Subreddit.SearchPosts(ctx, target.Keyword, ac.subreddit, opts)
		if err != nil {
			return run.finish(domain.StateInterrupted), fmt.Errorf("authenticated api error: %w", err)
		}
		run.Rounds++
		for _, p := range posts {
			var created time.Time
			if p.Created != nil {
				created = p.Created.Time
			}
			run.add(redditURL(p.Permalink), joinTitle(p.Title, p.Body), created)
		}
		if resp == nil || resp.After == "" || len(posts) == 0 {
			return run.finish(domain.StateExhausted), nil
		}
		after = resp.After
	}
	return run.finish(domain.StateDone), nil
}

// pagedRun accumulates search pages into a run, skipping repeated URLs.
type pagedRun struct {
	*domain.Run
	ledger *Ledger
}

func newPagedRun(target domain.Target) *pagedRun {
	return &pagedRun{
		Run: &domain.Run{
			ID:        uuid.NewString(),
			Keyword:   target.Keyword,
			Target:    target.Count,
			StartedAt: time.Now(),
		},
		ledger: NewLedger(),
	}
}

func (r *pagedRun) add(url, text string, created time.Time) {
	text = strings.TrimSpace(text)
	if len(r.Posts) >= r.Target || text == "" || !r.ledger.IsNovelURL(url) {
		return
	}
	r.ledger.Record(PreviewFingerprint(text, 0), ContentFingerprint(text), url)
	if created.IsZero() {
		created = time.Now()
	}
	r.Posts = append(r.Posts, domain.CollectedPost{
		Index:       len(r.Posts) + 1,
		URL:         url,
		Text:        text,
		CollectedAt: created,
	})
}

func (r *pagedRun) finish(state domain.RunState) *domain.Run {
	if state == domain.StateExhausted && len(r.Posts) >= r.Target {
		state = domain.StateDone
	}
	r.State = state
	r.FinishedAt = time.Now()
	return r.Run
}

func redditURL(permalink string) string {
	if strings.HasPrefix(permalink, "http") {
		return permalink
	}
	return "https://www.reddit.com" + permalink
}

func joinTitle(title, body string) string {
	if body == "" {
		return title
	}
	return title + "\n\n" + body
}
