package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/qepting91/promo-scraper/internal/domain"
	"golang.org/x/time/rate"
)

// PublicClient collects keyword search results from the unauthenticated JSON endpoint.
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	subreddit  string
	baseURL    string
}

type redditJSONResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewPublicClient(userAgent, subreddit string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		subreddit: subreddit,
		baseURL:   "https://www.reddit.com",
	}, nil
}

func (pc *PublicClient) searchURL(keyword, after string, limit int) string {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("sort", "relevance")
	if after != "" {
		q.Set("after", after)
	}
	if pc.subreddit != "" {
		q.Set("restrict_sr", "1")
		return fmt.Sprintf("%s/r/%s/search.json?%s", pc.baseURL, pc.subreddit, q.Encode())
	}
	return fmt.Sprintf("%s/search.json?%s", pc.baseURL, q.Encode())
}

func (pc *PublicClient) Collect(ctx context.Context, target domain.Target) (*domain.Run, error) {
	run := newPagedRun(target)
	after := ""
	for len(run.Posts) < target.Count {
		if err := pc.limiter.Wait(ctx); err != nil {
			return run.finish(domain.StateInterrupted), err
		}
		page, err := pc.fetch(ctx, pc.searchURL(target.Keyword, after, min(target.Count, 100)))
		if err != nil {
			return run.finish(domain.StateInterrupted), err
		}
		run.Rounds++
		for _, child := range page.Data.Children {
			d := child.Data
			run.add(redditURL(d.Permalink), joinTitle(d.Title, d.SelfText), time.Unix(int64(d.CreatedUTC), 0).UTC())
		}
		if page.Data.After == "" || len(page.Data.Children) == 0 {
			return run.finish(domain.StateExhausted), nil
		}
		after = page.Data.After
	}
	return run.finish(domain.StateDone), nil
}

func (pc *PublicClient) fetch(ctx context.Context, u string) (*redditJSONResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var rResp redditJSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, err
	}
	return &rResp, nil
}
