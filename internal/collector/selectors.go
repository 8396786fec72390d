package collector

// Platform DOM selectors.
// The results page changes its markup often; keep them all here and
// override through the tuning file when detection starts failing.

const (
	homeURL   = "https://www.xiaohongshu.com"
	searchURL = "https://www.xiaohongshu.com/search_result?keyword=%s"

	// Post detail links, current and legacy routes.
	postURLPattern = `/(explore|discovery)/`
)

// Candidate card strategies, semantic containers first, link patterns last.
var defaultCardSelectors = []string{
	"section.note-item",
	"div.note-item",
	"div.query-note-item",
	"div[class*='note-item']",
	"div[class*='card']",
	"div[class*='item']",
	"section[class*='note']",
	"article[class*='note']",
	"div[class*='feed']",
	"div[class*='content']",
	"div[class*='post']",
	"a[href*='/explore/']",
	"a[href*='/discovery/']",
}

var defaultContentSelectors = []string{
	".note-content",
	".content",
	".note-detail",
	".desc",
	".note-text",
	".post-content",
	"[class*='note-content']",
	"[class*='content']",
}

// Elements that only render for a signed-in session.
var loggedInSelectors = []string{
	".user-avatar",
	".avatar",
	".login-avatar",
	".user-head",
	".user-icon",
	".user-name",
	".username",
	".nickname",
	"[data-testid='header-avatar']",
	".header-avatar",
	".nav-user",
	".search-input",
	".search-bar input",
	"input[placeholder*='搜索']",
	"input[placeholder*='search']",
}

// Result containers; their presence means the search view rendered.
var contentIndicators = []string{
	".note-item",
	".feed-item",
	".content-item",
	"section[class*='note']",
	"div[class*='explore']",
}

var loginButtons = "button, a"

var loginLabels = []string{"登录", "登陆"}

var loginRequiredPhrases = []string{"请登录", "需要登录", "login required", "sign in"}

// Navigation and footer strings dropped by the whole-page text fallback.
var chromeLines = map[string]bool{
	"登录": true, "注册": true, "首页": true, "发现": true, "购物": true,
	"消息": true, "我": true, "创作中心": true, "业务合作": true, "发布": true,
	"通知": true, "更多": true,
}

var chromeFragments = []string{"点击", "下载", "©"}

var chromePrefixes = []string{"http", "沪ICP备"}
