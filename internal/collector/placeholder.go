package collector

import (
	"fmt"
	"time"

	"github.com/qepting91/promo-scraper/internal/domain"
)

// Placeholders returns the fixed sample posts written for a keyword when a
// run collected nothing and placeholders are enabled. Every post is flagged
// so downstream stages can tell them apart from scraped text.
func Placeholders(keyword string, now time.Time) []domain.CollectedPost {
	texts := []string{
		fmt.Sprintf("【%[1]s必玩】%[1]s初体验+专业跟拍！\n\n- 痛点：想尝试%[1]s但怕不安全？\n- 方案：专业教练1v1指导，送10张精修照片\n- 价格：¥399/人，含接送+装备！\n\n✨私戳我解锁隐藏福利！", keyword),
		fmt.Sprintf("【%[1]s推荐】高性价比%[1]s体验\n\n- 痛点：%[1]s价格太贵？\n- 方案：高性价比%[1]s体验，专业指导\n- 价格：¥288起，周末不加价！\n\n🔥抢购倒计时，仅限本周！", keyword),
		fmt.Sprintf("超值%[1]s套餐来啦！\n\n🌟 专业%[1]s体验\n🌟 全程摄影跟拍\n🌟 包含所有装备\n🌟 安全保障到位\n\n现在预订立减100元！\n联系我获取专属优惠码～", keyword),
	}
	posts := make([]domain.CollectedPost, len(texts))
	for i, text := range texts {
		posts[i] = domain.CollectedPost{
			Index:       i + 1,
			URL:         fmt.Sprintf("placeholder_%d", i+1),
			Text:        text,
			CollectedAt: now,
			Placeholder: true,
		}
	}
	return posts
}
