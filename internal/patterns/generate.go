package patterns

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

var subtitles = []string{
	"%s体验+专业服务!",
	"高品质%s，值得体验!",
	"独家%s，限时特惠!",
	"超值%s，口碑推荐!",
	"%s专享，不容错过!",
}

// Generator fills the promotional template from aggregated patterns.
type Generator struct {
	patterns *domain.Patterns
	sections []string
	rnd      *rand.Rand
}

// NewGenerator returns a generator over p. A nil rnd uses a time-seeded source.
func NewGenerator(p *domain.Patterns, rnd *rand.Rand) *Generator {
	if p == nil {
		p = domain.NewPatterns()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	sections := make([]string, 0, len(p.Sections))
	for title := range p.Sections {
		sections = append(sections, title)
	}
	sort.Strings(sections)
	return &Generator{patterns: p, sections: sections, rnd: rnd}
}

// Generate returns n variants for keyword.
func (g *Generator) Generate(keyword string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.variant(keyword))
	}
	return out
}

func (g *Generator) variant(keyword string) string {
	var section string
	if len(g.sections) > 0 && g.rnd.Float64() > 0.3 {
		section = g.sections[g.rnd.IntN(len(g.sections))]
	} else if g.rnd.Float64() > 0.5 {
		section = keyword + "必选"
	} else {
		section = keyword + "推荐"
	}
	title := fmt.Sprintf("【%s】 %s", section, fmt.Sprintf(subtitles[g.rnd.IntN(len(subtitles))], keyword))

	pain := g.point("痛点", fmt.Sprintf("想体验%s但担心质量不佳?", keyword))
	plan := g.point("方案", fmt.Sprintf("专业%s体验，高品质保证!", keyword))
	price, ok := g.pick(g.patterns.Points["价格"])
	if !ok {
		price = fmt.Sprintf("¥%d/人，超值体验!", 199+g.rnd.IntN(801))
	}
	offer, ok := g.pick(g.patterns.SpecialOffers)
	if !ok {
		offer = fmt.Sprintf("私戳享受%s折扣福利!", keyword)
	}

	return strings.Join([]string{
		title,
		"",
		"- 痛点：" + pain,
		"",
		"- 方案：" + plan,
		"",
		"- 价格：" + price,
		"",
		"✨" + offer,
	}, "\n")
}

func (g *Generator) point(category, fallback string) string {
	if s, ok := g.pick(g.patterns.Points[category]); ok {
		return s
	}
	return fallback
}

func (g *Generator) pick(entries []domain.PatternEntry) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	return entries[g.rnd.IntN(len(entries))].Content, true
}

// WriteVariants saves variants to dir/<keyword>_promo_text.txt.
func WriteVariants(dir, keyword string, variants []string) (string, error) {
	if err := storage.EnsureDir(dir); err != nil {
		return "", err
	}
	var b strings.Builder
	for i, v := range variants {
		fmt.Fprintf(&b, "===== 变体 %d =====\n\n", i+1)
		b.WriteString(v)
		b.WriteString("\n\n")
	}
	path := filepath.Join(dir, storage.SafeName(keyword)+"_promo_text.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write variants: %w", err)
	}
	return path, nil
}
