package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewFingerprint_UsesLeadingRunes(t *testing.T) {
	prefix := strings.Repeat("潜", 200)

	assert.Equal(t, PreviewFingerprint(prefix+"一", 200), PreviewFingerprint(prefix+"二", 200))
	assert.NotEqual(t, PreviewFingerprint(prefix+"一", 0), PreviewFingerprint(prefix+"二", 0))
	assert.Equal(t, PreviewFingerprint("  三亚潜水  ", 200), PreviewFingerprint("三亚潜水", 200))
}

func TestContentFingerprint_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, ContentFingerprint("正文\n"), ContentFingerprint("  正文"))
	assert.NotEqual(t, ContentFingerprint("正文一"), ContentFingerprint("正文二"))
}

func TestLedger_PreviewsVisibleAfterCommit(t *testing.T) {
	l := NewLedger()
	fp := PreviewFingerprint("海岛潜水体验第一期", 200)

	l.Record(fp, ContentFingerprint("body"), "https://www.xiaohongshu.com/explore/a")
	assert.True(t, l.IsNovel(fp), "previews stay novel until the round ends")

	l.Commit()
	assert.False(t, l.IsNovel(fp))
}

func TestLedger_MarkAttempted(t *testing.T) {
	l := NewLedger()
	fp := PreviewFingerprint("打不开的帖子预览文字", 200)

	l.MarkAttempted(fp)
	l.Commit()

	assert.False(t, l.IsNovel(fp))
	assert.Equal(t, 0, l.Size(), "attempted cards are not posts")
}

func TestLedger_URLs(t *testing.T) {
	l := NewLedger()
	l.Record("p", "c", "https://x/explore/final", "", "https://x/explore/card")

	assert.False(t, l.IsNovelURL("https://x/explore/final"))
	assert.False(t, l.IsNovelURL("https://x/explore/card"))
	assert.True(t, l.IsNovelURL("https://x/explore/other"))
	assert.True(t, l.IsNovelURL(""), "a missing URL never counts as seen")
	assert.False(t, l.IsNovelContent("c"))
	assert.Equal(t, 1, l.Size())
}
