package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/domain"
)

func TestFindInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"diving/潜水_texts.json",
		"diving/b_texts.json",
		"diving/潜水_texts.txt",
		"debug_post_3.txt",
		"notes.txt",
		"top.json",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	}

	in, err := FindInputs(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"diving", GeneralCategory}, in.Categories())
	assert.Equal(t, 4, in.Files())
	assert.Equal(t, []string{
		filepath.Join(dir, "diving", "b_texts.json"),
		filepath.Join(dir, "diving", "潜水_texts.json"),
	}, in["diving"])
}

func TestFindInputs_MissingDir(t *testing.T) {
	_, err := FindInputs(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadRawPosts(t *testing.T) {
	dir := t.TempDir()

	list := filepath.Join(dir, "潜水_texts.json")
	require.NoError(t, os.WriteFile(list, []byte(`[{"id": 1, "text": "蜈支洲岛"}, {"id": "x", "text": "分界洲"}]`), 0o644))
	posts, err := LoadRawPosts(list)
	require.NoError(t, err)
	assert.Equal(t, []domain.RawPost{{ID: "1", Text: "蜈支洲岛"}, {ID: "x", Text: "分界洲"}}, posts)

	dump := filepath.Join(dir, "debug_post_2.txt")
	require.NoError(t, os.WriteFile(dump, []byte("URL: https://x\nTitle: t\n"+strings.Repeat("=", 50)+"\n\n古城夜游\n  门票¥80 \n"), 0o644))
	posts, err = LoadRawPosts(dump)
	require.NoError(t, err)
	assert.Equal(t, []domain.RawPost{{ID: "debug_post_2.txt", Text: "古城夜游\n门票¥80"}}, posts)

	blank := filepath.Join(dir, "debug_post_4.txt")
	require.NoError(t, os.WriteFile(blank, []byte("URL: https://x\nTitle: t\n"), 0o644))
	posts, err = LoadRawPosts(blank)
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = LoadRawPosts(filepath.Join(dir, "a.csv"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestDumpBody_KeepsShortRules(t *testing.T) {
	assert.Equal(t, "标题\n=====\n正文", DumpBody("标题\n=====\n"+strings.Repeat("=", 50)+"\n正文"))
}

func TestRelatedKeywords(t *testing.T) {
	kws := RelatedKeywords("潜水")
	assert.Len(t, kws, 10)
	assert.Equal(t, "潜水", kws[0])

	kws[0] = "changed"
	assert.Equal(t, "潜水", RelatedKeywords("潜水")[0], "the variant table is not shared")

	assert.Equal(t, "亲子旅游", RelatedKeywords("亲子")[0])
	assert.Equal(t, []string{"古镇", "古镇推荐", "古镇攻略", "古镇分享", "古镇体验"}, RelatedKeywords(" 古镇 "))
	assert.Nil(t, RelatedKeywords("  "))
}
