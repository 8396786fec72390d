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

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeFile(t, "targets.csv", "\uFEFFkeyword,count\n"+
		"潜水,30\n"+
		"露营\n"+
		"美食,abc\n"+
		"潜水,5\n"+
		"#注释,10\n"+
		",10\n"+
		strings.Repeat("长", 51)+",10\n"+
		" 古镇 , 0 \n")

	targets, err := LoadTargets(path, 20)

	require.NoError(t, err)
	assert.Equal(t, []domain.Target{
		{Keyword: "潜水", Count: 30},
		{Keyword: "露营", Count: 20},
		{Keyword: "美食", Count: 20},
		{Keyword: "古镇", Count: 20},
	}, targets)
}

func TestLoadTargets_NoDefault(t *testing.T) {
	path := writeFile(t, "targets.csv", "keyword,count\n潜水,3\n露营\n")

	targets, err := LoadTargets(path, 0)

	require.NoError(t, err)
	assert.Equal(t, []domain.Target{{Keyword: "潜水", Count: 3}}, targets)
}

func TestLoadTargets_Missing(t *testing.T) {
	_, err := LoadTargets(filepath.Join(t.TempDir(), "none.csv"), 20)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadKeywords(t *testing.T) {
	path := writeFile(t, "keywords.csv", "\uFEFFkeyword\n潜水\n露营,extra\n潜水\n\n#skip\n")

	kws, err := LoadKeywords(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"潜水", "露营"}, kws)
}
