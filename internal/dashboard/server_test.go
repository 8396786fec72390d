package dashboard

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

func cleanedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, storage.WriteJSON(filepath.Join(dir, "diving_cleaned.json"), []domain.CleanedRecord{
		{ID: "1", PostFields: domain.PostFields{Audience: "情侣", Style: "浪漫抒情"}},
		{ID: "2", PostFields: domain.PostFields{Audience: "情侣"}},
	}))
	require.NoError(t, storage.WriteJSON(filepath.Join(dir, "general_cleaned.json"), []domain.CleanedRecord{
		{ID: "3", PostFields: domain.PostFields{Audience: "亲子", Style: "浪漫抒情"}},
	}))
	require.NoError(t, storage.WriteJSON(filepath.Join(dir, "cleaning_summary.json"), map[string]int{"总清洗文案数": 3}))
	return dir
}

func TestLoadData(t *testing.T) {
	s, err := loadData(cleanedDir(t))

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"diving": 2, "general": 1}, s.categories)
	assert.Equal(t, map[string]int{"情侣": 2, "亲子": 1}, s.audiences)
	assert.Equal(t, map[string]int{"浪漫抒情": 2, "未知": 1}, s.styles)
}

func TestHandler(t *testing.T) {
	h := Handler(cleanedDir(t), slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MissingDir(t *testing.T) {
	h := Handler(filepath.Join(t.TempDir(), "nope"), slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
