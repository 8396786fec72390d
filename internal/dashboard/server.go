package dashboard

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/promo-scraper/internal/domain"
	"github.com/qepting91/promo-scraper/internal/storage"
)

// StartServer serves the charts for the cleaned data in dir.
func StartServer(dir string, port string) error {
	return http.ListenAndServe(":"+port, Handler(dir, nil))
}

// Handler renders the dashboard, rereading dir on every request.
func Handler(dir string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := loadData(dir)
		if err != nil {
			logger.Error("Dashboard data unavailable", "dir", dir, "err", err)
			http.Error(w, "cleaned data unavailable", http.StatusInternalServerError)
			return
		}

		// 1. Category share
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "各类别文案数"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)
		var pieItems []opts.PieData
		for _, k := range sortedKeys(data.categories) {
			pieItems = append(pieItems, opts.PieData{Name: k, Value: data.categories[k]})
		}
		pie.AddSeries("文案", pieItems)

		// 2. Audience and style
		page := components.NewPage()
		page.AddCharts(pie,
			barChart("适用人群", data.audiences),
			barChart("写作风格", data.styles),
		)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Render(w); err != nil {
			logger.Warn("Dashboard render failed", "err", err)
		}
	})
	return mux
}

func barChart(title string, counts map[string]int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	var barX []string
	var barY []opts.BarData
	for _, k := range sortedKeys(counts) {
		barX = append(barX, k)
		barY = append(barY, opts.BarData{Value: counts[k]})
	}
	bar.SetXAxis(barX).AddSeries("文案", barY)
	return bar
}

type stats struct {
	categories map[string]int
	audiences  map[string]int
	styles     map[string]int
}

func loadData(dir string) (*stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	s := &stats{categories: map[string]int{}, audiences: map[string]int{}, styles: map[string]int{}}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_cleaned.json") {
			continue
		}
		var records []domain.CleanedRecord
		if err := storage.ReadJSON(filepath.Join(dir, e.Name()), &records); err != nil {
			continue
		}
		s.categories[strings.TrimSuffix(e.Name(), "_cleaned.json")] += len(records)
		for _, r := range records {
			s.audiences[orUnknown(r.Audience)]++
			s.styles[orUnknown(r.Style)]++
		}
	}
	return s, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "未知"
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
