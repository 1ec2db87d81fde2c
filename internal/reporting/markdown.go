package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"fypy-hub/internal/domain"
)

// RunSummary is the header block for a rendered run.
type RunSummary struct {
	RunID       string
	GeneratedAt time.Time
	Assets      int // assets that made it into the final table
	Skipped     []SkipRow
}

// SkipRow names an asset dropped from a run and why.
type SkipRow struct {
	Asset  string
	Reason string
}

// RenderCoinsMarkdown renders a labeled coin table as Markdown, grouped by
// probability group. Market cap and volume render with thousands separators.
func RenderCoinsMarkdown(sum RunSummary, rows []domain.CoinPrediction) string {
	var sb strings.Builder

	sb.WriteString("# Coin Clusters\n\n")
	writeSummary(&sb, sum)

	if len(rows) == 0 {
		sb.WriteString("No coins in the final table.\n")
		return sb.String()
	}

	current := ""
	for i := range rows {
		r := &rows[i]
		if r.Label != current {
			current = r.Label
			sb.WriteString(fmt.Sprintf("## %s\n\n", current))
			sb.WriteString("| Asset | Price | 24h % | 7d % | 30d % | Market Cap | Volume |\n")
			sb.WriteString("|-------|-------|-------|------|-------|------------|--------|\n")
		}
		sb.WriteString(fmt.Sprintf("| %s | %.6f | %.2f | %.2f | %.2f | %s | %s |\n",
			r.Asset, r.LatestPrice,
			r.PriceChange24h, r.PriceChange7d, r.PriceChange30d,
			humanFloat(r.MarketCap), humanFloat(r.TradingVolume)))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderStocksMarkdown renders a labeled stock table as Markdown.
func RenderStocksMarkdown(sum RunSummary, rows []domain.StockCluster) string {
	var sb strings.Builder

	sb.WriteString("# Stock Clusters\n\n")
	writeSummary(&sb, sum)

	if len(rows) == 0 {
		sb.WriteString("No stocks in the final table.\n")
		return sb.String()
	}

	current := ""
	for i := range rows {
		r := &rows[i]
		if r.Label != current {
			current = r.Label
			sb.WriteString(fmt.Sprintf("## %s\n\n", current))
			sb.WriteString("| Asset | Mean | Change | Strike Diff | Avg Volume |\n")
			sb.WriteString("|-------|------|--------|-------------|------------|\n")
		}
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %s |\n",
			r.Asset, r.MeanPrice, r.PriceChange, r.StrikeDiffMean,
			humanize.Commaf(r.AvgVolume)))
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeSummary(sb *strings.Builder, sum RunSummary) {
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", sum.GeneratedAt.Format(time.RFC3339)))
	if sum.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: %s\n\n", sum.RunID))
	}
	sb.WriteString(fmt.Sprintf("Assets: %d | Skipped: %d\n\n", sum.Assets, len(sum.Skipped)))

	if len(sum.Skipped) > 0 {
		sb.WriteString("## Skipped\n\n")
		for _, s := range sum.Skipped {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Asset, s.Reason))
		}
		sb.WriteString("\n")
	}
}

func humanFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return humanize.Commaf(*f)
}
