package commands

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/brain"
	"github.com/wonny/fairvalue/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Console report
// 섹션 순서: 재무 → 주당 지표 → CAGR → 최근 주가 → 밸류에이션
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, doubleLine)
}

// PrintSection prints a titled section header
func PrintSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintDoubleSeparator(w)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTable prints a header, a rule and the rows with columns sized to fit
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len([]rune(col))
	}
	for _, row := range rows {
		for i, val := range row {
			if n := len([]rune(val)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	printTableRow(w, columns, widths)
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
	for _, row := range rows {
		printTableRow(w, row, widths)
	}
}

func printTableRow(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	for i, val := range values {
		// 첫 열은 왼쪽, 숫자 열은 오른쪽 정렬
		if i == 0 {
			fmt.Fprintf(&b, "%-*s", widths[i], val)
		} else {
			fmt.Fprintf(&b, "%*s", widths[i], val)
		}
		if i < len(values)-1 {
			b.WriteString("  ")
		}
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
}

// formatValue renders a table cell; large magnitudes drop the decimals
func formatValue(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	if math.Abs(v.Float64) >= 1e5 {
		return fmt.Sprintf("%.0f", v.Float64)
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func formatPercent(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", v.Float64)
}

// PrintFundamentals prints one column per period with the split-adjusted shares and the aligned price
func PrintFundamentals(w io.Writer, a *brain.Analysis) {
	PrintSection(w, "Fundamental data")

	periods := a.Table.Periods()
	columns := make([]string, 0, len(periods)+1)
	columns = append(columns, "")
	for _, p := range periods {
		columns = append(columns, p.Key)
	}

	var rows [][]string
	for _, tag := range contracts.AllTags() {
		row := []string{string(tag)}
		for _, p := range periods {
			row = append(row, formatValue(p.Value(tag)))
		}
		rows = append(rows, row)
	}

	adjusted := []struct {
		label  string
		series contracts.AdjustedShareCountSeries
	}{
		{"NumberOfDilutedSharesAdjusted", a.DilutedShares},
		{"NumberOfSharesAdjusted", a.Shares},
	}
	for _, adj := range adjusted {
		row := []string{adj.label}
		for _, p := range periods {
			row = append(row, formatValue(adj.series.Get(p.Key)))
		}
		rows = append(rows, row)
	}

	priceRow := []string{"StockPrice"}
	for _, p := range periods {
		priceRow = append(priceRow, formatValue(a.Prices.Get(p.Key)))
	}
	rows = append(rows, priceRow)

	PrintTable(w, columns, rows)
}

// PrintRatios prints the per-share ratio table
func PrintRatios(w io.Writer, ratios contracts.RatioTable) {
	PrintSection(w, "Key growth indicators")

	columns := []string{""}
	for _, row := range ratios.Rows {
		columns = append(columns, row.PeriodKey)
	}

	var rows [][]string
	for _, ratio := range contracts.AllRatios() {
		line := []string{ratio.Label()}
		for _, row := range ratios.Rows {
			line = append(line, formatValue(row.Value(ratio)))
		}
		rows = append(rows, line)
	}
	PrintTable(w, columns, rows)
}

// PrintGrowth prints one CAGR table per growth ratio
func PrintGrowth(w io.Writer, growth contracts.GrowthTable) {
	for _, res := range growth.Results {
		fmt.Fprintln(w)
		PrintSeparator(w)
		fmt.Fprintf(w, "%s Growth:\n", res.Ratio.Label())

		columns := []string{""}
		years := []string{"Years"}
		cagr := []string{"CAGR"}
		for _, win := range res.Windows {
			columns = append(columns, win.Label)
			years = append(years, formatSpan(win))
			if win.Percent.Valid {
				cagr = append(cagr, formatPercent(win.Percent))
			} else {
				cagr = append(cagr, string(win.Reason))
			}
		}
		PrintTable(w, columns, [][]string{years, cagr})
	}
}

func formatSpan(win contracts.CAGRWindow) string {
	if win.SpanYears == 0 {
		return "-"
	}
	if win.SpanYears == math.Trunc(win.SpanYears) {
		return fmt.Sprintf("%.0f", win.SpanYears)
	}
	return fmt.Sprintf("%.2f", win.SpanYears)
}

// PrintLatestPrice prints the most recent close
func PrintLatestPrice(w io.Writer, price null.Float) {
	fmt.Fprintln(w)
	PrintSeparator(w)
	if price.Valid {
		fmt.Fprintf(w, "Latest Stock Price: %.2f\n", price.Float64)
	} else {
		fmt.Fprintln(w, "Latest Stock Price: -")
	}
}

// PrintGrowthAtNormalizedPE prints the range estimate
func PrintGrowthAtNormalizedPE(w io.Writer, est contracts.RangeEstimate) {
	PrintSeparator(w)
	fmt.Fprintln(w, `Value estimation with "Growth At Normalized P/E" technique:`)
	PrintSeparator(w)

	if !est.Computable {
		PrintWarning(w, fmt.Sprintf("not computable: %s", est.Reason))
		return
	}
	fmt.Fprintf(w, "Growth rate estimation: %.0f%% (%s), future P/E estimation: %.2f (%s)\n",
		est.GrowthPercent, est.GrowthSource, est.NormalizedPE, est.PESource)
	fmt.Fprintf(w, "EPS (%s): %.2f\n", est.EPSPeriod, est.EPS)
	if est.Degenerate {
		PrintWarning(w, "degenerate assumptions, the range is not meaningful")
	}
	if est.OutOfRange {
		PrintWarning(w, "assumption outside sane bounds")
	}
	fmt.Fprintf(w, "Fair value is estimated in the range of $%.2f - $%.2f\n", est.Low, est.High)
}

// PrintOwnerEarnings prints the owner earnings estimate
func PrintOwnerEarnings(w io.Writer, est contracts.PointEstimate) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Value estimation with "Owner Earnings" technique:`)
	PrintSeparator(w)

	if !est.Computable {
		PrintWarning(w, fmt.Sprintf("not computable: %s", est.Reason))
		PrintSeparator(w)
		return
	}
	fmt.Fprintf(w, "10 years of owner earnings: %.0f\n", est.ProjectedValue.Float64)
	fmt.Fprintf(w, "Market Cap: %.0f\n", est.MarketCap.Float64)
	fmt.Fprintf(w, "Owner earnings ratio (>1.0 is good): %.2f\n", est.Value.Float64)
	PrintSeparator(w)
}

// PrintWarnings lists the run warnings
func PrintWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, msg := range warnings {
		PrintWarning(w, msg)
	}
}

// PrintRunHeader prints the run metadata
func PrintRunHeader(w io.Writer, r *brain.RunResult) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  Fair value analysis: %s\n", r.Ticker)
	PrintSeparator(w)
	PrintKeyValue(w, "Run ID", r.RunID, 11)
	PrintKeyValue(w, "Config", r.ConfigHash, 11)
	source := "store"
	if r.Downloaded {
		source = "download"
	}
	PrintKeyValue(w, "Source", source, 11)
	PrintKeyValue(w, "Stages", fmt.Sprintf("%d/%d", len(r.CompletedStages), len(contracts.AllStages())), 11)
	PrintDoubleSeparator(w)
}

// PrintReportHead prints everything up to the latest price
func PrintReportHead(w io.Writer, r *brain.RunResult) {
	PrintRunHeader(w, r)
	PrintWarnings(w, r.Warnings)
	PrintFundamentals(w, &r.Analysis)
	PrintRatios(w, r.Ratios)
	PrintGrowth(w, r.Growth)
	PrintLatestPrice(w, r.LatestPrice)
}

// PrintValuation prints both estimates
func PrintValuation(w io.Writer, v contracts.ValuationEstimate) {
	PrintGrowthAtNormalizedPE(w, v.GrowthAtNormalizedPE)
	PrintOwnerEarnings(w, v.OwnerEarnings)
}

// PrintReport prints the full console report
func PrintReport(w io.Writer, r *brain.RunResult) {
	PrintReportHead(w, r)
	PrintValuation(w, r.Valuation)
}
