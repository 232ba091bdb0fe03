package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/brain"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/s6_valuation"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "한 종목의 적정가치 분석",
	Long: `재무제표, 주당 지표, CAGR, 두 가지 밸류에이션을 출력합니다.

기본은 로컬 저장소(DATABASE_URL)에서 읽고, -d 로 SEC/Alpha Vantage에서 새로 받습니다.
저장소가 없으면 항상 다운로드합니다.

Valuation:
  Growth at normalized P/E  - EPS × (1+g)^10 × P/E, 할인 후 범위
  Owner earnings            - 10년 owner earnings / 시가총액

Example:
  go run ./cmd/fairvalue analyze -t AAPL -d
  go run ./cmd/fairvalue analyze TSM -f --growth 12 --pe 18
  go run ./cmd/fairvalue analyze -t MSFT --interactive
  go run ./cmd/fairvalue analyze -t MSFT --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeTicker      string
	analyzeDownload    bool
	analyzeForeign     bool
	analyzeGrowth      float64
	analyzePE          float64
	analyzeInteractive bool
	analyzeJSON        bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVarP(&analyzeTicker, "ticker", "t", "", "ticker to analyze")
	analyzeCmd.Flags().BoolVarP(&analyzeDownload, "download", "d", false, "download the latest filings and prices")
	analyzeCmd.Flags().BoolVarP(&analyzeForeign, "foreign", "f", false, "foreign filer (20-F instead of 10-K)")
	analyzeCmd.Flags().Float64Var(&analyzeGrowth, "growth", 0, "growth rate assumption in percent")
	analyzeCmd.Flags().Float64Var(&analyzePE, "pe", 0, "normalized P/E assumption")
	analyzeCmd.Flags().BoolVarP(&analyzeInteractive, "interactive", "i", false, "prompt for growth and P/E, showing the defaults")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the run result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ticker := analyzeTicker
	if ticker == "" && len(args) == 1 {
		ticker = args[0]
	}
	if strings.TrimSpace(ticker) == "" {
		return fmt.Errorf("ticker is required (--ticker or first argument)")
	}
	if analyzeInteractive && analyzeJSON {
		return fmt.Errorf("--interactive cannot be combined with --json")
	}

	assumptions := assumptionsFromFlags(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.orchestrator.Run(ctx, brain.RunConfig{
		Ticker:      ticker,
		Foreign:     analyzeForeign,
		Download:    analyzeDownload,
		Assumptions: assumptions,
	})
	if err != nil {
		return explainRunError(err, ticker, analyzeDownload)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !analyzeInteractive {
		PrintReport(out, result)
		return nil
	}

	PrintReportHead(out, result)
	fmt.Fprintln(out)
	chosen, err := promptAssumptions(cmd.InOrStdin(), out, result.Valuation.Defaults, assumptions)
	if err != nil {
		return err
	}
	if chosen != assumptions {
		result.Valuation = s6_valuation.New(a.valuation, a.log).Estimate(s6_valuation.Input{
			Table:       result.Table,
			Shares:      result.Shares,
			Ratios:      result.Ratios,
			Growth:      result.Growth,
			LatestPrice: result.LatestPrice,
			Assumptions: chosen,
		})
	}
	PrintValuation(out, result.Valuation)
	return nil
}

// assumptionsFromFlags returns only the flags the operator actually set
func assumptionsFromFlags(cmd *cobra.Command) contracts.Assumptions {
	var a contracts.Assumptions
	if cmd.Flags().Changed("growth") {
		a.GrowthPercent = contracts.Num(analyzeGrowth)
	}
	if cmd.Flags().Changed("pe") {
		a.NormalizedPE = contracts.Num(analyzePE)
	}
	return a
}

// explainRunError adds the hint the operator needs to recover
func explainRunError(err error, ticker string, downloaded bool) error {
	switch {
	case errors.Is(err, contracts.ErrTickerNotFound):
		return fmt.Errorf("unknown ticker %s: %w", strings.ToUpper(ticker), err)
	case !downloaded && (errors.Is(err, contracts.ErrInsufficientData) || errors.Is(err, contracts.ErrNoData)):
		return fmt.Errorf("could not find enough %s data, download by adding -d: %w", strings.ToUpper(ticker), err)
	default:
		return err
	}
}
