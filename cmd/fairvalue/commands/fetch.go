package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fairvalue/internal/brain"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [ticker...]",
	Short: "SEC 재무제표와 주가를 받아 저장소에 저장",
	Long: `SEC companyfacts 와 Alpha Vantage 일별 종가를 받아 PostgreSQL 저장소에 upsert 합니다.
이후 analyze 는 -d 없이 저장소에서 읽습니다.

이 명령어는:
- 연간(10-K/20-F), 분기(10-Q) 재무 데이터 다운로드
- 첫 회계연도 전년도 1월부터 일별 종가 다운로드
- 저장 후 파이프라인을 한 번 실행해 데이터가 충분한지 확인

Example:
  go run ./cmd/fairvalue fetch -t AAPL
  go run ./cmd/fairvalue fetch AAPL MSFT
  go run ./cmd/fairvalue fetch TSM -f`,
	RunE: runFetch,
}

var (
	fetchTickers []string
	fetchForeign bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Flags
	fetchCmd.Flags().StringSliceVarP(&fetchTickers, "ticker", "t", nil, "tickers to download")
	fetchCmd.Flags().BoolVarP(&fetchForeign, "foreign", "f", false, "foreign filer (20-F instead of 10-K)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	tickers := append(append([]string{}, fetchTickers...), args...)
	if len(tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("fetch needs a store: set DATABASE_URL")
	}

	out := cmd.OutOrStdout()
	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  Fetch: %s\n", strings.ToUpper(strings.Join(tickers, ", ")))
	PrintSeparator(out)

	failed := 0
	for i, ticker := range tickers {
		result, err := a.orchestrator.Run(ctx, brain.RunConfig{
			Ticker:   ticker,
			Foreign:  fetchForeign,
			Download: true,
		})
		if err != nil {
			failed++
			a.log.WithTicker(strings.ToUpper(ticker)).WithError(err).Error("Fetch failed")
			fmt.Fprintf(out, "❌ %s: %v [%d/%d]\n", strings.ToUpper(ticker), err, i+1, len(tickers))
			continue
		}

		fmt.Fprintf(out, "[Fetch] %s: %d periods, TTM=%t, %d yearly closes in %s [%d/%d]\n",
			result.Ticker, result.Table.Len(), result.HasTTM, len(result.Prices.Yearly),
			result.Duration.Round(time.Millisecond), i+1, len(tickers))
		for _, msg := range result.Warnings {
			PrintWarning(out, fmt.Sprintf("%s: %s", result.Ticker, msg))
		}
	}

	PrintSeparator(out)
	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(tickers))
	}
	PrintSuccess(out, fmt.Sprintf("%d tickers saved", len(tickers)))
	return nil
}
