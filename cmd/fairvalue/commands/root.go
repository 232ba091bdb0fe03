package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	valuationConfig string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "Fundamentals-based fair value estimator",
	Long: `fairvalue CLI

SEC 재무제표와 일별 주가로 한 종목의 적정가치를 추정합니다.
S0 → S2 → S1 → S3 → S4 → S5 → S6 파이프라인:
재무 데이터, TTM, 액면분할 보정, 가격 정렬, 주당 지표, CAGR, 밸류에이션.

Usage:
  go run ./cmd/fairvalue [command]

Examples:
  go run ./cmd/fairvalue analyze -t AAPL -d
  go run ./cmd/fairvalue fetch -t AAPL
  go run ./cmd/fairvalue api
  go run ./cmd/fairvalue config check config/valuation/default.yaml
  go run ./cmd/fairvalue test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&valuationConfig, "valuation-config", "", "valuation rules YAML (default: VALUATION_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
