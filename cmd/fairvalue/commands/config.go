package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/fairvalue/internal/valuationconfig"
)

// configCmd groups the valuation config commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "밸류에이션 설정 (YAML) 도구",
}

// configCheckCmd represents the config check command
var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "밸류에이션 설정 검증 및 해시 출력",
	Long: `밸류에이션 YAML 을 읽어 검증하고 설정 해시를 출력합니다.
경로가 없으면 --valuation-config, 그 다음 내장 기본값을 사용합니다.

Example:
  go run ./cmd/fairvalue config check config/valuation/default.yaml
  go run ./cmd/fairvalue config check`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "적용될 밸류에이션 설정을 YAML 로 출력",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
}

func configPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return valuationConfig
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configPath(args)
	cfg, err := valuationconfig.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	return printConfigSummary(cmd.OutOrStdout(), path, cfg)
}

func printConfigSummary(w io.Writer, path string, cfg *valuationconfig.Config) error {
	hash, err := valuationconfig.Hash(cfg)
	if err != nil {
		return err
	}
	if path == "" {
		path = "(built-in default)"
	}

	windows := make([]string, len(cfg.Growth.Windows))
	for i, y := range cfg.Growth.Windows {
		windows[i] = strconv.Itoa(y) + "y"
	}

	PrintDoubleSeparator(w)
	fmt.Fprintln(w, "  Valuation config")
	PrintSeparator(w)
	PrintKeyValue(w, "Path", path, 16)
	PrintKeyValue(w, "Hash", hash, 16)
	PrintKeyValue(w, "Aliases", strconv.Itoa(len(cfg.Tags.Aliases)), 16)
	PrintKeyValue(w, "Split factors", fmt.Sprint(cfg.Splits.Factors), 16)
	PrintKeyValue(w, "CAGR windows", strings.Join(windows, ", "), 16)
	PrintKeyValue(w, "Growth clamp", fmt.Sprintf("%.0f%% .. %.0f%%", cfg.Valuation.GrowthClampMin, cfg.Valuation.GrowthClampMax), 16)
	PrintKeyValue(w, "P/E", fmt.Sprintf("max(median, %.2f) × %.2f", cfg.Valuation.PEFloor, cfg.Valuation.PEMultiplier), 16)
	PrintKeyValue(w, "Projection years", strconv.Itoa(cfg.Valuation.ProjectionYears), 16)
	PrintSeparator(w)
	PrintSuccess(w, "valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := valuationconfig.LoadOrDefault(configPath(args))
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
