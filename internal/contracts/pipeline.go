package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, RunResult, 메트릭 라벨에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S2 → S1 → S3 → S4 → S5 → S6
//   Data  TTM  Shares  Prices  Ratios  Growth  Valuation
//
// TTM은 분할 보정 전에 붙인다 (최근 분기의 분할도 TTM 행에서 감지되도록).

// Stage represents a pipeline stage
type Stage string

const (
	// StageData S0: 별칭 해석, 연간 테이블 구성, InsufficientData 게이트
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageShares S1: 주식 분할 감지 및 주식수 보정
	// 위치: internal/s1_shares/
	StageShares Stage = "S1_SHARES"

	// StageTTM S2: 최근 4분기 → TTM 기간 (flow 합산, balance 스냅샷)
	// 위치: internal/s2_ttm/
	StageTTM Stage = "S2_TTM"

	// StagePrices S3: 일별 종가 → 기간별 가격
	// 위치: internal/s3_prices/
	StagePrices Stage = "S3_PRICES"

	// StageRatios S4: 주당 지표 및 P/E
	// 위치: internal/s4_ratios/
	StageRatios Stage = "S4_RATIOS"

	// StageGrowth S5: 다중 기간 CAGR
	// 위치: internal/s5_growth/
	StageGrowth Stage = "S5_GROWTH"

	// StageValuation S6: Growth-at-Normalized-PE, Owner Earnings
	// 위치: internal/s6_valuation/
	StageValuation Stage = "S6_VALUATION"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageShares:
		return "S1"
	case StageTTM:
		return "S2"
	case StagePrices:
		return "S3"
	case StageRatios:
		return "S4"
	case StageGrowth:
		return "S5"
	case StageValuation:
		return "S6"
	default:
		return "UNKNOWN"
	}
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageData:
		return "fundamentals table"
	case StageShares:
		return "split adjustment"
	case StageTTM:
		return "trailing twelve months"
	case StagePrices:
		return "price alignment"
	case StageRatios:
		return "per-share ratios"
	case StageGrowth:
		return "compound growth"
	case StageValuation:
		return "valuation"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in execution order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageTTM,
		StageShares,
		StagePrices,
		StageRatios,
		StageGrowth,
		StageValuation,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
