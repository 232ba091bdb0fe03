package valuationconfig

import "github.com/wonny/fairvalue/internal/contracts"

// Config는 밸류에이션 파이프라인의 전체 설정 (태그 별칭, 허용 오차, 기본 가정)
// 주의: map 대신 slice/struct 사용으로 해시 재현성 보장
type Config struct {
	Tags      Tags      `yaml:"tags" json:"tags"`
	Splits    Splits    `yaml:"splits" json:"splits"`
	Growth    Growth    `yaml:"growth" json:"growth"`
	Valuation Valuation `yaml:"valuation" json:"valuation"`
	Prices    Prices    `yaml:"prices" json:"prices"`
}

// Tags S0/S2: 별칭 해석과 flow/balance 구분
type Tags struct {
	Aliases []Alias  `yaml:"aliases" json:"aliases"`
	Balance []string `yaml:"balance" json:"balance"` // 나머지 태그는 모두 flow
}

// Alias maps a canonical tag to ordered alternate source names.
// The canonical name itself is always tried first.
type Alias struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Sources   []string `yaml:"sources" json:"sources"`
}

// Splits S1: 분할 감지 허용 오차
type Splits struct {
	Factors     []float64 `yaml:"factors" json:"factors"`           // forward split factors (>1); reciprocals are reverse splits
	Tolerance   float64   `yaml:"tolerance" json:"tolerance"`       // relative distance to a factor
	OrganicBand float64   `yaml:"organic_band" json:"organic_band"` // ratio in [1/b, b] is never a split
}

// Growth S5: CAGR 윈도우
type Growth struct {
	Windows          []int `yaml:"windows" json:"windows"` // years
	IncludeInception bool  `yaml:"include_inception" json:"include_inception"`
	IncludeTrailing  bool  `yaml:"include_trailing" json:"include_trailing"` // latest annual → TTM
}

// Valuation S6: 기본 가정과 추정식 상수
type Valuation struct {
	GrowthClampMin        float64 `yaml:"growth_clamp_min" json:"growth_clamp_min"` // %
	GrowthClampMax        float64 `yaml:"growth_clamp_max" json:"growth_clamp_max"` // %
	PEMultiplier          float64 `yaml:"pe_multiplier" json:"pe_multiplier"`
	PEFloor               float64 `yaml:"pe_floor" json:"pe_floor"`
	PESaneMax             float64 `yaml:"pe_sane_max" json:"pe_sane_max"`
	ProjectionYears       int     `yaml:"projection_years" json:"projection_years"`
	LowDiscountRate       float64 `yaml:"low_discount_rate" json:"low_discount_rate"`   // margin of safety for the low bound
	HighDiscountRate      float64 `yaml:"high_discount_rate" json:"high_discount_rate"` // margin of safety for the high bound
	OwnerEarningsMultiple float64 `yaml:"owner_earnings_multiple" json:"owner_earnings_multiple"`
}

// Prices S3
type Prices struct {
	UsePartialYearClose bool `yaml:"use_partial_year_close" json:"use_partial_year_close"`
}

// Default returns the built-in configuration
// ⭐ SSOT: config/valuation/default.yaml 과 동일하게 유지
func Default() *Config {
	return &Config{
		Tags: Tags{
			Aliases: []Alias{
				{Canonical: "EarningsPerShareDiluted", Sources: []string{"EarningsPerShareBasicAndDiluted", "DilutedEarningsLossPerShare"}},
				{Canonical: "EarningsPerShareBasic", Sources: []string{"EarningsPerShareBasicAndDiluted", "BasicEarningsLossPerShare"}},
				{Canonical: "NetIncomeLoss", Sources: []string{"NetIncomeLossAvailableToCommonStockholdersBasic", "ProfitLoss", "ProfitLossAttributableToOwnersOfParent"}},
				{Canonical: "IncomeTaxExpenseBenefit", Sources: []string{"IncomeTaxExpenseContinuingOperations"}},
				{Canonical: "StockholdersEquity", Sources: []string{"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest", "EquityAttributableToOwnersOfParent", "Equity"}},
				{Canonical: "CapitalExpenditure", Sources: []string{"PaymentsToAcquirePropertyPlantAndEquipment", "PaymentsToAcquireProductiveAssets", "PurchaseOfPropertyPlantAndEquipmentClassifiedAsInvestingActivities"}},
				{Canonical: "CashFlowFromOperations", Sources: []string{"NetCashProvidedByUsedInOperatingActivities", "CashFlowsFromUsedInOperatingActivities"}},
				{Canonical: "Revenues", Sources: []string{"SalesRevenueNet", "SalesRevenueGoodsNet", "RevenueFromContractWithCustomerIncludingAssessedTax", "RevenueFromContractWithCustomerExcludingAssessedTax", "Revenue"}},
				{Canonical: "CostOfGoodsAndServicesSold", Sources: []string{"CostOfRevenue", "CostOfSales"}},
				{Canonical: "SellingGeneralAndAdministrativeExpense", Sources: []string{"SellingGeneralAndAdministrativeExpenseByNature"}},
				{Canonical: "ResearchAndDevelopmentExpense", Sources: []string{"ResearchAndDevelopmentExpenseExcludingAcquiredInProcessCost"}},
				{Canonical: "DepreciationAndAmortization", Sources: []string{"DepreciationDepletionAndAmortization", "DepreciationAmortisationAndImpairmentLossReversalOfImpairmentLossRecognisedInProfitOrLoss", "DepreciationAndAmortisationExpense"}},
				{Canonical: "IncreaseDecreaseInAccountsPayable", Sources: []string{"IncreaseDecreaseInTradeAndOtherPayables"}},
				{Canonical: "IncreaseDecreaseInAccountsReceivable", Sources: []string{"IncreaseDecreaseInTradeAndOtherReceivables"}},
				{Canonical: "OperatingIncomeLoss", Sources: []string{"ProfitLossFromOperatingActivities"}},
				{Canonical: "LongTermDebtNoncurrent", Sources: []string{"LongTermDebt", "NoncurrentPortionOfNoncurrentBorrowings"}},
				{Canonical: "NumberOfDilutedShares", Sources: []string{"WeightedAverageNumberOfDilutedSharesOutstanding", "WeightedAverageNumberOfShareOutstandingBasicAndDiluted", "AdjustedWeightedAverageShares"}},
				{Canonical: "NumberOfShares", Sources: []string{"WeightedAverageNumberOfSharesOutstandingBasic", "WeightedAverageNumberOfShareOutstandingBasicAndDiluted", "WeightedAverageShares"}},
			},
			Balance: []string{"NumberOfShares", "NumberOfDilutedShares", "StockholdersEquity", "LongTermDebtNoncurrent"},
		},
		Splits: Splits{
			Factors:     []float64{1.5, 2, 3, 4, 5, 6, 8, 10, 15, 20},
			Tolerance:   0.05,
			OrganicBand: 1.25,
		},
		Growth: Growth{
			Windows:          []int{1, 3, 5, 10},
			IncludeInception: true,
			IncludeTrailing:  false,
		},
		Valuation: Valuation{
			GrowthClampMin:        5,
			GrowthClampMax:        20,
			PEMultiplier:          1.1,
			PEFloor:               5,
			PESaneMax:             100,
			ProjectionYears:       10,
			LowDiscountRate:       0.15,
			HighDiscountRate:      0.10,
			OwnerEarningsMultiple: 10,
		},
		Prices: Prices{
			UsePartialYearClose: false,
		},
	}
}

// SourcesFor returns the ordered source names for a canonical tag (canonical first)
func (c *Config) SourcesFor(canonical string) []string {
	out := []string{canonical}
	for _, a := range c.Tags.Aliases {
		if a.Canonical == canonical {
			out = append(out, a.Sources...)
			break
		}
	}
	return out
}

// IsBalance reports whether a canonical tag is a balance/snapshot tag
func (c *Config) IsBalance(canonical string) bool {
	for _, b := range c.Tags.Balance {
		if b == canonical {
			return true
		}
	}
	return false
}

// SourceNames returns every source tag name the resolver can read: the canonical vocabulary
// followed by each alias
func (c *Config) SourceNames() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, t := range contracts.AllTags() {
		add(string(t))
	}
	for _, a := range c.Tags.Aliases {
		for _, s := range a.Sources {
			add(s)
		}
	}
	return out
}
