package contracts

// Tag is a canonical financial-statement metric name
// ⭐ SSOT: 코어가 사용하는 재무 태그 어휘는 여기서만 정의
type Tag string

const (
	TagEPSDiluted          Tag = "EarningsPerShareDiluted"
	TagEPSBasic            Tag = "EarningsPerShareBasic"
	TagGrossProfit         Tag = "GrossProfit"
	TagNetIncome           Tag = "NetIncomeLoss"
	TagIncomeTax           Tag = "IncomeTaxExpenseBenefit"
	TagEquity              Tag = "StockholdersEquity"
	TagCapEx               Tag = "CapitalExpenditure"
	TagOperatingCashFlow   Tag = "CashFlowFromOperations"
	TagRevenues            Tag = "Revenues"
	TagCostOfRevenue       Tag = "CostOfGoodsAndServicesSold"
	TagSGA                 Tag = "SellingGeneralAndAdministrativeExpense"
	TagRnD                 Tag = "ResearchAndDevelopmentExpense"
	TagDepreciation        Tag = "DepreciationAndAmortization"
	TagChangeInPayables    Tag = "IncreaseDecreaseInAccountsPayable"
	TagChangeInReceivables Tag = "IncreaseDecreaseInAccountsReceivable"
	TagOperatingIncome     Tag = "OperatingIncomeLoss"
	TagLongTermDebt        Tag = "LongTermDebtNoncurrent"
	TagDilutedShares       Tag = "NumberOfDilutedShares"
	TagShares              Tag = "NumberOfShares"
)

// AllTags returns the vocabulary in report order
func AllTags() []Tag {
	return []Tag{
		TagEPSDiluted,
		TagEPSBasic,
		TagGrossProfit,
		TagNetIncome,
		TagIncomeTax,
		TagEquity,
		TagCapEx,
		TagOperatingCashFlow,
		TagRevenues,
		TagCostOfRevenue,
		TagSGA,
		TagRnD,
		TagDepreciation,
		TagChangeInPayables,
		TagChangeInReceivables,
		TagOperatingIncome,
		TagLongTermDebt,
		TagDilutedShares,
		TagShares,
	}
}

// IsValidTag checks if a string names a canonical tag
func IsValidTag(s string) bool {
	for _, t := range AllTags() {
		if string(t) == s {
			return true
		}
	}
	return false
}
