package s0_data

import "github.com/wonny/fairvalue/internal/contracts"

// RatioInputs are the tags the ratio and valuation stages read
var RatioInputs = []contracts.Tag{
	contracts.TagRevenues,
	contracts.TagNetIncome,
	contracts.TagEquity,
	contracts.TagOperatingCashFlow,
	contracts.TagCapEx,
	contracts.TagDepreciation,
	contracts.TagShares,
	contracts.TagDilutedShares,
}

// QualityReport summarizes tag coverage of a fundamentals table
type QualityReport struct {
	Periods  int                       `json:"periods"`
	Coverage map[contracts.Tag]float64 `json:"coverage"` // 0.0 ~ 1.0
	Missing  []contracts.Tag           `json:"missing"`  // ratio inputs with zero coverage
}

// CoverageRate returns the average coverage across ratio inputs
func (q QualityReport) CoverageRate() float64 {
	if len(RatioInputs) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range RatioInputs {
		total += q.Coverage[t]
	}
	return total / float64(len(RatioInputs))
}

// Assess measures per-tag coverage. Missing inputs are reported, never fatal.
func Assess(table contracts.FundamentalsTable) QualityReport {
	report := QualityReport{
		Periods:  table.Len(),
		Coverage: make(map[contracts.Tag]float64, len(contracts.AllTags())),
	}
	if table.Len() == 0 {
		report.Missing = append(report.Missing, RatioInputs...)
		return report
	}

	for _, tag := range contracts.AllTags() {
		present := 0
		for _, v := range table.Column(tag) {
			if v.Valid {
				present++
			}
		}
		report.Coverage[tag] = float64(present) / float64(table.Len())
	}
	for _, tag := range RatioInputs {
		if report.Coverage[tag] == 0 {
			report.Missing = append(report.Missing, tag)
		}
	}
	return report
}
