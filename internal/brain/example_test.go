package brain

import (
	"fmt"

	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// ExampleOrchestrator_Analyze runs the pure pipeline on in-memory filings and prices
func ExampleOrchestrator_Analyze() {
	o, err := NewOrchestrator(valuationconfig.Default(), nil, nil, logger.NewNop())
	if err != nil {
		panic(err)
	}

	a, err := o.Analyze(AnalysisInput{
		Annual:    annualFilings(),
		Quarterly: quarterlyFilings(),
		Prices:    *dailyCloses(),
	})
	if err != nil {
		panic(err)
	}

	rng := a.Valuation.GrowthAtNormalizedPE
	fmt.Printf("stages=%d ttm=%t\n", len(a.CompletedStages), a.HasTTM)
	fmt.Printf("eps(%s)=%.2f pe=%.1f\n", rng.EPSPeriod, rng.EPS, rng.NormalizedPE)
	fmt.Printf("owner earnings ratio=%.2f\n", a.Valuation.OwnerEarnings.Value.Float64)
	// Output:
	// stages=7 ttm=true
	// eps(TTM)=0.64 pe=44.0
	// owner earnings ratio=0.15
}
