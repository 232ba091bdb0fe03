package logger_test

import (
	"errors"

	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Example_pipelineRun shows how a run is tagged for correlation
func Example_pipelineRun() {
	log := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	})

	runLog := log.WithRunID("6f1c...").WithTicker("aapl")
	runLog.Info("Starting valuation run")

	runLog.WithFields(map[string]interface{}{
		"stage":    "S2:TTM",
		"quarters": 1,
	}).Warn("TTM omitted")

	runLog.WithError(errors.New("sec: 404")).Error("Filings download failed")
}
