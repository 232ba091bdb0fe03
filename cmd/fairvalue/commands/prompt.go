package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/contracts"
)

// promptAssumptions asks for the assumptions not already given, showing the defaults.
// An empty answer keeps the default.
func promptAssumptions(in io.Reader, out io.Writer, defaults contracts.Defaults, given contracts.Assumptions) (contracts.Assumptions, error) {
	r := bufio.NewReader(in)
	a := given

	if !a.GrowthPercent.Valid {
		v, err := readNumber(r, out, fmt.Sprintf("Estimate growth rate in %% (if nothing entered, %.0f%% is taken): ", defaults.GrowthPercent))
		if err != nil {
			return a, fmt.Errorf("growth rate: %w", err)
		}
		a.GrowthPercent = v
	}

	if !a.NormalizedPE.Valid {
		v, err := readNumber(r, out, fmt.Sprintf("Estimate normalized P/E (if nothing entered, %.2f is taken): ", defaults.NormalizedPE))
		if err != nil {
			return a, fmt.Errorf("normalized P/E: %w", err)
		}
		a.NormalizedPE = v
	}

	return a, nil
}

// readNumber re-asks until the answer is empty or parses as a number
func readNumber(r *bufio.Reader, out io.Writer, label string) (null.Float, error) {
	for {
		fmt.Fprint(out, label)
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return contracts.Missing, err
		}
		answer := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "%"))
		if answer == "" {
			return contracts.Missing, nil
		}
		v, perr := strconv.ParseFloat(answer, 64)
		if perr == nil {
			return contracts.Num(v), nil
		}
		if errors.Is(err, io.EOF) {
			return contracts.Missing, fmt.Errorf("not a number: %q", answer)
		}
		fmt.Fprintf(out, "not a number: %q\n", answer)
	}
}
