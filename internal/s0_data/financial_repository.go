package s0_data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fairvalue/internal/contracts"
)

// FilingsRepository implements contracts.FilingsRepository over data.financial_facts
// ⭐ SSOT: 공시 원본 저장소는 여기서만
type FilingsRepository struct {
	pool *pgxpool.Pool
}

// NewFilingsRepository creates a new filings repository
func NewFilingsRepository(pool *pgxpool.Pool) *FilingsRepository {
	return &FilingsRepository{pool: pool}
}

// SaveFilings upserts every fact of every period under filings.Source
func (r *FilingsRepository) SaveFilings(ctx context.Context, filings *contracts.RawFilings) error {
	if filings == nil || len(filings.Periods) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.financial_facts
			(ticker, form, period_key, period_kind, fiscal_year, end_date, tag, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (ticker, form, period_key, tag) DO UPDATE SET
			period_kind = EXCLUDED.period_kind,
			fiscal_year = EXCLUDED.fiscal_year,
			end_date = EXCLUDED.end_date,
			value = EXCLUDED.value,
			updated_at = NOW()`

	ticker := strings.ToUpper(filings.Ticker)
	queued := 0
	for _, p := range filings.Periods {
		for tag, v := range p.Facts {
			batch.Queue(query, ticker, filings.Source, p.Key, string(p.Kind), p.FiscalYear, p.EndDate, tag, v)
			queued++
		}
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save filings %s/%s: %w", ticker, filings.Source, err)
		}
	}
	return nil
}

// AnnualFilings reads stored 10-K (or 20-F) facts
func (r *FilingsRepository) AnnualFilings(ctx context.Context, ticker string, foreign bool) (*contracts.RawFilings, error) {
	return r.load(ctx, ticker, contracts.AnnualForm(foreign))
}

// QuarterlyFilings reads stored 10-Q facts
func (r *FilingsRepository) QuarterlyFilings(ctx context.Context, ticker string) (*contracts.RawFilings, error) {
	return r.load(ctx, ticker, contracts.FormQuarterly)
}

func (r *FilingsRepository) load(ctx context.Context, ticker, form string) (*contracts.RawFilings, error) {
	query := `
		SELECT period_key, period_kind, fiscal_year, end_date, tag, value
		FROM data.financial_facts
		WHERE ticker = $1 AND form = $2
		ORDER BY end_date ASC, period_key ASC, tag ASC
	`

	rows, err := r.pool.Query(ctx, query, strings.ToUpper(ticker), form)
	if err != nil {
		return nil, fmt.Errorf("query filings: %w", err)
	}
	defer rows.Close()

	out := &contracts.RawFilings{Ticker: strings.ToUpper(ticker), Source: form}
	index := map[string]int{}
	for rows.Next() {
		var (
			key, kind, tag string
			fiscalYear     int
			endDate        time.Time
			value          float64
		)
		if err := rows.Scan(&key, &kind, &fiscalYear, &endDate, &tag, &value); err != nil {
			return nil, fmt.Errorf("scan filing fact: %w", err)
		}

		i, ok := index[key]
		if !ok {
			out.Periods = append(out.Periods, contracts.RawPeriod{
				Key:        key,
				Kind:       contracts.PeriodKind(kind),
				FiscalYear: fiscalYear,
				EndDate:    endDate,
				Form:       form,
				Facts:      map[string]float64{},
			})
			i = len(out.Periods) - 1
			index[key] = i
		}
		out.Periods[i].Facts[tag] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out.Periods) == 0 {
		return nil, fmt.Errorf("%w: no stored %s filings for %s (download with -d)", contracts.ErrNoData, form, out.Ticker)
	}
	return out, nil
}
