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

// PriceRepository implements contracts.PriceRepository over data.daily_prices
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// DailyCloses retrieves closes for a ticker within [from, to]
func (r *PriceRepository) DailyCloses(ctx context.Context, ticker string, from, to time.Time) (*contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price
		FROM data.daily_prices
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, strings.ToUpper(ticker), from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no stored prices for %s", contracts.ErrNoData, strings.ToUpper(ticker))
	}
	series := contracts.NewPriceSeries(strings.ToUpper(ticker), points)
	return &series, nil
}

// SavePrices upserts a daily close series
func (r *PriceRepository) SavePrices(ctx context.Context, series *contracts.PriceSeries) error {
	if series == nil || len(series.Points) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.daily_prices (ticker, trade_date, close_price, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			updated_at = NOW()`

	ticker := strings.ToUpper(series.Ticker)
	for _, p := range series.Points {
		batch.Queue(query, ticker, p.Date, p.Close)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series.Points {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save prices %s: %w", ticker, err)
		}
	}
	return nil
}
