package repository

import (
	"context"
	"database/sql"
	"fmt"
	"portfolioanalysis/internal/domain"
	"time"

	_ "modernc.org/sqlite"
)

const adjustedPriceSchema = `
CREATE TABLE IF NOT EXISTS adjusted_price (
	symbol     TEXT NOT NULL,
	date       TEXT NOT NULL,
	open       TEXT NOT NULL,
	high       TEXT NOT NULL,
	low        TEXT NOT NULL,
	close      TEXT NOT NULL,
	adj_close  TEXT NOT NULL,
	volume     INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (symbol, date)
)`

// AdjustedPriceRepository caches provider bars locally so repeated
// requests for the same window don't go back upstream
type AdjustedPriceRepository interface {
	Add(ctx context.Context, prices []domain.AssetPrice) error
	List(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

// NewSqliteDb opens (and creates if needed) the price cache. Use
// ":memory:" for a throwaway db.
func NewSqliteDb(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", path, err)
	}
	// sqlite allows a single writer, and each :memory: connection would
	// otherwise get its own empty db
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(adjustedPriceSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create adjusted_price table: %w", err)
	}

	return db, nil
}

func NewAdjustedPriceRepository(db *sql.DB) AdjustedPriceRepository {
	return adjustedPriceRepositoryHandler{
		Db: db,
	}
}

type adjustedPriceRepositoryHandler struct {
	Db *sql.DB
}

func (h adjustedPriceRepositoryHandler) Add(ctx context.Context, prices []domain.AssetPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := h.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO adjusted_price (symbol, date, open, high, low, close, adj_close, volume, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			adj_close = excluded.adj_close,
			volume = excluded.volume`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range prices {
		_, err := stmt.ExecContext(
			ctx,
			p.Symbol,
			p.Date.Format(time.DateOnly),
			p.Open,
			p.High,
			p.Low,
			p.Close,
			p.AdjClose,
			p.Volume,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to add adjusted price for %s on %s: %w", p.Symbol, p.Date.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjusted prices: %w", err)
	}
	return nil
}

func (h adjustedPriceRepositoryHandler) List(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	rows, err := h.Db.QueryContext(
		ctx,
		`SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM adjusted_price
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC`,
		symbol,
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	out := []domain.AssetPrice{}
	for rows.Next() {
		p := domain.AssetPrice{}
		var date string
		err := rows.Scan(&p.Symbol, &date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		p.Date, err = time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("bad stored date %q: %w", date, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
