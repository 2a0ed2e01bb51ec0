package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymentsops/ipn-ingest/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for bank transactions. It is
// stateless between calls: all idempotency derives from the transaction_id
// primary key, so the process can restart or scale horizontally without
// losing dedup correctness.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// UpsertTransaction persists a transaction record and returns inserted=false
// when a row for the same transaction_id already exists.
//
// Dedup policy: first write wins. The bank redelivers notifications on
// transient network failures; a replay must neither create a second row nor
// overwrite the fields recorded at first delivery. The single INSERT is
// atomic at the row level, so readers never observe a partial record.
func (p *PostgresStore) UpsertTransaction(ctx context.Context, rec models.TransactionRecord) (bool, error) {
	if rec.TransactionID == "" {
		return false, errors.New("transaction id required")
	}

	// RETURNING 1 only when inserted; a conflicting row yields no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO bank_transactions(
			transaction_id, acct_no, currency,
			amount, booked_balance, cleared_balance, exchange_rate,
			narration, cust_memo_line1, cust_memo_line2, cust_memo_line3,
			event_type, payment_ref, posting_date, value_date, transaction_date,
			final_reference, mobile_number
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING 1
	`,
		rec.TransactionID, rec.AcctNo, rec.Currency,
		rec.Amount.Decimal, rec.BookedBalance.Decimal, rec.ClearedBalance.Decimal, rec.ExchangeRate.Decimal,
		rec.Narration, rec.CustMemoLine1, rec.CustMemoLine2, rec.CustMemoLine3,
		rec.EventType, rec.PaymentRef, rec.PostingDate, rec.ValueDate, rec.TransactionDate,
		nullIfEmpty(rec.FinalReference), nullIfEmpty(rec.MobileNumber),
	).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// nullIfEmpty maps absent derived fields to SQL NULL rather than empty
// strings, so "no reference extracted" is queryable.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
