package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theirongolddev/runway/internal/model"
)

// Dashboard reads transactions and settings from the dashboard's Postgres
// database.
type Dashboard struct {
	pool   *pgxpool.Pool
	userID string
}

// DashboardSettings holds the subset of user_settings runway uses.
type DashboardSettings struct {
	BusinessName string
	Threshold    int64
}

// OpenDashboard connects to the dashboard database for one user.
func OpenDashboard(ctx context.Context, dsn, userID string) (*Dashboard, error) {
	if userID == "" {
		return nil, errors.New("dashboard user id is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to dashboard db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging dashboard db: %w", err)
	}
	return &Dashboard{pool: pool, userID: userID}, nil
}

// Close releases the connection pool.
func (d *Dashboard) Close() {
	d.pool.Close()
}

// transactionsQuery reads every row the dashboard shows for a user. The
// is_personal flag is a display tag there and does not remove a row from
// balance or runway figures.
const transactionsQuery = `SELECT
		id::text, type::text, amount, date, COALESCE(category_id::text, ''),
		COALESCE(description, ''), COALESCE(sender_name, ''), COALESCE(reference, ''),
		is_recurring, source::text
		FROM transactions
		WHERE user_id = $1
		ORDER BY date`

// Transactions returns every transaction for the user, oldest first,
// including those tagged personal.
func (d *Dashboard) Transactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := d.pool.Query(ctx, transactionsQuery, d.userID)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, src string
		var amount int32
		if err := rows.Scan(&t.ID, &kind, &amount, &t.OccurredAt, &t.CategoryID,
			&t.Description, &t.Counterparty, &t.Reference, &t.IsRecurring, &src); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Kind = model.Kind(kind)
		t.Amount = int64(amount)
		t.Source = model.Source(src)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Settings returns the user's business settings. ok is false when the user
// has not completed onboarding.
func (d *Dashboard) Settings(ctx context.Context) (s DashboardSettings, ok bool, err error) {
	var threshold int32
	err = d.pool.QueryRow(ctx,
		`SELECT business_name, low_balance_threshold FROM user_settings WHERE user_id = $1`,
		d.userID,
	).Scan(&s.BusinessName, &threshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return DashboardSettings{}, false, nil
	}
	if err != nil {
		return DashboardSettings{}, false, fmt.Errorf("querying settings: %w", err)
	}
	s.Threshold = int64(threshold)
	return s, true, nil
}

// Categories returns the default and user-defined categories keyed by id.
func (d *Dashboard) Categories(ctx context.Context) (map[string]model.Category, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id::text, name, color FROM categories WHERE user_id = $1 OR user_id IS NULL`,
		d.userID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	cats := make(map[string]model.Category)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		cats[c.ID] = c
	}
	return cats, rows.Err()
}
