package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	ListExpenses(ctx context.Context) ([]Expense, error)
	CreateExpense(ctx context.Context, e NewExpense) (int64, error)
	DeleteExpense(ctx context.Context, expenseID int64) error

	Ping(ctx context.Context) error
}

// PostgresStore hands out one pooled connection per request. The pool is
// lazy, so nothing is dialed until the first Connect.
type PostgresStore struct {
	pool *pgxpool.Pool
	host string
}

func NewPostgresStore(cfg DBConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &PostgresStore{
		pool: pool,
		host: net.JoinHostPort(cfg.Host, cfg.Port),
	}, nil
}

// Connect acquires a connection for the duration of one request. Callers
// must Release it on every path.
func (p *PostgresStore) Connect(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		connErr := &ConnectionError{Host: p.host, Err: err}
		slog.ErrorContext(ctx, "Could not connect to the database", "host", p.host, "error", err)
		return nil, connErr
	}
	return conn, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	conn, err := p.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return conn.Ping(ctx)
}

func (p *PostgresStore) ListExpenses(ctx context.Context) ([]Expense, error) {
	conn, err := p.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query := `
        SELECT expense_id, category, amount::text
        FROM expenses
        ORDER BY expense_id DESC;
    `

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var (
			e      Expense
			amount string
		)
		if err := rows.Scan(&e.ExpenseID, &e.Category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = Amount(amount)
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}

	return expenses, nil
}

// CreateExpense inserts the expense and returns the id the store assigned.
// Values arrive as text and Postgres performs the conversion.
func (p *PostgresStore) CreateExpense(ctx context.Context, e NewExpense) (int64, error) {
	conn, err := p.Connect(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	query := `
        INSERT INTO expenses (category, amount)
        VALUES ($1::text, $2::text::numeric)
        RETURNING expense_id;
    `

	var id int64
	if err := conn.QueryRow(ctx, query, e.CategoryText(), e.AmountText()).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create expense: %w", err)
	}

	return id, nil
}

func (p *PostgresStore) DeleteExpense(ctx context.Context, expenseID int64) error {
	conn, err := p.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	query := `
        DELETE FROM expenses
        WHERE expense_id = $1;
    `

	result, err := conn.Exec(ctx, query, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
