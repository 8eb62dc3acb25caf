package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// PostgresRepository stores checkout attempts.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "checkout_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}
	return nil
}

func (r *PostgresRepository) RecordAttempt(ctx context.Context, a *domain.CheckoutAttempt) error {
	query := `
		INSERT INTO checkout_attempts
			(id, user_id, vendor_id, order_type, status, error_kind, order_ref, total_amount, item_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.VendorID,
		string(a.OrderType),
		string(a.Status),
		a.ErrorKind,
		a.OrderRef,
		a.TotalAmount.String(),
		a.ItemCount,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkout attempt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.CheckoutAttempt, error) {
	query := `
		SELECT id, user_id, vendor_id, order_type, status, error_kind, order_ref, total_amount, item_count, created_at
		FROM checkout_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkout attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*domain.CheckoutAttempt
	for rows.Next() {
		var (
			a         domain.CheckoutAttempt
			id        string
			orderType string
			status    string
			total     string
		)
		if err := rows.Scan(&id, &a.UserID, &a.VendorID, &orderType, &status,
			&a.ErrorKind, &a.OrderRef, &total, &a.ItemCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkout attempt: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid attempt id %q: %w", id, err)
		}
		if a.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("invalid total for attempt %s: %w", id, err)
		}
		a.OrderType = domain.OrderType(orderType)
		a.Status = domain.CheckoutStatus(status)
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return attempts, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
