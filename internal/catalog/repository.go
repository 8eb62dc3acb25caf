// Package catalog serves vendors and products from a local SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrProductNotFound = errors.New("product not found")
)

// Catalog is satisfied by both the SQLite repository and the REST catalog client.
type Catalog interface {
	GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, vendorID string) ([]*domain.Product, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// every new connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	query := `
		SELECT id, name, delivery, takeaway
		FROM vendors
		WHERE id = $1
	`

	v := &domain.Vendor{}
	err := r.db.QueryRowContext(ctx, query, vendorID).Scan(
		&v.ID,
		&v.Name,
		&v.ServiceTypes.Delivery,
		&v.ServiceTypes.Takeaway,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor: %w", err)
	}
	return v, nil
}

func (r *Repository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT id, vendor_id, name, price, offer_price
		FROM products
		WHERE id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return products[0], nil
}

func (r *Repository) ListProducts(ctx context.Context, vendorID string) ([]*domain.Product, error) {
	query := `
		SELECT id, vendor_id, name, price, offer_price
		FROM products
		WHERE vendor_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	var products []*domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
			offer sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &price, &offer); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		var err error
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price for product %s: %w", p.ID, err)
		}
		if offer.Valid {
			o, err := decimal.NewFromString(offer.String)
			if err != nil {
				return nil, fmt.Errorf("bad offer price for product %s: %w", p.ID, err)
			}
			p.OfferPrice = &o
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
