package store

import (
	"context"
	"errors"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlSave = `INSERT INTO products (id, name, price, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, quantity = EXCLUDED.quantity
		RETURNING id, name, price, quantity`
	sqlFindByID = `SELECT id, name, price, quantity FROM products WHERE id = $1`
	sqlFindAll  = `SELECT id, name, price, quantity FROM products`
	sqlDelete   = `DELETE FROM products WHERE id = $1`
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Save upserts the product and returns the stored row.
func (p *PgStore) Save(ctx context.Context, product Product) (*Product, error) {
	row := p.db.QueryRow(ctx, sqlSave, product.ID, product.Name, product.Price, product.Quantity)
	saved, err := scanProduct(row)
	if err != nil {
		return nil, perrors.NewStorageError("save", err)
	}
	return saved, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, sqlFindByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, perrors.NewStorageError("find by id", err)
	}
	return product, nil
}

// FindAll retrieves all available products.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, sqlFindAll)
	if err != nil {
		return nil, perrors.NewStorageError("find all", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		product, err := scanProduct(row)
		if err != nil {
			return Product{}, err
		}
		return *product, nil
	})
	if err != nil {
		return nil, perrors.NewStorageError("find all", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// DeleteByID removes a product by its unique identifier.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.Exec(ctx, sqlDelete, id); err != nil {
		return perrors.NewStorageError("delete", err)
	}
	return nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return perrors.NewStorageError("ping", p.db.Ping(ctx))
}

func scanProduct(row pgx.Row) (*Product, error) {
	var product Product
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &product.Quantity); err != nil {
		return nil, err
	}
	return &product, nil
}
