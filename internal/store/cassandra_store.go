package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	cqlCreateTable = `CREATE TABLE IF NOT EXISTS products (
		id uuid PRIMARY KEY,
		name text,
		price double,
		quantity int
	)`
	cqlSave     = `INSERT INTO products (id, name, price, quantity) VALUES (?, ?, ?, ?)`
	cqlFindByID = `SELECT id, name, price, quantity FROM products WHERE id = ?`
	cqlFindAll  = `SELECT id, name, price, quantity FROM products`
	cqlDelete   = `DELETE FROM products WHERE id = ?`
	cqlPing     = `SELECT release_version FROM system.local`
)

var _ ProductStore = (*CassandraStore)(nil)

// CassandraStore implements ProductStore on a Cassandra table keyed by product id.
// INSERT in CQL is an upsert, so Save serves both creation and update.
type CassandraStore struct {
	session *gocql.Session
}

// NewCassandraStore creates a ProductStore using a session already bound to a keyspace.
func NewCassandraStore(session *gocql.Session) *CassandraStore {
	return &CassandraStore{session: session}
}

// EnsureSchema creates the products table when it does not exist.
func (c *CassandraStore) EnsureSchema(ctx context.Context) error {
	if err := c.session.Query(cqlCreateTable).WithContext(ctx).Exec(); err != nil {
		return perrors.NewStorageError("create table", err)
	}
	return nil
}

// Save writes every column of the product.
func (c *CassandraStore) Save(ctx context.Context, product Product) (*Product, error) {
	err := c.session.Query(cqlSave,
		gocql.UUID(product.ID),
		product.Name,
		product.Price,
		product.Quantity,
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, perrors.NewStorageError("save", err)
	}
	return &product, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (c *CassandraStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var (
		rowID gocql.UUID
		p     Product
	)
	err := c.session.Query(cqlFindByID, gocql.UUID(id)).
		WithContext(ctx).
		Scan(&rowID, &p.Name, &p.Price, &p.Quantity)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, perrors.NewStorageError("find by id", err)
	}
	p.ID = uuid.UUID(rowID)
	return &p, nil
}

// FindAll pages through the whole table.
func (c *CassandraStore) FindAll(ctx context.Context) ([]Product, error) {
	iter := c.session.Query(cqlFindAll).WithContext(ctx).Iter()
	scanner := iter.Scanner()

	products := make([]Product, 0)
	for scanner.Next() {
		var (
			rowID gocql.UUID
			p     Product
		)
		if err := scanner.Scan(&rowID, &p.Name, &p.Price, &p.Quantity); err != nil {
			_ = iter.Close()
			return nil, perrors.NewStorageError("find all", fmt.Errorf("scan row: %w", err))
		}
		p.ID = uuid.UUID(rowID)
		products = append(products, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, perrors.NewStorageError("find all", err)
	}
	return products, nil
}

// DeleteByID removes a product by its unique identifier. Deleting a missing row is a no-op in CQL.
func (c *CassandraStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := c.session.Query(cqlDelete, gocql.UUID(id)).WithContext(ctx).Exec(); err != nil {
		return perrors.NewStorageError("delete", err)
	}
	return nil
}

func (c *CassandraStore) Ping(ctx context.Context) error {
	if err := c.session.Query(cqlPing).WithContext(ctx).Exec(); err != nil {
		return perrors.NewStorageError("ping", err)
	}
	return nil
}
