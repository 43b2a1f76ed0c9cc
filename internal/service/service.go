// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create validates the input and adds a new product with a generated ID.
	// Returns an *errors.InvalidArgumentError naming the first field that failed.
	Create(ctx context.Context, input ProductInput) (*ProductDto, error)

	// Update merges the present fields of input into the stored product.
	// Returns an *errors.NotFoundError if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDto, error)

	// Get retrieves a single product by its unique identifier.
	// Returns an *errors.NotFoundError if no product exists with the given ID.
	Get(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Delete removes a product by its ID. Unknown IDs are not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetAll returns all stored products.
	// Returns an empty slice if no products exist.
	GetAll(ctx context.Context) ([]ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository      store.ProductStore
	publisher       messaging.Publisher
	validate        *validator.Validate
	productsCounter metric.Int64Counter
	now             func() time.Time
}

// NewService creates a new instance of ProductService with the provided repository.
// A nil publisher disables lifecycle events.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	meter := otel.Meter("inventory-service")
	productsCounter, err := meter.Int64Counter("product_changes",
		metric.WithDescription("Total number of product changes by operation"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_changes counter: %v", err))
	}
	return &Service{
		repository:      repo,
		publisher:       publisher,
		validate:        NewValidator(),
		productsCounter: productsCounter,
		now:             time.Now,
	}
}

// NewValidator returns a validator that reports fields by their json names
// and knows the notblank rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProductInput carries client supplied product fields. A nil field is absent.
// The validate tags apply to Create; Update merges present fields instead.
type ProductInput struct {
	Name     *string  `json:"name"     validate:"required,notblank"`
	Price    *float64 `json:"price"    validate:"required,gte=0"`
	Quantity *int32   `json:"quantity" validate:"required,gte=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Quantity int32     `json:"quantity"`
}

// Create validates input, stores a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, input ProductInput) (*ProductDto, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product := store.NewProduct(uuid.New(), *input.Name, *input.Price, *input.Quantity)
	saved, err := s.repository.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated(saved.ID, saved.Name, saved.Price, saved.Quantity, s.now()))
	s.productsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create")))

	return toDto(saved), nil
}

// Update reads the product, overwrites the fields present in input and stores the result.
// A blank name, a zero price or a zero quantity leaves the stored value untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDto, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && !s.isBlank(*input.Name) {
		product.Name = *input.Name
	}
	if input.Price != nil && *input.Price > 0 {
		product.Price = *input.Price
	}
	if input.Quantity != nil && *input.Quantity > 0 {
		product.Quantity = *input.Quantity
	}

	if _, err := s.repository.Save(ctx, *product); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductUpdated(product.ID, product.Name, product.Price, product.Quantity, s.now()))
	s.productsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))

	return toDto(product), nil
}

// Get retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

// Delete removes the product with the given ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductDeleted(id, s.now()))
	s.productsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	return nil
}

// GetAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) GetAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// find translates the store's not-found sentinel into a NotFoundError carrying the ID.
func (s *Service) find(ctx context.Context, id uuid.UUID) (*store.Product, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, &perrors.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return product, nil
}

// validateInput reports the first failing field in declaration order: name, price, quantity.
func (s *Service) validateInput(input ProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return &perrors.InvalidArgumentError{Field: first.Field(), Rule: first.Tag()}
	}
	return fmt.Errorf("failed to validate product: %w", err)
}

// isBlank reports whether name fails the notblank rule applied on Create.
func (s *Service) isBlank(name string) bool {
	return s.validate.Var(name, "notblank") != nil
}

func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
}
