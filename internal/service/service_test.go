package service

import (
	"context"
	"errors"
	"testing"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []store.Product
	product  *store.Product
	error    error
	saveErr  error
	saved    []store.Product
	deleted  []uuid.UUID
}

// Simulate saving a product
func (m *mockProductStore) Save(_ context.Context, product store.Product) (*store.Product, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saved = append(m.saved, product)
	return &product, nil
}

// Simulate finding a product by ID
func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	p := *m.product
	return &p, nil
}

// Simulate finding all products
func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	return m.products, m.error
}

// Simulate deleting a product by ID
func (m *mockProductStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	if m.error != nil {
		return m.error
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockProductStore) Ping(context.Context) error {
	return m.error
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func ptr[T any](v T) *T {
	return &v
}

var (
	mockID    = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	fixedTime = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(s store.ProductStore, p messaging.Publisher) *Service {
	svc := NewService(s, p)
	svc.now = func() time.Time { return fixedTime }
	return svc
}

func Test_ProductService_Create(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name          string
		input         ProductInput
		mockStore     *mockProductStore
		expectedField string
		expectedRule  string
		expectError   error
	}{
		{
			name:      "Success - all fields valid",
			input:     ProductInput{Name: ptr("Widget"), Price: ptr(9.99), Quantity: ptr(int32(5))},
			mockStore: &mockProductStore{},
		},
		{
			name:      "Success - zero price and quantity",
			input:     ProductInput{Name: ptr("Freebie"), Price: ptr(0.0), Quantity: ptr(int32(0))},
			mockStore: &mockProductStore{},
		},
		{
			name:          "Error - name missing",
			input:         ProductInput{Price: ptr(1.0), Quantity: ptr(int32(1))},
			mockStore:     &mockProductStore{},
			expectedField: "name",
			expectedRule:  "required",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - name blank",
			input:         ProductInput{Name: ptr("   "), Price: ptr(1.0), Quantity: ptr(int32(1))},
			mockStore:     &mockProductStore{},
			expectedField: "name",
			expectedRule:  "notblank",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - name empty",
			input:         ProductInput{Name: ptr(""), Price: ptr(1.0), Quantity: ptr(int32(1))},
			mockStore:     &mockProductStore{},
			expectedField: "name",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - price missing",
			input:         ProductInput{Name: ptr("Widget"), Quantity: ptr(int32(1))},
			mockStore:     &mockProductStore{},
			expectedField: "price",
			expectedRule:  "required",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - price negative",
			input:         ProductInput{Name: ptr("Widget"), Price: ptr(-0.01), Quantity: ptr(int32(1))},
			mockStore:     &mockProductStore{},
			expectedField: "price",
			expectedRule:  "gte",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - quantity missing",
			input:         ProductInput{Name: ptr("Widget"), Price: ptr(1.0)},
			mockStore:     &mockProductStore{},
			expectedField: "quantity",
			expectedRule:  "required",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - quantity negative",
			input:         ProductInput{Name: ptr("Widget"), Price: ptr(1.0), Quantity: ptr(int32(-1))},
			mockStore:     &mockProductStore{},
			expectedField: "quantity",
			expectedRule:  "gte",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - name reported before price and quantity",
			input:         ProductInput{Name: ptr(" "), Price: ptr(-1.0), Quantity: ptr(int32(-1))},
			mockStore:     &mockProductStore{},
			expectedField: "name",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:          "Error - price reported before quantity",
			input:         ProductInput{Name: ptr("Widget"), Price: ptr(-1.0), Quantity: ptr(int32(-1))},
			mockStore:     &mockProductStore{},
			expectedField: "price",
			expectError:   perrors.ErrInvalidArgument,
		},
		{
			name:        "Error - store error",
			input:       ProductInput{Name: ptr("Widget"), Price: ptr(9.99), Quantity: ptr(int32(5))},
			mockStore:   &mockProductStore{saveErr: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
			service := newTestService(tc.mockStore, publisher)
			// when
			created, err := service.Create(context.Background(), tc.input)
			// then
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				if tc.expectedField != "" {
					var invalid *perrors.InvalidArgumentError
					require.ErrorAs(t, err, &invalid)
					assert.Equal(t, tc.expectedField, invalid.Field)
					if tc.expectedRule != "" {
						assert.Equal(t, tc.expectedRule, invalid.Rule)
					}
					assert.Empty(t, tc.mockStore.saved, "no write expected on invalid input")
				}
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, created.ID)
			assert.Equal(t, *tc.input.Name, created.Name)
			assert.Equal(t, *tc.input.Price, created.Price)
			assert.Equal(t, *tc.input.Quantity, created.Quantity)
			require.Len(t, tc.mockStore.saved, 1, "exactly one write expected")
			assert.Equal(t, created.ID, tc.mockStore.saved[0].ID)
			publisher.AssertCalled(t, "Publish", mock.Anything,
				events.ProductCreated(created.ID, created.Name, created.Price, created.Quantity, fixedTime))
		})
	}
}

func Test_ProductService_Create_GeneratesDistinctIDs(t *testing.T) {
	// given
	service := newTestService(&mockProductStore{}, nil)
	input := ProductInput{Name: ptr("Widget"), Price: ptr(1.0), Quantity: ptr(int32(1))}
	// when
	first, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	second, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	// then
	assert.NotEqual(t, first.ID, second.ID)
}

func Test_ProductService_Update(t *testing.T) {
	ErrStoreError := errors.New("store error")
	existing := store.NewProduct(mockID, "Widget", 9.99, 5)
	testCases := []struct {
		name        string
		input       ProductInput
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name:      "Success - all fields overwritten",
			input:     ProductInput{Name: ptr("Gadget"), Price: ptr(19.5), Quantity: ptr(int32(7))},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Gadget", Price: 19.5, Quantity: 7},
		},
		{
			name:      "Success - only quantity present",
			input:     ProductInput{Quantity: ptr(int32(10))},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 10},
		},
		{
			name:      "Success - empty input keeps everything",
			input:     ProductInput{},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 5},
		},
		{
			name:      "Success - blank name is ignored",
			input:     ProductInput{Name: ptr("  ")},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 5},
		},
		{
			name:      "Success - name of separator characters is ignored",
			input:     ProductInput{Name: ptr("\x1f\x1c ")},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 5},
		},
		{
			name:      "Success - zero price and quantity are ignored",
			input:     ProductInput{Price: ptr(0.0), Quantity: ptr(int32(0))},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 5},
		},
		{
			name:      "Success - negative price and quantity are ignored",
			input:     ProductInput{Price: ptr(-3.0), Quantity: ptr(int32(-3))},
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Widget", Price: 9.99, Quantity: 5},
		},
		{
			name:        "Error - product not found",
			input:       ProductInput{Name: ptr("Gadget")},
			mockStore:   &mockProductStore{error: perrors.ErrProductNotFound},
			expectError: perrors.ErrProductNotFound,
		},
		{
			name:        "Error - store error on read",
			input:       ProductInput{Name: ptr("Gadget")},
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
		{
			name:        "Error - store error on write",
			input:       ProductInput{Name: ptr("Gadget")},
			mockStore:   &mockProductStore{product: &existing, saveErr: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
			service := newTestService(tc.mockStore, publisher)
			// when
			updated, err := service.Update(context.Background(), mockID, tc.input)
			// then
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				assert.Empty(t, tc.mockStore.saved)
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
			require.Len(t, tc.mockStore.saved, 1, "exactly one write expected")
			assert.Equal(t, store.NewProduct(tc.expected.ID, tc.expected.Name, tc.expected.Price, tc.expected.Quantity),
				tc.mockStore.saved[0])
			publisher.AssertCalled(t, "Publish", mock.Anything,
				events.ProductUpdated(mockID, tc.expected.Name, tc.expected.Price, tc.expected.Quantity, fixedTime))
		})
	}
}

func Test_ProductService_Update_NotFoundCarriesID(t *testing.T) {
	// given
	service := newTestService(&mockProductStore{error: perrors.ErrProductNotFound}, nil)
	// when
	_, err := service.Update(context.Background(), mockID, ProductInput{Name: ptr("Gadget")})
	// then
	var notFound *perrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, mockID, notFound.ID)
}

func Test_ProductService_Get(t *testing.T) {
	ErrStoreError := errors.New("store error")
	existing := store.NewProduct(mockID, "Toy", 2.5, 3)
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    *ProductDto
		expectError error
	}{
		{
			name:      "Success - product found",
			mockStore: &mockProductStore{product: &existing},
			expected:  &ProductDto{ID: mockID, Name: "Toy", Price: 2.5, Quantity: 3},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: perrors.ErrProductNotFound},
			expectError: perrors.ErrProductNotFound,
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, nil)
			// when
			found, err := service.Get(context.Background(), mockID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_Delete(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectError error
	}{
		{
			name:      "Success - product deleted",
			mockStore: &mockProductStore{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
			service := newTestService(tc.mockStore, publisher)
			// when
			err := service.Delete(context.Background(), mockID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []uuid.UUID{mockID}, tc.mockStore.deleted)
			publisher.AssertCalled(t, "Publish", mock.Anything, events.ProductDeleted(mockID, fixedTime))
		})
	}
}

func Test_ProductService_GetAll(t *testing.T) {
	ErrStoreError := errors.New("store error")
	testCases := []struct {
		name         string
		mockStore    *mockProductStore
		expectedList []ProductDto
		expectError  error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{
				products: []store.Product{store.NewProduct(mockID, "Toy", 1, 1)},
			},
			expectedList: []ProductDto{{ID: mockID, Name: "Toy", Price: 1, Quantity: 1}},
		},
		{
			name:         "Success - no products",
			mockStore:    &mockProductStore{products: []store.Product{}},
			expectedList: []ProductDto{},
		},
		{
			name:         "Success - nil store result",
			mockStore:    &mockProductStore{},
			expectedList: []ProductDto{},
		},
		{
			name:        "Error - store error",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: ErrStoreError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(tc.mockStore, nil)
			// when
			found, err := service.GetAll(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, tc.expectedList, found)
		})
	}
}

func Test_ProductService_PublishFailureIsIgnored(t *testing.T) {
	// given
	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	mockStore := &mockProductStore{}
	service := newTestService(mockStore, publisher)
	// when
	created, err := service.Create(context.Background(),
		ProductInput{Name: ptr("Widget"), Price: ptr(9.99), Quantity: ptr(int32(5))})
	// then
	require.NoError(t, err)
	assert.Equal(t, "Widget", created.Name)
	assert.Len(t, mockStore.saved, 1)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func Test_ProductService_Lifecycle_MemoryStore(t *testing.T) {
	// given
	ctx := context.Background()
	service := newTestService(store.NewMemoryStore(), nil)

	// when / then
	created, err := service.Create(ctx, ProductInput{Name: ptr("Widget"), Price: ptr(9.99), Quantity: ptr(int32(5))})
	require.NoError(t, err)

	found, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	updated, err := service.Update(ctx, created.ID, ProductInput{Quantity: ptr(int32(10))})
	require.NoError(t, err)
	assert.Equal(t, &ProductDto{ID: created.ID, Name: "Widget", Price: 9.99, Quantity: 10}, updated)

	all, err := service.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ProductDto{*updated}, all)

	require.NoError(t, service.Delete(ctx, created.ID))
	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	require.ErrorIs(t, err, perrors.ErrProductNotFound)
}
