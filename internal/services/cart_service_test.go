package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cannashop/internal/models"
	"cannashop/internal/repositories"
	"cannashop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetAll(ctx context.Context) ([]models.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cart), args.Error(1)
}

func (m *MockCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id string) (*models.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

type cartFixture struct {
	service  *services.CartService
	carts    *repositories.MemoryCartRepository
	products *repositories.MemoryProductRepository
}

func newCartFixture(opts ...services.CartOption) cartFixture {
	carts := repositories.NewMemoryCartRepository()
	products := repositories.NewMemoryProductRepository()
	return cartFixture{
		service:  services.NewCartService(carts, products, opts...),
		carts:    carts,
		products: products,
	}
}

func (f cartFixture) addProduct(t *testing.T, code string, stock int, status bool) *models.Product {
	t.Helper()
	p := &models.Product{Code: code, Title: code, Category: "flowers", Price: 4500, Stock: stock, Status: status}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f cartFixture) newCart(t *testing.T) *models.Cart {
	t.Helper()
	cart, err := f.service.CreateCart(context.Background())
	require.NoError(t, err)
	return cart
}

func TestCartService_CreateCart(t *testing.T) {
	f := newCartFixture()

	cart := f.newCart(t)
	assert.NotEmpty(t, cart.ID)
	assert.NotNil(t, cart.Products)
	assert.Empty(t, cart.Products)

	stored, err := f.service.GetCart(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, stored.ID)
}

func TestCartService_GetCartNotFound(t *testing.T) {
	f := newCartFixture()

	_, err := f.service.GetCart(context.Background(), "nope")
	var nf *services.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "cart", nf.Resource)
}

func TestCartService_AddProductTwice(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 25, true)
	cart := f.newCart(t)

	_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)
	updated, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []models.CartItem{{ProductID: p.ID, Quantity: 2}}, updated.Products)

	stored, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Products, stored.Products)
}

func TestCartService_AddProductStockExhausted(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 1, true)
	cart := f.newCart(t)

	updated, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Products[0].Quantity)

	_, err = f.service.AddProductToCart(ctx, cart.ID, p.ID)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Products[0].Quantity)
}

func TestCartService_AddProductRejected(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	inactive := f.addProduct(t, "OFF-001", 10, false)
	empty := f.addProduct(t, "ZERO-001", 0, true)
	cart := f.newCart(t)

	var verr *services.ValidationError
	_, err := f.service.AddProductToCart(ctx, cart.ID, inactive.ID)
	assert.ErrorAs(t, err, &verr)
	_, err = f.service.AddProductToCart(ctx, cart.ID, empty.ID)
	assert.ErrorAs(t, err, &verr)

	var nf *services.NotFoundError
	_, err = f.service.AddProductToCart(ctx, cart.ID, "missing")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Resource)

	_, err = f.service.AddProductToCart(ctx, "missing", inactive.ID)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "cart", nf.Resource)
}

func TestCartService_UpdateProductQuantity(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 5, true)
	other := f.addProduct(t, "WW-001", 5, true)
	cart := f.newCart(t)

	_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)

	updated, err := f.service.UpdateProductQuantity(ctx, cart.ID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Products[0].Quantity)

	_, err = f.service.UpdateProductQuantity(ctx, cart.ID, p.ID, 6)
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.service.UpdateProductQuantity(ctx, cart.ID, other.ID, 1)
	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = f.service.UpdateProductQuantity(ctx, cart.ID, "missing", 1)
	assert.ErrorAs(t, err, &nf)
}

func TestCartService_UpdateToZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	run := func(mutate func(f cartFixture, cartID, productID string) (*models.Cart, error)) ([]models.CartItem, error) {
		f := newCartFixture()
		p := f.addProduct(t, "OGK-001", 5, true)
		keep := f.addProduct(t, "WW-001", 5, true)
		cart := f.newCart(t)
		_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
		require.NoError(t, err)
		_, err = f.service.AddProductToCart(ctx, cart.ID, keep.ID)
		require.NoError(t, err)

		if _, err := mutate(f, cart.ID, p.ID); err != nil {
			return nil, err
		}
		stored, err := f.service.GetCart(ctx, cart.ID)
		require.NoError(t, err)
		return stored.Products, nil
	}

	viaUpdate, err := run(func(f cartFixture, cartID, productID string) (*models.Cart, error) {
		return f.service.UpdateProductQuantity(ctx, cartID, productID, 0)
	})
	require.NoError(t, err)
	viaRemove, err := run(func(f cartFixture, cartID, productID string) (*models.Cart, error) {
		return f.service.RemoveProductFromCart(ctx, cartID, productID)
	})
	require.NoError(t, err)

	require.Len(t, viaUpdate, 1)
	assert.Equal(t, len(viaRemove), len(viaUpdate))
	assert.Equal(t, viaRemove[0].Quantity, viaUpdate[0].Quantity)
}

func TestCartService_RemoveMissingLine(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 5, true)
	cart := f.newCart(t)
	_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)
	before, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)

	_, err = f.service.RemoveProductFromCart(ctx, cart.ID, "not-in-cart")
	var nf *services.NotFoundError
	require.ErrorAs(t, err, &nf)

	after, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Products, after.Products)
}

func TestCartService_ClearCart(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 5, true)
	cart := f.newCart(t)
	_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
	require.NoError(t, err)

	cleared, err := f.service.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.NotNil(t, cleared.Products)
	assert.Empty(t, cleared.Products)

	_, err = f.service.ClearCart(ctx, "missing")
	var nf *services.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCartService_ReplaceAllLines(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	cart := f.newCart(t)

	lines := []models.CartItem{{ProductID: "a", Quantity: 3}, {ProductID: "b", Quantity: 99}}
	replaced, err := f.service.ReplaceAllLines(ctx, cart.ID, lines)
	require.NoError(t, err)
	assert.Equal(t, lines, replaced.Products)

	_, err = f.service.ReplaceAllLines(ctx, cart.ID, []models.CartItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "a", Quantity: 2},
		{ProductID: "", Quantity: 0},
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)

	stored, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, lines, stored.Products)

	emptied, err := f.service.ReplaceAllLines(ctx, cart.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, emptied.Products)
}

func TestCartService_GetCartWithDetails(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 5, true)
	gone := f.addProduct(t, "WW-001", 5, true)
	cart := f.newCart(t)
	_, err := f.service.ReplaceAllLines(ctx, cart.ID, []models.CartItem{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: gone.ID, Quantity: 1},
	})
	require.NoError(t, err)
	_, err = f.products.Delete(ctx, gone.ID)
	require.NoError(t, err)

	detail, err := f.service.GetCartWithDetails(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, detail.Products, 2)
	require.NotNil(t, detail.Products[0].Product)
	assert.Equal(t, "OGK-001", detail.Products[0].Product.Code)
	assert.Nil(t, detail.Products[1].Product)
	assert.Equal(t, 1, detail.Products[1].Quantity)
	assert.Equal(t, 9000.0, detail.Total)
}

func TestCartService_StoreErrorsPropagate(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	service := services.NewCartService(carts, products)
	ctx := context.Background()
	storeErr := errors.New("connection reset")

	carts.On("GetByID", ctx, "c1").Return(&models.Cart{ID: "c1", Products: []models.CartItem{}}, nil)
	products.On("GetByID", ctx, "p1").Return(&models.Product{ID: "p1", Stock: 3, Status: true}, nil)
	carts.On("Update", ctx, mock.AnythingOfType("*models.Cart")).Return(storeErr).Once()

	_, err := service.AddProductToCart(ctx, "c1", "p1")
	assert.ErrorIs(t, err, storeErr)
	var nf *services.NotFoundError
	assert.False(t, errors.As(err, &nf))

	carts.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestCartService_LockingSerializesAdds(t *testing.T) {
	f := newCartFixture(services.WithCartLocking())
	ctx := context.Background()
	p := f.addProduct(t, "OGK-001", 100, true)
	cart := f.newCart(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AddProductToCart(ctx, cart.ID, p.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.service.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, 20, stored.Products[0].Quantity)
}
