package services_test

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"cannashop/internal/models"
	"cannashop/internal/repositories"
	"cannashop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// catalogRepo stores products in the given order with increasing creation times.
func catalogRepo(t *testing.T, products ...models.Product) *repositories.MemoryProductRepository {
	t.Helper()
	repo := repositories.NewMemoryProductRepository()
	for i := range products {
		p := products[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		}
		require.NoError(t, repo.Create(context.Background(), &p))
	}
	return repo
}

func product(code, title, category string, price float64) models.Product {
	return models.Product{Code: code, Title: title, Category: category, Price: price, Stock: 10, Status: true}
}

func codes(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Code)
	}
	return out
}

func TestGetAllProducts_CategorySortedByPriceDesc(t *testing.T) {
	repo := catalogRepo(t,
		product("OGK-001", "OG Kush", "flowers", 4500),
		product("WW-001", "White Widow", "flowers", 5200),
		product("GUM-001", "Gomitas", "edibles", 9000),
		product("AK-001", "AK-47", "flowers", 3900),
	)
	service := services.NewProductService(repo, services.DefaultQueryOptions())

	page, err := service.GetAllProducts(context.Background(), services.ProductQuery{
		Category: "flowers", Sort: services.SortPrice, Order: "desc", Limit: 1, Page: 1,
	})
	require.NoError(t, err)
	require.Len(t, page.Payload, 1)
	assert.Equal(t, 5200.0, page.Payload[0].Price)
	assert.Equal(t, 3, page.TotalProducts)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)
	assert.Nil(t, page.PrevPage)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 2, *page.NextPage)
}

func TestGetAllProducts_Filters(t *testing.T) {
	inactive := product("OFF-001", "Vaporizador", "accessories", 30000)
	inactive.Status = false
	edible := product("GUM-001", "Gomitas de frutilla", "edibles", 9000)
	edible.Specs = map[string]any{"format": "gummies"}
	flower := product("OGK-001", "OG Kush", "flowers", 4500)
	flower.Description = "Clásica índica"
	flower.Specs = map[string]any{"strain": "Kush"}

	repo := catalogRepo(t, flower, edible, inactive, product("AK-001", "AK-47", "flowers", 3900))
	service := services.NewProductService(repo, services.DefaultQueryOptions())
	ctx := context.Background()

	tests := []struct {
		name  string
		query services.ProductQuery
		want  []string
	}{
		{name: "no filters keeps store order", want: []string{"OGK-001", "GUM-001", "OFF-001", "AK-001"}},
		{name: "status false", query: services.ProductQuery{Status: ptr(false)}, want: []string{"OFF-001"}},
		{name: "price range is inclusive", query: services.ProductQuery{MinPrice: ptr(4500.0), MaxPrice: ptr(9000.0)}, want: []string{"OGK-001", "GUM-001"}},
		{name: "text without matches", query: services.ProductQuery{Query: "widow"}, want: []string{}},
		{name: "text matches description case-insensitively", query: services.ProductQuery{Query: "ÍNDICA"}, want: []string{"OGK-001"}},
		{name: "text matches specs.format", query: services.ProductQuery{Query: "gumm"}, want: []string{"GUM-001"}},
		{name: "text matches specs.strain", query: services.ProductQuery{Query: "kush"}, want: []string{"OGK-001"}},
		{name: "category and text combine", query: services.ProductQuery{Category: "edibles", Query: "kush"}, want: []string{}},
		{name: "unknown sort key keeps order", query: services.ProductQuery{Sort: "stock"}, want: []string{"OGK-001", "GUM-001", "OFF-001", "AK-001"}},
		{name: "legacy sort=asc orders by price", query: services.ProductQuery{Sort: "asc"}, want: []string{"AK-001", "OGK-001", "GUM-001", "OFF-001"}},
		{name: "newest first", query: services.ProductQuery{Sort: services.SortCreatedAt, Order: "desc"}, want: []string{"AK-001", "OFF-001", "GUM-001", "OGK-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.GetAllProducts(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(page.Payload))
		})
	}
}

func TestGetAllProducts_TitleSortUsesCollation(t *testing.T) {
	repo := catalogRepo(t,
		product("C", "zeta", "accessories", 1),
		product("B", "Ébano", "accessories", 1),
		product("A", "edén", "accessories", 1),
		product("D", "Árbol", "accessories", 1),
	)
	service := services.NewProductService(repo, services.DefaultQueryOptions())

	page, err := service.GetAllProducts(context.Background(), services.ProductQuery{Sort: services.SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "A", "C"}, codes(page.Payload))
}

func TestGetAllProducts_StableTies(t *testing.T) {
	repo := catalogRepo(t,
		product("A", "a", "flowers", 100),
		product("B", "b", "flowers", 100),
		product("C", "c", "flowers", 50),
	)
	service := services.NewProductService(repo, services.DefaultQueryOptions())

	page, err := service.GetAllProducts(context.Background(), services.ProductQuery{Sort: services.SortPrice, Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, codes(page.Payload))
}

func TestGetAllProducts_LimitAndPageBounds(t *testing.T) {
	var products []models.Product
	for i := 0; i < 60; i++ {
		products = append(products, product(fmt.Sprintf("P-%02d", i), "p", "accessories", float64(i+1)))
	}
	service := services.NewProductService(catalogRepo(t, products...), services.DefaultQueryOptions())
	ctx := context.Background()

	page, err := service.GetAllProducts(ctx, services.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 6, page.TotalPages)

	page, err = service.GetAllProducts(ctx, services.ProductQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Payload, 50)

	page, err = service.GetAllProducts(ctx, services.ProductQuery{Limit: -3, Page: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, 1, page.Page)

	page, err = service.GetAllProducts(ctx, services.ProductQuery{Limit: 50, Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Payload)
	assert.NotNil(t, page.Payload)
	assert.False(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)
}

func TestGetAllProducts_HugePageIsEmpty(t *testing.T) {
	var products []models.Product
	for i := 0; i < 12; i++ {
		products = append(products, product(fmt.Sprintf("P-%02d", i), "p", "accessories", float64(i+1)))
	}
	service := services.NewProductService(catalogRepo(t, products...), services.DefaultQueryOptions())

	q := services.ParseProductQuery(func(key string) string {
		if key == "page" {
			return strconv.Itoa(math.MaxInt)
		}
		return ""
	})
	require.Equal(t, math.MaxInt, q.Page)

	var page *services.ProductPage
	assert.NotPanics(t, func() {
		var err error
		page, err = service.GetAllProducts(context.Background(), q)
		require.NoError(t, err)
	})
	require.NotNil(t, page)
	assert.Empty(t, page.Payload)
	assert.NotNil(t, page.Payload)
	assert.Equal(t, 12, page.TotalProducts)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNextPage)
	assert.Nil(t, page.NextPage)
}

func TestGetAllProducts_EmptyResult(t *testing.T) {
	service := services.NewProductService(catalogRepo(t), services.DefaultQueryOptions())

	page, err := service.GetAllProducts(context.Background(), services.ProductQuery{Category: "flowers"})
	require.NoError(t, err)
	assert.Empty(t, page.Payload)
	assert.Equal(t, 0, page.TotalProducts)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)
}

func TestGetAllProducts_PaginationLaw(t *testing.T) {
	var products []models.Product
	for i := 0; i < 23; i++ {
		category := []string{"flowers", "extracts", "edibles"}[i%3]
		products = append(products, product(fmt.Sprintf("P-%02d", i), fmt.Sprintf("item %d", i%5), category, float64(i%7)*100))
	}
	service := services.NewProductService(catalogRepo(t, products...), services.DefaultQueryOptions())
	ctx := context.Background()

	queries := []services.ProductQuery{
		{Limit: 4},
		{Limit: 3, Category: "flowers"},
		{Limit: 5, Sort: services.SortPrice, Order: "desc"},
		{Limit: 2, Sort: services.SortTitle, MinPrice: ptr(200.0)},
		{Limit: 7, Query: "item 3"},
	}
	for _, q := range queries {
		first, err := service.GetAllProducts(ctx, q)
		require.NoError(t, err)

		seen := map[string]bool{}
		count := 0
		for p := 1; p <= first.TotalPages; p++ {
			q.Page = p
			page, err := service.GetAllProducts(ctx, q)
			require.NoError(t, err)
			for _, item := range page.Payload {
				assert.False(t, seen[item.ID], "item %s appears on two pages", item.Code)
				seen[item.ID] = true
			}
			count += len(page.Payload)
		}
		assert.Equal(t, first.TotalProducts, count)
	}
}

func TestGetAllProducts_Idempotent(t *testing.T) {
	repo := catalogRepo(t,
		product("A", "a", "flowers", 300),
		product("B", "b", "flowers", 100),
		product("C", "c", "flowers", 300),
	)
	service := services.NewProductService(repo, services.DefaultQueryOptions())
	q := services.ProductQuery{Sort: services.SortPrice, Limit: 2, Page: 1}

	first, err := service.GetAllProducts(context.Background(), q)
	require.NoError(t, err)
	second, err := service.GetAllProducts(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first.Payload, second.Payload)
	assert.Equal(t, first.TotalPages, second.TotalPages)
	assert.Equal(t, first.Page, second.Page)
}

func TestParseProductQuery(t *testing.T) {
	values, err := url.ParseQuery("category=flowers&status=true&minPrice=100.5&maxPrice=abc&query=+kush+&sort=price&order=desc&limit=5&page=x")
	require.NoError(t, err)

	q := services.ParseProductQuery(values.Get)
	assert.Equal(t, "flowers", q.Category)
	require.NotNil(t, q.Status)
	assert.True(t, *q.Status)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 100.5, *q.MinPrice)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, "kush", q.Query)
	assert.Equal(t, "price", q.Sort)
	assert.Equal(t, "desc", q.Order)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 0, q.Page)

	empty := services.ParseProductQuery(func(string) string { return "" })
	assert.Equal(t, services.ProductQuery{}, empty)
}

func TestParseProductQuery_Shorthand(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		category string
		status   *bool
		query    string
	}{
		{name: "category shorthand", raw: "query=category:edibles", category: "edibles"},
		{name: "status shorthand", raw: "query=status:false", status: ptr(false)},
		{name: "explicit category wins", raw: "category=flowers&query=category:edibles", category: "flowers"},
		{name: "other keys stay free text", raw: "query=strain:kush", query: "strain:kush"},
		{name: "missing value stays free text", raw: "query=category:", query: "category:"},
		{name: "plain text", raw: "query=gomitas", query: "gomitas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)

			q := services.ParseProductQuery(values.Get)
			assert.Equal(t, tt.category, q.Category)
			assert.Equal(t, tt.status, q.Status)
			assert.Equal(t, tt.query, q.Query)
		})
	}
}

func TestGetAllProducts_StatusShorthandFilters(t *testing.T) {
	inactive := product("OFF-001", "Apagado", "accessories", 100)
	inactive.Status = false
	repo := catalogRepo(t, product("ON-001", "Encendido", "accessories", 100), inactive)
	service := services.NewProductService(repo, services.DefaultQueryOptions())

	values, err := url.ParseQuery("query=status:false")
	require.NoError(t, err)
	page, err := service.GetAllProducts(context.Background(), services.ParseProductQuery(values.Get))
	require.NoError(t, err)
	assert.Equal(t, []string{"OFF-001"}, codes(page.Payload))
}
