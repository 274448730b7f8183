package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cannashop/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// QueryOptions configures pagination bounds and title collation.
type QueryOptions struct {
	DefaultLimit int
	MaxLimit     int
	Locale       language.Tag
}

// DefaultQueryOptions mirrors the storefront defaults: 10 per page, at most 50.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{DefaultLimit: 10, MaxLimit: 50, Locale: language.Spanish}
}

// Sort keys understood by GetAllProducts.
const (
	SortPrice     = "price"
	SortTitle     = "title"
	SortCreatedAt = "createdAt"
)

// ProductQuery holds the filters, sort and page of a listing request.
// Zero values mean "not specified".
type ProductQuery struct {
	Category string
	Status   *bool
	MinPrice *float64
	MaxPrice *float64
	Query    string
	Sort     string
	Order    string
	Limit    int
	Page     int
}

// ProductPage is one page of the filtered catalog.
type ProductPage struct {
	Payload       []models.Product `json:"payload"`
	TotalProducts int              `json:"totalProducts"`
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
	TotalPages    int              `json:"totalPages"`
	HasNextPage   bool             `json:"hasNextPage"`
	HasPrevPage   bool             `json:"hasPrevPage"`
	PrevPage      *int             `json:"prevPage"`
	NextPage      *int             `json:"nextPage"`
}

// ParseProductQuery reads the flat listing parameters through get.
// Values that do not parse are treated as absent.
func ParseProductQuery(get func(key string) string) ProductQuery {
	q := ProductQuery{
		Category: strings.TrimSpace(get("category")),
		Query:    strings.TrimSpace(get("query")),
		Sort:     strings.TrimSpace(get("sort")),
		Order:    strings.TrimSpace(get("order")),
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(get("status"))); err == nil {
		q.Status = &b
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(get("minPrice")), 64); err == nil {
		q.MinPrice = &f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(get("maxPrice")), 64); err == nil {
		q.MaxPrice = &f
	}
	if n, err := strconv.Atoi(strings.TrimSpace(get("limit"))); err == nil {
		q.Limit = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil {
		q.Page = n
	}
	applyQueryShorthand(&q)
	return q
}

// applyQueryShorthand turns query=category:<x> and query=status:<bool> into the
// typed filters. Explicit category/status parameters take precedence.
func applyQueryShorthand(q *ProductQuery) {
	key, val, ok := strings.Cut(q.Query, ":")
	key, val = strings.TrimSpace(key), strings.TrimSpace(val)
	if !ok || key == "" || val == "" {
		return
	}
	switch strings.ToLower(key) {
	case "category":
		if q.Category == "" {
			q.Category = val
		}
		q.Query = ""
	case "status":
		if q.Status == nil {
			b := strings.EqualFold(val, "true")
			q.Status = &b
		}
		q.Query = ""
	}
}

// GetAllProducts filters, sorts and paginates the catalog.
func (s *ProductService) GetAllProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	filtered := filterProducts(products, q)
	s.sortProducts(filtered, q)

	limit := s.clampLimit(q.Limit)
	page := q.Page
	if page < 1 {
		page = 1
	}
	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	// Pages past the end are empty; the offset is only computed for pages that exist.
	payload := []models.Product{}
	if page <= totalPages {
		skip := (page - 1) * limit
		payload = filtered[skip:min(skip+limit, total)]
	}

	result := &ProductPage{
		Payload:       payload,
		TotalProducts: total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages,
		HasPrevPage:   page > 1,
		HasNextPage:   page < totalPages,
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

func (s *ProductService) clampLimit(limit int) int {
	if limit == 0 {
		limit = s.opts.DefaultLimit
	}
	return max(1, min(limit, s.opts.MaxLimit))
}

// filterProducts narrows by category, status, min/max price and free text, in that order.
func filterProducts(products []models.Product, q ProductQuery) []models.Product {
	needle := strings.ToLower(q.Query)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(p models.Product, needle string) bool {
	fields := []string{p.Title, p.Description}
	for _, key := range []string{"strain", "format", "type"} {
		if v, ok := p.SpecString(key); ok {
			fields = append(fields, v)
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortProducts sorts in place; without a known sort key the store order is kept.
func (s *ProductService) sortProducts(products []models.Product, q ProductQuery) {
	key, desc := q.Sort, strings.EqualFold(q.Order, "desc")
	// Legacy listing links use sort=asc|desc to mean price order.
	switch strings.ToLower(key) {
	case "asc":
		key, desc = SortPrice, false
	case "desc":
		key, desc = SortPrice, true
	}

	var compare func(a, b models.Product) int
	switch key {
	case SortPrice:
		compare = func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortTitle:
		col := collate.New(s.opts.Locale)
		compare = func(a, b models.Product) int { return col.CompareString(a.Title, b.Title) }
	case SortCreatedAt:
		compare = func(a, b models.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return
	}
	if desc {
		asc := compare
		compare = func(a, b models.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(products, compare)
}
