package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nickabs/shopfront/internal/ui/types"
)

// ListProducts returns the products matching the query
func (c *Client) ListProducts(ctx context.Context, query types.ProductQuery) (*types.ProductList, error) {
	endpoint := "/api/products"
	if qs := productQueryValues(query).Encode(); qs != "" {
		endpoint += "?" + qs
	}

	list, err := doJSON[types.ProductList](ctx, c, endpoint, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetProduct returns a single product
func (c *Client) GetProduct(ctx context.Context, productID string) (*types.Product, error) {
	product, err := doJSON[types.Product](ctx, c, "/api/products/"+url.PathEscape(productID), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCategories returns all categories sorted by name
func (c *Client) ListCategories(ctx context.Context) ([]types.Category, error) {
	return doJSON[[]types.Category](ctx, c, "/api/categories", RequestOptions{})
}

// GetCategory returns a single category
func (c *Client) GetCategory(ctx context.Context, categoryID string) (*types.Category, error) {
	category, err := doJSON[types.Category](ctx, c, "/api/categories/"+url.PathEscape(categoryID), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func productQueryValues(q types.ProductQuery) url.Values {
	v := url.Values{}
	if q.CategoryID != "" {
		v.Set("category", q.CategoryID)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.MinPrice != nil {
		v.Set("min_price", strconv.FormatInt(*q.MinPrice, 10))
	}
	if q.MaxPrice != nil {
		v.Set("max_price", strconv.FormatInt(*q.MaxPrice, 10))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}
