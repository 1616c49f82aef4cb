package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nickabs/shopfront/internal/ui/types"
)

type cartItemRequest struct {
	ProductID string `json:"product_id,omitempty"`
	Quantity  int32  `json:"quantity"`
}

// GetCart returns the signed-in user's cart
func (c *Client) GetCart(ctx context.Context, accessToken string) (*types.Cart, error) {
	cart, err := doJSON[types.Cart](ctx, c, "/api/cart", RequestOptions{
		Headers: bearer(accessToken),
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds quantity units of a product to the cart and returns the updated cart
func (c *Client) AddToCart(ctx context.Context, accessToken, productID string, quantity int32) (*types.Cart, error) {
	cart, err := doJSON[types.Cart](ctx, c, "/api/cart", RequestOptions{
		Method:  http.MethodPost,
		Headers: bearer(accessToken),
		Body:    cartItemRequest{ProductID: productID, Quantity: quantity},
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the quantity of a product in the cart (0 removes it)
func (c *Client) UpdateCartItem(ctx context.Context, accessToken, productID string, quantity int32) (*types.Cart, error) {
	cart, err := doJSON[types.Cart](ctx, c, "/api/cart/"+url.PathEscape(productID), RequestOptions{
		Method:  http.MethodPut,
		Headers: bearer(accessToken),
		Body:    cartItemRequest{Quantity: quantity},
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveFromCart removes a product from the cart
func (c *Client) RemoveFromCart(ctx context.Context, accessToken, productID string) (*types.Cart, error) {
	cart, err := doJSON[types.Cart](ctx, c, "/api/cart/"+url.PathEscape(productID), RequestOptions{
		Method:  http.MethodDelete,
		Headers: bearer(accessToken),
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
