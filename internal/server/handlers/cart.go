package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/auth"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/server/responses"
)

type CartHandler struct {
	queries *database.Queries
}

func NewCartHandler(queries *database.Queries) *CartHandler {
	return &CartHandler{queries: queries}
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" example:"a38c99ed-c75c-4a4a-a901-c9485cf93cf3"`
	Quantity  int32     `json:"quantity" example:"1"`
}

type UpdateCartItemRequest struct {
	Quantity int32 `json:"quantity" example:"2"` // 0 removes the item
}

type CartItem struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	ImageURL      *string   `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int32     `json:"quantity"`
	Stock         int32     `json:"stock"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	ItemCount  int32      `json:"item_count"`
	TotalCents int64      `json:"total_cents"`
}

// newCart totals the cart lines
func newCart(lines []database.CartLine) Cart {
	cart := Cart{Items: make([]CartItem, 0, len(lines))}
	for _, line := range lines {
		subtotal := line.PriceCents * int64(line.Quantity)
		cart.Items = append(cart.Items, CartItem{
			ProductID:     line.ProductID,
			Name:          line.Name,
			ImageURL:      line.ImageURL,
			PriceCents:    line.PriceCents,
			Quantity:      line.Quantity,
			Stock:         line.Stock,
			SubtotalCents: subtotal,
		})
		cart.ItemCount += line.Quantity
		cart.TotalCents += subtotal
	}
	return cart
}

// GetCartHandler returns the authenticated user's cart
func (c *CartHandler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}
	c.respondWithCart(w, r, userID, http.StatusOK)
}

// AddToCartHandler adds quantity units of a product, incrementing the quantity if the product is already in the cart.
// The new quantity can not exceed the product's stock.
func (c *CartHandler) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	var req AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ProductID == uuid.Nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {product_id}")
		return
	}
	if req.Quantity < 1 {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, "quantity must be at least 1")
		return
	}

	product, err := c.queries.GetProductByID(r.Context(), req.ProductID)
	if err != nil {
		respondWithQueryError(w, r, err, productNotFound)
		return
	}

	// the stock check and the increment are a single statement
	added, err := c.queries.AddCartItem(r.Context(), database.AddCartItemParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	if added == 0 {
		respondWithInsufficientStock(w, r, product)
		return
	}
	c.respondWithCart(w, r, userID, http.StatusOK)
}

// UpdateCartItemHandler sets the quantity of a product in the cart. A quantity of 0 removes the product.
func (c *CartHandler) UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	productID, ok := uuidParam(w, r, "product_id", productNotFound)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Quantity < 0 {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, "quantity can not be negative")
		return
	}

	if req.Quantity == 0 {
		if _, err := c.queries.DeleteCartItem(r.Context(), database.CartItemKey{UserID: userID, ProductID: productID}); err != nil {
			responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
			return
		}
		c.respondWithCart(w, r, userID, http.StatusOK)
		return
	}

	if !c.setQuantity(w, r, userID, productID, req.Quantity) {
		return
	}
	c.respondWithCart(w, r, userID, http.StatusOK)
}

// RemoveFromCartHandler removes a product from the cart. Removing a product that is not in the cart is not an error.
func (c *CartHandler) RemoveFromCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(r.Context())
	if !ok {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "did not receive userID from middleware")
		return
	}

	productID, ok := uuidParam(w, r, "product_id", productNotFound)
	if !ok {
		return
	}

	if _, err := c.queries.DeleteCartItem(r.Context(), database.CartItemKey{UserID: userID, ProductID: productID}); err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	c.respondWithCart(w, r, userID, http.StatusOK)
}

// setQuantity checks the product exists and has enough stock before saving the cart line
func (c *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request, userID, productID uuid.UUID, quantity int32) bool {
	product, err := c.queries.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithQueryError(w, r, err, productNotFound)
		return false
	}

	if quantity > product.Stock {
		respondWithInsufficientStock(w, r, product)
		return false
	}

	err = c.queries.UpsertCartItem(r.Context(), database.UpsertCartItemParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return false
	}
	return true
}

func respondWithInsufficientStock(w http.ResponseWriter, r *http.Request, product database.Product) {
	responses.RespondWithError(w, r, http.StatusConflict, apperrors.ErrCodeInsufficientStock,
		fmt.Sprintf("Only %d of %s available", product.Stock, product.Name))
}

func (c *CartHandler) respondWithCart(w http.ResponseWriter, r *http.Request, userID uuid.UUID, status int) {
	lines, err := c.queries.GetCartLines(r.Context(), userID)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	responses.RespondWithJSON(w, status, newCart(lines))
}
