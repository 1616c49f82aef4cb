package database

import (
	"context"

	"github.com/google/uuid"
)

// CartLine is a cart item joined with the product it refers to
type CartLine struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int32     `json:"quantity"`
	Stock      int32     `json:"stock"`
}

const getCartLines = `-- name: GetCartLines :many
SELECT ci.product_id, p.name, p.image_url, p.price_cents, ci.quantity, p.stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at, ci.product_id`

func (q *Queries) GetCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := q.db.Query(ctx, getCartLines, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CartLine{}
	for rows.Next() {
		var i CartLine
		if err := rows.Scan(
			&i.ProductID,
			&i.Name,
			&i.ImageURL,
			&i.PriceCents,
			&i.Quantity,
			&i.Stock,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CartItemKey struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
}

const addCartItem = `-- name: AddCartItem :execrows
INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
SELECT $1, p.id, $3, NOW(), NOW()
FROM products p
WHERE p.id = $2 AND p.stock >= $3
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
WHERE cart_items.quantity::bigint + EXCLUDED.quantity <= (SELECT stock FROM products WHERE id = EXCLUDED.product_id)`

type AddCartItemParams struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// AddCartItem increments the quantity of a cart line, creating it when needed.
// No row is affected when the product does not exist or the new quantity would exceed its stock.
func (q *Queries) AddCartItem(ctx context.Context, arg AddCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, addCartItem, arg.UserID, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const upsertCartItem = `-- name: UpsertCartItem :exec
INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`

type UpsertCartItemParams struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// UpsertCartItem sets the quantity of a cart line, creating it when needed
func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) error {
	_, err := q.db.Exec(ctx, upsertCartItem, arg.UserID, arg.ProductID, arg.Quantity)
	return err
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items
WHERE user_id = $1 AND product_id = $2`

func (q *Queries) DeleteCartItem(ctx context.Context, arg CartItemKey) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
