package database

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

const productColumns = `p.id, p.created_at, p.updated_at, p.name, p.slug, p.description, p.price_cents, p.stock, p.category_id, c.name, p.image_url, p.attributes, p.is_featured`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.PriceCents,
		&p.Stock,
		&p.CategoryID,
		&p.CategoryName,
		&p.ImageURL,
		&p.Attributes,
		&p.IsFeatured,
	)
	return p, err
}

const createProduct = `-- name: CreateProduct :one
WITH p AS (
    INSERT INTO products (id, created_at, updated_at, name, slug, description, price_cents, stock, category_id, image_url, attributes, is_featured)
    VALUES (gen_random_uuid(), NOW(), NOW(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING *
)
SELECT ` + productColumns + `
FROM p
JOIN categories c ON c.id = p.category_id`

type CreateProductParams struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Stock       int32           `json:"stock"`
	CategoryID  uuid.UUID       `json:"category_id"`
	ImageURL    *string         `json:"image_url"`
	Attributes  json.RawMessage `json:"attributes"`
	IsFeatured  bool            `json:"is_featured"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.PriceCents,
		arg.Stock,
		arg.CategoryID,
		arg.ImageURL,
		attributesJSON(arg.Attributes),
		arg.IsFeatured,
	)
	return scanProduct(row)
}

const getProductByID = `-- name: GetProductByID :one
SELECT ` + productColumns + `
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.id = $1`

func (q *Queries) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProductByID, id)
	return scanProduct(row)
}

// productFilter is shared by ListProducts and CountProducts. NULL parameters disable the condition.
const productFilter = `
WHERE ($1::uuid IS NULL OR p.category_id = $1)
  AND ($2::text IS NULL OR p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $2 || '%')
  AND ($3::boolean IS NULL OR p.is_featured = $3)
  AND ($4::bigint IS NULL OR p.price_cents >= $4)
  AND ($5::bigint IS NULL OR p.price_cents <= $5)`

type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     *string
	Featured   *bool
	MinPrice   *int64
	MaxPrice   *int64
}

func (f ProductFilter) args() []any {
	var search *string
	if f.Search != nil {
		escaped := escapeLike(*f.Search)
		search = &escaped
	}
	return []any{f.CategoryID, search, f.Featured, f.MinPrice, f.MaxPrice}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes % and _ match literally in an ILIKE pattern (backslash is the default escape character)
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const listProducts = `-- name: ListProducts :many
SELECT ` + productColumns + `
FROM products p
JOIN categories c ON c.id = p.category_id` + productFilter + `
ORDER BY
    CASE WHEN $6::text = 'price_asc' THEN p.price_cents END ASC,
    CASE WHEN $6::text = 'price_desc' THEN p.price_cents END DESC,
    CASE WHEN $6::text = 'name_asc' THEN p.name END ASC,
    CASE WHEN $6::text = 'name_desc' THEN p.name END DESC,
    p.created_at DESC,
    p.id
LIMIT $7 OFFSET $8`

type ListProductsParams struct {
	ProductFilter
	Sort   string
	Limit  int32
	Offset int32
}

// Product sort orders. Anything else sorts newest first.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
)

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	args := append(arg.ProductFilter.args(), arg.Sort, arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, listProducts, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*)
FROM products p` + productFilter

func (q *Queries) CountProducts(ctx context.Context, arg ProductFilter) (int64, error) {
	row := q.db.QueryRow(ctx, countProducts, arg.args()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateProduct = `-- name: UpdateProduct :one
WITH p AS (
    UPDATE products SET (updated_at, name, slug, description, price_cents, stock, category_id, image_url, attributes, is_featured) = (NOW(), $2, $3, $4, $5, $6, $7, $8, $9, $10)
    WHERE id = $1
    RETURNING *
)
SELECT ` + productColumns + `
FROM p
JOIN categories c ON c.id = p.category_id`

type UpdateProductParams struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Stock       int32           `json:"stock"`
	CategoryID  uuid.UUID       `json:"category_id"`
	ImageURL    *string         `json:"image_url"`
	Attributes  json.RawMessage `json:"attributes"`
	IsFeatured  bool            `json:"is_featured"`
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.PriceCents,
		arg.Stock,
		arg.CategoryID,
		arg.ImageURL,
		attributesJSON(arg.Attributes),
		arg.IsFeatured,
	)
	return scanProduct(row)
}

const deleteProduct = `-- name: DeleteProduct :execrows
DELETE FROM products
WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func attributesJSON(doc json.RawMessage) []byte {
	if len(doc) == 0 || string(doc) == "null" {
		return []byte("{}")
	}
	return doc
}
