package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const categoryColumns = `id, created_at, updated_at, name, slug, description, image_url, attribute_schema`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(
		&c.ID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.ImageURL,
		&c.AttributeSchema,
	)
	return c, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (id, created_at, updated_at, name, slug, description, image_url, attribute_schema)
VALUES (gen_random_uuid(), NOW(), NOW(), $1, $2, $3, $4, $5)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	ImageURL        *string         `json:"image_url"`
	AttributeSchema json.RawMessage `json:"attribute_schema"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.ImageURL,
		nullableJSON(arg.AttributeSchema),
	)
	return scanCategory(row)
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT ` + categoryColumns + `
FROM categories
WHERE id = $1`

func (q *Queries) GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	row := q.db.QueryRow(ctx, getCategoryByID, id)
	return scanCategory(row)
}

const getCategoryBySlug = `-- name: GetCategoryBySlug :one
SELECT ` + categoryColumns + `
FROM categories
WHERE slug = $1`

func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	row := q.db.QueryRow(ctx, getCategoryBySlug, slug)
	return scanCategory(row)
}

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + `
FROM categories
ORDER BY name`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET (updated_at, name, slug, description, image_url, attribute_schema) = (NOW(), $2, $3, $4, $5, $6)
WHERE id = $1
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	ImageURL        *string         `json:"image_url"`
	AttributeSchema json.RawMessage `json:"attribute_schema"`
}

// UpdateCategory saves every column of the category; callers load the row and apply the changed fields first
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.ImageURL,
		nullableJSON(arg.AttributeSchema),
	)
	return scanCategory(row)
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories
WHERE id = $1`

func (q *Queries) DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countProductsInCategory = `-- name: CountProductsInCategory :one
SELECT COUNT(*)
FROM products
WHERE category_id = $1`

func (q *Queries) CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countProductsInCategory, categoryID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// nullableJSON stores an empty document as NULL
func nullableJSON(doc json.RawMessage) any {
	if len(doc) == 0 || string(doc) == "null" {
		return nil
	}
	return []byte(doc)
}
