package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/server/responses"
	"github.com/nickabs/shopfront/internal/server/schemas"
	"github.com/nickabs/shopfront/internal/server/utils"
)

const categoryNotFound = "Category not found"

type CategoryHandler struct {
	queries *database.Queries
	schemas *schemas.Cache
}

func NewCategoryHandler(queries *database.Queries, schemaCache *schemas.Cache) *CategoryHandler {
	return &CategoryHandler{
		queries: queries,
		schemas: schemaCache,
	}
}

type CreateCategoryRequest struct {
	Name            string          `json:"name" example:"Laptops"`
	Description     string          `json:"description" example:"Portable computers"`
	ImageURL        *string         `json:"image_url" example:"https://example.com/laptops.png"`
	AttributeSchema json.RawMessage `json:"attribute_schema"` // optional JSON schema for product attributes
}

// UpdateCategoryRequest only changes the supplied fields. name can not be null.
type UpdateCategoryRequest struct {
	Name            optional.Value[string]          `json:"name"`
	Description     optional.Value[string]          `json:"description"`
	ImageURL        optional.Value[string]          `json:"image_url"`
	AttributeSchema optional.Value[json.RawMessage] `json:"attribute_schema"`
}

// ListCategoriesHandler returns all categories sorted by name
func (c *CategoryHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := c.queries.ListCategories(r.Context())
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, categories)
}

func (c *CategoryHandler) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", categoryNotFound)
	if !ok {
		return
	}

	category, err := c.queries.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithQueryError(w, r, err, categoryNotFound)
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, category)
}

// CreateCategoryHandler creates a category (admin only). Category names must be unique.
func (c *CategoryHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply a category {name}")
		return
	}

	slug, err := utils.GenerateSlug(req.Name)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, err.Error())
		return
	}

	if !validAttributeSchema(w, r, req.AttributeSchema) {
		return
	}

	category, err := c.queries.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		AttributeSchema: req.AttributeSchema,
	})
	if err != nil {
		respondWithWriteError(w, r, err, fmt.Sprintf("a category named %q already exists", req.Name))
		return
	}

	responses.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategoryHandler applies a partial update to a category (admin only)
func (c *CategoryHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", categoryNotFound)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := c.queries.GetCategoryByID(r.Context(), id)
	if err != nil {
		respondWithQueryError(w, r, err, categoryNotFound)
		return
	}

	if !req.Name.Apply(&category.Name) {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, "name can not be null")
		return
	}
	if req.Name.IsSet() {
		category.Name = strings.TrimSpace(category.Name)
		category.Slug, err = utils.GenerateSlug(category.Name)
		if err != nil {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, err.Error())
			return
		}
	}
	if !req.Description.Apply(&category.Description) {
		category.Description = ""
	}
	req.ImageURL.ApplyNullable(&category.ImageURL)
	if req.AttributeSchema.IsNull() {
		category.AttributeSchema = nil
	} else if doc, ok := req.AttributeSchema.Get(); ok {
		if !validAttributeSchema(w, r, doc) {
			return
		}
		category.AttributeSchema = doc
	}

	updated, err := c.queries.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:              category.ID,
		Name:            category.Name,
		Slug:            category.Slug,
		Description:     category.Description,
		ImageURL:        category.ImageURL,
		AttributeSchema: category.AttributeSchema,
	})
	if err != nil {
		respondWithWriteError(w, r, err, fmt.Sprintf("a category named %q already exists", category.Name))
		return
	}
	c.schemas.Invalidate(id)

	responses.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteCategoryHandler deletes a category (admin only). Categories that still have products can not be deleted.
func (c *CategoryHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", categoryNotFound)
	if !ok {
		return
	}

	count, err := c.queries.CountProductsInCategory(r.Context(), id)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	if count > 0 {
		responses.RespondWithError(w, r, http.StatusConflict, apperrors.ErrCodeResourceInUse, fmt.Sprintf("category has %d products and can not be deleted", count))
		return
	}

	rowsAffected, err := c.queries.DeleteCategory(r.Context(), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			responses.RespondWithError(w, r, http.StatusConflict, apperrors.ErrCodeResourceInUse, "category has products and can not be deleted")
			return
		}
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	if rowsAffected == 0 {
		responses.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, categoryNotFound)
		return
	}
	c.schemas.Invalidate(id)

	responses.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}

func validAttributeSchema(w http.ResponseWriter, r *http.Request, doc json.RawMessage) bool {
	if len(doc) == 0 || string(doc) == "null" {
		return true
	}
	if _, err := schemas.Compile("urn:shopfront:category:new", doc); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, fmt.Sprintf("invalid attribute_schema: %v", err))
		return false
	}
	return true
}
