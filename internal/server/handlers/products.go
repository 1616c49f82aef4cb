package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nickabs/shopfront/internal/apperrors"
	"github.com/nickabs/shopfront/internal/database"
	"github.com/nickabs/shopfront/internal/optional"
	"github.com/nickabs/shopfront/internal/server/config"
	"github.com/nickabs/shopfront/internal/server/responses"
	"github.com/nickabs/shopfront/internal/server/schemas"
	"github.com/nickabs/shopfront/internal/server/utils"
)

const productNotFound = "Product not found"

var validSorts = map[string]bool{
	database.SortNewest:    true,
	database.SortPriceAsc:  true,
	database.SortPriceDesc: true,
	database.SortNameAsc:   true,
	database.SortNameDesc:  true,
}

type ProductHandler struct {
	queries *database.Queries
	schemas *schemas.Cache
}

func NewProductHandler(queries *database.Queries, schemaCache *schemas.Cache) *ProductHandler {
	return &ProductHandler{
		queries: queries,
		schemas: schemaCache,
	}
}

type CreateProductRequest struct {
	Name        string          `json:"name" example:"13 inch laptop"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents" example:"89900"`
	Stock       int32           `json:"stock" example:"12"`
	CategoryID  uuid.UUID       `json:"category_id" example:"a38c99ed-c75c-4a4a-a901-c9485cf93cf3"`
	ImageURL    *string         `json:"image_url"`
	Attributes  json.RawMessage `json:"attributes"` // validated against the category attribute_schema
	IsFeatured  bool            `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name        optional.Value[string]          `json:"name"`
	Description optional.Value[string]          `json:"description"`
	PriceCents  optional.Value[int64]           `json:"price_cents"`
	Stock       optional.Value[int32]           `json:"stock"`
	CategoryID  optional.Value[uuid.UUID]       `json:"category_id"`
	ImageURL    optional.Value[string]          `json:"image_url"`
	Attributes  optional.Value[json.RawMessage] `json:"attributes"`
	IsFeatured  optional.Value[bool]            `json:"is_featured"`
}

type ProductListResponse struct {
	Products []database.Product `json:"products"`
	Total    int64              `json:"total"`
	Limit    int32              `json:"limit"`
	Offset   int32              `json:"offset"`
}

// ListProductsHandler returns a page of products.
//
// Query parameters (all optional):
//   - category: category id or slug
//   - search: case insensitive match on name and description
//   - featured: true/false
//   - min_price, max_price: price bounds in cents (inclusive)
//   - sort: newest (default), price_asc, price_desc, name_asc, name_desc
//   - limit, offset: paging (default limit 20, max 100)
func (p *ProductHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	params, ok := p.parseProductQuery(w, r)
	if !ok {
		return
	}

	total, err := p.queries.CountProducts(r.Context(), params.ProductFilter)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	products, err := p.queries.ListProducts(r.Context(), params)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}

	responses.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	})
}

// parseProductQuery builds the list parameters from the URL. A category slug that does not exist matches no products.
func (p *ProductHandler) parseProductQuery(w http.ResponseWriter, r *http.Request) (database.ListProductsParams, bool) {
	values := r.URL.Query()
	params := database.ListProductsParams{Sort: database.SortNewest}

	var err error
	params.Limit, params.Offset, err = utils.ParsePagination(values, config.DefaultPageSize, config.MaxPageSize)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidURLParam, err.Error())
		return params, false
	}

	if sort := values.Get("sort"); sort != "" {
		if !validSorts[sort] {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidURLParam, fmt.Sprintf("invalid sort %q", sort))
			return params, false
		}
		params.Sort = sort
	}

	if category := values.Get("category"); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			params.CategoryID = &id
		} else {
			c, err := p.queries.GetCategoryBySlug(r.Context(), category)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				// the nil uuid never matches a product
				none := uuid.Nil
				params.CategoryID = &none
			case err != nil:
				responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
				return params, false
			default:
				params.CategoryID = &c.ID
			}
		}
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" {
		params.Search = &search
	}

	if params.Featured, err = utils.ParseOptionalBool(values, "featured"); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidURLParam, err.Error())
		return params, false
	}
	if params.MinPrice, err = utils.ParseOptionalInt64(values, "min_price"); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidURLParam, err.Error())
		return params, false
	}
	if params.MaxPrice, err = utils.ParseOptionalInt64(values, "max_price"); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidURLParam, err.Error())
		return params, false
	}

	return params, true
}

func (p *ProductHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", productNotFound)
	if !ok {
		return
	}

	product, err := p.queries.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithQueryError(w, r, err, productNotFound)
		return
	}
	responses.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProductHandler creates a product (admin only)
func (p *ProductHandler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == uuid.Nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeMalformedBody, "you must supply {name} and {category_id}")
		return
	}
	if msg := validateProductNumbers(req.PriceCents, req.Stock); msg != "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, msg)
		return
	}

	slug, err := utils.GenerateSlug(req.Name)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, err.Error())
		return
	}

	if !p.validAttributes(w, r, req.CategoryID, req.Attributes) {
		return
	}

	product, err := p.queries.CreateProduct(r.Context(), database.CreateProductParams{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Attributes:  req.Attributes,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		respondWithWriteError(w, r, err, "product already exists")
		return
	}

	responses.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProductHandler applies a partial update (admin only).
// Attributes are revalidated whenever the attributes or the category change.
func (p *ProductHandler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", productNotFound)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := p.queries.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithQueryError(w, r, err, productNotFound)
		return
	}

	nonNullable := map[string]bool{
		"name":        req.Name.Apply(&product.Name),
		"price_cents": req.PriceCents.Apply(&product.PriceCents),
		"stock":       req.Stock.Apply(&product.Stock),
		"category_id": req.CategoryID.Apply(&product.CategoryID),
		"is_featured": req.IsFeatured.Apply(&product.IsFeatured),
	}
	for field, applied := range nonNullable {
		if !applied {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, fmt.Sprintf("%s can not be null", field))
			return
		}
	}
	if !req.Description.Apply(&product.Description) {
		product.Description = ""
	}
	req.ImageURL.ApplyNullable(&product.ImageURL)
	if req.Attributes.IsNull() {
		product.Attributes = json.RawMessage(`{}`)
	} else if attrs, ok := req.Attributes.Get(); ok {
		product.Attributes = attrs
	}

	if req.Name.IsSet() {
		product.Name = strings.TrimSpace(product.Name)
		if product.Slug, err = utils.GenerateSlug(product.Name); err != nil {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, err.Error())
			return
		}
	}
	if msg := validateProductNumbers(product.PriceCents, product.Stock); msg != "" {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, msg)
		return
	}
	if req.Attributes.IsSet() || req.CategoryID.IsSet() {
		if !p.validAttributes(w, r, product.CategoryID, product.Attributes) {
			return
		}
	}

	updated, err := p.queries.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Stock:       product.Stock,
		CategoryID:  product.CategoryID,
		ImageURL:    product.ImageURL,
		Attributes:  product.Attributes,
		IsFeatured:  product.IsFeatured,
	})
	if err != nil {
		respondWithWriteError(w, r, err, "product already exists")
		return
	}

	responses.RespondWithJSON(w, http.StatusOK, updated)
}

func (p *ProductHandler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", productNotFound)
	if !ok {
		return
	}

	rowsAffected, err := p.queries.DeleteProduct(r.Context(), id)
	if err != nil {
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return
	}
	if rowsAffected == 0 {
		responses.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeResourceNotFound, productNotFound)
		return
	}

	responses.RespondWithStatusCodeOnly(w, http.StatusNoContent)
}

// validAttributes loads the category and checks attributes against its schema.
func (p *ProductHandler) validAttributes(w http.ResponseWriter, r *http.Request, categoryID uuid.UUID, attributes json.RawMessage) bool {
	category, err := p.queries.GetCategoryByID(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, fmt.Sprintf("category %v does not exist", categoryID))
			return false
		}
		responses.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeDatabaseError, fmt.Sprintf("database error: %v", err))
		return false
	}

	if err := p.schemas.Validate(category.ID, category.AttributeSchema, attributes); err != nil {
		responses.RespondWithError(w, r, http.StatusBadRequest, apperrors.ErrCodeValidationFailed, fmt.Sprintf("invalid attributes: %v", err))
		return false
	}
	return true
}

func validateProductNumbers(priceCents int64, stock int32) string {
	if priceCents < 0 {
		return "price_cents can not be negative"
	}
	if stock < 0 {
		return "stock can not be negative"
	}
	return ""
}
