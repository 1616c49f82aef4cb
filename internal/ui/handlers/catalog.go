package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nickabs/shopfront/internal/ui/templates"
	"github.com/nickabs/shopfront/internal/ui/types"
)

const productsPerPage = 20

// HandleHome shows the featured products and the category list
func (h *HandlerService) HandleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := h.ApiClient.ListProducts(r.Context(), types.ProductQuery{Featured: true, Limit: 8})
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	categories, err := h.ApiClient.ListCategories(r.Context())
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.HomePage(currentSession(r), featured.Products, categories))
}

// HandleProducts renders the product list. htmx filter requests only receive the results fragment.
func (h *HandlerService) HandleProducts(w http.ResponseWriter, r *http.Request) {
	query := parseProductQuery(r)

	list, err := h.ApiClient.ListProducts(r.Context(), query)
	if err != nil {
		h.handleAPIError(w, r, err, isHTMX(r))
		return
	}

	if isHTMX(r) {
		h.render(w, r, templates.ProductResults(list, query, currentSession(r) != nil))
		return
	}

	categories, err := h.ApiClient.ListCategories(r.Context())
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.ProductListPage(currentSession(r), list, categories, query))
}

func (h *HandlerService) HandleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.ApiClient.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.ProductDetailPage(currentSession(r), product))
}

func (h *HandlerService) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ApiClient.ListCategories(r.Context())
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.CategoriesPage(currentSession(r), categories))
}

func parseProductQuery(r *http.Request) types.ProductQuery {
	q := r.URL.Query()

	query := types.ProductQuery{
		CategoryID: q.Get("category"),
		Search:     q.Get("search"),
		Sort:       q.Get("sort"),
		Limit:      productsPerPage,
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		query.Offset = offset
	}
	return query
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") != "true"
}
