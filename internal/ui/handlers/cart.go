package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nickabs/shopfront/internal/ui/templates"
)

func (h *HandlerService) HandleCart(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	cart, err := h.ApiClient.GetCart(r.Context(), session.AccessToken)
	if err != nil {
		h.handleAPIError(w, r, err, false)
		return
	}

	h.render(w, r, templates.CartPage(session, cart))
}

func (h *HandlerService) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	productID := r.FormValue("product_id")
	quantity, err := parseQuantity(r.FormValue("quantity"), 1)
	if productID == "" || err != nil || quantity < 1 {
		h.RenderError(w, r, "Please choose a quantity of at least 1.")
		return
	}

	cart, err := h.ApiClient.AddToCart(r.Context(), session.AccessToken, productID, quantity)
	if err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	h.render(w, r, templates.CartAdded(cart))
}

// HandleUpdateCartItem sets the quantity of an item and re-renders the cart. A quantity of 0 removes the item.
func (h *HandlerService) HandleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	quantity, err := parseQuantity(r.FormValue("quantity"), 0)
	if err != nil || quantity < 0 {
		h.RenderError(w, r, "Please enter a valid quantity.")
		return
	}

	cart, err := h.ApiClient.UpdateCartItem(r.Context(), session.AccessToken, chi.URLParam(r, "productID"), quantity)
	if err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	h.render(w, r, templates.CartContents(cart))
}

func (h *HandlerService) HandleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	cart, err := h.ApiClient.RemoveFromCart(r.Context(), session.AccessToken, chi.URLParam(r, "productID"))
	if err != nil {
		h.handleAPIError(w, r, err, true)
		return
	}

	h.render(w, r, templates.CartContents(cart))
}

func parseQuantity(value string, fallback int32) (int32, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
