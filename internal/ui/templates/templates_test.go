package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/nickabs/shopfront/internal/ui/types"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestProductDetailPageEscapesContent(t *testing.T) {
	image := "javascript:alert(1)"
	p := &types.Product{
		ID:          "p1",
		Name:        `<script>alert("x")</script>`,
		PriceCents:  129900,
		Stock:       3,
		ImageURL:    &image,
		Attributes:  json.RawMessage(`{"colour":"red","ports":["usb-c"]}`),
		Description: "Fast & light",
	}

	html := render(t, ProductDetailPage(&types.Session{UserID: "u1"}, p))

	if strings.Contains(html, `<script>alert`) {
		t.Error("product name was not escaped")
	}
	if strings.Contains(html, `src="javascript:`) {
		t.Error("unsafe image url was not sanitised")
	}
	for _, want := range []string{"£1,299.00", "Only 3 left", "Fast &amp; light", "Specifications", "colour", `hx-post="/cart/items"`} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestProductDetailPageAnonymous(t *testing.T) {
	html := render(t, ProductDetailPage(nil, &types.Product{ID: "p1", Name: "Cable", Stock: 10}))

	if strings.Contains(html, "Add to cart") {
		t.Error("anonymous users should not see the add to cart form")
	}
	if !strings.Contains(html, `href="/login"`) {
		t.Error("expected a sign in link")
	}
}

func TestNavigation(t *testing.T) {
	anonymous := render(t, Navigation(nil))
	if !strings.Contains(anonymous, "Sign in") || strings.Contains(anonymous, "/cart") {
		t.Errorf("unexpected anonymous navigation: %s", anonymous)
	}

	signedIn := render(t, Navigation(&types.Session{UserID: "u1", Name: "Ada", IsAdmin: true}))
	for _, want := range []string{"/cart", "Ada", "admin", "Sign out"} {
		if !strings.Contains(signedIn, want) {
			t.Errorf("expected %q in navigation", want)
		}
	}
}

func TestProductResultsPagination(t *testing.T) {
	list := &types.ProductList{
		Products: []types.Product{{ID: "p1", Name: "Cable"}},
		Total:    45,
		Limit:    20,
		Offset:   20,
	}

	html := render(t, ProductResults(list, types.ProductQuery{Search: "usb"}, false))

	if !strings.Contains(html, `href="/products?search=usb"`) {
		t.Errorf("previous link missing: %s", html)
	}
	if !strings.Contains(html, `href="/products?offset=40&amp;search=usb"`) {
		t.Errorf("next link missing: %s", html)
	}
}

func TestCartContents(t *testing.T) {
	empty := render(t, CartContents(&types.Cart{}))
	if !strings.Contains(empty, "Your cart is empty") {
		t.Error("expected empty cart message")
	}

	html := render(t, CartContents(&types.Cart{
		Items:      []types.CartItem{{ProductID: "p1", Name: "Cable", PriceCents: 500, Quantity: 2, Stock: 9, SubtotalCents: 1000}},
		ItemCount:  2,
		TotalCents: 1000,
	}))
	for _, want := range []string{`hx-put="/cart/items/p1"`, `hx-delete="/cart/items/p1"`, "£10.00", "£5.00"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in cart", want)
		}
	}
}

func TestHighlightJSON(t *testing.T) {
	html := HighlightJSON(json.RawMessage(`{"a":1}`))
	if !strings.Contains(html, "<pre") || !strings.Contains(html, "<span") {
		t.Errorf("unexpected highlighted output: %s", html)
	}

	invalid := HighlightJSON(json.RawMessage(`<b>not json</b>`))
	if invalid != "<pre>&lt;b&gt;not json&lt;/b&gt;</pre>" {
		t.Errorf("invalid JSON not escaped: %s", invalid)
	}
}

func TestErrorAlertEscapes(t *testing.T) {
	html := render(t, ErrorAlert(`<img src=x onerror=alert(1)>`))
	if strings.Contains(html, "<img") {
		t.Error("alert message not escaped")
	}
}

func TestAccountPageForms(t *testing.T) {
	phone := "07700 900123"
	user := &types.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Phone: &phone}

	html := render(t, AccountPage(&types.Session{UserID: "u1", Name: "Ada"}, user))

	for _, want := range []string{
		`hx-post="/account"`,
		`hx-put="/account/password"`,
		`<input id="email" name="email" type="email" value="ada@example.com" required>`,
		`<input id="phone" name="phone" type="tel" value="07700 900123">`,
		`<input id="address" name="address" type="text" value="">`,
		"Save changes",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in account page", want)
		}
	}
}

func TestResetPasswordPageEscapesEmail(t *testing.T) {
	html := render(t, ResetPasswordPage(`a"><script>@example.com`))

	if strings.Contains(html, "<script>@") {
		t.Error("email was not escaped")
	}
	if !strings.Contains(html, `hx-post="/reset-password"`) {
		t.Error("expected the form to post to /reset-password")
	}
}

func TestProductListPageSelectsFilters(t *testing.T) {
	list := &types.ProductList{Products: []types.Product{{ID: "p1", Name: "Cable"}}, Total: 1, Limit: 20}
	categories := []types.Category{{ID: "c1", Name: "Books"}, {ID: "c2", Name: "Laptops"}}

	html := render(t, ProductListPage(nil, list, categories, types.ProductQuery{CategoryID: "c2", Sort: "price_asc"}))

	for _, want := range []string{
		`<option value="c2" selected>Laptops</option>`,
		`<option value="c1">Books</option>`,
		`<option value="price_asc" selected>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in product list", want)
		}
	}
	if strings.Contains(html, "Next") {
		t.Error("a single page of results should have no next link")
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		name   string
		query  types.ProductQuery
		offset int64
		want   string
	}{
		{"no filters", types.ProductQuery{}, 0, "/products"},
		{"offset only", types.ProductQuery{}, 20, "/products?offset=20"},
		{"filters are kept", types.ProductQuery{CategoryID: "c1", Sort: "name_asc"}, 0, "/products?category=c1&sort=name_asc"},
		{"search is encoded", types.ProductQuery{Search: "usb c&d"}, 40, "/products?offset=40&search=usb+c%26d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageURL(tt.query, tt.offset); got != tt.want {
				t.Errorf("pageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreviousOffset(t *testing.T) {
	if got := previousOffset(&types.ProductList{Offset: 10, Limit: 20}); got != 0 {
		t.Errorf("previousOffset() = %d, want 0", got)
	}
	if got := previousOffset(&types.ProductList{Offset: 60, Limit: 20}); got != 40 {
		t.Errorf("previousOffset() = %d, want 40", got)
	}
}
