package templates

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/nickabs/shopfront/internal/ui/types"
)

var sortOptions = []struct{ value, label string }{
	{"newest", "Newest"},
	{"price_asc", "Price: low to high"},
	{"price_desc", "Price: high to low"},
	{"name_asc", "Name: A to Z"},
	{"name_desc", "Name: Z to A"},
}

func displayName(session *types.Session) string {
	if session.Name != "" {
		return session.Name
	}
	if session.Email != "" {
		return session.Email
	}
	return "Account"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// imageURL sanitises a url for use in a src attribute
func imageURL(u string) string {
	return string(templ.URL(u))
}

func productURL(productID string) string {
	return "/products/" + url.PathEscape(productID)
}

func categoryURL(categoryID string) string {
	return "/products?category=" + url.QueryEscape(categoryID)
}

func cartItemURL(productID string) string {
	return "/cart/items/" + url.PathEscape(productID)
}

func cartResultID(productID string) string {
	return "cart-result-" + productID
}

func hasAttributes(attributes json.RawMessage) bool {
	s := string(attributes)
	return len(attributes) > 0 && s != "null" && s != "{}"
}

func previousOffset(list *types.ProductList) int64 {
	return max(int64(list.Offset)-int64(list.Limit), 0)
}

func nextOffset(list *types.ProductList) int64 {
	return int64(list.Offset) + int64(list.Limit)
}

func pageURL(query types.ProductQuery, offset int64) string {
	v := url.Values{}
	if query.CategoryID != "" {
		v.Set("category", query.CategoryID)
	}
	if query.Search != "" {
		v.Set("search", query.Search)
	}
	if query.Sort != "" {
		v.Set("sort", query.Sort)
	}
	if offset > 0 {
		v.Set("offset", strconv.FormatInt(offset, 10))
	}
	if len(v) == 0 {
		return "/products"
	}
	return "/products?" + v.Encode()
}
