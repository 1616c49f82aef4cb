package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\- ]+`) // Include space in the character set to handle it separately
	spaces       = regexp.MustCompile(`[ ]+`)
	hyphens      = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug generates a URL-friendly slug from a given string (e.g "Café Tables" -> "cafe-tables")
func GenerateSlug(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("no input string supplied to GenerateSlug")
	}

	normalized := norm.NFD.String(input)

	withoutDiacritics, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), normalized)
	if err != nil {
		return "", fmt.Errorf("error creating slug: %v", err)
	}

	lowerCase := strings.ToLower(withoutDiacritics)

	hyphenated := nonSlugChars.ReplaceAllString(lowerCase, "-")
	hyphenated = spaces.ReplaceAllString(hyphenated, "-")
	hyphenated = hyphens.ReplaceAllString(hyphenated, "-")

	trimmed := strings.Trim(hyphenated, "-")
	if trimmed == "" {
		return "", fmt.Errorf("could not create a slug from %q", input)
	}

	return trimmed, nil
}

// ParsePagination reads the limit and offset query parameters.
// limit defaults to defaultLimit and is capped at maxLimit. Negative values are rejected.
func ParsePagination(values url.Values, defaultLimit, maxLimit int32) (limit int32, offset int32, err error) {
	limit = defaultLimit
	if s := values.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		limit = int32(min(n, int64(maxLimit)))
	}

	if s := values.Get("offset"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("offset must be zero or a positive integer")
		}
		offset = int32(n)
	}
	return limit, offset, nil
}

// ParseOptionalInt64 returns nil when the parameter is absent
func ParseOptionalInt64(values url.Values, name string) (*int64, error) {
	s := values.Get(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}

// ParseOptionalBool returns nil when the parameter is absent
func ParseOptionalBool(values url.Values, name string) (*bool, error) {
	s := values.Get(name)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", name)
	}
	return &b, nil
}
