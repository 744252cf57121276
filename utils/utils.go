package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	otp := ""
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		otp += fmt.Sprintf("%d", n.Int64())
	}
	return otp
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a lowercase, dash separated URL segment.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(plain), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 150 {
		slug = strings.TrimRight(slug[:150], "-")
	}
	if slug == "" {
		slug = "course"
	}
	return slug
}

// Pagination is the normalized page window of a list request
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// Paginate clamps page and limit to sane bounds and computes the offset.
func Paginate(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Meta returns the pagination block of list responses.
func (p Pagination) Meta(total int64) map[string]interface{} {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return map[string]interface{}{
		"total":      total,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": pages,
	}
}
