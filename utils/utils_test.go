package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go for Beginners", "go-for-beginners"},
		{"  Học lập trình Go  ", "hoc-lap-trinh-go"},
		{"Crème brûlée 101!", "creme-brulee-101"},
		{"C++ & Rust -- the hard way", "c-rust-the-hard-way"},
		{"!!!", "course"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}

	long := Slugify(strings.Repeat("abc ", 100))
	assert.Len(t, long, 150)
	assert.Equal(t, strings.Repeat("abc-", 38)[:150], long)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp := GenerateOTP()
		assert.Len(t, otp, 6)
		assert.Empty(t, strings.Trim(otp, "0123456789"))
	}
}

func TestPaginate(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Offset: 0}, Paginate(0, 0))
	assert.Equal(t, Pagination{Page: 3, Limit: 20, Offset: 40}, Paginate(3, 20))
	assert.Equal(t, Pagination{Page: 2, Limit: 100, Offset: 100}, Paginate(2, 500))

	meta := Paginate(2, 10).Meta(25)
	assert.EqualValues(t, 25, meta["total"])
	assert.Equal(t, 2, meta["page"])
	assert.EqualValues(t, 3, meta["totalPages"])
}
