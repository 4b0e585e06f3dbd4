package thaibaht

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "ศูนย์บาทถ้วน"},
		{"1", "หนึ่งบาทถ้วน"},
		{"10", "สิบบาทถ้วน"},
		{"11", "สิบเอ็ดบาทถ้วน"},
		{"21", "ยี่สิบเอ็ดบาทถ้วน"},
		{"25", "ยี่สิบห้าบาทถ้วน"},
		{"100", "หนึ่งร้อยบาทถ้วน"},
		{"101", "หนึ่งร้อยเอ็ดบาทถ้วน"},
		{"111", "หนึ่งร้อยสิบเอ็ดบาทถ้วน"},
		{"1234567", "หนึ่งล้านสองแสนสามหมื่นสี่พันห้าร้อยหกสิบเจ็ดบาทถ้วน"},
		{"10.50", "สิบบาทห้าสิบสตางค์"},
		{"1.01", "หนึ่งบาทหนึ่งสตางค์"},
		{"0.25", "ยี่สิบห้าสตางค์"},
		{"450", "สี่ร้อยห้าสิบบาทถ้วน"},
	}

	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("bad test amount %q: %v", tc.amount, err)
		}
		assert.Equal(t, tc.want, Text(amount), "amount %s", tc.amount)
	}
}

func TestTextMillionsRecursion(t *testing.T) {
	// Eight and more digits split into a million prefix plus a six-digit
	// tail.
	assert.Equal(t, "สิบล้านบาทถ้วน", Text(decimal.NewFromInt(10000000)))
	assert.Equal(t, "ยี่สิบเอ็ดล้านบาทถ้วน", Text(decimal.NewFromInt(21000000)))
	assert.Equal(t,
		"หนึ่งร้อยล้านสองแสนบาทถ้วน",
		Text(decimal.NewFromInt(100200000)))
}

func TestTextRoundsToSatang(t *testing.T) {
	amount, _ := decimal.NewFromString("99.999")
	assert.Equal(t, "หนึ่งร้อยบาทถ้วน", Text(amount))
}

func TestTextSentinel(t *testing.T) {
	assert.Equal(t, Sentinel, Text(decimal.NewFromInt(-5)))
	assert.Equal(t, Sentinel, TextFloat(math.NaN()))
	assert.Equal(t, Sentinel, TextFloat(math.Inf(1)))
}
