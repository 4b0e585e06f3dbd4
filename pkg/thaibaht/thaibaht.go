// Package thaibaht converts monetary amounts into Thai-language
// baht/satang words, following the same rules as Excel's BAHTTEXT.
package thaibaht

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Sentinel is returned for amounts that cannot be rendered (negative,
// NaN, infinite).
const Sentinel = "-"

var digitWords = [10]string{
	"ศูนย์", "หนึ่ง", "สอง", "สาม", "สี่",
	"ห้า", "หก", "เจ็ด", "แปด", "เก้า",
}

// Position unit names for up to seven digits; position 6 is the direct
// "million" place. Larger numbers are decomposed recursively.
var unitWords = [7]string{
	"", "สิบ", "ร้อย", "พัน", "หมื่น", "แสน", "ล้าน",
}

// Text renders amount as Thai baht/satang words. The amount is rounded
// to two decimal places (satang) first. Negative amounts yield the
// sentinel.
func Text(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return Sentinel
	}

	rounded := amount.Round(2)
	baht := rounded.Truncate(0)
	satang := rounded.Sub(baht).Mul(decimal.NewFromInt(100)).IntPart()
	bahtInt := baht.IntPart()

	if bahtInt == 0 && satang == 0 {
		return "ศูนย์บาทถ้วน"
	}

	var out string
	if bahtInt > 0 {
		out = intWords(bahtInt) + "บาท"
		if satang == 0 {
			return out + "ถ้วน"
		}
	}
	return out + intWords(satang) + "สตางค์"
}

// TextFloat is a convenience wrapper for float64 inputs. NaN and
// infinite values yield the sentinel.
func TextFloat(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Sentinel
	}
	return Text(decimal.NewFromFloat(amount))
}

// intWords converts a non-negative integer to Thai numeral words.
// Numbers wider than seven digits are split into a recursively converted
// million prefix and a normally converted six-digit tail.
func intWords(n int64) string {
	if n == 0 {
		return ""
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 7 {
		head, _ := strconv.ParseInt(s[:len(s)-6], 10, 64)
		tail, _ := strconv.ParseInt(s[len(s)-6:], 10, 64)
		return intWords(head) + "ล้าน" + intWords(tail)
	}

	var out string
	width := len(s)
	for i, c := range s {
		d := int(c - '0')
		if d == 0 {
			continue
		}
		pos := width - i - 1
		switch {
		case pos == 0 && d == 1 && width > 1:
			// Trailing one in a multi-digit number reads "et".
			out += "เอ็ด"
		case pos == 1 && d == 1:
			// Ten itself, no "one" prefix.
			out += "สิบ"
		case pos == 1 && d == 2:
			out += "ยี่สิบ"
		default:
			out += digitWords[d] + unitWords[pos]
		}
	}
	return out
}
