package main

import (
	"regexp"
	"strconv"
	"strings"
)

// trailingRomans maps the roman-numeral tokens we fold when they appear as
// the final token of a title. Order matters: " IV" must be checked before
// " V", and " IX" before the bare " I" we deliberately do not fold (words
// ending in "i" would produce false positives).
var trailingRomans = []struct {
	token string
	digit string
}{
	{" IV", "4"},
	{" IX", "9"},
	{" V", "5"},
	{" III", "3"},
	{" II", "2"},
}

var (
	// glyphStripper removes trademark marks and apostrophes entirely so
	// "Assassin's Creed™" becomes "assassins creed", not "assassin s creed".
	glyphStripper = strings.NewReplacer("™", "", "®", "", "©", "", "'", "", "’", "")

	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	spacesRe  = regexp.MustCompile(`\s+`)
	digitsRe  = regexp.MustCompile(`\d+`)
)

// NormalizeTitle canonicalizes a game title for comparison: a trailing roman
// numeral is folded to its arabic digit, trademark glyphs and apostrophes are
// dropped, remaining punctuation becomes whitespace, runs of whitespace
// collapse to one space, and the result is trimmed and lowercased.
// Normalization is idempotent.
func NormalizeTitle(raw string) string {
	name := foldTrailingRoman(strings.TrimSpace(raw))
	name = glyphStripper.Replace(name)
	name = nonWordRe.ReplaceAllString(name, " ")
	name = spacesRe.ReplaceAllString(name, " ")
	return strings.ToLower(strings.TrimSpace(name))
}

// foldTrailingRoman converts a roman numeral at the very end of a title to
// its arabic form ("Grand Theft Auto V" -> "Grand Theft Auto 5"). Numerals
// anywhere else in the title are left alone; ExtractNumbers has its own
// word-bounded scan for those.
func foldTrailingRoman(s string) string {
	for _, r := range trailingRomans {
		n := len(r.token)
		if len(s) >= n && strings.EqualFold(s[len(s)-n:], r.token) {
			return s[:len(s)-n] + " " + r.digit
		}
	}
	return s
}

// NumberSet holds the installment numbers implied by a title. It is used
// only for sequel disambiguation and never displayed.
type NumberSet map[int]struct{}

// Intersects reports whether the two sets share any number.
func (s NumberSet) Intersects(other NumberSet) bool {
	for n := range s {
		if _, ok := other[n]; ok {
			return true
		}
	}
	return false
}

// AnyGreaterThan reports whether the set contains a number above n.
func (s NumberSet) AnyGreaterThan(n int) bool {
	for v := range s {
		if v > n {
			return true
		}
	}
	return false
}

// romanWords are the standalone roman numerals recognized mid-title. The
// overlap with foldTrailingRoman is intentional: extraction must agree
// whether it runs before or after normalization.
var romanWords = map[string]int{" II ": 2, " III ": 3, " IV ": 4, " V ": 5}

// ExtractNumbers collects every installment number a title implies: all
// maximal digit runs plus any word-bounded roman numeral from II to V.
func ExtractNumbers(title string) NumberSet {
	nums := NumberSet{}
	for _, run := range digitsRe.FindAllString(title, -1) {
		if n, err := strconv.Atoi(run); err == nil {
			nums[n] = struct{}{}
		}
	}
	padded := " " + strings.ToUpper(title) + " "
	for word, n := range romanWords {
		if strings.Contains(padded, word) {
			nums[n] = struct{}{}
		}
	}
	return nums
}
