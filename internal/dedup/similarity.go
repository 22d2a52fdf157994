package dedup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var entitySuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`FZE|FZC|FZCO|FZ-?LLC|DMCC|W\.?L\.?L\.?|DBA|D/B/A)\s*\.?\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

var foldMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeName lowercases a business name, folds diacritics, strips
// legal entity suffixes, and collapses whitespace. Two listings of the
// same business from different sources should normalize to the same or
// nearly the same string.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(foldMarks, n); err == nil {
		n = folded
	}
	n = entitySuffixes.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Levenshtein computes the edit distance between a and b.
// O(len(a)*len(b)) time, O(min) memory via a two-row matrix.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(curr[j-1]+1, prev[j]+1))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns normalized Levenshtein similarity in [0,1]:
// (maxLen - distance) / maxLen, where 1.0 means identical. Two empty
// strings are identical; one empty string scores 0 against anything.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

// DigitsOnly strips everything but ASCII digits, for phone comparison.
func DigitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
