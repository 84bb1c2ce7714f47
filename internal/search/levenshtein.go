package search

import "strings"

// Levenshtein returns the edit distance between a and b, counting rune
// insertions, deletions and substitutions at cost 1.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rolling rows of the DP matrix.
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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// IsFuzzyMatch reports whether a and b are within threshold edits of each
// other, ignoring case.
func IsFuzzyMatch(a, b string, threshold int) bool {
	return Levenshtein(strings.ToLower(a), strings.ToLower(b)) <= threshold
}
