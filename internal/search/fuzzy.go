package search

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
)

// FuzzyThreshold is the largest edit distance a token may have from the
// query and still score.
const FuzzyThreshold = 3

const (
	weightNameExact        = 100
	weightLocationExact    = 80
	weightNamePrefix       = 50
	weightLocationPrefix   = 40
	weightNameContains     = 30
	weightLocationContains = 25
	weightDescContains     = 15
	weightDiffContains     = 10

	weightWordName     = 10
	weightWordLocation = 8
	weightWordDesc     = 5

	weightFuzzyName     = 5
	weightFuzzyLocation = 4

	minWordLen  = 2
	minTokenLen = 3
)

// FuzzySearch returns the hikes relevant to query, most relevant first.
// Hikes with equal scores keep their input order. A blank query returns
// hikes unchanged.
func FuzzySearch(hikes []models.Hike, query string) []models.Hike {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return hikes
	}

	type scored struct {
		hike  models.Hike
		score int
	}

	var matches []scored
	for _, h := range hikes {
		if s := Score(h, q); s > 0 {
			matches = append(matches, scored{hike: h, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	out := make([]models.Hike, len(matches))
	for i, m := range matches {
		out[i] = m.hike
	}
	return out
}

// Score computes the additive relevance of h for an already lowercased and
// trimmed query.
func Score(h models.Hike, q string) int {
	name := strings.ToLower(h.Name)
	location := strings.ToLower(h.Location)
	difficulty := strings.ToLower(h.Difficulty)
	description := ""
	if h.Description != nil {
		description = strings.ToLower(*h.Description)
	}

	score := 0
	add := func(cond bool, w int) {
		if cond {
			score += w
		}
	}

	add(name == q, weightNameExact)
	add(location == q, weightLocationExact)
	add(strings.HasPrefix(name, q), weightNamePrefix)
	add(strings.HasPrefix(location, q), weightLocationPrefix)
	add(strings.Contains(name, q), weightNameContains)
	add(strings.Contains(location, q), weightLocationContains)
	add(strings.Contains(description, q), weightDescContains)
	add(strings.Contains(difficulty, q), weightDiffContains)

	for _, w := range strings.Fields(q) {
		if len([]rune(w)) < minWordLen {
			continue
		}
		add(strings.Contains(name, w), weightWordName)
		add(strings.Contains(location, w), weightWordLocation)
		add(strings.Contains(description, w), weightWordDesc)
	}

	score += fuzzyTokens(name, q, weightFuzzyName)
	score += fuzzyTokens(location, q, weightFuzzyLocation)

	return score
}

func fuzzyTokens(field, q string, weight int) int {
	total := 0
	for _, tok := range strings.Fields(field) {
		if len([]rune(tok)) < minTokenLen {
			continue
		}
		if d := Levenshtein(tok, q); d <= FuzzyThreshold {
			total += (FuzzyThreshold - d) * weight
		}
	}
	return total
}
