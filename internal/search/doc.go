// Package search ranks and filters local hikes without touching the network.
//
// FuzzySearch scores each hike against a free-text query using exact,
// prefix, substring, per-word and edit-distance rules, and returns the
// matching hikes ordered by descending score. AdvancedFilter applies
// structured predicates combined with AND.
package search
