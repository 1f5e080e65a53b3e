// Package fuzz scores string similarity on a 0..100 scale using
// Levenshtein edit distance, with token-order and token-subset tolerant
// variants for comparing names whose word order differs between sources.
package fuzz

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns the similarity of a and b as an integer 0..100.
// Identical strings score 100; the score falls with edit distance
// relative to the longer string.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 100 - (100*dist+maxLen/2)/maxLen
	if score < 0 {
		return 0
	}
	return score
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return tokens
}

// TokenSortRatio compares the two strings after splitting into
// whitespace tokens and sorting, so "beats burger ol" matches
// "ol burger beats".
func TokenSortRatio(a, b string) int {
	return Ratio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

// TokenSetRatio compares the sorted token intersection of the two
// strings against each full token set, returning the best score. A
// string whose tokens are a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	setA := make(map[string]bool)
	for _, tok := range strings.Fields(a) {
		setA[tok] = true
	}
	setB := make(map[string]bool)
	for _, tok := range strings.Fields(b) {
		setB[tok] = true
	}

	var intersection, diffA, diffB []string
	for tok := range setA {
		if setB[tok] {
			intersection = append(intersection, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	best := Ratio(combinedA, combinedB)
	if base != "" {
		if s := Ratio(base, combinedA); s > best {
			best = s
		}
		if s := Ratio(base, combinedB); s > best {
			best = s
		}
	}
	return best
}
