package crypto

import (
	"strings"
	"unicode/utf8"
)

// MaxScore is the highest strength a credential can reach.
const MaxScore = 5

const scoreMinLength = 8

// Score rates a credential from 0 to MaxScore, one point each for:
// at least 8 characters, a lowercase letter, an uppercase letter,
// a digit, and a character from SymbolChars.
//
// Only the produced characters are inspected, not the classes that were
// requested, so a digits-only credential of length 8+ scores 2.
func Score(credential string) int {
	score := 0
	if utf8.RuneCountInString(credential) >= scoreMinLength {
		score++
	}
	for _, c := range classOrder {
		if strings.ContainsAny(credential, c.Alphabet()) {
			score++
		}
	}
	return score
}
