package crypto

import (
	"errors"
	"fmt"
	"strings"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"

	// SymbolChars is the fixed symbol alphabet. It is deliberately narrower
	// than all ASCII punctuation and must not change.
	SymbolChars = "!@#$%&*+-=?"

	MinLength     = 4
	MaxLength     = 64
	DefaultLength = 12
)

var (
	ErrEmptyAlphabet  = errors.New("at least one character type must be selected")
	ErrInvalidLength  = errors.New("password length must be positive")
	ErrLengthTooShort = errors.New("password length must be at least 4")
	ErrLengthTooLong  = errors.New("password length must be at most 64")
)

// CharacterClass identifies one of the fixed alphabets a credential can draw from.
type CharacterClass uint8

const (
	Lowercase CharacterClass = 1 << iota
	Uppercase
	Digit
	Symbol
)

// classOrder is the canonical order used when building a union alphabet.
var classOrder = [...]CharacterClass{Lowercase, Uppercase, Digit, Symbol}

var alphabets = map[CharacterClass]string{
	Lowercase: lowercaseChars,
	Uppercase: uppercaseChars,
	Digit:     digitChars,
	Symbol:    SymbolChars,
}

var classNames = map[CharacterClass]string{
	Lowercase: "lowercase",
	Uppercase: "uppercase",
	Digit:     "digit",
	Symbol:    "symbol",
}

// Alphabet returns the characters belonging to c, or "" for an unknown class.
func (c CharacterClass) Alphabet() string {
	return alphabets[c]
}

func (c CharacterClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CharacterClass(%d)", uint8(c))
}

// ClassSet is a set of character classes.
type ClassSet uint8

// AllClasses enables every character class.
const AllClasses = ClassSet(Lowercase | Uppercase | Digit | Symbol)

// NewClassSet builds a set from the given classes.
func NewClassSet(classes ...CharacterClass) ClassSet {
	var s ClassSet
	for _, c := range classes {
		s = s.With(c)
	}
	return s
}

// Has reports whether c is in the set.
func (s ClassSet) Has(c CharacterClass) bool {
	return s&ClassSet(c) != 0
}

// With returns a copy of s with c added.
func (s ClassSet) With(c CharacterClass) ClassSet {
	return s | ClassSet(c)
}

// Without returns a copy of s with c removed.
func (s ClassSet) Without(c CharacterClass) ClassSet {
	return s &^ ClassSet(c)
}

// Classes lists the members of s in canonical order.
func (s ClassSet) Classes() []CharacterClass {
	var out []CharacterClass
	for _, c := range classOrder {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s ClassSet) String() string {
	names := make([]string, 0, len(classOrder))
	for _, c := range s.Classes() {
		names = append(names, c.String())
	}
	return strings.Join(names, "+")
}

// GenerationRequest describes a single credential to generate.
type GenerationRequest struct {
	Length  int
	Classes ClassSet
}

// UnionAlphabet concatenates the alphabets of every class in s,
// in the order lowercase, uppercase, digit, symbol.
func UnionAlphabet(s ClassSet) string {
	var b strings.Builder
	for _, c := range s.Classes() {
		b.WriteString(c.Alphabet())
	}
	return b.String()
}

// ValidateLength enforces the caller-facing length bounds. Generate itself
// accepts any positive length.
func ValidateLength(length int) error {
	if length < MinLength {
		return ErrLengthTooShort
	}
	if length > MaxLength {
		return ErrLengthTooLong
	}
	return nil
}

// Generate draws req.Length characters independently and uniformly, with
// replacement, from the union alphabet of req.Classes. A nil src uses
// CryptoSource.
func Generate(req GenerationRequest, src Source) (string, error) {
	pool := UnionAlphabet(req.Classes)
	if pool == "" {
		return "", ErrEmptyAlphabet
	}
	if req.Length < 1 {
		return "", ErrInvalidLength
	}
	if src == nil {
		src = CryptoSource{}
	}

	var sb strings.Builder
	sb.Grow(req.Length)

	for i := 0; i < req.Length; i++ {
		idx, err := src.IntN(len(pool))
		if err != nil {
			return "", fmt.Errorf("drawing character %d: %w", i, err)
		}
		sb.WriteByte(pool[idx])
	}

	return sb.String(), nil
}
