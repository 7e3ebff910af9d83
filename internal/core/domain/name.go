package domain

import "strings"

// PersonName is the parsed, comparable form of a free-text person name.
type PersonName struct {
	// Raw is the input string.
	Raw string

	// Tokens are the case-folded name tokens without honorifics or suffixes.
	Tokens []string

	// Suffix is the normalised generational suffix ("jr", "sr", "ii", "iii", "iv", "v")
	// or empty. Kept apart so that two people differing only by suffix never collapse.
	Suffix string
}

// Base returns the tokens joined with single spaces.
func (n PersonName) Base() string {
	return strings.Join(n.Tokens, " ")
}

// Canonical returns the base form followed by the suffix, if any.
func (n PersonName) Canonical() string {
	if n.Suffix == "" {
		return n.Base()
	}
	if len(n.Tokens) == 0 {
		return n.Suffix
	}
	return n.Base() + " " + n.Suffix
}

// Given returns the first token.
func (n PersonName) Given() string {
	if len(n.Tokens) == 0 {
		return ""
	}
	return n.Tokens[0]
}

// Family returns the last token.
func (n PersonName) Family() string {
	if len(n.Tokens) == 0 {
		return ""
	}
	return n.Tokens[len(n.Tokens)-1]
}

// IsEmpty returns true if no usable token survived parsing.
func (n PersonName) IsEmpty() bool {
	return len(n.Tokens) == 0
}

// SuffixCompatible reports whether the two names may denote the same person
// as far as generational suffixes go. A missing suffix is compatible with any;
// two different explicit suffixes are not.
func (n PersonName) SuffixCompatible(other PersonName) bool {
	if n.Suffix == "" || other.Suffix == "" {
		return true
	}
	return n.Suffix == other.Suffix
}
