package services

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// titles are honorifics stripped from the start of a name.
var titles = map[string]struct{}{
	"ambassador": {}, "capt": {}, "captain": {}, "col": {}, "colonel": {},
	"congressman": {}, "congresswoman": {}, "dr": {}, "gen": {}, "general": {},
	"gov": {}, "governor": {}, "hon": {}, "honorable": {}, "judge": {},
	"justice": {}, "lieutenant": {}, "lt": {}, "mayor": {}, "mr": {}, "mrs": {},
	"ms": {}, "president": {}, "prof": {}, "professor": {}, "rep": {},
	"representative": {}, "secretary": {}, "sen": {}, "senator": {},
	"sergeant": {}, "sgt": {}, "the": {}, "vice": {},
}

// generational maps suffix spellings to their comparable form.
var generational = map[string]string{
	"jr": "jr", "junior": "jr",
	"sr": "sr", "senior": "sr",
	"ii": "ii", "2nd": "ii",
	"iii": "iii", "3rd": "iii",
	"iv": "iv", "4th": "iv",
	"v": "v", "5th": "v",
}

// credentials are dropped entirely.
var credentials = map[string]struct{}{
	"esq": {}, "md": {}, "phd": {}, "jd": {}, "cpa": {}, "dds": {}, "mba": {},
}

var dottedCredentials = strings.NewReplacer("m.d.", "md", "ph.d.", "phd", "j.d.", "jd")

// NameNormalizer canonicalises free-text person names. It is safe for
// concurrent use; parse results are cached per raw input.
type NameNormalizer struct {
	nicknames *NicknameTable
	parsed    sync.Map // raw -> domain.PersonName
	variants  sync.Map // canonical -> []string
}

// NewNameNormalizer creates a normalizer over the given nickname table.
// A nil table selects DefaultNicknames.
func NewNameNormalizer(nicknames *NicknameTable) *NameNormalizer {
	if nicknames == nil {
		nicknames = DefaultNicknames()
	}
	return &NameNormalizer{nicknames: nicknames}
}

// Nicknames returns the table the normalizer expands with.
func (n *NameNormalizer) Nicknames() *NicknameTable {
	return n.nicknames
}

// Parse splits a raw name into comparable tokens and a separate
// generational suffix. Titles, parentheticals and credentials are removed,
// "Last, First" is reordered, and diacritics are folded.
func (n *NameNormalizer) Parse(raw string) domain.PersonName {
	if cached, ok := n.parsed.Load(raw); ok {
		return cached.(domain.PersonName)
	}
	name := parseName(raw)
	n.parsed.Store(raw, name)
	return name
}

// Normalize returns the canonical comparable form of raw: the parsed tokens
// with the given name expanded to its primary formal form, followed by the
// suffix. It never fails; when nothing survives parsing the lower-cased,
// whitespace-collapsed input is returned.
func (n *NameNormalizer) Normalize(raw string) string {
	name := n.Parse(raw)
	if name.IsEmpty() {
		return collapse(strings.ToLower(raw))
	}
	tokens := append([]string(nil), name.Tokens...)
	if formal := n.nicknames.Formal(tokens[0]); len(formal) > 0 {
		tokens[0] = formal[0]
	}
	expanded := domain.PersonName{Raw: raw, Tokens: tokens, Suffix: name.Suffix}
	return expanded.Canonical()
}

// Variants returns every comparable form of name without its suffix: the
// full name and, for three or more tokens, first plus last, each with every
// nickname equivalent of the given name. The result is sorted.
func (n *NameNormalizer) Variants(name domain.PersonName) []string {
	if name.IsEmpty() {
		return nil
	}
	key := name.Base()
	if cached, ok := n.variants.Load(key); ok {
		return cached.([]string)
	}

	shapes := [][]string{name.Tokens}
	if len(name.Tokens) >= 3 {
		shapes = append(shapes, []string{name.Given(), name.Family()})
	}

	seen := make(map[string]struct{})
	for _, given := range n.nicknames.Equivalents(name.Given()) {
		for _, shape := range shapes {
			tokens := append([]string{given}, shape[1:]...)
			seen[strings.Join(tokens, " ")] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	n.variants.Store(key, out)
	return out
}

func parseName(raw string) domain.PersonName {
	s := strings.ToLower(foldDiacritics(raw))
	s = parenthetical.ReplaceAllString(s, " ")
	s = dottedCredentials.Replace(s)

	var suffix string
	s, suffix = reorderSegments(s)

	tokens := tokenize(s)
	tokens, trailing := stripTrailing(tokens)
	if suffix == "" {
		suffix = trailing
	}
	tokens = stripTitles(tokens)

	return domain.PersonName{Raw: raw, Tokens: tokens, Suffix: suffix}
}

// reorderSegments handles comma-separated forms. Segments consisting only of
// suffixes or credentials are removed (returning the generational suffix);
// "Last, First" is reordered to "First Last".
func reorderSegments(s string) (string, string) {
	if !strings.Contains(s, ",") {
		return s, ""
	}
	var names []string
	var suffix string
	for _, seg := range strings.Split(s, ",") {
		tokens := tokenize(seg)
		if len(tokens) == 0 {
			continue
		}
		rest, gen := stripTrailing(tokens)
		if len(rest) == 0 {
			if gen != "" {
				suffix = gen
			}
			continue
		}
		names = append(names, seg)
	}
	if len(names) == 2 {
		names[0], names[1] = names[1], names[0]
	}
	return strings.Join(names, " "), suffix
}

// stripTrailing removes trailing credentials and one generational suffix.
func stripTrailing(tokens []string) ([]string, string) {
	var suffix string
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if _, ok := credentials[last]; ok {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		gen, ok := generational[last]
		// A lone trailing "v" after a single given name is an initial.
		if ok && suffix == "" && (gen != "v" || len(tokens) > 2) {
			suffix = gen
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}
	return tokens, suffix
}

// stripTitles removes leading honorifics, keeping at least one token.
func stripTitles(tokens []string) []string {
	for len(tokens) > 1 {
		if _, ok := titles[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	return tokens
}

// tokenize turns punctuation into separators, drops apostrophes and
// splits on whitespace.
func tokenize(s string) []string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Fields(s)
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
