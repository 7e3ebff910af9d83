package services

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

const (
	defaultMaxCitations = 10
	maxSummaryExcerpt   = 200
	genericEvidence     = "Documents"

	dojLibraryURL     = "https://www.justice.gov/epstein"
	houseOversightURL = "https://oversight.house.gov/release/epstein-records"
)

var dojDataset = regexp.MustCompile(`(?i)DS(0[1-9]|1[0-2])`)

// evidenceKinds are checked in order against snippets and evidence types.
var evidenceKinds = []struct {
	label    string
	keywords []string
}{
	{"Flight logs", []string{"flight", "manifest", "passenger"}},
	{"Email correspondence", []string{"email", "e-mail"}},
	{"Campaign finance records", []string{"donation", "fec", "campaign", "contribution"}},
	{"Testimony", []string{"testimony", "deposition", "victim"}},
	{"Phone records", []string{"phone", "call log", "message pad"}},
	{"Photographs", []string{"photo"}},
}

// CitationAssembler builds the source-linked citations for a corroborated
// candidate. Every citation carries a resolvable document URL.
type CitationAssembler struct {
	maxCitations int
}

// NewCitationAssembler creates an assembler keeping at most maxCitations.
func NewCitationAssembler(maxCitations int) *CitationAssembler {
	if maxCitations < 1 {
		maxCitations = defaultMaxCitations
	}
	return &CitationAssembler{maxCitations: maxCitations}
}

// Assemble produces one citation per supporting document, deduplicated by
// URL and interleaved across sources so every credited source is represented.
// A document reference that cannot be turned into a resolvable URL fails the
// whole assembly with domain.ErrUncitedConnection.
func (a *CitationAssembler) Assemble(verdict domain.CorroborationVerdict) ([]domain.Citation, error) {
	bySource := make(map[domain.SourceID][]domain.Citation)
	seen := make(map[string]struct{})

	links := append([]domain.ConfirmedLink(nil), verdict.SupportingLinks...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Key() < links[j].Key() })

	for _, link := range links {
		e := link.Entity
		for i, ref := range e.DocumentRefs {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			docURL := BuildDocumentURL(ref, e.SourceID)
			snippet := ""
			if i < len(e.ContextSnippets) {
				snippet = e.ContextSnippets[i]
			} else if len(e.ContextSnippets) > 0 {
				snippet = e.ContextSnippets[0]
			}
			citation, err := domain.NewCitation(citationSummary(e, snippet), docURL, ref, e.SourceID)
			if err != nil {
				return nil, fmt.Errorf("assemble %s: %w", verdict.CandidateID, err)
			}
			if _, dup := seen[docURL]; dup {
				continue
			}
			seen[docURL] = struct{}{}
			bySource[e.SourceID] = append(bySource[e.SourceID], citation)
		}
	}

	citations := interleave(bySource, a.maxCitations)
	if len(citations) == 0 {
		return nil, fmt.Errorf("assemble %s: %w", verdict.CandidateID, domain.ErrUncitedConnection)
	}
	return citations, nil
}

// Summary returns the one-line description of a corroborated connection,
// naming the kinds of evidence found.
func (a *CitationAssembler) Summary(verdict domain.CorroborationVerdict) string {
	kinds := make(map[string]struct{})
	for _, link := range verdict.SupportingLinks {
		e := link.Entity
		texts := append(append([]string(nil), e.ContextSnippets...), e.EvidenceTypes...)
		if len(texts) == 0 {
			texts = []string{""}
		}
		for _, t := range texts {
			kinds[strings.ToLower(evidenceKind(t))] = struct{}{}
		}
	}
	if len(kinds) > 1 {
		delete(kinds, strings.ToLower(genericEvidence))
	}
	list := make([]string, 0, len(kinds))
	for k := range kinds {
		list = append(list, k)
	}
	sort.Strings(list)
	return fmt.Sprintf("Documented in %s across %d independent databases",
		strings.Join(list, ", "), verdict.DistinctSourceCount)
}

// BuildDocumentURL turns a document reference into a primary-source URL.
// Absolute http(s) references pass through; DOJ dataset identifiers (DS01 to
// DS12) link to their dataset page; otherwise the source's release page or
// the DOJ library is used with the reference as anchor. Blank references
// yield an empty string.
func BuildDocumentURL(ref string, source domain.SourceID) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}

	anchor := "#" + url.PathEscape(ref)
	if m := dojDataset.FindStringSubmatch(ref); m != nil {
		return dojLibraryURL + "/dataset-" + m[1] + anchor
	}
	switch source {
	case domain.SourceMaxAndrews:
		return houseOversightURL + anchor
	default:
		return dojLibraryURL + anchor
	}
}

func citationSummary(e domain.Entity, snippet string) string {
	kindText := snippet
	if len(e.EvidenceTypes) > 0 {
		kindText += " " + strings.Join(e.EvidenceTypes, " ")
	}
	kind := evidenceKind(kindText)
	source := e.SourceID.Info().Name

	excerpt := truncate(collapse(snippet), maxSummaryExcerpt)
	if excerpt == "" {
		return fmt.Sprintf("%s in %s naming %s", kind, source, e.RawName)
	}
	return fmt.Sprintf("%s in %s: %s", kind, source, excerpt)
}

func evidenceKind(text string) string {
	lower := strings.ToLower(text)
	for _, k := range evidenceKinds {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return k.label
			}
		}
	}
	return genericEvidence
}

// interleave takes one citation per source in turn, sources in stable order.
func interleave(bySource map[domain.SourceID][]domain.Citation, limit int) []domain.Citation {
	sources := make([]domain.SourceID, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	var out []domain.Citation
	for round := 0; len(out) < limit; round++ {
		added := false
		for _, s := range sources {
			if round < len(bySource[s]) {
				out = append(out, bySource[s][round])
				added = true
				if len(out) == limit {
					return out
				}
			}
		}
		if !added {
			break
		}
	}
	return out
}
