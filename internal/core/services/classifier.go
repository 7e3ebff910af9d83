package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

const maxEvidenceLines = 15

// defaultClassifyPrompt is used when no PromptStore is configured.
const defaultClassifyPrompt = `You are classifying the documented connection between a person and Jeffrey Epstein.
Classify STRICTLY from the document excerpts below. Do not infer from the person's
name, reputation or public role. Do not speculate beyond what the excerpts state.

Person: %s

Evidence from independent databases:
%s

Connection levels:
- Direct: named as a participant in illegal activity in the documents
- Contact: documented communication, meetings, travel or social contact
- Financial: documented money flows such as donations or payments
- Institutional: oversight or authority over related investigations or prosecutions

Choose exactly one level. If the evidence is ambiguous between two levels, choose the
less severe one.

Respond with JSON only: {"level": "<Direct|Contact|Financial|Institutional>", "reasoning": "<one sentence>"}`

var levelLabel = regexp.MustCompile(`(?i)level\s*[:=][\s*]*([a-z]+(?:\s*(?:/|,|\||\bor\b)\s*[a-z]+)*)`)

// Classification is the classifier's result for one candidate.
type Classification struct {
	Level     domain.ConnectionLevel
	Reasoning string
}

// Classifier determines the connection level of a corroborated candidate
// from documentary evidence only. Party affiliation never reaches it.
type Classifier struct {
	client  *ReasoningClient
	prompts driven.PromptStore
}

// NewClassifier creates a classifier. prompts may be nil.
func NewClassifier(client *ReasoningClient, prompts driven.PromptStore) *Classifier {
	return &Classifier{client: client, prompts: prompts}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *Classifier) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Classify returns the connection level for a MEDIUM or HIGH verdict.
// Any other tier is an invariant violation. A missing, unparseable or
// evidence-free classification is an error and blocks publication.
func (c *Classifier) Classify(
	ctx context.Context,
	candidate domain.Candidate,
	verdict domain.CorroborationVerdict,
) (Classification, error) {
	if !verdict.Tier.IsPublic() {
		return Classification{}, fmt.Errorf("%w: classify %s at tier %s",
			domain.ErrInvariantViolation, verdict.CandidateID, verdict.Tier)
	}

	evidence := EvidenceLines(verdict)
	if len(evidence) == 0 {
		return Classification{}, fmt.Errorf("%w: no evidence for %s",
			domain.ErrUncitedConnection, verdict.CandidateID)
	}

	template := defaultClassifyPrompt
	if c.prompts != nil {
		loaded, err := c.prompts.Load(driven.PromptClassify)
		if err != nil {
			return Classification{}, fmt.Errorf("load prompt: %w", err)
		}
		template = loaded
	}
	prompt := fmt.Sprintf(template, candidate.FullName, strings.Join(evidence, "\n"))

	text, err := c.client.Complete(ctx, prompt, driven.GenerateOptions{MaxTokens: 256, Temperature: 0})
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", verdict.CandidateID, err)
	}

	result, err := ParseClassification(text)
	if err != nil {
		return Classification{}, fmt.Errorf("classify %s: %w", verdict.CandidateID, err)
	}
	return result, nil
}

// EvidenceLines renders the supporting links as "[Source] (Doc: ref) excerpt"
// lines in stable order, capped at a fixed number of lines.
func EvidenceLines(verdict domain.CorroborationVerdict) []string {
	links := append([]domain.ConfirmedLink(nil), verdict.SupportingLinks...)
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Entity.Key() < links[j].Entity.Key()
	})

	var lines []string
	for _, link := range links {
		e := link.Entity
		source := e.SourceID.Info().Name
		ref := firstRef(e.DocumentRefs)
		if len(e.ContextSnippets) == 0 {
			if ref != "" {
				lines = append(lines, fmt.Sprintf("[%s] (Doc: %s) %s", source, ref, describeEntity(e)))
			}
		}
		for i, snippet := range e.ContextSnippets {
			docRef := ref
			if i < len(e.DocumentRefs) && strings.TrimSpace(e.DocumentRefs[i]) != "" {
				docRef = e.DocumentRefs[i]
			}
			lines = append(lines, fmt.Sprintf("[%s] (Doc: %s) %s",
				source, docRef, truncate(collapse(snippet), maxSnippetChars)))
		}
		if len(lines) >= maxEvidenceLines {
			return lines[:maxEvidenceLines]
		}
	}
	return lines
}

func describeEntity(e domain.Entity) string {
	if len(e.EvidenceTypes) > 0 {
		return "mentioned as " + e.RawName + "; evidence: " + strings.Join(e.EvidenceTypes, ", ")
	}
	return "mentioned as " + e.RawName
}

func firstRef(refs []string) string {
	for _, r := range refs {
		if strings.TrimSpace(r) != "" {
			return strings.TrimSpace(r)
		}
	}
	return ""
}

// ParseClassification extracts the level from a classifier response. It
// reads the first JSON object (tolerating prose and code fences) or a
// "Level: X" label. When several levels are named the least severe wins.
func ParseClassification(text string) (Classification, error) {
	body := stripFences(text)

	if obj, ok := firstJSONObject(body); ok {
		var payload struct {
			Level     string `json:"level"`
			Reasoning string `json:"reasoning"`
		}
		if err := json.Unmarshal([]byte(obj), &payload); err == nil && payload.Level != "" {
			if level, ok := leastSevereNamed(payload.Level); ok {
				return Classification{Level: level, Reasoning: strings.TrimSpace(payload.Reasoning)}, nil
			}
		}
	}

	if m := levelLabel.FindStringSubmatch(body); m != nil {
		if level, ok := leastSevereNamed(m[1]); ok {
			return Classification{Level: level}, nil
		}
	}

	return Classification{}, fmt.Errorf("%w: %q", domain.ErrUnparseableResponse, truncate(collapse(text), 80))
}

// leastSevereNamed parses "Contact", "Contact/Financial" or "Direct or Contact".
func leastSevereNamed(raw string) (domain.ConnectionLevel, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ',' || r == '|' || r == ' '
	})
	var levels []domain.ConnectionLevel
	for _, p := range parts {
		if l, err := domain.ParseConnectionLevel(p); err == nil {
			levels = append(levels, l)
		}
	}
	return domain.LeastSevere(levels...)
}
