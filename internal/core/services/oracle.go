package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/logger"
)

const (
	maxPromptCategories = 10
	maxPromptSnippets   = 10
	maxSnippetChars     = 500
)

// defaultDisambiguatePrompt is used when no PromptStore is configured.
const defaultDisambiguatePrompt = `You are verifying whether two records refer to the SAME real person.
Judge identity only. Do not judge guilt, wrongdoing or the nature of any relationship.
A shared name alone is not enough; use the biographical facts and the document context.

POLITICAL CANDIDATE:
Name: %s
%s

ENTITY FROM DOCUMENT DATABASE:
Name: %s
Source: %s
Categories: %s
Context from documents:
%s

Answer with exactly one word: CONFIRM if they are the same person, REJECT if they are
different people, or UNCERTAIN if the evidence is insufficient.`

var verdictWords = map[string]domain.Verdict{
	"CONFIRM":   domain.VerdictConfirm,
	"CONFIRMED": domain.VerdictConfirm,
	"YES":       domain.VerdictConfirm,
	"SAME":      domain.VerdictConfirm,
	"REJECT":    domain.VerdictReject,
	"REJECTED":  domain.VerdictReject,
	"NO":        domain.VerdictReject,
	"DIFFERENT": domain.VerdictReject,
	"UNCERTAIN": domain.VerdictUncertain,
	"UNSURE":    domain.VerdictUncertain,
}

// proseVerdicts are the only words trusted when scanning free prose.
var proseVerdicts = map[string]domain.Verdict{
	"CONFIRM":   domain.VerdictConfirm,
	"CONFIRMED": domain.VerdictConfirm,
	"REJECT":    domain.VerdictReject,
	"REJECTED":  domain.VerdictReject,
	"UNCERTAIN": domain.VerdictUncertain,
}

var verdictLabel = regexp.MustCompile(`(?i)verdict\s*[:=]\s*\**\s*([a-z]+)`)

// OracleAdapter asks the reasoning service whether a shortlisted pair is the
// same person and maps the answer onto the three-way verdict. It fails
// closed: anything but a parsed CONFIRM is a non-match.
type OracleAdapter struct {
	client  *ReasoningClient
	prompts driven.PromptStore
	cache   driven.VerdictCache
	metrics driven.Metrics

	group singleflight.Group
	memo  sync.Map // request key -> domain.Verdict
}

// NewOracleAdapter creates an oracle. prompts, cache and metrics may be nil.
func NewOracleAdapter(
	client *ReasoningClient,
	prompts driven.PromptStore,
	cache driven.VerdictCache,
	metrics driven.Metrics,
) *OracleAdapter {
	return &OracleAdapter{
		client:  client,
		prompts: prompts,
		cache:   cache,
		metrics: metrics,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (o *OracleAdapter) SetPromptStore(store driven.PromptStore) {
	o.prompts = store
}

// Disambiguate returns the verdict for a pair. Faults are logged and yield
// UNCERTAIN.
func (o *OracleAdapter) Disambiguate(
	ctx context.Context,
	pair domain.MatchCandidatePair,
	candidate domain.Candidate,
) domain.Verdict {
	verdict, err := o.Judge(ctx, pair, candidate)
	if err != nil {
		logger.Warn("oracle fault for %s / %s: %v", pair.CandidateID, pair.Entity.Key(), err)
	}
	return verdict
}

// Judge returns the verdict for a pair together with any fault. The verdict
// is always valid; on fault it is UNCERTAIN. Without a reasoning service
// every pair is UNCERTAIN and no fault is reported.
func (o *OracleAdapter) Judge(
	ctx context.Context,
	pair domain.MatchCandidatePair,
	candidate domain.Candidate,
) (domain.Verdict, error) {
	if !o.client.Available() {
		return domain.VerdictUncertain, nil
	}

	prompt, err := o.buildPrompt(pair, candidate)
	if err != nil {
		o.count("fault")
		return domain.VerdictUncertain, err
	}
	key := o.requestKey(prompt)

	if v, ok := o.memo.Load(key); ok {
		o.count("cache_hit")
		return v.(domain.Verdict), nil
	}

	v, err, _ := o.group.Do(key, func() (any, error) {
		return o.resolve(ctx, key, prompt)
	})
	if err != nil {
		o.count("fault")
		return domain.VerdictUncertain, fmt.Errorf("disambiguate %s: %w", pair.Entity.Key(), err)
	}
	verdict := v.(domain.Verdict)
	o.count(strings.ToLower(verdict.String()))
	return verdict, nil
}

// Reset forgets in-run memoised verdicts.
func (o *OracleAdapter) Reset() {
	o.memo.Range(func(k, _ any) bool {
		o.memo.Delete(k)
		return true
	})
}

func (o *OracleAdapter) resolve(ctx context.Context, key, prompt string) (domain.Verdict, error) {
	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("verdict cache read failed: %v", err)
		} else if ok && cached.IsValid() {
			o.memo.Store(key, cached)
			return cached, nil
		}
	}

	text, err := o.client.Complete(ctx, prompt, driven.GenerateOptions{MaxTokens: 16, Temperature: 0})
	if err != nil {
		return domain.VerdictUncertain, err
	}

	verdict, err := ParseVerdict(text)
	if err != nil {
		return domain.VerdictUncertain, err
	}

	o.memo.Store(key, verdict)
	if o.cache != nil {
		if err := o.cache.Put(ctx, key, verdict); err != nil {
			logger.Warn("verdict cache write failed: %v", err)
		}
	}
	return verdict, nil
}

func (o *OracleAdapter) buildPrompt(pair domain.MatchCandidatePair, candidate domain.Candidate) (string, error) {
	template := defaultDisambiguatePrompt
	if o.prompts != nil {
		loaded, err := o.prompts.Load(driven.PromptDisambiguate)
		if err != nil {
			return "", fmt.Errorf("load prompt: %w", err)
		}
		template = loaded
	}

	entity := pair.Entity
	entityName := entity.RawName
	if len(entity.Aliases) > 0 {
		entityName += " (also: " + strings.Join(entity.Aliases, "; ") + ")"
	}

	return fmt.Sprintf(template,
		candidate.FullName,
		candidateBio(candidate),
		entityName,
		entity.SourceID.Info().Name,
		formatCategories(entity.Categories),
		formatSnippets(entity.ContextSnippets),
	), nil
}

func (o *OracleAdapter) requestKey(prompt string) string {
	sum := sha256.Sum256([]byte(o.client.ModelName() + "\x00" + prompt))
	return "disambiguate:" + hex.EncodeToString(sum[:])
}

func (o *OracleAdapter) count(outcome string) {
	if o.metrics != nil {
		o.metrics.IncOracleCall(outcome)
	}
}

func candidateBio(c domain.Candidate) string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Office", c.Office)
	add("Jurisdiction", c.Jurisdiction)
	add("District", c.District)
	add("Party", c.Party)
	if c.Incumbent {
		lines = append(lines, "Incumbent: yes")
	}
	if len(c.Aliases) > 0 {
		add("Also known as", strings.Join(c.Aliases, "; "))
	}
	return strings.Join(lines, "\n")
}

func formatCategories(categories []string) string {
	if len(categories) == 0 {
		return "none recorded"
	}
	if len(categories) > maxPromptCategories {
		categories = categories[:maxPromptCategories]
	}
	return strings.Join(categories, ", ")
}

func formatSnippets(snippets []string) string {
	if len(snippets) == 0 {
		return "- no context available"
	}
	if len(snippets) > maxPromptSnippets {
		snippets = snippets[:maxPromptSnippets]
	}
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, "- "+truncate(collapse(s), maxSnippetChars))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ParseVerdict maps a free-form oracle response onto a verdict. It accepts,
// in order: a JSON object with a "verdict" field, a "Verdict: X" label, a
// one-word answer, a leading verdict word not contradicted later in the
// response, or exactly one upper-case verdict word in prose. Yes/no style
// words count only as the whole answer. Anything else, including
// conflicting words, is unparseable.
func ParseVerdict(text string) (domain.Verdict, error) {
	body := stripFences(text)
	if body == "" {
		return domain.VerdictUncertain, fmt.Errorf("%w: empty response", domain.ErrUnparseableResponse)
	}

	if obj, ok := firstJSONObject(body); ok {
		var payload struct {
			Verdict string `json:"verdict"`
		}
		if err := json.Unmarshal([]byte(obj), &payload); err == nil && payload.Verdict != "" {
			if v, ok := verdictWords[strings.ToUpper(strings.TrimSpace(payload.Verdict))]; ok {
				return v, nil
			}
		}
	}

	if m := verdictLabel.FindStringSubmatch(body); m != nil {
		if v, ok := verdictWords[strings.ToUpper(m[1])]; ok {
			return v, nil
		}
	}

	words := strings.FieldsFunc(body, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if len(words) == 1 {
		if v, ok := verdictWords[strings.ToUpper(words[0])]; ok {
			return v, nil
		}
	}
	if len(words) > 1 {
		if v, ok := proseVerdicts[strings.ToUpper(words[0])]; ok {
			for _, w := range words[1:] {
				if other, ok := proseVerdicts[strings.ToUpper(w)]; ok && other != v {
					return domain.VerdictUncertain, fmt.Errorf("%w: conflicting verdicts in %q",
						domain.ErrUnparseableResponse, truncate(collapse(text), 80))
				}
			}
			return v, nil
		}
	}

	found := make(map[domain.Verdict]struct{})
	for _, w := range words {
		if w != strings.ToUpper(w) {
			continue
		}
		if v, ok := proseVerdicts[w]; ok {
			found[v] = struct{}{}
		}
	}
	if len(found) == 1 {
		for v := range found {
			return v, nil
		}
	}
	return domain.VerdictUncertain, fmt.Errorf("%w: %q", domain.ErrUnparseableResponse, truncate(collapse(text), 80))
}

// stripFences removes Markdown code fences around a response.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced {...} span in text.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
