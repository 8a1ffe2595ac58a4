package skills

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	DefaultThreshold        = 0.85
	DefaultShortSkillMaxLen = 4

	PolicyExact    = "exact"
	PolicySemantic = "semantic"
	PolicyPrefix   = "short_skill_prefix"
)

// ErrEmbedding marks a failure of the embedding model. Matches returned
// together with it are still valid for the exact and short-skill policies.
var ErrEmbedding = errors.New("embedding failed")

// Embedder turns texts into vectors, one per text, in the same order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Config struct {
	// Threshold is the cosine similarity a token must exceed.
	Threshold float64 `mapstructure:"threshold"`
	// ShortSkillMaxLen is the longest skill eligible for the prefix policy.
	ShortSkillMaxLen int `mapstructure:"short-skill-max-len"`
}

// Matches is the set of skills found in a description.
type Matches map[string]struct{}

func (m Matches) Len() int {
	return len(m)
}

func (m Matches) Has(skill string) bool {
	_, ok := m[skill]
	return ok
}

// Sorted returns the matched skills in lexical order.
func (m Matches) Sorted() []string {
	result := make([]string, 0, len(m))
	for skill := range m {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}

// Matcher decides which skills of a resume are present in a job description.
type Matcher struct {
	embedder         Embedder
	threshold        float64
	shortSkillMaxLen int
	logger           *zap.Logger
}

// NewMatcher builds a Matcher. A nil embedder disables the semantic policy.
func NewMatcher(embedder Embedder, cfg *Config, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Matcher{
		embedder:         embedder,
		threshold:        DefaultThreshold,
		shortSkillMaxLen: DefaultShortSkillMaxLen,
		logger:           logger,
	}

	if cfg != nil {
		if cfg.Threshold > 0 {
			m.threshold = cfg.Threshold
		}
		if cfg.ShortSkillMaxLen > 0 {
			m.shortSkillMaxLen = cfg.ShortSkillMaxLen
		}
	}

	return m
}

// Match returns the skills considered present in description.
//
// Per skill: a case-insensitive substring hit wins immediately. Otherwise the
// skill matches when any description token is semantically close to it, or,
// for short single-word skills, when a token equals it and another skill in
// the list starts with it. The last rule is a heuristic for acronyms and
// fires on unrelated skills that happen to share a prefix.
func (m *Matcher) Match(ctx context.Context, description string, skills []string) (Matches, error) {
	matched := Matches{}
	if strings.TrimSpace(description) == "" || len(skills) == 0 {
		return matched, nil
	}

	text := strings.ToLower(description)

	pending := make([]string, 0, len(skills))
	for _, skill := range skills {
		if strings.TrimSpace(skill) == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(skill)) {
			m.record(matched, skill, PolicyExact)
			continue
		}
		pending = append(pending, skill)
	}

	if len(pending) == 0 {
		return matched, nil
	}

	tokens := unique(Tokenize(description))

	var embedErr error
	if m.embedder != nil && len(tokens) > 0 {
		similar, err := m.semantic(ctx, tokens, pending)
		if err != nil {
			embedErr = fmt.Errorf("%w: %w", ErrEmbedding, err)
		}
		for _, skill := range similar {
			m.record(matched, skill, PolicySemantic)
		}
	}

	tokenSet := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = struct{}{}
	}

	for _, skill := range pending {
		if matched.Has(skill) {
			continue
		}
		if m.prefixRule(skill, skills, tokenSet) {
			m.record(matched, skill, PolicyPrefix)
		}
	}

	return matched, embedErr
}

// prefixRule grants a short single-word skill when a token equals it and a
// sibling skill starts with it.
func (m *Matcher) prefixRule(skill string, skills []string, tokens map[string]struct{}) bool {
	if !m.isShort(skill) {
		return false
	}
	if _, ok := tokens[strings.ToLower(skill)]; !ok {
		return false
	}
	return hasPrefixSibling(skill, skills)
}

// semantic embeds tokens and skills in one call and returns the skills with
// at least one token above the threshold.
func (m *Matcher) semantic(ctx context.Context, tokens, skills []string) ([]string, error) {
	texts := make([]string, 0, len(tokens)+len(skills))
	texts = append(texts, tokens...)
	for _, skill := range skills {
		texts = append(texts, strings.ToLower(skill))
	}

	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors))
	}

	tokenVectors := vectors[:len(tokens)]
	skillVectors := vectors[len(tokens):]

	var result []string
	for i, skill := range skills {
		for j, token := range tokenVectors {
			if Cosine(token, skillVectors[i]) > m.threshold {
				m.logger.Debug("semantic match",
					zap.String("skill", skill),
					zap.String("token", tokens[j]),
				)
				result = append(result, skill)
				break
			}
		}
	}

	return result, nil
}

func (m *Matcher) isShort(skill string) bool {
	return len(strings.Fields(skill)) == 1 && utf8.RuneCountInString(skill) <= m.shortSkillMaxLen
}

func (m *Matcher) record(matched Matches, skill, policy string) {
	matched[skill] = struct{}{}
	m.logger.Debug("skill matched", zap.String("skill", skill), zap.String("policy", policy))
}

// hasPrefixSibling reports whether another entry of skills starts with skill.
// Entries with identical text are not siblings.
func hasPrefixSibling(skill string, skills []string) bool {
	prefix := strings.ToLower(skill)
	for _, word := range skills {
		if word == skill {
			continue
		}
		if strings.HasPrefix(strings.ToLower(word), prefix) {
			return true
		}
	}
	return false
}
