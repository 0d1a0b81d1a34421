// Package recommendation picks the catalog product that best fits a free text preference.
// It only reads product and attribute data and never touches stock or sales.
package recommendation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"nainai/backend/internal/cache"
	"nainai/backend/internal/domain"
)

const (
	MessageNoMatch   = "no matching product found"
	MessageNoCatalog = "no products available to recommend"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "with": {}, "something": {}, "some": {},
	"i": {}, "want": {}, "like": {}, "would": {}, "please": {}, "drink": {}, "of": {},
	"for": {}, "me": {}, "to": {}, "is": {}, "that": {}, "but": {}, "not": {}, "very": {},
}

// CacheKeyPrefix namespaces recommendation answers in a shared cache.
const CacheKeyPrefix = "nainai:recommendation:"

type Engine struct {
	cache cache.Cache[domain.RecommendationResponse]
}

// NewEngine answers from answers when it holds one. A nil answers disables caching.
func NewEngine(answers cache.Cache[domain.RecommendationResponse]) *Engine {
	if answers == nil {
		answers = cache.Noop[domain.RecommendationResponse]{}
	}
	return &Engine{cache: answers}
}

// Recommend scores every profile by the share of preference terms found in the
// product name or its attributes. Ties keep the earlier profile.
func (e *Engine) Recommend(ctx context.Context, preference string, profiles []domain.ProductProfile) domain.RecommendationResponse {
	startedAt := time.Now()

	if len(profiles) == 0 {
		return domain.RecommendationResponse{
			Message:   MessageNoCatalog,
			LatencyMS: time.Since(startedAt).Milliseconds(),
		}
	}

	terms := Terms(preference)
	if len(terms) == 0 {
		return domain.RecommendationResponse{
			Message:   MessageNoMatch,
			LatencyMS: time.Since(startedAt).Milliseconds(),
		}
	}

	cacheKey := buildCacheKey(terms, profiles)
	if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		cached.LatencyMS = time.Since(startedAt).Milliseconds()
		return cached
	}

	var best *domain.Recommendation
	bestScore := 0.0
	for _, profile := range profiles {
		matchedTerms, matchedAttrs := match(terms, profile)
		if matchedTerms == 0 {
			continue
		}
		score := float64(matchedTerms) / float64(len(terms))
		if score > bestScore {
			bestScore = score
			best = &domain.Recommendation{
				ProductID:         profile.Product.ID,
				Name:              profile.Product.Name,
				Price:             profile.Product.Price,
				MatchedAttributes: matchedAttrs,
				Confidence:        round2(clamp(score, 0, 1)),
			}
		}
	}

	resp := domain.RecommendationResponse{Message: MessageNoMatch}
	if best != nil {
		resp.Recommendation = best
		resp.Message = fmt.Sprintf("recommended: %s", best.Name)
	}

	resp.LatencyMS = time.Since(startedAt).Milliseconds()
	_ = e.cache.Set(ctx, cacheKey, resp)
	return resp
}

// Terms lowercases the preference, splits it into words and drops filler words.
// Repeated words count once.
func Terms(preference string) []string {
	words := strings.FieldsFunc(strings.ToLower(preference), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, skip := stopWords[word]; skip {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}
	return terms
}

func match(terms []string, profile domain.ProductProfile) (int, []string) {
	nameWords := wordSet(profile.Product.Name)
	attrWords := make([]map[string]struct{}, len(profile.Attributes))
	for i, attr := range profile.Attributes {
		attrWords[i] = wordSet(attr.Name + " " + attr.Value)
	}

	matchedTerms := 0
	hitAttrs := make([]bool, len(profile.Attributes))
	for _, term := range terms {
		hit := false
		if _, ok := nameWords[term]; ok {
			hit = true
		}
		for i, words := range attrWords {
			if _, ok := words[term]; ok {
				hitAttrs[i] = true
				hit = true
			}
		}
		if hit {
			matchedTerms++
		}
	}

	matched := make([]string, 0, len(profile.Attributes))
	for i, attr := range profile.Attributes {
		if hitAttrs[i] {
			matched = append(matched, attr.Name+": "+attr.Value)
		}
	}
	return matchedTerms, matched
}

func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// buildCacheKey folds the catalog into the key so any catalog edit invalidates old answers.
func buildCacheKey(terms []string, profiles []domain.ProductProfile) string {
	var b strings.Builder
	b.WriteString(strings.Join(terms, " "))
	for _, profile := range profiles {
		fmt.Fprintf(&b, "|%d:%s:%s", profile.Product.ID, profile.Product.Name, profile.Product.Price.String())
		for _, attr := range profile.Attributes {
			fmt.Fprintf(&b, ",%d", attr.ID)
		}
	}

	hash := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}

func clamp(val float64, minVal float64, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
