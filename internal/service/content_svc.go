package service

import (
	"strings"

	"github.com/LuaAI777/cts-project/internal/model"
)

const (
	titleWeight       = 0.3
	descriptionWeight = 0.4
	sentimentWeight   = 0.3

	// Score for a text field that is empty or only whitespace.
	emptyTextScore = 50.0
)

// adjustment is a per-occurrence penalty or bonus with a cap on its total.
type adjustment struct {
	perHit float64
	cap    float64
}

func (a adjustment) apply(hits int) float64 {
	return min(a.perHit*float64(hits), a.cap)
}

var (
	titleClickbait      = adjustment{perHit: 15, cap: 30}
	titleEmotional      = adjustment{perHit: 10, cap: 20}
	titleProfessional   = adjustment{perHit: 5, cap: 10}
	descRequired        = adjustment{perHit: 5, cap: 15}
	descSuspicious      = adjustment{perHit: 15, cap: 30}
	descProfessional    = adjustment{perHit: 5, cap: 10}
	sentimentEmotional  = adjustment{perHit: 10, cap: 30}
	sentimentSuspicious = adjustment{perHit: 10, cap: 30}
)

type ContentTrustService struct{}

func NewContentTrustService() *ContentTrustService {
	return &ContentTrustService{}
}

// Score rates title and description against the lexicons in kw. Matching is
// case-sensitive substring counting; every occurrence counts and a term
// listed in several lexicons counts in each of them.
// Sentiment uses the title hits plus the description hits, not a count over
// the joined text, so no match can span the two fields.
func (s *ContentTrustService) Score(title, description string, kw model.Keywords) model.ContentScore {
	hasTitle := strings.TrimSpace(title) != ""
	hasDesc := strings.TrimSpace(description) != ""

	out := model.ContentScore{
		Title:       emptyTextScore,
		Description: emptyTextScore,
		Sentiment:   emptyTextScore,
		KeywordHits: make(map[string]int, 5),
	}
	for _, lex := range kw.Categories() {
		if n := CountKeywords(title, lex.Terms) + CountKeywords(description, lex.Terms); n > 0 {
			out.KeywordHits[lex.Name] = n
		}
	}

	if hasTitle {
		out.Title = clamp100(100 -
			titleClickbait.apply(CountKeywords(title, kw.Clickbait)) -
			titleEmotional.apply(CountKeywords(title, kw.Emotional)) +
			titleProfessional.apply(CountKeywords(title, kw.Professional)))
	}
	if hasDesc {
		out.Description = clamp100(100 +
			descRequired.apply(CountKeywords(description, kw.Required)) -
			descSuspicious.apply(CountKeywords(description, kw.Suspicious)) +
			descProfessional.apply(CountKeywords(description, kw.Professional)))
	}
	if hasTitle || hasDesc {
		out.Sentiment = clamp100(100 -
			sentimentEmotional.apply(out.KeywordHits[model.CategoryEmotional]) -
			sentimentSuspicious.apply(out.KeywordHits[model.CategorySuspicious]))
	}

	out.Total = round2(clamp100(
		out.Title*titleWeight +
			out.Description*descriptionWeight +
			out.Sentiment*sentimentWeight))
	return out
}

// CountKeywords sums the occurrences of every term in text.
func CountKeywords(text string, terms []string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		n += strings.Count(text, term)
	}
	return n
}
