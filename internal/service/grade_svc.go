package service

import (
	"fmt"
	"sort"

	"github.com/LuaAI777/cts-project/internal/model"
)

// GradeBand is one row of the grade table: scores at or above Min earn Grade.
type GradeBand struct {
	Grade       model.Grade
	Min         float64
	Description string
}

// Grades is walked from the highest band down. The last band starts at 0,
// so every score in [0,100] gets a grade.
var Grades = []GradeBand{
	{model.GradeA, 80, "Highly trustworthy content."},
	{model.GradeB, 60, "Trustworthy content."},
	{model.GradeC, 40, "Content of average trustworthiness."},
	{model.GradeD, 20, "Approach this content with caution."},
	{model.GradeF, 0, "Untrustworthy content."},
}

// ContentGate penalizes the final score when content trust is below Floor:
// the weighted sum is multiplied by Multiplier.
type ContentGate struct {
	Floor      float64
	Multiplier float64
}

type GradeService struct {
	gate ContentGate
}

func NewGradeService(gate ContentGate) *GradeService {
	return &GradeService{gate: gate}
}

// Aggregate combines the two sub-scores under w into a graded result.
//
//	final = sourceTotal*w.source + contentTotal*w.content
//	final *= gate.multiplier   if contentTotal < gate.floor
func (s *GradeService) Aggregate(src model.SourceScore, content model.ContentScore, w model.Weights) model.ScoreResult {
	final := src.Total*w.Source + content.Total*w.Content
	gated := content.Total < s.gate.Floor
	if gated {
		final *= s.gate.Multiplier
	}
	final = round2(clamp100(final))

	grade, desc := GradeFor(final)
	res := model.ScoreResult{
		Source:           src,
		Content:          content,
		SourceTotal:      src.Total,
		ContentTotal:     content.Total,
		FinalScore:       final,
		ContentGated:     gated,
		Grade:            grade,
		GradeDescription: desc,
	}
	res.Rationale = s.rationale(&res, w)
	return res
}

// GradeFor returns the first band whose minimum the score reaches, or the
// lowest band.
func GradeFor(score float64) (model.Grade, string) {
	for _, b := range Grades {
		if score >= b.Min {
			return b.Grade, b.Description
		}
	}
	last := Grades[len(Grades)-1]
	return last.Grade, last.Description
}

func (s *GradeService) rationale(r *model.ScoreResult, w model.Weights) []string {
	lines := []string{
		fmt.Sprintf("source trust %.2f: subscribers %.0f, activity %.0f, engagement %.0f at %.2f%% of views",
			r.SourceTotal, r.Source.Subscriber, r.Source.Activity, r.Source.Engagement, r.Source.EngagementRate),
		fmt.Sprintf("content trust %.2f: title %.0f, description %.0f, sentiment %.0f",
			r.ContentTotal, r.Content.Title, r.Content.Description, r.Content.Sentiment),
	}

	cats := make([]string, 0, len(r.Content.KeywordHits))
	for c := range r.Content.KeywordHits {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		lines = append(lines, fmt.Sprintf("%s keywords matched %d time(s)", c, r.Content.KeywordHits[c]))
	}

	if r.Source.NoViews {
		lines = append(lines, "no views recorded; engagement uses the zero-view baseline")
	}
	if r.ContentGated {
		lines = append(lines, fmt.Sprintf("content trust below floor %.0f; final score multiplied by %.2f",
			s.gate.Floor, s.gate.Multiplier))
	}
	lines = append(lines,
		fmt.Sprintf("final %.2f from weights source %.2f, content %.2f", r.FinalScore, w.Source, w.Content),
		fmt.Sprintf("grade %s: %s", r.Grade, r.GradeDescription))
	return lines
}
