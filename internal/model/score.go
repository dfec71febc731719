package model

// Grade is the letter classification of a final score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// SourceScore holds the publisher/channel factor scores, each on 0-100.
type SourceScore struct {
	Subscriber     float64 `json:"subscriber" yaml:"subscriber"`
	Activity       float64 `json:"activity" yaml:"activity"`
	Engagement     float64 `json:"engagement" yaml:"engagement"`
	EngagementRate float64 `json:"engagementRate" yaml:"engagementRate"`
	Total          float64 `json:"total" yaml:"total"`

	// NoViews marks an engagement score taken from the zero-view baseline.
	NoViews bool `json:"noViews,omitempty" yaml:"noViews,omitempty"`
}

// ContentScore holds the text factor scores, each on 0-100.
type ContentScore struct {
	Title       float64 `json:"title" yaml:"title"`
	Description float64 `json:"description" yaml:"description"`
	Sentiment   float64 `json:"sentiment" yaml:"sentiment"`
	Total       float64 `json:"total" yaml:"total"`
	// KeywordHits counts occurrences per lexicon over title and description.
	KeywordHits map[string]int `json:"keywordHits" yaml:"keywordHits"`
}

// ScoreResult is the immutable outcome of one evaluation.
type ScoreResult struct {
	VideoID          string       `json:"videoId,omitempty" yaml:"videoId,omitempty"`
	Source           SourceScore  `json:"source" yaml:"source"`
	Content          ContentScore `json:"content" yaml:"content"`
	SourceTotal      float64      `json:"sourceTotal" yaml:"sourceTotal"`
	ContentTotal     float64      `json:"contentTotal" yaml:"contentTotal"`
	FinalScore       float64      `json:"finalScore" yaml:"finalScore"`
	ContentGated     bool         `json:"contentGated" yaml:"contentGated"`
	Grade            Grade        `json:"grade" yaml:"grade"`
	GradeDescription string       `json:"gradeDescription" yaml:"gradeDescription"`
	Rationale        []string     `json:"rationale" yaml:"rationale"`
	ConfigDigest     string       `json:"configDigest,omitempty" yaml:"configDigest,omitempty"`
}
