package model

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/LuaAI777/cts-project/internal/apperr"
)

// WeightSumTolerance is the allowed deviation of weights.source+weights.content from 1.0.
const WeightSumTolerance = 1e-6

//go:embed defaults.yaml
var defaultConfigYAML []byte

// Config is the versioned set of tunable scoring parameters. A Config that
// backs live scoring is never mutated in place; it is replaced wholesale.
type Config struct {
	Weights    Weights    `json:"weights" yaml:"weights"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
	Keywords   Keywords   `json:"keywords" yaml:"keywords"`
}

// Weights splits the final score between source and content trust.
type Weights struct {
	Source  float64 `json:"source" yaml:"source"`
	Content float64 `json:"content" yaml:"content"`
}

// Tiers is a strictly decreasing high > medium > low >= 0 step table.
type Tiers struct {
	High   int64 `json:"high" yaml:"high"`
	Medium int64 `json:"medium" yaml:"medium"`
	Low    int64 `json:"low" yaml:"low"`
}

type Thresholds struct {
	Subscribers Tiers `json:"subscribers" yaml:"subscribers"`
	// Activity is measured in channel age days.
	Activity Tiers `json:"activity" yaml:"activity"`
}

// Keywords holds the case-sensitive substring lexicons. Categories may share terms.
type Keywords struct {
	Required     []string `json:"required" yaml:"required"`
	Suspicious   []string `json:"suspicious" yaml:"suspicious"`
	Clickbait    []string `json:"clickbait" yaml:"clickbait"`
	Emotional    []string `json:"emotional" yaml:"emotional"`
	Professional []string `json:"professional" yaml:"professional"`
}

// Keyword category names, used in rationale strings, diffs and hit counts.
const (
	CategoryRequired     = "required"
	CategorySuspicious   = "suspicious"
	CategoryClickbait    = "clickbait"
	CategoryEmotional    = "emotional"
	CategoryProfessional = "professional"
)

// Lexicon is one named keyword category.
type Lexicon struct {
	Name  string
	Terms []string
}

// Categories returns the lexicons in a fixed order.
func (k Keywords) Categories() []Lexicon {
	return []Lexicon{
		{CategoryRequired, k.Required},
		{CategorySuspicious, k.Suspicious},
		{CategoryClickbait, k.Clickbait},
		{CategoryEmotional, k.Emotional},
		{CategoryProfessional, k.Professional},
	}
}

// NewConfig builds a Config and fails with a validation error if the
// result violates any invariant.
func NewConfig(w Weights, t Thresholds, k Keywords) (*Config, error) {
	c := (&Config{Weights: w, Thresholds: t, Keywords: k}).Clone()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
)

// DefaultConfig returns a fresh copy of the embedded default configuration.
func DefaultConfig() *Config {
	defaultOnce.Do(func() {
		c, err := ParseConfig(defaultConfigYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded defaults.yaml: %v", err))
		}
		defaultConfig = c
	})
	return defaultConfig.Clone()
}

// ParseConfig decodes a YAML (or JSON) document and validates it fully.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, apperr.Validation("decode config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Keywords = Keywords{
		Required:     cloneTerms(c.Keywords.Required),
		Suspicious:   cloneTerms(c.Keywords.Suspicious),
		Clickbait:    cloneTerms(c.Keywords.Clickbait),
		Emotional:    cloneTerms(c.Keywords.Emotional),
		Professional: cloneTerms(c.Keywords.Professional),
	}
	return &out
}

func cloneTerms(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ShapeProblems lists structural defects: missing keyword lists, blank or
// duplicated terms. Proposals are checked against shape only.
func (c *Config) ShapeProblems() []string {
	var problems []string
	for _, cat := range c.Keywords.Categories() {
		if cat.Terms == nil {
			problems = append(problems, fmt.Sprintf("keywords.%s is missing", cat.Name))
			continue
		}
		seen := make(map[string]struct{}, len(cat.Terms))
		for i, term := range cat.Terms {
			if strings.TrimSpace(term) == "" {
				problems = append(problems, fmt.Sprintf("keywords.%s[%d] is blank", cat.Name, i))
				continue
			}
			if _, dup := seen[term]; dup {
				problems = append(problems, fmt.Sprintf("keywords.%s contains %q more than once", cat.Name, term))
			}
			seen[term] = struct{}{}
		}
	}
	return problems
}

// Problems lists every invariant violation, shape included.
func (c *Config) Problems() []string {
	problems := c.ShapeProblems()

	w := c.Weights
	for _, f := range []struct {
		name string
		v    float64
	}{{"weights.source", w.Source}, {"weights.content", w.Content}} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be within [0,1], got %v", f.name, f.v))
		}
	}
	if sum := w.Source + w.Content; math.IsNaN(sum) || math.Abs(sum-1.0) > WeightSumTolerance {
		problems = append(problems, fmt.Sprintf("weights.source + weights.content must equal 1.0, got %v", sum))
	}

	problems = append(problems, c.Thresholds.Subscribers.problems("thresholds.subscribers")...)
	problems = append(problems, c.Thresholds.Activity.problems("thresholds.activity")...)
	return problems
}

func (t Tiers) problems(prefix string) []string {
	var problems []string
	if t.Low < 0 {
		problems = append(problems, fmt.Sprintf("%s.low must be >= 0, got %d", prefix, t.Low))
	}
	if !(t.High > t.Medium && t.Medium > t.Low) {
		problems = append(problems, fmt.Sprintf("%s must be strictly decreasing (high > medium > low), got %d/%d/%d",
			prefix, t.High, t.Medium, t.Low))
	}
	return problems
}

// ValidateShape fails if ShapeProblems is non-empty.
func (c *Config) ValidateShape() error {
	return problemsError(c.ShapeProblems())
}

// Validate fails if any invariant is violated.
func (c *Config) Validate() error {
	return problemsError(c.Problems())
}

func problemsError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return apperr.Validation("invalid config: %s", strings.Join(problems, "; "))
}
