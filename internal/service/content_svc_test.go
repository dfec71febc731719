package service

import (
	"testing"

	"github.com/LuaAI777/cts-project/internal/model"
)

func TestContentScore_Title(t *testing.T) {
	svc := NewContentTrustService()
	kw := model.DefaultConfig().Keywords

	tests := []struct {
		name  string
		title string
		want  float64
	}{
		{"neutral", "weekly update", 100},
		{"two clickbait terms", "shocking news you won't believe", 70},
		{"clickbait penalty is capped", "shocking must see 충격 경악", 70},
		{"case sensitive", "SHOCKING news", 100},
		{"repeated term counts each time", "shocking shocking", 70},
		{"mixed", "충격 분노 analysis", 80},
		{"professional bonus cannot exceed 100", "expert analysis study", 100},
		{"blank uses baseline", "   ", emptyTextScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Score(tt.title, "plain text", kw)
			if got.Title != tt.want {
				t.Errorf("Title(%q) = %v, want %v", tt.title, got.Title, tt.want)
			}
		})
	}
}

func TestContentScore_Description(t *testing.T) {
	svc := NewContentTrustService()
	kw := model.DefaultConfig().Keywords

	tests := []struct {
		name string
		desc string
		want float64
	}{
		{"neutral", "a video about cats", 100},
		{"suspicious capped", "guaranteed miracle 확실", 70},
		{"required offsets suspicious", "guaranteed results, source linked below", 90},
		{"empty uses baseline", "", emptyTextScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Score("title", tt.desc, kw)
			if got.Description != tt.want {
				t.Errorf("Description(%q) = %v, want %v", tt.desc, got.Description, tt.want)
			}
		})
	}
}

func TestContentScore_Sentiment(t *testing.T) {
	got := NewContentTrustService().Score("amazing", "terrible outrage guaranteed", model.DefaultConfig().Keywords)

	if got.Title != 90 {
		t.Errorf("Title = %v, want 90", got.Title)
	}
	if got.Description != 85 {
		t.Errorf("Description = %v, want 85", got.Description)
	}
	// emotional 3 hits capped at 30, suspicious 1 hit
	if got.Sentiment != 60 {
		t.Errorf("Sentiment = %v, want 60", got.Sentiment)
	}
	// 90*0.3 + 85*0.4 + 60*0.3
	if got.Total != 79 {
		t.Errorf("Total = %v, want 79", got.Total)
	}
	if got.KeywordHits[model.CategoryEmotional] != 3 || got.KeywordHits[model.CategorySuspicious] != 1 {
		t.Errorf("KeywordHits = %v", got.KeywordHits)
	}
}

func TestContentScore_EmptyText(t *testing.T) {
	got := NewContentTrustService().Score("", "", model.DefaultConfig().Keywords)

	if got.Total != emptyTextScore {
		t.Errorf("Total = %v, want %v", got.Total, emptyTextScore)
	}
	if len(got.KeywordHits) != 0 {
		t.Errorf("KeywordHits = %v, want none", got.KeywordHits)
	}
}

func TestContentScore_SharedTermCountsInEachCategory(t *testing.T) {
	kw := model.DefaultConfig().Keywords
	kw.Clickbait = []string{"wow"}
	kw.Emotional = []string{"wow"}

	got := NewContentTrustService().Score("wow", "details", kw)

	if got.Title != 75 {
		t.Errorf("Title = %v, want 75", got.Title)
	}
	if got.KeywordHits[model.CategoryClickbait] != 1 || got.KeywordHits[model.CategoryEmotional] != 1 {
		t.Errorf("KeywordHits = %v, want one hit in each", got.KeywordHits)
	}
}

func TestCountKeywords(t *testing.T) {
	tests := []struct {
		text  string
		terms []string
		want  int
	}{
		{"data data data", []string{"data"}, 3},
		{"데이터 분석 데이터", []string{"데이터", "분석"}, 3},
		{"", []string{"data"}, 0},
		{"anything", []string{""}, 0},
		{"Data", []string{"data"}, 0},
	}

	for _, tt := range tests {
		if got := CountKeywords(tt.text, tt.terms); got != tt.want {
			t.Errorf("CountKeywords(%q, %v) = %d, want %d", tt.text, tt.terms, got, tt.want)
		}
	}
}

func TestContentScore_SentimentDoesNotMatchAcrossFields(t *testing.T) {
	kw := model.DefaultConfig().Keywords
	kw.Emotional = []string{"ab"}

	got := NewContentTrustService().Score("xa", "bx", kw)

	if got.Sentiment != 100 {
		t.Errorf("Sentiment = %v, want 100", got.Sentiment)
	}
	if n := got.KeywordHits[model.CategoryEmotional]; n != 0 {
		t.Errorf("emotional hits = %d, want 0", n)
	}
}
