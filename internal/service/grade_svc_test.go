package service

import (
	"math"
	"strings"
	"testing"

	"github.com/LuaAI777/cts-project/internal/model"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Grade
	}{
		{100, model.GradeA},
		{80, model.GradeA},
		{79.99, model.GradeB},
		{60, model.GradeB},
		{40, model.GradeC},
		{20, model.GradeD},
		{19.99, model.GradeF},
		{0, model.GradeF},
		{-5, model.GradeF},
	}

	for _, tt := range tests {
		got, desc := GradeFor(tt.score)
		if got != tt.want {
			t.Errorf("GradeFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
		if desc == "" {
			t.Errorf("GradeFor(%v) has no description", tt.score)
		}
	}
}

func TestGradesTableIsTotal(t *testing.T) {
	if Grades[len(Grades)-1].Min > 0 {
		t.Fatalf("lowest grade starts at %v, must cover 0", Grades[len(Grades)-1].Min)
	}
	for i := 1; i < len(Grades); i++ {
		if Grades[i].Min >= Grades[i-1].Min {
			t.Errorf("grade %s min %v not below %s min %v", Grades[i].Grade, Grades[i].Min, Grades[i-1].Grade, Grades[i-1].Min)
		}
	}
}

func TestAggregate(t *testing.T) {
	svc := NewGradeService(ContentGate{Floor: 30, Multiplier: 0.8})
	w := model.Weights{Source: 0.6, Content: 0.4}

	tests := []struct {
		name      string
		source    float64
		content   float64
		wantFinal float64
		wantGrade model.Grade
		wantGated bool
	}{
		{"weighted sum", 100, 70, 88, model.GradeA, false},
		{"at gate floor is not gated", 50, 30, 42, model.GradeC, false},
		{"below gate floor", 100, 20, 54.4, model.GradeC, true},
		{"all zero", 0, 0, 0, model.GradeF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Aggregate(
				model.SourceScore{Total: tt.source},
				model.ContentScore{Total: tt.content},
				w,
			)
			if math.Abs(got.FinalScore-tt.wantFinal) > 1e-9 {
				t.Errorf("FinalScore = %v, want %v", got.FinalScore, tt.wantFinal)
			}
			if got.Grade != tt.wantGrade {
				t.Errorf("Grade = %s, want %s", got.Grade, tt.wantGrade)
			}
			if got.ContentGated != tt.wantGated {
				t.Errorf("ContentGated = %v, want %v", got.ContentGated, tt.wantGated)
			}
		})
	}
}

func TestAggregate_GateRationale(t *testing.T) {
	svc := NewGradeService(ContentGate{Floor: 30, Multiplier: 0.8})
	got := svc.Aggregate(model.SourceScore{Total: 100}, model.ContentScore{Total: 10}, model.Weights{Source: 0.5, Content: 0.5})

	found := false
	for _, line := range got.Rationale {
		if strings.Contains(line, "below floor 30") {
			found = true
		}
	}
	if !found {
		t.Errorf("Rationale = %q, want a gate line", got.Rationale)
	}
	if last := got.Rationale[len(got.Rationale)-1]; !strings.HasPrefix(last, "grade ") {
		t.Errorf("last rationale line = %q, want the grade", last)
	}
}

func TestAggregate_DisabledGate(t *testing.T) {
	svc := NewGradeService(ContentGate{})
	got := svc.Aggregate(model.SourceScore{Total: 100}, model.ContentScore{Total: 0}, model.Weights{Source: 0.6, Content: 0.4})

	if got.ContentGated {
		t.Error("zero floor must never gate")
	}
	if got.FinalScore != 60 {
		t.Errorf("FinalScore = %v, want 60", got.FinalScore)
	}
}
