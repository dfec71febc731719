package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/LuaAI777/cts-project/internal/model"
)

var gradeColors = map[model.Grade]*color.Color{
	model.GradeA: color.New(color.FgGreen, color.Bold),
	model.GradeB: color.New(color.FgGreen),
	model.GradeC: color.New(color.FgYellow),
	model.GradeD: color.New(color.FgRed),
	model.GradeF: color.New(color.FgRed, color.Bold),
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func printScore(w io.Writer, res *model.ScoreResult) error {
	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }

	rows := [][]string{
		{"source", "subscriber", f(res.Source.Subscriber)},
		{"source", "activity", f(res.Source.Activity)},
		{"source", fmt.Sprintf("engagement (%.2f%%)", res.Source.EngagementRate), f(res.Source.Engagement)},
		{"source", "total", f(res.SourceTotal)},
		{"content", "title", f(res.Content.Title)},
		{"content", "description", f(res.Content.Description)},
		{"content", "sentiment", f(res.Content.Sentiment)},
		{"content", "total", f(res.ContentTotal)},
		{"final", "score", f(res.FinalScore)},
	}
	if err := renderTable(w, []string{"Group", "Factor", "Score"}, rows); err != nil {
		return err
	}

	paint := gradeColors[res.Grade]
	if paint == nil {
		paint = color.New(color.Reset)
	}
	fmt.Fprintf(w, "grade %s: %s\n", paint.Sprint(string(res.Grade)), res.GradeDescription)
	for _, line := range res.Rationale {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	return nil
}
