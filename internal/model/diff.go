package model

import (
	"fmt"
	"strconv"
	"strings"
)

// DiffConfigs describes how b differs from a, one line per changed field.
func DiffConfigs(a, b *Config) []string {
	changes := []string{}
	if a == nil || b == nil {
		return changes
	}

	floatField := func(name string, x, y float64) {
		if x != y {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", name, fmtFloat(x), fmtFloat(y)))
		}
	}
	intField := func(name string, x, y int64) {
		if x != y {
			changes = append(changes, fmt.Sprintf("%s: %d -> %d", name, x, y))
		}
	}

	floatField("weights.source", a.Weights.Source, b.Weights.Source)
	floatField("weights.content", a.Weights.Content, b.Weights.Content)

	for _, t := range []struct {
		name string
		x, y Tiers
	}{
		{"thresholds.subscribers", a.Thresholds.Subscribers, b.Thresholds.Subscribers},
		{"thresholds.activity", a.Thresholds.Activity, b.Thresholds.Activity},
	} {
		intField(t.name+".high", t.x.High, t.y.High)
		intField(t.name+".medium", t.x.Medium, t.y.Medium)
		intField(t.name+".low", t.x.Low, t.y.Low)
	}

	before := a.Keywords.Categories()
	after := b.Keywords.Categories()
	for i := range before {
		added, removed := termDelta(before[i].Terms, after[i].Terms)
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		var parts []string
		for _, t := range added {
			parts = append(parts, "+"+strconv.Quote(t))
		}
		for _, t := range removed {
			parts = append(parts, "-"+strconv.Quote(t))
		}
		changes = append(changes, fmt.Sprintf("keywords.%s: %s", before[i].Name, strings.Join(parts, " ")))
	}
	return changes
}

func termDelta(before, after []string) (added, removed []string) {
	inBefore := make(map[string]struct{}, len(before))
	for _, t := range before {
		inBefore[t] = struct{}{}
	}
	inAfter := make(map[string]struct{}, len(after))
	for _, t := range after {
		inAfter[t] = struct{}{}
		if _, ok := inBefore[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range before {
		if _, ok := inAfter[t]; !ok {
			removed = append(removed, t)
		}
	}
	return added, removed
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
