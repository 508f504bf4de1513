// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	DefaultThreshold = 0.70
	DefaultMinVotes  = 3
)

// Params parameterizes the contentious check.
type Params struct {
	Threshold float64 `json:"threshold"`
	MinVotes  int     `json:"min_votes"`
}

func DefaultParams() Params {
	return Params{Threshold: DefaultThreshold, MinVotes: DefaultMinVotes}
}

// Distribution summarizes the current votes on one note.
type Distribution struct {
	Counts               map[Label]int     `json:"votes"`
	Total                int               `json:"total"`
	Probabilities        map[Label]float64 `json:"probabilities"`
	Consensus            Label             `json:"consensus"`
	ConsensusProbability float64           `json:"consensus_probability"`
	IsContentious        bool              `json:"is_contentious"`
}

// HasConsensus is false only when the note has no votes.
func (d Distribution) HasConsensus() bool {
	return d.Consensus != None
}

// Calculate aggregates labels, one per voter, into a Distribution.
func Calculate(labels []Label, p Params) Distribution {
	d := Distribution{
		Counts:        make(map[Label]int),
		Probabilities: make(map[Label]float64),
	}
	if len(labels) == 0 {
		return d
	}

	for _, l := range labels {
		d.Counts[l]++
	}
	d.Total = len(labels)

	for l, n := range d.Counts {
		d.Probabilities[l] = float64(n) / float64(d.Total)
	}

	ordered := sortedByCount(d.Counts)
	d.Consensus = ordered[0]
	d.ConsensusProbability = d.Probabilities[d.Consensus]
	d.IsContentious = d.Total >= p.MinVotes && d.ConsensusProbability < p.Threshold

	return d
}

// sortedByCount orders labels by count descending, then by priority.
func sortedByCount(counts map[Label]int) []Label {
	out := make([]Label, 0, len(counts))
	for l := range counts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return less(out[i], out[j])
	})
	return out
}

// FormatDisplay renders a distribution as "W: 50% (2), O: 25% (1)".
func FormatDisplay(d Distribution) string {
	if d.Total == 0 {
		return "No votes yet"
	}

	parts := make([]string, 0, len(d.Counts))
	for _, l := range sortedByCount(d.Counts) {
		pct := math.Round(d.Probabilities[l] * 100)
		parts = append(parts, fmt.Sprintf("%s: %.0f%% (%d)", strings.ToUpper(string(l)), pct, d.Counts[l]))
	}
	return strings.Join(parts, ", ")
}
