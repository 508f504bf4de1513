// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package classify

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func labels(counts map[Label]int) []Label {
	var out []Label
	for _, l := range append(append([]Label{}, Vocabulary...), "zz", "xx") {
		for i := 0; i < counts[l]; i++ {
			out = append(out, l)
		}
	}
	return out
}

func TestCalculate(t *testing.T) {
	defaults := DefaultParams()

	tests := []struct {
		name   string
		votes  []Label
		params Params
		want   Distribution
	}{
		{
			name:   "no votes",
			params: defaults,
			want: Distribution{
				Counts:        map[Label]int{},
				Probabilities: map[Label]float64{},
			},
		},
		{
			name:   "tie goes to earlier label",
			votes:  []Label{O, W, O, W},
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{W: 2, O: 2},
				Total:                4,
				Probabilities:        map[Label]float64{W: 0.5, O: 0.5},
				Consensus:            W,
				ConsensusProbability: 0.5,
				IsContentious:        true,
			},
		},
		{
			name:   "split vote at min votes is contentious",
			votes:  labels(map[Label]int{W: 2, O: 1}),
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{W: 2, O: 1},
				Total:                3,
				Probabilities:        map[Label]float64{W: 2.0 / 3, O: 1.0 / 3},
				Consensus:            W,
				ConsensusProbability: 2.0 / 3,
				IsContentious:        true,
			},
		},
		{
			name:   "split vote below min votes is not contentious",
			votes:  labels(map[Label]int{W: 2, O: 1}),
			params: Params{Threshold: 0.70, MinVotes: 4},
			want: Distribution{
				Counts:               map[Label]int{W: 2, O: 1},
				Total:                3,
				Probabilities:        map[Label]float64{W: 2.0 / 3, O: 1.0 / 3},
				Consensus:            W,
				ConsensusProbability: 2.0 / 3,
			},
		},
		{
			name:   "exactly at threshold is not contentious",
			votes:  labels(map[Label]int{W: 7, O: 3}),
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{W: 7, O: 3},
				Total:                10,
				Probabilities:        map[Label]float64{W: 0.7, O: 0.3},
				Consensus:            W,
				ConsensusProbability: 0.7,
			},
		},
		{
			name:   "mixed votes with unknown",
			votes:  []Label{W, W, O, Unknown},
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{W: 2, O: 1, Unknown: 1},
				Total:                4,
				Probabilities:        map[Label]float64{W: 0.5, O: 0.25, Unknown: 0.25},
				Consensus:            W,
				ConsensusProbability: 0.5,
				IsContentious:        true,
			},
		},
		{
			name:   "unanimous unknown",
			votes:  []Label{Unknown, Unknown},
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{Unknown: 2},
				Total:                2,
				Probabilities:        map[Label]float64{Unknown: 1},
				Consensus:            Unknown,
				ConsensusProbability: 1,
			},
		},
		{
			name:   "label outside vocabulary loses ties",
			votes:  []Label{"zz", Unknown},
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{"zz": 1, Unknown: 1},
				Total:                2,
				Probabilities:        map[Label]float64{"zz": 0.5, Unknown: 0.5},
				Consensus:            Unknown,
				ConsensusProbability: 0.5,
			},
		},
		{
			name:   "labels outside vocabulary tie by name",
			votes:  []Label{"zz", "xx"},
			params: defaults,
			want: Distribution{
				Counts:               map[Label]int{"zz": 1, "xx": 1},
				Total:                2,
				Probabilities:        map[Label]float64{"zz": 0.5, "xx": 0.5},
				Consensus:            "xx",
				ConsensusProbability: 0.5,
			},
		},
		{
			name:   "label outside vocabulary can still win on count",
			votes:  []Label{"zz", "zz", W},
			params: Params{Threshold: 0.5, MinVotes: 1},
			want: Distribution{
				Counts:               map[Label]int{"zz": 2, W: 1},
				Total:                3,
				Probabilities:        map[Label]float64{"zz": 2.0 / 3, W: 1.0 / 3},
				Consensus:            "zz",
				ConsensusProbability: 2.0 / 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.votes, tt.params)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("Calculate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculateDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		votes := make([]Label, rng.Intn(12))
		for i := range votes {
			votes[i] = Vocabulary[rng.Intn(len(Vocabulary))]
		}

		first := Calculate(votes, DefaultParams())

		// order of arrival must not matter
		shuffled := append([]Label(nil), votes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for i := 0; i < 5; i++ {
			if diff := cmp.Diff(first, Calculate(shuffled, DefaultParams())); diff != "" {
				t.Fatalf("round %d: non-deterministic result (-first +again):\n%s", round, diff)
			}
		}
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 100; round++ {
		votes := make([]Label, 1+rng.Intn(30))
		for i := range votes {
			votes[i] = Vocabulary[rng.Intn(len(Vocabulary))]
		}

		d := Calculate(votes, DefaultParams())
		sum := 0.0
		for _, p := range d.Probabilities {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Len(t, d.Probabilities, len(d.Counts))
		assert.True(t, d.HasConsensus())
	}
}

func TestCalculateReadsParamsPerCall(t *testing.T) {
	votes := []Label{W, W, O}

	assert.True(t, Calculate(votes, Params{Threshold: 0.70, MinVotes: 3}).IsContentious)
	assert.False(t, Calculate(votes, Params{Threshold: 0.60, MinVotes: 3}).IsContentious)
	assert.False(t, Calculate(votes, Params{Threshold: 0.70, MinVotes: 4}).IsContentious)
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "No votes yet", FormatDisplay(Calculate(nil, DefaultParams())))
	assert.Equal(t,
		"W: 50% (2), O: 25% (1), ?: 25% (1)",
		FormatDisplay(Calculate([]Label{Unknown, O, W, W}, DefaultParams())),
	)
	assert.Equal(t,
		"OW: 50% (1), AO: 50% (1)",
		FormatDisplay(Calculate([]Label{AO, OW}, DefaultParams())),
	)
}
