// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package classify holds the classification vocabulary and the consensus engine.

# Vocabulary

Every vote carries exactly one Label from a closed set, listed here in
tie-break priority order:

	w, o, a, ow, aw, ao, ?

Input is parsed at the ingestion boundary:

	label, err := classify.ParseLabel(req.Classification)
	if errors.Is(err, classify.ErrInvalidLabel) {
		// reject before touching storage
	}

# Consensus

Calculate turns the current votes on one note into a Distribution:

	d := classify.Calculate(labels, params)

The consensus is the label with the most votes. Ties go to the label that
appears first in the vocabulary. A note is contentious only when it has at
least Params.MinVotes votes and its consensus probability is strictly below
Params.Threshold.

Calculate performs no I/O and never fails. Distributions are not cached;
callers recompute them from the live vote set on every read.
*/
package classify
