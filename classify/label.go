// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package classify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Label is a note classification. The zero value means "no label".
type Label string

const (
	None    Label = ""
	W       Label = "w"
	O       Label = "o"
	A       Label = "a"
	OW      Label = "ow"
	AW      Label = "aw"
	AO      Label = "ao"
	Unknown Label = "?"
)

var ErrInvalidLabel = errors.New("invalid classification")

// Vocabulary lists every valid label in tie-break priority order.
var Vocabulary = []Label{W, O, A, OW, AW, AO, Unknown}

var ranks = func() map[Label]int {
	m := make(map[Label]int, len(Vocabulary))
	for i, l := range Vocabulary {
		m[l] = i
	}
	return m
}()

// ParseLabel validates s against the vocabulary.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return None, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	return l, nil
}

// Valid reports whether l belongs to the vocabulary.
func (l Label) Valid() bool {
	_, ok := ranks[l]
	return ok
}

// rank is the tie-break position; labels outside the vocabulary sort last.
func (l Label) rank() int {
	if r, ok := ranks[l]; ok {
		return r
	}
	return len(Vocabulary)
}

func (l Label) String() string {
	return string(l)
}

func (l Label) MarshalJSON() ([]byte, error) {
	if l == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(l))
}

func (l *Label) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = Label(s)
	return nil
}

// less orders labels by priority; ties outside the vocabulary fall back to
// string order so the result never depends on map iteration.
func less(a, b Label) bool {
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		return ra < rb
	}
	return a < b
}
