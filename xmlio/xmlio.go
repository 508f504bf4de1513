// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package xmlio reads and writes the record exchange format. Export always
// uses a records root; import accepts any root name.
//
//	<records>
//	  <record bib="b1">
//	    <title>Some title</title>
//	    <note type="w">note text</note>
//	  </record>
//	</records>
//
// On import the type attribute is an optional initial classification. On
// export it carries the consensus, optionally with consensus_probability
// and vote_count.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/danielhkuo/notetally/classify"
)

type Document struct {
	XMLName xml.Name `xml:"records"`
	Records []Record `xml:"record"`
}

type Record struct {
	BibID string `xml:"bib,attr"`
	Title string `xml:"title"`
	Notes []Note `xml:"note"`
}

type Note struct {
	Type                 string `xml:"type,attr,omitempty"`
	ConsensusProbability string `xml:"consensus_probability,attr,omitempty"`
	VoteCount            string `xml:"vote_count,attr,omitempty"`
	Text                 string `xml:",chardata"`
}

// Decode parses a document and returns its records in document order. The
// root element may have any name; only its direct record children are read.
func Decode(r io.Reader) ([]Record, error) {
	var doc struct {
		Records []Record `xml:"record"`
	}
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("XML parsing error: %w", err)
	}
	return doc.Records, nil
}

// Encode writes records as an indented document with an XML header.
func Encode(w io.Writer, records []Record) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(Document{Records: records}); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ExportNote reports whether a note with distribution d passes the export
// filter and, if so, returns its exported form.
//
// A note is exported when it has a consensus, the consensus probability is
// at least confidence and it has at least minVotes votes.
func ExportNote(text string, d classify.Distribution, confidence float64, minVotes int, withStats bool) (Note, bool) {
	if !d.HasConsensus() || d.ConsensusProbability < confidence || d.Total < minVotes {
		return Note{}, false
	}

	n := Note{Type: d.Consensus.String(), Text: text}
	if withStats {
		n.ConsensusProbability = strconv.FormatFloat(d.ConsensusProbability, 'f', 2, 64)
		n.VoteCount = strconv.Itoa(d.Total)
	}
	return n, true
}
