// Package mcq turns loosely formatted multiple-choice text, as produced by a
// language model, into ordered question records and scores learner answers
// against them.
//
// The accepted grammar is line based:
//
//	Q1. What is 2+2?
//	a) 3
//	b) 4
//	c) 5
//	d) 6
//	Correct Answer: b
//	Explanation: Two plus two is four.
//
// Parsing never fails. Malformed blocks come back as records whose
// Incomplete method reports true.
package mcq

import (
	"regexp"
	"strings"
)

// SplitStrategy decides how the question text is cut out of a "Q" line.
type SplitStrategy int

const (
	// SplitAfterMarker strips a leading "Q<digits>" token and one
	// following '.', ')', ':' or '-' so that dots inside the question
	// ("3.5", "e.g.") survive.
	SplitAfterMarker SplitStrategy = iota
	// SplitAtFirstDot keeps everything after the first '.' on the line.
	SplitAtFirstDot
)

// Options tunes Parse.
type Options struct {
	Split SplitStrategy
}

var (
	questionMarker = regexp.MustCompile(`^Q(?:uestion)?\s*\d+\s*[.):\-]?\s*`)
	answerLetter   = regexp.MustCompile(`^(?:\(([a-z])\)|([a-z])[).])(?:\s|$)|^([a-z])$`)
)

// Parse parses raw with the default options.
func Parse(raw string) []Question {
	return ParseWith(raw, Options{})
}

// ParseWith parses raw into questions in the order their "Q" lines appear.
// Blank lines and unrecognised lines are skipped. Option, answer and
// explanation lines seen before the first question are ignored.
func ParseWith(raw string, opts Options) []Question {
	p := parser{split: opts.Split}
	for _, l := range strings.Split(raw, "\n") {
		p.feed(Classify(l))
	}
	p.flush()
	if p.out == nil {
		return []Question{}
	}
	return p.out
}

type parseState int

const (
	noOpenBlock parseState = iota
	openBlock
)

type parser struct {
	split SplitStrategy
	state parseState
	cur   Question
	out   []Question
}

func (p *parser) feed(l Line) {
	if l.Kind == KindQuestion {
		p.flush()
		p.cur = Question{Text: questionText(l.Value, p.split), Options: []string{}}
		p.state = openBlock
		return
	}
	if p.state != openBlock {
		return
	}
	switch l.Kind {
	case KindOption:
		p.cur.Options = append(p.cur.Options, l.Value)
	case KindAnswer:
		p.cur.CorrectAnswer = normalizeAnswer(l.Value)
		p.cur.HasAnswer = true
	case KindExplanation:
		p.cur.Explanation = l.Value
		p.cur.HasExplanation = true
	}
}

// flush appends the open block, if any. Appended records are never touched again.
func (p *parser) flush() {
	if p.state != openBlock {
		return
	}
	p.out = append(p.out, p.cur)
	p.cur = Question{}
	p.state = noOpenBlock
}

func questionText(line string, split SplitStrategy) string {
	if split == SplitAfterMarker {
		if loc := questionMarker.FindStringIndex(line); loc != nil {
			return strings.TrimSpace(line[loc[1]:])
		}
	}
	// No dot means no truncation.
	if i := strings.Index(line, "."); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// normalizeAnswer lowercases the answer and reduces the letter forms "b",
// "b)", "b.", "(b)" and "b) 4" to the bare letter. Anything else, prose
// included, is kept verbatim so that Incomplete can flag it.
func normalizeAnswer(v string) string {
	a := strings.ToLower(strings.TrimSpace(v))
	if m := answerLetter.FindStringSubmatch(a); m != nil {
		return m[1] + m[2] + m[3]
	}
	return a
}
