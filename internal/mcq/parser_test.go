package mcq

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `Q1. What is 2+2?
a) 3
b) 4
c) 5
d) 6
Correct Answer: b`

func TestParseEmpty(t *testing.T) {
	got := Parse("")
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Parse("\n\n   \n"))
}

func TestParseSingleBlock(t *testing.T) {
	got := Parse(wellFormed)
	require.Len(t, got, 1)

	q := got[0]
	assert.Equal(t, "What is 2+2?", q.Text)
	assert.Equal(t, []string{"3", "4", "5", "6"}, q.Options)
	assert.True(t, q.HasAnswer)
	assert.Equal(t, "b", q.CorrectAnswer)
	assert.False(t, q.HasExplanation)
	assert.Empty(t, q.Explanation)
	assert.False(t, q.Incomplete())
}

func TestParseWithExplanation(t *testing.T) {
	got := Parse(wellFormed + "\nExplanation: Two plus two: four.")
	require.Len(t, got, 1)
	assert.True(t, got[0].HasExplanation)
	assert.Equal(t, "Two plus two: four.", got[0].Explanation)
}

func TestParseConsecutiveQuestionMarkers(t *testing.T) {
	got := Parse("Q1. First?\nQ2. Second?\na) yes\nb) no")
	require.Len(t, got, 2)
	assert.Equal(t, "First?", got[0].Text)
	assert.Empty(t, got[0].Options)
	assert.NotNil(t, got[0].Options)
	assert.Equal(t, []string{"yes", "no"}, got[1].Options)
}

func TestParseIgnoresBlankLines(t *testing.T) {
	spaced := "\n\nQ1. What is 2+2?\n\n  a) 3  \n\nb) 4\n\n\nc) 5\nd) 6\n\nCorrect Answer: b\n\n"
	assert.Equal(t, Parse(wellFormed), Parse(spaced))
}

func TestParseFlushesTrailingBlock(t *testing.T) {
	text := wellFormed + "\n\nQ2. Last one?\na) x\nb) y\nc) z\nd) w\nCorrect Answer: d"
	got := Parse(text)
	require.Len(t, got, 2)
	assert.Equal(t, "Last one?", got[1].Text)
	assert.Equal(t, "d", got[1].CorrectAnswer)
}

func TestParseLowercasesAnswer(t *testing.T) {
	got := Parse(strings.Replace(wellFormed, "Correct Answer: b", "Correct Answer: B", 1))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].CorrectAnswer)
}

func TestParseAnswerForms(t *testing.T) {
	cases := map[string]string{
		"Correct Answer: b) 4":  "b",
		"Correct Answer: (C)":   "c",
		"Correct Answer:   d  ": "d",
		"Correct Answer: none":  "none",
		"Correct Answer:":       "",
		"Correct Answer: a.":    "a",
		"Correct Answer: c. 5":  "c",
	}
	for line, want := range cases {
		got := Parse("Q1. x\n" + line)
		require.Len(t, got, 1, line)
		assert.True(t, got[0].HasAnswer, line)
		assert.Equal(t, want, got[0].CorrectAnswer, line)
	}
}

func TestParseKeepsProseAnswersVerbatim(t *testing.T) {
	cases := map[string]string{
		"Correct Answer: a lot of it": "a lot of it",
		"Correct Answer: B, because":  "b, because",
		"Correct Answer: (none)":      "(none)",
		"Correct Answer: e.g. four":   "e.g. four",
		"Correct Answer: b:":          "b:",
	}
	for line, want := range cases {
		got := Parse(wellFormed + "\n" + line)
		require.Len(t, got, 1, line)
		assert.Equal(t, want, got[0].CorrectAnswer, line)
		assert.True(t, got[0].Incomplete(), line)
	}
}

func TestParseIgnoresMarkersBeforeFirstQuestion(t *testing.T) {
	got := Parse("a) stray\nCorrect Answer: a\nExplanation: none\n" + wellFormed)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"3", "4", "5", "6"}, got[0].Options)
	assert.Equal(t, "b", got[0].CorrectAnswer)
}

func TestParseDropsContinuationLines(t *testing.T) {
	got := Parse("Q1. Which holds?\nsecond line of question\na) one\n   more text\nb) two")
	require.Len(t, got, 1)
	assert.Equal(t, "Which holds?", got[0].Text)
	assert.Equal(t, []string{"one", "two"}, got[0].Options)
}

func TestParseDuplicateAndUnorderedOptions(t *testing.T) {
	got := Parse("Q1. x\nc) third\na) first\na) again")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"third", "first", "again"}, got[0].Options)
}

func TestParseUppercaseOptionIsNotAMarker(t *testing.T) {
	got := Parse("Q1. x\nA) upper\na) lower")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"lower"}, got[0].Options)
}

func TestParseOutOfRangeAnswerPropagates(t *testing.T) {
	got := Parse("Q1. x\na) 1\nb) 2\nc) 3\nd) 4\nCorrect Answer: e")
	require.Len(t, got, 1)
	assert.Equal(t, "e", got[0].CorrectAnswer)
	assert.True(t, got[0].Incomplete())
}

func TestQuestionSplitStrategies(t *testing.T) {
	cases := []struct {
		line  string
		split SplitStrategy
		want  string
	}{
		{"Q1. What is 3.5 rounded?", SplitAfterMarker, "What is 3.5 rounded?"},
		{"Q1) What is 3.5 rounded?", SplitAfterMarker, "What is 3.5 rounded?"},
		{"Q1) What is 3.5 rounded?", SplitAtFirstDot, "5 rounded?"},
		{"Q12: Name a noble gas", SplitAfterMarker, "Name a noble gas"},
		{"Question 3 - Define entropy", SplitAfterMarker, "Define entropy"},
		{"Q. Bare marker", SplitAfterMarker, "Bare marker"},
		{"Q1 Which one", SplitAtFirstDot, "Q1 Which one"},
		{"Quick question without marker", SplitAfterMarker, "Quick question without marker"},
		// A decimal glued to the marker reads as "Q1." followed by the text.
		{"Q1.5 litres in ml?", SplitAfterMarker, "5 litres in ml?"},
		{"Q1. 1.5 litres in ml?", SplitAfterMarker, "1.5 litres in ml?"},
	}
	for _, tc := range cases {
		got := ParseWith(tc.line, Options{Split: tc.split})
		require.Len(t, got, 1, tc.line)
		assert.Equal(t, tc.want, got[0].Text, tc.line)
	}
}

func TestParseKeepsOrder(t *testing.T) {
	var b strings.Builder
	for _, n := range []string{"1", "2", "3", "4"} {
		b.WriteString("Q" + n + ". question " + n + "\na) x\n")
	}
	got := Parse(b.String())
	require.Len(t, got, 4)
	for i, q := range got {
		assert.Equal(t, "question "+strconv.Itoa(i+1), q.Text)
	}
}

func TestIncomplete(t *testing.T) {
	full := Question{Text: "x", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: "c", HasAnswer: true}
	assert.False(t, full.Incomplete())

	noAnswer := full
	noAnswer.HasAnswer = false
	noAnswer.CorrectAnswer = ""
	assert.True(t, noAnswer.Incomplete())

	short := full
	short.Options = []string{"1", "2", "3"}
	assert.True(t, short.Incomplete())
}

func TestRedacted(t *testing.T) {
	got := Parse(wellFormed + "\nExplanation: four")
	require.Len(t, got, 1)
	r := got[0].Redacted()
	assert.Empty(t, r.CorrectAnswer)
	assert.False(t, r.HasAnswer)
	assert.Empty(t, r.Explanation)
	assert.Equal(t, got[0].Options, r.Options)

	r.Options[0] = "changed"
	assert.Equal(t, "3", got[0].Options[0])
}
