package mcq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want Line
	}{
		{"", Line{Kind: KindBlank}},
		{"   \t", Line{Kind: KindBlank}},
		{"  Q1. What?  ", Line{Kind: KindQuestion, Value: "Q1. What?"}},
		{"b)  four ", Line{Kind: KindOption, Letter: "b", Value: "four"}},
		{"d)", Line{Kind: KindOption, Letter: "d", Value: ""}},
		{"Correct Answer:  C ", Line{Kind: KindAnswer, Value: "C"}},
		{"Explanation: because: reasons", Line{Kind: KindExplanation, Value: "because: reasons"}},
		{"e) fifth", Line{Kind: KindOther, Value: "e) fifth"}},
		{"correct answer: b", Line{Kind: KindOther, Value: "correct answer: b"}},
		{"q1. lower", Line{Kind: KindOther, Value: "q1. lower"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.in), tc.in)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "question", KindQuestion.String())
	assert.Equal(t, "other", Kind(99).String())
}
