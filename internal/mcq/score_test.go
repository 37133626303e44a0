package mcq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []Question {
	return Parse(`Q1. One?
a) w
b) x
c) y
d) z
Correct Answer: a
Q2. Two?
a) w
b) x
c) y
d) z
Correct Answer: c
Explanation: c is right
Q3. Three?
a) w
b) x
Q4. Four?
a) w
b) x
c) y
d) z
Correct Answer: D`)
}

func TestScore(t *testing.T) {
	qs := sampleQuestions()
	require.Len(t, qs, 4)

	r := Score(qs, map[int]string{0: "a", 1: "b", 3: "d"})
	assert.Equal(t, 2, r.Correct)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Incorrect())
	assert.InDelta(t, 50.0, r.Percent, 1e-9)
	assert.Equal(t, BandPoor, r.Band())
}

func TestScoreUnkeyedQuestionNeverCorrect(t *testing.T) {
	qs := sampleQuestions()
	r := Score(qs, map[int]string{2: ""})
	assert.Equal(t, 0, r.Correct)
}

func TestScoreEmpty(t *testing.T) {
	r := Score(nil, map[int]string{0: "a"})
	assert.True(t, r.Empty())
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, 0, r.Correct)
}

func TestBand(t *testing.T) {
	assert.Equal(t, BandExcellent, Result{Percent: 90}.Band())
	assert.Equal(t, BandFair, Result{Percent: 89.9}.Band())
	assert.Equal(t, BandFair, Result{Percent: 70}.Band())
	assert.Equal(t, BandPoor, Result{Percent: 69.9}.Band())
}

func TestReview(t *testing.T) {
	qs := sampleQuestions()
	rv := Review(qs, map[int]string{0: "b", 1: "c"})
	require.Len(t, rv, 4)

	first := rv[0]
	assert.False(t, first.IsCorrect)
	assert.Equal(t, "b", first.Selected)
	assert.True(t, first.Options[1].Selected)
	assert.True(t, first.Options[0].Correct)
	assert.False(t, first.Options[1].Correct)

	second := rv[1]
	assert.True(t, second.IsCorrect)
	assert.Equal(t, "c is right", second.Explanation)

	unkeyed := rv[2]
	assert.Len(t, unkeyed.Options, 2)
	for _, o := range unkeyed.Options {
		assert.False(t, o.Correct)
	}
}

func TestLetters(t *testing.T) {
	assert.Equal(t, "a", Letter(0))
	assert.Equal(t, "d", Letter(3))
	assert.Equal(t, 2, LetterIndex("c"))
	assert.Equal(t, -1, LetterIndex("C"))
	assert.Equal(t, -1, LetterIndex("ab"))
}
