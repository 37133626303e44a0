// Package prompt builds the instructions sent to the language model.
package prompt

import (
	"fmt"
	"strings"
)

// Difficulty is the requested level of a generated assessment.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DefaultDifficulty is used until the learner picks one.
const DefaultDifficulty = Medium

// ParseDifficulty accepts easy, medium or hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Bounds is an inclusive question-count range with a default.
type Bounds struct {
	Min, Max, Default int
}

// Clamp returns n if it lies in range, the default when n is zero, and
// the nearest bound otherwise.
func (b Bounds) Clamp(n int) int {
	switch {
	case n == 0:
		return b.Default
	case n < b.Min:
		return b.Min
	case n > b.Max:
		return b.Max
	}
	return n
}

var (
	MCQBounds          = Bounds{Min: 5, Max: 20, Default: 10}
	FreeResponseBounds = Bounds{Min: 1, Max: 5, Default: 3}
)

// MCQ asks for n multiple-choice questions in the Q/a)-d)/Correct Answer/
// Explanation line format understood by package mcq.
func MCQ(n int, d Difficulty) string {
	return fmt.Sprintf(`Based on the following context, generate %[1]d %[2]s-level multiple choice questions.
Each question should:
- Have 4 options with only one correct answer
- Include a brief explanation of why the answer is correct
- Be challenging but fair for the %[2]s difficulty level
- Test different aspects of understanding

Format:
Q1. [Question]
a) [Option]
b) [Option]
c) [Option]
d) [Option]
Correct Answer: [a/b/c/d]
Explanation: [Brief explanation of the correct answer]
`, n, d)
}

// FreeResponse asks for n open-ended questions, each separated by a blank line.
func FreeResponse(n int, d Difficulty) string {
	return fmt.Sprintf(`Based on the context, generate %d %s-level open-ended questions that test deep understanding
of the key concepts. For each question, provide:
1. A thought-provoking question that requires analysis and critical thinking
2. 3-4 key points that should be included in a good answer
3. A detailed model answer for reference
4. Clear scoring rubric (90-100%%: Excellent, 80-89%%: Good, 70-79%%: Satisfactory, Below 70%%: Needs Improvement)
5. Common misconceptions to watch for
`, n, d)
}

// Evaluation asks the model to grade a learner's free-text answer.
func Evaluation(question, modelAnswer, answer string) string {
	return fmt.Sprintf(`Evaluate the following student answer against the model answer and provide:
1. Numerical score (0-100)
2. Specific strengths of the answer
3. Areas for improvement
4. Suggestions for deeper understanding
5. Additional resources or concepts to explore

Question: %s
Model Answer: %s
Student Answer: %s
`, question, modelAnswer, answer)
}

// Compact wraps a query with retrieved context the way a question-answering
// template does: context first, then the query.
func Compact(contextChunks []string, query string) string {
	var b strings.Builder
	b.WriteString("Context information is below.\n---------------------\n")
	b.WriteString(strings.Join(contextChunks, "\n\n"))
	b.WriteString("\n---------------------\n")
	b.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\nAnswer: ")
	return b.String()
}
