package mcq

import "strings"

// Kind tags a single input line.
type Kind int

const (
	KindBlank Kind = iota
	KindQuestion
	KindOption
	KindAnswer
	KindExplanation
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindQuestion:
		return "question"
	case KindOption:
		return "option"
	case KindAnswer:
		return "answer"
	case KindExplanation:
		return "explanation"
	default:
		return "other"
	}
}

const (
	answerPrefix      = "Correct Answer:"
	explanationPrefix = "Explanation:"
)

var optionPrefixes = [...]string{"a)", "b)", "c)", "d)"}

// Line is a classified, trimmed input line.
// Letter is set for KindOption. Value holds the payload after the marker
// for options, answers and explanations, and the raw line otherwise.
type Line struct {
	Kind   Kind
	Letter string
	Value  string
}

// Classify trims the line and tags it by its leading marker.
// Markers are case-sensitive.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	switch {
	case line == "":
		return Line{Kind: KindBlank}
	case strings.HasPrefix(line, "Q"):
		return Line{Kind: KindQuestion, Value: line}
	case strings.HasPrefix(line, answerPrefix):
		return Line{Kind: KindAnswer, Value: afterColon(line)}
	case strings.HasPrefix(line, explanationPrefix):
		return Line{Kind: KindExplanation, Value: afterColon(line)}
	}
	for _, p := range optionPrefixes {
		if strings.HasPrefix(line, p) {
			return Line{Kind: KindOption, Letter: p[:1], Value: strings.TrimSpace(line[len(p):])}
		}
	}
	return Line{Kind: KindOther, Value: line}
}

func afterColon(line string) string {
	_, rest, _ := strings.Cut(line, ":")
	return strings.TrimSpace(rest)
}
