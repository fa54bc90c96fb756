package domain

import "strings"

// QuestionType is the intent category of a user question.
type QuestionType string

// The closed set of question intents. Anything unrecognized degrades to General.
const (
	ListType   QuestionType = "list_type"
	SingleCase QuestionType = "single_case"
	Definition QuestionType = "definition"
	Period     QuestionType = "period"
	General    QuestionType = "general"
)

// ParseQuestionType validates a raw classifier response against the closed
// category set. The input is trimmed and lower-cased first; anything outside
// the set maps to General so classification can never block retrieval.
func ParseQuestionType(raw string) QuestionType {
	switch QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case ListType:
		return ListType
	case SingleCase:
		return SingleCase
	case Definition:
		return Definition
	case Period:
		return Period
	default:
		return General
	}
}
