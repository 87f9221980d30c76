package quizstream

import "github.com/google/uuid"

// Question represents a single multiple choice question ready to be served.
// Questions are created by the QuestionChecker and never modified afterwards.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"` // equals one of Options
}

// Topics the generator picks from on every tick.
var Topics = []string{
	"General Knowledge",
	"Science",
	"History",
	"Technology",
	"Literature",
	"Math",
	"Geography",
}

// Difficulties the generator picks from on every tick.
var Difficulties = []string{"easy", "medium", "hard"}

// GenerationRequest describes one prompt sent to the model
type GenerationRequest struct {
	Topic        string `json:"topic"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"num_questions"`
}

// TickResult reports what a single generator run did.
type TickResult struct {
	RunID      uuid.UUID `json:"run_id"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Accepted   int       `json:"accepted"`
	Skipped    int       `json:"skipped"` // duplicates
	Invalid    int       `json:"invalid"` // records dropped by the checker
}

// ValidationResult holds the outcome of checking one raw model response
type ValidationResult struct {
	Questions []Question
	Rejected  []*ValidationError
}
