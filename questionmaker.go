package quizstream

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// DefaultBatchSize is how many questions each prompt asks for.
const DefaultBatchSize = 5

// QuestionMaker picks what to ask the model for and writes the prompt.
// It is safe for concurrent use; a caller-supplied rng is only touched under mu.
type QuestionMaker struct {
	batchSize int

	mu   sync.Mutex
	intn func(n int) int
}

// NewQuestionMaker creates a question maker. A nil rng uses the global source.
func NewQuestionMaker(batchSize int, rng *rand.Rand) *QuestionMaker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	intn := rand.IntN
	if rng != nil {
		intn = rng.IntN
	}
	return &QuestionMaker{batchSize: batchSize, intn: intn}
}

// NextRequest picks a topic and a difficulty uniformly at random.
func (qm *QuestionMaker) NextRequest() GenerationRequest {
	qm.mu.Lock()
	topic := Topics[qm.intn(len(Topics))]
	difficulty := Difficulties[qm.intn(len(Difficulties))]
	qm.mu.Unlock()

	return GenerationRequest{
		Topic:        topic,
		Difficulty:   difficulty,
		NumQuestions: qm.batchSize,
	}
}

// BuildPrompt renders the prompt for req.
func (qm *QuestionMaker) BuildPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate a diverse quiz with %d multiple-choice questions on %s.\n", req.NumQuestions, req.Topic))
	sb.WriteString(fmt.Sprintf("Lean towards %s questions, but ensure difficulty levels include a mix of:\n", req.Difficulty))
	sb.WriteString("- Easy, Medium, Hard\n")
	sb.WriteString("- Fact-based, Concept-based, Problem-solving, Logical Reasoning\n")
	sb.WriteString(fmt.Sprintf("- Variety in topics (%s)\n\n", strings.Join(Topics, ", ")))

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 distinct options\n")
	sb.WriteString("- The answer must be copied verbatim from one of the options\n")
	sb.WriteString("- Avoid questions where the answer is given away in the question text\n\n")

	sb.WriteString("Return a JSON array with strict format and nothing else:\n")
	sb.WriteString(`[{"question": "string", "options": ["string", "string", "string", "string"], "answer": "string"}]`)

	return sb.String()
}
