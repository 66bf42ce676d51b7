package port

import "context"

// Prompt is everything a generator needs to answer one question.
type Prompt struct {
	Assistant string
	Name      string
	Role      string
	Team      string
	Context   string
	Question  string
}

// Generator produces answer text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
