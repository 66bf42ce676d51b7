package usecase

import (
	"context"

	"github.com/google/uuid"

	"teamassist/internal/domain"
	"teamassist/internal/port"
	"teamassist/pkg/logger"
)

// ServiceUnavailableMessage is the answer when the generator call fails.
const ServiceUnavailableMessage = "I apologize, but I'm having trouble connecting to the AI service right now. Please try again in a moment."

// DemoResponder answers without a model.
type DemoResponder interface {
	Respond(user domain.User, question string) string
}

// AskUseCase turns a question from a signed-in user into an answer.
type AskUseCase struct {
	retriever port.Retriever
	generator port.Generator
	demo      DemoResponder
	topK      int
	assistant string
}

// NewAskUseCase wires the answer path. A nil generator selects demo mode.
func NewAskUseCase(retriever port.Retriever, generator port.Generator, demo DemoResponder, topK int, assistant string) *AskUseCase {
	return &AskUseCase{
		retriever: retriever,
		generator: generator,
		demo:      demo,
		topK:      topK,
		assistant: assistant,
	}
}

// DemoMode reports whether answers come from canned responses.
func (u *AskUseCase) DemoMode() bool {
	return u.generator == nil
}

// Ask always returns displayable text; failures degrade to fixed messages.
func (u *AskUseCase) Ask(ctx context.Context, user domain.User, question string) string {
	log := logger.FromContext(ctx).With("request_id", uuid.NewString(), "user", user.Username)
	ctx = logger.ContextWithLogger(ctx, log)

	if u.generator == nil {
		log.Debug("Answering in demo mode")
		return u.demo.Respond(user, question)
	}

	docs, err := u.retriever.RetrieveContext(ctx, question, u.topK)
	if err != nil {
		log.Warn("Retrieval failed, answering without documents", "error", err)
		docs = NoContextAvailable
	}

	answer, err := u.generator.Generate(ctx, port.Prompt{
		Assistant: u.assistant,
		Name:      user.Name,
		Role:      user.Role,
		Team:      user.Team,
		Context:   docs,
		Question:  question,
	})
	if err != nil {
		log.Error("Generation failed", "model", u.generator.ModelName(), "error", err)
		return ServiceUnavailableMessage
	}

	log.Info("Answered question", "model", u.generator.ModelName(), "context_chars", len(docs))
	return answer
}
