package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamassist/internal/domain"
	"teamassist/internal/port"
)

type stubRetriever struct {
	context string
	err     error
	calls   int
}

func (s *stubRetriever) Retrieve(context.Context, string, int) ([]domain.ScoredChunk, error) {
	return nil, s.err
}

func (s *stubRetriever) RetrieveContext(_ context.Context, _ string, _ int) (string, error) {
	s.calls++
	return s.context, s.err
}

type stubGenerator struct {
	answer string
	err    error
	prompt port.Prompt
}

func (s *stubGenerator) Generate(_ context.Context, p port.Prompt) (string, error) {
	s.prompt = p
	return s.answer, s.err
}

func (s *stubGenerator) ModelName() string { return "stub" }

type stubDemo struct{}

func (stubDemo) Respond(user domain.User, question string) string {
	return "demo answer for " + user.FirstName()
}

var sarah = domain.User{Username: "sarah.chen", Name: "Sarah Chen", Role: "Senior Software Engineer", Team: "Loyalty Platform"}

func TestAskUseCase_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer from canned rules without a generator", func(t *testing.T) {
		r := &stubRetriever{}
		uc := NewAskUseCase(r, nil, stubDemo{}, 3, "LoyaltyAI")

		assert.True(t, uc.DemoMode())
		assert.Equal(t, "demo answer for Sarah", uc.Ask(ctx, sarah, "who is on call?"))
		assert.Zero(t, r.calls)
	})

	t.Run("Should pass user and context to the generator", func(t *testing.T) {
		r := &stubRetriever{context: "On-call: Scott Forsmann"}
		g := &stubGenerator{answer: "Scott Forsmann is on call."}
		uc := NewAskUseCase(r, g, stubDemo{}, 3, "LoyaltyAI")

		answer := uc.Ask(ctx, sarah, "Who is on call?")

		assert.Equal(t, "Scott Forsmann is on call.", answer)
		assert.Equal(t, port.Prompt{
			Assistant: "LoyaltyAI",
			Name:      "Sarah Chen",
			Role:      "Senior Software Engineer",
			Team:      "Loyalty Platform",
			Context:   "On-call: Scott Forsmann",
			Question:  "Who is on call?",
		}, g.prompt)
	})

	t.Run("Should fall back to the sentinel context when retrieval fails", func(t *testing.T) {
		r := &stubRetriever{err: errors.New("model download failed")}
		g := &stubGenerator{answer: "I don't know."}
		uc := NewAskUseCase(r, g, stubDemo{}, 3, "LoyaltyAI")

		answer := uc.Ask(ctx, sarah, "Who is on call?")

		assert.Equal(t, "I don't know.", answer)
		assert.Equal(t, NoContextAvailable, g.prompt.Context)
	})

	t.Run("Should return the service message when generation fails", func(t *testing.T) {
		g := &stubGenerator{err: context.DeadlineExceeded}
		uc := NewAskUseCase(&stubRetriever{context: "ctx"}, g, stubDemo{}, 3, "LoyaltyAI")

		answer := uc.Ask(ctx, sarah, "Who is on call?")

		require.NotEmpty(t, answer)
		assert.Equal(t, ServiceUnavailableMessage, answer)
	})
}
