package cli

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamassist/internal/adapter/dashboard"
	"teamassist/internal/domain"
)

type echoAsker struct{ questions []string }

func (e *echoAsker) Ask(_ context.Context, user domain.User, question string) string {
	e.questions = append(e.questions, question)
	return "answer for " + user.FirstName()
}

var rishab = domain.User{Username: "rishab.bhat", Name: "Rishab Bhat", Role: "Associate Software Engineer", Dashboard: "individual"}

func sized(t *testing.T, m chatModel) chatModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(chatModel)
}

func TestChatModel_AskRoundTrip(t *testing.T) {
	asker := &echoAsker{}
	m := sized(t, newChatModel(context.Background(), asker, dashboard.Default(), rishab, "LoyaltyAI", true))

	m.input.SetValue("  Who is on call?  ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)

	require.NotNil(t, cmd)
	require.Len(t, m.turns, 1)
	assert.True(t, m.waiting)
	assert.True(t, m.turns[0].pending)
	assert.Empty(t, m.input.Value())

	msg := m.askCmd("Who is on call?")()
	next, _ = m.Update(msg)
	m = next.(chatModel)

	assert.False(t, m.waiting)
	assert.Equal(t, "answer for Rishab", m.turns[0].answer)
	assert.Equal(t, []string{"Who is on call?"}, asker.questions)
	assert.Contains(t, m.View(), "answer for Rishab")
}

func TestChatModel_IgnoresInputWhileWaiting(t *testing.T) {
	m := sized(t, newChatModel(context.Background(), &echoAsker{}, nil, rishab, "LoyaltyAI", false))
	m.waiting = true

	m.input.SetValue("second question")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)

	assert.Nil(t, cmd)
	assert.Empty(t, m.turns)
}

func TestChatModel_Dashboard(t *testing.T) {
	m := sized(t, newChatModel(context.Background(), &echoAsker{}, dashboard.Default(), rishab, "LoyaltyAI", true))

	m.input.SetValue("/dashboard")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)

	require.Len(t, m.turns, 1)
	assert.Contains(t, m.turns[0].answer, "On-Call Schedule")
	assert.False(t, m.waiting)
}

func TestChatModel_CorpusStatus(t *testing.T) {
	m := sized(t, newChatModel(context.Background(), &echoAsker{}, nil, rishab, "LoyaltyAI", false))

	next, _ := m.Update(corpusMsg{chunks: 12})
	assert.Contains(t, next.(chatModel).status, "12 chunks")

	next, _ = m.Update(corpusMsg{err: errors.New("disk gone")})
	assert.Contains(t, next.(chatModel).status, "disk gone")
}

func TestChatModel_Quit(t *testing.T) {
	m := sized(t, newChatModel(context.Background(), &echoAsker{}, nil, rishab, "LoyaltyAI", false))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
