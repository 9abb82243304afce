package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svcsearch/internal/domain"
)

type fakeSearcher struct {
	calls []string
	topKs []int
	err   error
}

func (f *fakeSearcher) Query(_ context.Context, text string, topK int) ([]domain.QueryResult, error) {
	f.calls = append(f.calls, text)
	f.topKs = append(f.topKs, topK)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.QueryResult{{Name: "CosmosDB", Description: "A database.", Score: 0.9}}, nil
}

func typeText(m Model, text string) Model {
	var model tea.Model = m
	for _, r := range text {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return model.(Model)
}

func pressEnter(m Model) (Model, tea.Cmd) {
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return model.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestUpdate_EnterRunsQuery(t *testing.T) {
	svc := &fakeSearcher{}
	m := typeText(New(svc, 3), "distributed database")

	m, cmd := pressEnter(m)
	assert.False(t, isQuit(cmd))
	assert.Equal(t, []string{"distributed database"}, svc.calls)
	assert.Equal(t, []int{3}, svc.topKs)
	require.Len(t, m.results, 1)
	assert.Equal(t, "CosmosDB", m.results[0].Name)
	// Input is cleared for the next query.
	assert.Empty(t, m.input.Value())
}

func TestUpdate_EmptyEnterQuits(t *testing.T) {
	svc := &fakeSearcher{}
	_, cmd := pressEnter(New(svc, 3))
	assert.True(t, isQuit(cmd))
	assert.Empty(t, svc.calls)
}

func TestUpdate_ExitQuits(t *testing.T) {
	svc := &fakeSearcher{}
	m := typeText(New(svc, 3), "exit")
	_, cmd := pressEnter(m)
	assert.True(t, isQuit(cmd))
	assert.Empty(t, svc.calls)
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	_, cmd := New(&fakeSearcher{}, 3).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}

func TestUpdate_QueryErrorShownInStatus(t *testing.T) {
	svc := &fakeSearcher{err: domain.ErrIndex}
	m := typeText(New(svc, 3), "anything")
	m, cmd := pressEnter(m)
	assert.False(t, isQuit(cmd))
	assert.Contains(t, m.status, "Error:")
	assert.Empty(t, m.results)
}

func TestUpdate_WindowSizeMakesReady(t *testing.T) {
	model, _ := New(&fakeSearcher{}, 3).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m := model.(Model)
	assert.True(t, m.ready)
	assert.NotEqual(t, "Loading...", m.View())
}
