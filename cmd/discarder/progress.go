package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/discarder/internal/discarder"
)

// progressMsg carries a driver progress snapshot into the Bubble Tea
// update loop. The discarder reports progress from worker-supervisor
// goroutines, so it is forwarded over a channel rather than called
// directly into the model.
type progressMsg discarder.Progress

type doneMsg struct{}

type progressModel struct {
	bar      progress.Model
	fraction float64
	updates  <-chan progressMsg
	done     <-chan struct{}
}

func newProgressModel(updates <-chan progressMsg, done <-chan struct{}) progressModel {
	return progressModel{
		bar:     progress.New(progress.WithDefaultGradient()),
		updates: updates,
		done:    done,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m progressModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case p, ok := <-m.updates:
			if !ok {
				return doneMsg{}
			}
			return p
		case <-m.done:
			return doneMsg{}
		}
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		return m, nil
	case progressMsg:
		m.fraction = msg.FractionCompleted
		return m, m.waitForUpdate()
	case doneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	return fmt.Sprintf("%s\n%s\n", m.bar.ViewAs(m.fraction), progressHintStyle.Render("q to cancel display (sampling continues)"))
}

var progressHintStyle = lipgloss.NewStyle().Faint(true)
