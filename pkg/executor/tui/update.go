package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/trainer/pkg/identity"
	"github.com/entrhq/trainer/pkg/workout"
)

const noIdentitiesText = "No users are configured. Run `trainer -add-user NAME` to create one, then start the app again."

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all state updates for the TUI model.
// Uses pointer receiver so sub-model mutations persist.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case loginMsg:
		return m, m.handleLogin(msg)

	case historyMsg:
		m.handleHistory(msg)
		return m, nil

	case generatedMsg:
		return m, m.handleGenerated(msg)

	case copiedMsg:
		if msg.err != nil {
			m.setError("Could not copy the plan: " + msg.err.Error())
		} else {
			m.setNotice("Plan copied to the clipboard.")
		}
		return m, nil

	case spinner.TickMsg:
		if m.screen != screenGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.screen {
	case screenLogin:
		return m, m.updateLogin(msg)
	case screenHistory:
		return m, m.updateHistory(msg)
	case screenForm:
		return m, m.updateForm(msg)
	case screenGenerating:
		return m, m.updateGenerating(msg)
	case screenPlan:
		return m, m.updatePlan(msg)
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.password.Width = min(40, width-4)
	m.history.SetSize(width, max(height-6, 3))
	m.viewport.Width = width
	m.viewport.Height = max(height-6, 3)
	m.form.problem.Width = min(60, width-20)
	m.form.focusArea.Width = min(60, width-20)
	if m.screen == screenPlan {
		m.viewport.SetContent(renderPlan(m.current, width, m.markdown))
	}
}

func (m *model) setNotice(s string) {
	m.notice, m.errMsg = s, ""
}

func (m *model) setError(s string) {
	m.errMsg, m.notice = s, ""
}

// Login

func (m *model) updateLogin(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			return tea.Quit
		case tea.KeyEnter:
			if m.loggingIn {
				return nil
			}
			m.loggingIn = true
			return m.resolveCmd(m.password.Value())
		}
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return cmd
}

func (m *model) resolveCmd(secret string) tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		id, err := resolver.Resolve(ctx, secret)
		return loginMsg{identity: id, err: err}
	}
}

func (m *model) handleLogin(msg loginMsg) tea.Cmd {
	m.loggingIn = false
	m.password.Reset()
	switch {
	case errors.Is(msg.err, identity.ErrNoIdentities):
		m.setError(noIdentitiesText)
		return nil
	case msg.err != nil:
		if !errors.Is(msg.err, identity.ErrUnknownCredential) {
			m.logger.Warnf("login failed: %v", msg.err)
		}
		m.setError("Invalid password. Please try again.")
		return nil
	}

	m.identity = msg.identity
	m.welcome = identity.Welcome(msg.identity)
	m.setNotice("")
	m.password.Blur()
	m.screen = screenHistory
	m.logger.Infof("%s signed in", msg.identity)
	return m.loadHistoryCmd()
}

func (m *model) logout() tea.Cmd {
	m.identity, m.welcome = "", ""
	m.plans = nil
	m.history.SetItems(nil)
	m.form.reset()
	m.setNotice("")
	m.screen = screenLogin
	return m.password.Focus()
}

// History

func (m *model) loadHistoryCmd() tea.Cmd {
	ctx, log, id := m.ctx, m.log, m.identity
	return func() tea.Msg {
		records, err := log.LoadAll(ctx, id)
		if err != nil {
			return historyMsg{identity: id, err: err}
		}
		return historyMsg{identity: id, plans: workout.NewestFirst(records)}
	}
}

func (m *model) handleHistory(msg historyMsg) {
	// A load for an identity that has since signed out.
	if msg.identity != m.identity {
		return
	}
	if msg.err != nil {
		m.logger.Errorf("history load failed: %v", msg.err)
		m.setError("Could not load your past workouts: " + workout.Reason(msg.err))
		m.plans = nil
	} else {
		m.plans = msg.plans
	}
	m.history.SetItems(planItems(m.plans))
	m.history.Select(0)
}

func (m *model) updateHistory(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			return tea.Quit
		case "esc":
			return m.logout()
		case "n":
			m.setNotice("")
			m.screen = screenForm
			return m.form.setFocus(m.form.focus)
		case "r":
			return m.loadHistoryCmd()
		case "enter":
			if item, ok := m.history.SelectedItem().(planItem); ok {
				m.showPlan(item.plan)
			}
			return nil
		}
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return cmd
}

// Form and generation

func (m *model) updateForm(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Type == tea.KeyEsc {
		m.screen = screenHistory
		return nil
	}
	submit, cmd := m.form.Update(key)
	if !submit {
		return cmd
	}
	return m.startGeneration()
}

func (m *model) startGeneration() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.setNotice("")
	m.screen = screenGenerating

	pipeline, id, req := m.pipeline, m.identity, m.form.Request()
	generate := func() tea.Msg {
		defer cancel()
		res, err := pipeline.Run(ctx, id, req)
		return generatedMsg{result: res, err: err}
	}
	return tea.Batch(m.spinner.Tick, generate)
}

func (m *model) updateGenerating(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.cancel != nil {
		m.cancel()
		m.setNotice("Canceling…")
	}
	return nil
}

func (m *model) handleGenerated(msg generatedMsg) tea.Cmd {
	m.cancel = nil
	if msg.err != nil {
		m.screen = screenForm
		if errors.Is(msg.err, workout.ErrRejectedInput) {
			m.setError(workout.Reason(msg.err))
		} else {
			m.setError("Could not generate a workout: " + workout.Reason(msg.err))
		}
		return nil
	}

	res := msg.result
	m.showPlan(res.Record.Plan())
	if res.SaveErr != nil {
		m.setError("Workout generated but not saved: " + workout.Reason(res.SaveErr))
	} else {
		m.setNotice("New workout generated and saved!")
	}
	m.form.reset()
	return m.loadHistoryCmd()
}

// Plan view

func (m *model) showPlan(p workout.Plan) {
	m.current = p
	m.screen = screenPlan
	m.viewport.SetContent(renderPlan(p, m.width, m.markdown))
	m.viewport.GotoTop()
}

func (m *model) updatePlan(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			m.setNotice("")
			m.screen = screenHistory
			return nil
		case "c":
			return m.copyCmd(m.current.PlanText)
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *model) copyCmd(text string) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		return copiedMsg{err: copyFn(text)}
	}
}
