package ui

import (
	"testing"

	"github.com/adriangreen/tm-dash/internal/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t)
	model := h.model

	// Test help toggle on
	assert.False(t, model.showHelp, "Help should be initially hidden")

	m := press(t, model, "?")
	assert.True(t, m.showHelp, "Help should be shown after pressing '?'")

	view := m.View()

	// Check that help overlay contains expected sections
	assert.Contains(t, view, "tm-dash Help", "Should contain help title")
	assert.Contains(t, view, "Navigation", "Should contain Navigation section")
	assert.Contains(t, view, "Views", "Should contain Views section")
	assert.Contains(t, view, "Task Operations", "Should contain Task Operations section")
	assert.Contains(t, view, "Panels", "Should contain Panels section")
	assert.Contains(t, view, "General", "Should contain General section")

	// Check for key bindings display
	assert.Contains(t, view, "Move up", "Should show move up help")
	assert.Contains(t, view, "Mark done / not done", "Should show toggle help")
	assert.Contains(t, view, "space", "Should name the space key")

	// Other keys are swallowed while help is showing
	m2 := press(t, m, "2")
	assert.True(t, m2.showHelp)
	assert.Equal(t, "inbox", h.svc.Selector().View().String(), "Keys should not reach the list while help is open")

	// Test help toggle off with '?'
	m3 := press(t, m, "?")
	assert.False(t, m3.showHelp, "Help should be hidden after pressing '?' again")

	// Test help toggle off with Escape
	m4 := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m4.showHelp, "Help should be hidden after pressing Escape")
}

func TestHelpKeyBindings(t *testing.T) {
	km := DefaultKeyMap()

	shortHelp := km.ShortHelp()
	assert.Len(t, shortHelp, 7, "ShortHelp should fit the status bar")

	fullHelp := km.FullHelp()
	assert.Len(t, fullHelp, 6, "FullHelp should contain every group")
	for i, group := range fullHelp {
		assert.NotEmpty(t, group, "group %d should not be empty", i)
	}

	// Every binding should carry help text
	for _, group := range fullHelp {
		for _, b := range group {
			assert.NotEmpty(t, b.Help().Key, "binding %v should have a key label", b.Keys())
			assert.NotEmpty(t, b.Help().Desc, "binding %v should have a description", b.Keys())
		}
	}
}

func TestNewKeyMap_Overrides(t *testing.T) {
	cfg := &config.Config{KeyBindings: map[string]string{
		"quit":   "Q",
		"toggle": " ",
		"add":    "n",
		"bogus":  "z",
		"help":   "",
	}}
	km := NewKeyMap(cfg)

	assert.Equal(t, []string{"Q"}, km.Quit.Keys())
	assert.Equal(t, "space", km.Toggle.Help().Key)
	assert.Equal(t, []string{"n"}, km.Add.Keys())
	assert.Equal(t, DefaultKeyMap().Help.Keys(), km.Help.Keys(), "empty overrides keep the default")

	assert.Equal(t, DefaultKeyMap().Quit.Keys(), NewKeyMap(nil).Quit.Keys())
}

func TestRenderBinding(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.model.renderBinding(h.model.keyMap.Toggle), "space")
	assert.Contains(t, h.model.renderBinding(h.model.keyMap.Top), "g")
}
