package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type counterMsg struct{}

type counter struct {
	n     int
	ticks int
}

func (c counter) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return counterMsg{} },
		tea.Tick(time.Hour, func(time.Time) tea.Msg { return counterMsg{} }),
	)
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case counterMsg:
		c.ticks++
	case tea.KeyMsg:
		switch msg.String() {
		case "+":
			c.n++
		case "q":
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c counter) View() string { return "" }

func TestDriver_DrainsInitAndSkipsBlockingCmds(t *testing.T) {
	d := New(t, counter{}, WithCmdTimeout(20*time.Millisecond))
	d.DrainInit()
	assert.Equal(t, 1, d.Model.(counter).ticks, "the hour-long tick is dropped")
}

func TestDriver_KeysAndQuit(t *testing.T) {
	d := New(t, counter{})
	d.PressKey('+')
	d.PressKey('+')
	assert.Equal(t, 2, d.Model.(counter).n)

	d.PressKey('q')
	assert.True(t, d.Quitting)
	d.PressKey('+')
	assert.Equal(t, 2, d.Model.(counter).n, "input after quit is ignored")
}

func TestDriver_WithSkip(t *testing.T) {
	d := New(t, counter{}, WithCmdTimeout(20*time.Millisecond), WithSkip(func(msg tea.Msg) bool {
		_, ok := msg.(counterMsg)
		return ok
	}))
	d.DrainInit()
	assert.Zero(t, d.Model.(counter).ticks)
}
