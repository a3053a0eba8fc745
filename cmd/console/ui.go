package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/iron-and-snow/pkg/script"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// whisperEvery is the number of progress ticks each whisper stays on screen.
const whisperEvery = 8

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	script  *script.Script
	backend backend
	timeout time.Duration

	gameState   state.GameState
	logViewport viewport.Model
	metaView    viewport.Model
	ready       bool
	width       int
	height      int

	selected int
	busy     bool
	status   string // dim one-line notice under the choices
	err      error

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	titleCaser cases.Caser
	copyLog    func(string) error
}

type actionResultMsg struct {
	gameState state.GameState
	err       error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")). // blood red
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	whisperStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("60")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("160")).
				Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("88")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(sc *script.Script, b backend, initial state.GameState) ConsoleUI {
	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		script:      sc,
		backend:     b,
		timeout:     time.Minute,
		gameState:   initial,
		logViewport: logVp,
		metaView:    viewport.New(20, 20),
		titleCaser:  cases.Title(language.English),
		copyLog:     clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case actionResultMsg:
		m.busy = false
		m.gameState = msg.gameState
		m.selected = 0
		switch {
		case msg.err == nil:
			m.status = ""
			m.err = nil
		case errors.Is(msg.err, errRejected):
			m.status = msg.err.Error()
		default:
			m.err = msg.err
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.busy {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil
	}

	m.logViewport, vpCmd = m.logViewport.Update(msg)
	return m, vpCmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	opts := options(m.gameState, m.script)

	switch key := msg.String(); key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(opts)-1 {
			m.selected++
		}
	case "enter", " ":
		if m.selected < len(opts) {
			return m.dispatch(opts[m.selected])
		}
	case "c":
		if err := m.copyLog(strings.Join(m.gameState.Log, "\n\n")); err != nil {
			m.status = "Could not copy the story: " + err.Error()
		} else {
			m.status = "The story so far was copied to the clipboard."
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(opts) {
				m.selected = i
				return m.dispatch(opts[i])
			}
		}
	}

	m.refresh()
	return m, nil
}

func (m ConsoleUI) dispatch(o option) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.progressTick = 0
	m.status = ""
	m.refresh()
	return m, tea.Batch(m.runAction(o), progressTick())
}

func (m ConsoleUI) runAction(o option) tea.Cmd {
	b, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, err := b.Do(ctx, o.Action)
		return actionResultMsg{gameState: st, err: err}
	}
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 4 - m.choicesHeight()
	m.metaView.Width = metaWidth - 2
	m.metaView.Height = m.height - 4
}

// choicesHeight is the number of rows the choice panel needs.
func (m ConsoleUI) choicesHeight() int {
	return len(options(m.gameState, m.script)) + 4
}

// refresh rebuilds both panels from the current snapshot.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	m.resize()
	m.logViewport.SetContent(m.writeLog())
	m.logViewport.GotoBottom()
	m.metaView.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeLog() string {
	width := m.logViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(m.script.Title())) + "\n")
	content.WriteString(subtitleStyle.Render(m.script.Subtitle()) + "\n\n")

	if m.gameState.Phase == state.PhaseIntro {
		content.WriteString(storyStyle.Render(wordwrap.String(m.script.IntroText(), width)) + "\n\n")
		content.WriteString(promptStyle.Render("Press Enter to begin.") + "\n\n")
	} else {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
		for _, line := range m.gameState.Log {
			content.WriteString(storyStyle.Render(wordwrap.String(line, width)) + "\n\n")
		}
	}

	if m.busy {
		content.WriteString(whisperStyle.Render(wordwrap.String(m.whisper(), width)) + "\n")
		content.WriteString(m.renderProgressBar() + "\n")
	}
	return content.String()
}

// whisper picks the atmospheric line shown while a delayed beat is pending.
func (m ConsoleUI) whisper() string {
	lines := m.script.Whispers()
	if len(lines) == 0 {
		return "..."
	}
	return lines[(m.progressTick/whisperEvery)%len(lines)]
}

// phaseName renders a phase for display, e.g. GAME_OVER as "Game Over".
func (m ConsoleUI) phaseName(p state.Phase) string {
	return m.titleCaser.String(strings.ReplaceAll(strings.ToLower(string(p)), "_", " "))
}

func (m ConsoleUI) writeMetadata() string {
	gs := m.gameState

	var content strings.Builder
	content.WriteString(titleStyle.Render("THE WALK") + "\n\n")

	content.WriteString("Phase:\n")
	content.WriteString(m.phaseName(gs.Phase) + "\n\n")

	if progress := gs.DescribeProgress(); progress != "" {
		content.WriteString("Progress:\n")
		content.WriteString(progress + "\n\n")
	}

	content.WriteString("Basket:\n")
	if len(gs.Inventory) == 0 {
		content.WriteString("Empty\n\n")
	} else {
		for _, it := range gs.Inventory {
			content.WriteString(fmt.Sprintf("%s %s\n", it.Icon, it.Name))
		}
		content.WriteString("\n")
	}

	if len(gs.ClaimedItems) > 0 {
		content.WriteString("Yours now:\n")
		for _, label := range gs.ClaimedItems {
			content.WriteString(label + "\n")
		}
		content.WriteString("\n")
	}

	switch {
	case gs.Phase == state.PhaseGameOver:
		content.WriteString(bannerStyle.Render(m.script.GameOverTitle()) + "\n\n")
	case gs.Phase == state.PhaseEnding && gs.ClaimedAll():
		content.WriteString(bannerStyle.Render(m.script.EndingTitle()+".") + "\n\n")
	}

	content.WriteString("Keys:\n")
	content.WriteString("• ↑/↓: Choose\n")
	content.WriteString("• Enter or 1-9: Act\n")
	content.WriteString("• PgUp/PgDn: Scroll\n")
	content.WriteString("• c: Copy story\n")
	content.WriteString("• Esc: Quit\n")

	return content.String()
}

func (m ConsoleUI) renderChoices(width int) string {
	var content strings.Builder
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")

	if m.busy {
		content.WriteString(promptStyle.Render("…") + "\n")
	} else {
		for i, o := range options(m.gameState, m.script) {
			label := fmt.Sprintf("%d. %s", i+1, o.Label)
			if o.Hint != "" {
				label += promptStyle.Render("  " + o.Hint)
			}
			if i == m.selected {
				content.WriteString(selectedChoiceStyle.Render("▶ "+label) + "\n")
			} else {
				content.WriteString(choiceStyle.Render("  "+label) + "\n")
			}
		}
	}

	switch {
	case m.err != nil:
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.status != "":
		content.WriteString(promptStyle.Render(m.status) + "\n")
	}
	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case actionResultMsg:
		// Let a beat that lands behind the modal update the story.
		m.showQuitModal = false
		model, cmd := m.Update(msg)
		ui := model.(ConsoleUI)
		ui.showQuitModal = true
		return ui, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Woods?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to abandon the walk?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			m.renderChoices(logWidth-4),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaView.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
