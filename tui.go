package main

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type IdleMsg struct{}
type ListeningMsg struct{}
type ThinkingMsg struct{}
type SpeakingMsg struct{ Text string }
type HeardMsg struct{ Text string }
type AudioLevelMsg struct{ Level float64 }
type ModeLineMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type tickMsg time.Time

type tuiPhase int

const (
	phaseIdle tuiPhase = iota
	phaseListening
	phaseThinking
	phaseSpeaking
)

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	statusIdleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusListenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusThinkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	statusSpeakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	heardStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	lineStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type tuiModel struct {
	phase      tuiPhase
	frame      int
	audioLevel float64
	lastHeard  string
	lastLine   string
	modeLine   string
	deviceLine string
	width      int
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case IdleMsg:
		m.phase = phaseIdle
		m.audioLevel = 0

	case ListeningMsg:
		m.phase = phaseListening
		m.audioLevel = 0

	case ThinkingMsg:
		m.phase = phaseThinking

	case SpeakingMsg:
		m.phase = phaseSpeaking
		m.lastLine = msg.Text

	case HeardMsg:
		m.lastHeard = msg.Text

	case AudioLevelMsg:
		if m.phase == phaseListening {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
		}

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text
	}
	return m, nil
}

var thinkFrames = []string{"   ", ".  ", ".. ", "..."}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")
	switch m.phase {
	case phaseListening:
		b.WriteString(statusListenStyle.Render("● LISTENING " + levelBar(m.audioLevel)))
	case phaseThinking:
		b.WriteString(statusThinkStyle.Render("◐ THINKING" + thinkFrames[m.frame%len(thinkFrames)]))
	case phaseSpeaking:
		b.WriteString(statusSpeakStyle.Render("▶ SPEAKING"))
	default:
		b.WriteString(statusIdleStyle.Render("○ STANDBY"))
	}
	b.WriteString("\n\n")

	if m.lastHeard != "" {
		b.WriteString("  " + dimStyle.Render("heard: "))
		b.WriteString(heardStyle.Render(truncate(m.lastHeard, m.width-10)) + "\n")
	}
	if m.lastLine != "" {
		b.WriteString("  " + dimStyle.Render("said:  "))
		b.WriteString(lineStyle.Render(truncate(m.lastLine, m.width-10)) + "\n")
	}
	if m.lastHeard != "" || m.lastLine != "" {
		b.WriteString("\n")
	}

	if m.modeLine != "" {
		b.WriteString("  " + dimStyle.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString("  " + dimStyle.Render(m.deviceLine) + "\n")
	}

	b.WriteString("\n  " + helpStyle.Render("hold Ctrl to talk, Ctrl+C to quit") + "\n")
	return b.String()
}

func levelBar(level float64) string {
	n := int(level * 40)
	if n > 10 {
		n = 10
	}
	return strings.Repeat("▊", n)
}

func truncate(s string, max int) string {
	if max < 8 {
		max = 8
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
