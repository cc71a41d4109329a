package main

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-menagerie/internal/menagerie"
	"github.com/cwbudde/algo-menagerie/sampler"
)

const (
	refreshInterval = 100 * time.Millisecond
	waveWidth       = 64
	scrubSteps      = 32
)

var waveLevels = []rune(" ▁▂▃▄▅▆▇█")

// instrument is the engine surface the UI drives.
type instrument interface {
	Instrument() string
	Effects() []string
	Play(key rune) error
	PlayAtPosition(fraction float64) error
	PlayFullSample(onEnded func()) error
	StopFullSample()
	ApplyPreset(i int) error
	ConnectNodes(names []string) error
	PlayPattern() error
	StopPattern() error
	PatternPlaying() bool
	SetPattern(id int, enabled bool) error
	Patterns() ([]menagerie.PatternState, error)
	Waveform(width int) ([]float64, error)
}

type tickMsg time.Time

type previewEndedMsg struct{}

type model struct {
	engine     instrument
	ended      chan struct{}
	previewing bool
	cursor     int
	lastKey    rune
	status     string
	quitting   bool
}

func newModel(engine instrument) model {
	return model{
		engine: engine,
		ended:  make(chan struct{}, 1),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func listenForPreviewEnd(ended <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ended
		return previewEndedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), listenForPreviewEnd(m.ended))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tick()

	case previewEndedMsg:
		m.previewing = false
		return m, listenForPreviewEnd(m.ended)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error

	switch key := msg.String(); key {
	case "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "f1", "f2", "f3":
		err = m.engine.ApplyPreset(int(key[1] - '0'))

	case "f4":
		err = m.engine.ConnectNodes(nil)

	case " ", "space":
		if m.engine.PatternPlaying() {
			err = m.engine.StopPattern()
		} else {
			err = m.engine.PlayPattern()
		}

	case "enter":
		err = m.toggleFullSample()

	case "left":
		m.cursor = max(0, m.cursor-1)
		err = m.engine.PlayAtPosition(float64(m.cursor) / scrubSteps)

	case "right":
		m.cursor = min(scrubSteps, m.cursor+1)
		err = m.engine.PlayAtPosition(float64(m.cursor) / scrubSteps)

	case "alt+0", "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
		err = m.togglePattern(int(key[len(key)-1] - '0'))

	default:
		if r, ok := padKey(msg); ok {
			m.lastKey = r
			err = m.engine.Play(r)
		}
	}

	m.status = ""
	if err != nil {
		m.status = err.Error()
	}

	return m, nil
}

// padKey maps a key press onto a pad. Letters are case-insensitive.
func padKey(msg tea.KeyMsg) (rune, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Alt {
		return 0, false
	}

	r := unicode.ToUpper(msg.Runes[0])
	for _, row := range sampler.Keys() {
		if strings.ContainsRune(row, r) {
			return r, true
		}
	}

	return 0, false
}

func (m *model) toggleFullSample() error {
	if m.previewing {
		m.engine.StopFullSample()
		m.previewing = false

		return nil
	}

	ended := m.ended
	err := m.engine.PlayFullSample(func() {
		select {
		case ended <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	m.previewing = true

	return nil
}

func (m *model) togglePattern(id int) error {
	patterns, err := m.engine.Patterns()
	if err != nil {
		return err
	}

	for _, p := range patterns {
		if p.ID == id {
			return m.engine.SetPattern(id, !p.Active)
		}
	}

	return fmt.Errorf("no pattern %d", id)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	padStyle := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
	hitStyle := padStyle.BorderForeground(lipgloss.Color("212"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	loop := "STOP"
	if m.engine.PatternPlaying() {
		loop = "LOOP"
	}

	effects := "passthrough"
	if names := m.engine.Effects(); len(names) > 0 {
		effects = strings.Join(names, " > ")
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("menagerie  %s  %s", m.engine.Instrument(), loop)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("fx: " + effects))
	b.WriteString("\n\n")

	for _, row := range sampler.Keys() {
		pads := make([]string, 0, len(row))
		for _, r := range row {
			style := padStyle
			if r == m.lastKey {
				style = hitStyle
			}

			pads = append(pads, style.Render(string(r)))
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pads...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.waveView())
	b.WriteString("\n")
	b.WriteString(m.patternView())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(errStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("pads:keys  F1-F3:preset F4:bypass  space:loop  alt+n:layer  enter:full  ←/→:scrub  esc:quit"))

	return b.String()
}

func (m model) waveView() string {
	env, err := m.engine.Waveform(waveWidth)
	if err != nil {
		return ""
	}

	var line, marker strings.Builder

	at := m.cursor * (waveWidth - 1) / scrubSteps
	for i, v := range env {
		line.WriteRune(waveLevels[min(int(v*float64(len(waveLevels)-1)), len(waveLevels)-1)])

		if i == at {
			marker.WriteRune('^')
		} else {
			marker.WriteRune(' ')
		}
	}

	return line.String() + "\n" + marker.String()
}

func (m model) patternView() string {
	patterns, err := m.engine.Patterns()
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, p := range patterns {
		mark := " "
		if p.Active {
			mark = "*"
		}

		fmt.Fprintf(&b, "%s%d |%s|\n", mark, p.ID, p.Steps)
	}

	return b.String()
}
